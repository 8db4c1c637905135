// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: attr/errors.go
// Summary: Sentinel errors for the attribute pool and storage facade.

package attr

import "errors"

var (
	// ErrOutOfMemory is returned when the pool has reached max_nodes and
	// its free list is empty.
	ErrOutOfMemory = errors.New("attr: pool exhausted")

	// ErrInvalidAddress reports an address that does not refer to a live
	// node in the pool. No function in this package returns it: Unref and
	// FromAddress do not validate addresses.
	ErrInvalidAddress = errors.New("attr: invalid address")
)
