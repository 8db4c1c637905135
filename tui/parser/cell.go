// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import "texelation/attr"

// Cell represents a single character cell in the virtual terminal's grid: a
// glyph and the identifier attr.Storage minted for its current attributes.
type Cell struct {
	Rune rune
	ID   attr.Identifier
}
