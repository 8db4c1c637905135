// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import "texelation/attr"

// Cell represents a single character cell on the terminal screen: a glyph
// and the attr.Identifier minted for its current attributes.
type Cell struct {
	Ch rune
	ID attr.Identifier
}
