// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sgr/width.go
// Summary: Per-cell column-advancement helper for the serializer. The
//          buffer is the authority on a cell's stored width; this file
//          only derives the width of a bare rune for cells that don't
//          carry one (e.g. when reconstructing text for a test fixture).

package sgr

import "github.com/mattn/go-runewidth"

// RuneWidth returns the terminal column width of r: 0 for combining
// marks, 1 for ordinary runes, 2 for wide (East Asian / emoji) runes.
func RuneWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// AdvanceColumns returns how many columns the serializer's column cursor
// should move past a cell of the given stored width. Width 0 (a combining
// mark merged into the previous cell) still must advance by at least one
// column when the cell is otherwise empty, to guarantee forward progress
// across the row.
func AdvanceColumns(storedWidth int, emptyGlyph bool) int {
	if storedWidth <= 0 {
		if emptyGlyph {
			return 1
		}
		return 0
	}
	return storedWidth
}
