// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package parser

import (
	"testing"

	"texelation/attr"
)

func newTestVTerm(w, h int) (*VTerm, *attr.Storage) {
	s := attr.NewStorage(16, 1024)
	return NewVTerm(w, h, s), s
}

func attrsAt(v *VTerm, s *attr.Storage, row, col int) attr.Attributes {
	var a attr.Attributes
	s.FromAddress(v.grid[row][col].ID, &a)
	return a
}

func TestVTermSGRDrivesAttributes(t *testing.T) {
	v, s := newTestVTerm(10, 3)
	v.ProcessCSI('m', []int{1, 4}, false)
	v.placeChar('x')

	got := attrsAt(v, s, 0, 0)
	if !got.Bold() || !got.Underline() {
		t.Fatalf("expected bold+underline, got flags=%#x", got.Flags())
	}

	v.ProcessCSI('m', []int{0}, false)
	v.placeChar('y')
	got = attrsAt(v, s, 0, 1)
	if got.Bold() || got.Underline() {
		t.Fatalf("expected reset attributes after SGR 0, got flags=%#x", got.Flags())
	}
}

func TestVTermSGRTrueColor(t *testing.T) {
	v, s := newTestVTerm(10, 3)
	v.ProcessCSI('m', []int{38, 2, 10, 20, 30}, false)
	v.placeChar('x')

	got := attrsAt(v, s, 0, 0)
	if got.FgMode() != attr.ColorModeRGB {
		t.Fatalf("expected RGB fg mode, got %v", got.FgMode())
	}
	r, g, b := attr.FromRGB(got.GetFg())
	if r != 10 || g != 20 || b != 30 {
		t.Fatalf("unexpected rgb %d %d %d", r, g, b)
	}
	if s.TreeSize() != 1 {
		t.Fatalf("expected one interned node, got %d", s.TreeSize())
	}
}

func TestVTermClearScreenReleasesRGBReferences(t *testing.T) {
	v, s := newTestVTerm(4, 2)
	v.ProcessCSI('m', []int{38, 2, 1, 2, 3}, false)
	for i := 0; i < 4; i++ {
		v.placeChar('a')
	}
	if s.TreeSize() != 1 {
		t.Fatalf("expected one interned node after writes, got %d", s.TreeSize())
	}

	// Blank cells take the current attributes, so reset SGR first; the
	// only RGB references left are then the four written cells.
	v.ProcessCSI('m', []int{0}, false)
	v.ClearScreen()
	if s.TreeSize() != 0 {
		t.Fatalf("expected interned node released after clear, got %d", s.TreeSize())
	}
}

func TestVTermResizeReleasesTruncatedCells(t *testing.T) {
	v, s := newTestVTerm(4, 2)
	v.ProcessCSI('m', []int{38, 2, 5, 5, 5}, false)
	v.SetCursorPos(0, 3)
	v.placeChar('z')
	if s.TreeSize() != 1 {
		t.Fatalf("expected one interned node, got %d", s.TreeSize())
	}

	v.Resize(2, 2)
	if s.TreeSize() != 0 {
		t.Fatalf("expected node released when its column was dropped, got %d", s.TreeSize())
	}
}

func TestVTermDeleteCharactersShiftsRow(t *testing.T) {
	v, _ := newTestVTerm(5, 1)
	for _, r := range "abcde" {
		v.placeChar(r)
	}
	v.SetCursorPos(0, 1)
	v.DeleteCharacters(2)

	var out []rune
	for _, c := range v.grid[0] {
		out = append(out, c.Rune)
	}
	if string(out) != "ade  " {
		t.Fatalf("expected 'ade  ', got %q", string(out))
	}
}
