// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package sgr

import (
	"testing"

	"texelation/attr"
	"texelation/tui/parser"
)

func refCell(t *testing.T, storage *attr.Storage, glyph string, a attr.Attributes) Cell {
	t.Helper()
	id, err := storage.Ref(&a)
	if err != nil {
		t.Fatalf("ref: %v", err)
	}
	return Cell{Glyph: glyph, Width: 1, ID: id}
}

func TestSerializeBoldUnderlinePalette(t *testing.T) {
	storage := attr.NewStorage(16, 256)

	var a attr.Attributes
	a.SetBold(true)
	a.SetUnderline(true)
	a.SetFgMode(attr.ColorModeP16)
	a.SetFg(4)

	cell := refCell(t, storage, "x", a)
	out := NewSerializer(storage).Serialize([]Row{{Cells: []Cell{cell}}})

	want := "\x1b[1;4;34mx"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestSerializeTransitionEmitsOnlyChangedFlag(t *testing.T) {
	storage := attr.NewStorage(16, 256)

	var bold attr.Attributes
	bold.SetBold(true)
	bold.SetFgMode(attr.ColorModeP256)
	bold.SetFg(196)

	var noBold attr.Attributes
	noBold.SetFgMode(attr.ColorModeP256)
	noBold.SetFg(196)

	a := refCell(t, storage, "a", bold)
	b := refCell(t, storage, "b", noBold)

	out := NewSerializer(storage).Serialize([]Row{{Cells: []Cell{a, b}}})

	want := "\x1b[1;38;5;196ma\x1b[22mb"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestSerializeRGBForeground(t *testing.T) {
	storage := attr.NewStorage(16, 256)

	var a attr.Attributes
	a.SetFgMode(attr.ColorModeRGB)
	a.SetFg(attr.ToRGB(0x12, 0x34, 0x56))

	cell := refCell(t, storage, "z", a)
	out := NewSerializer(storage).Serialize([]Row{{Cells: []Cell{cell}}})

	want := "\x1b[38;2;18;52;86mz"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

// attrsEqual compares the rendered meaning of two attribute values: flags,
// plus each color channel's mode and resolved value. It deliberately avoids
// attr.Attributes.Equal, which compares raw storage bits and can differ
// after a channel round-trips through a non-default color and back to
// ColorModeDefault, even though both render identically.
func attrsEqual(a, b *attr.Attributes) bool {
	return a.Bold() == b.Bold() &&
		a.Dim() == b.Dim() &&
		a.Italic() == b.Italic() &&
		a.Underline() == b.Underline() &&
		a.Blink() == b.Blink() &&
		a.Inverse() == b.Inverse() &&
		a.Invisible() == b.Invisible() &&
		a.FgMode() == b.FgMode() && a.GetFg() == b.GetFg() &&
		a.BgMode() == b.BgMode() && a.GetBg() == b.GetBg()
}

// TestSerializeRoundTripThroughReparse covers the mandatory round-trip
// property: writing cells with attributes A1..An, serializing, and
// re-parsing the SGR escapes yields cells with attributes equal to A1..An.
func TestSerializeRoundTripThroughReparse(t *testing.T) {
	storage := attr.NewStorage(16, 256)

	var a1 attr.Attributes
	a1.SetBold(true)
	a1.SetFgMode(attr.ColorModeP16)
	a1.SetFg(2)

	var a2 attr.Attributes
	a2.SetUnderline(true)
	a2.SetItalic(true)
	a2.SetBgMode(attr.ColorModeP256)
	a2.SetBg(201)

	var a3 attr.Attributes
	a3.SetInverse(true)
	a3.SetFgMode(attr.ColorModeRGB)
	a3.SetFg(attr.ToRGB(10, 20, 30))

	var a4 attr.Attributes // default, exercises a reset transition

	want := []attr.Attributes{a1, a2, a3, a4}
	glyphs := []string{"a", "b", "c", "d"}

	cells := make([]Cell, len(want))
	for i, a := range want {
		cells[i] = refCell(t, storage, glyphs[i], a)
	}

	out := NewSerializer(storage).Serialize([]Row{{Cells: cells}})

	reparseStorage := attr.NewStorage(16, 256)
	v := parser.NewVTerm(len(cells), 1, reparseStorage)
	p := parser.NewParser(v)
	p.Parse([]byte(out))

	grid := v.Grid()
	for i, wantAttrs := range want {
		var got attr.Attributes
		reparseStorage.FromAddress(grid[0][i].ID, &got)
		if !attrsEqual(&got, &wantAttrs) {
			t.Fatalf("cell %d: got flags=%#x fg=%d bg=%d, want flags=%#x fg=%d bg=%d",
				i, got.Flags(), got.GetFg(), got.GetBg(),
				wantAttrs.Flags(), wantAttrs.GetFg(), wantAttrs.GetBg())
		}
		if grid[0][i].Rune != rune(glyphs[i][0]) {
			t.Fatalf("cell %d: got rune %q, want %q", i, grid[0][i].Rune, glyphs[i])
		}
	}
}
