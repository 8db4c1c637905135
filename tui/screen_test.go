// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package tui

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"texelation/attr"
	"texelation/tui/parser"
)

func TestScreenDrawRendersGlyphsAndStyles(t *testing.T) {
	sim := tcell.NewSimulationScreen("")
	if err := sim.Init(); err != nil {
		t.Fatalf("sim init: %v", err)
	}
	sim.SetSize(10, 3)

	storage := attr.NewStorage(16, 256)
	s := newScreen(sim, storage)

	v := parser.NewVTerm(10, 3, storage)
	v.ProcessCSI('m', []int{1}, false)
	v.PlaceChar('H')
	v.PlaceChar('i')

	s.Draw(v)

	mainc, _, style, _ := sim.GetContent(0, 0)
	if mainc != 'H' {
		t.Fatalf("expected 'H' at (0,0), got %q", mainc)
	}
	if _, _, attrs := style.Decompose(); attrs&tcell.AttrBold == 0 {
		t.Fatalf("expected bold style at (0,0)")
	}

	mainc, _, _, _ = sim.GetContent(1, 0)
	if mainc != 'i' {
		t.Fatalf("expected 'i' at (1,0), got %q", mainc)
	}
}

func TestScreenGetStyleCachesInlineIdentifiersOnly(t *testing.T) {
	sim := tcell.NewSimulationScreen("")
	if err := sim.Init(); err != nil {
		t.Fatalf("sim init: %v", err)
	}
	sim.SetSize(4, 1)

	storage := attr.NewStorage(4, 16)
	s := newScreen(sim, storage)

	var plain attr.Attributes
	id, _ := storage.Ref(&plain)
	s.getStyle(id)
	if _, ok := s.styleCache[id]; !ok {
		t.Fatalf("expected inline identifier to be cached")
	}

	var rgb attr.Attributes
	rgb.SetFgMode(attr.ColorModeRGB)
	rgb.SetFg(attr.ToRGB(1, 2, 3))
	rgbID, err := storage.Ref(&rgb)
	if err != nil {
		t.Fatalf("ref: %v", err)
	}
	s.getStyle(rgbID)
	if _, ok := s.styleCache[rgbID]; ok {
		t.Fatalf("did not expect pool-pointer identifier to be cached")
	}
}
