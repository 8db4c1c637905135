// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: tui/screen.go
// Summary: Renders a single virtual terminal's grid to a tcell.Screen,
//          diffing against the previously drawn frame and resolving each
//          cell's attr.Identifier to a tcell.Style through a small cache
//          keyed by the identifier itself (most runs of text repeat the
//          same few identifiers, so this avoids re-walking Storage on
//          every redraw).

package tui

import (
	"github.com/gdamore/tcell/v2"

	"texelation/attr"
	"texelation/tui/parser"
)

// Screen owns a tcell.Screen and draws a VTerm's grid onto it.
type Screen struct {
	width, height int
	ts            tcell.Screen
	storage       *attr.Storage
	prev          [][]Cell
	styleCache    map[attr.Identifier]tcell.Style
}

// NewScreen initializes a tcell.Screen and wraps it.
func NewScreen(storage *attr.Storage) (*Screen, error) {
	ts, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := ts.Init(); err != nil {
		return nil, err
	}
	return newScreen(ts, storage), nil
}

func newScreen(ts tcell.Screen, storage *attr.Storage) *Screen {
	w, h := ts.Size()
	s := &Screen{
		width:      w,
		height:     h,
		ts:         ts,
		storage:    storage,
		styleCache: make(map[attr.Identifier]tcell.Style),
	}
	s.prev = makeBuffer(w, h)
	return s
}

// Close shuts down the underlying tcell.Screen.
func (s *Screen) Close() { s.ts.Fini() }

// getStyle resolves id to a tcell.Style, consulting the cache first. Only
// inline identifiers are cached: a pool-pointer identifier's index can be
// recycled by Storage for a different attribute triple once its last
// reference is released, so it is always resolved fresh.
func (s *Screen) getStyle(id attr.Identifier) tcell.Style {
	if !id.IsPoolPointer() {
		if st, ok := s.styleCache[id]; ok {
			return st
		}
	}
	var a attr.Attributes
	s.storage.FromAddress(id, &a)
	st := attr.ToTcellStyle(&a)
	if !id.IsPoolPointer() {
		s.styleCache[id] = st
	}
	return st
}

// Draw composites v's grid onto the screen buffer and flushes only the
// cells that changed since the last Draw.
func (s *Screen) Draw(v *parser.VTerm) {
	w, h := s.ts.Size()
	if w != s.width || h != s.height {
		s.width, s.height = w, h
		s.prev = makeBuffer(w, h)
	}

	grid := v.Grid()
	for y := 0; y < h && y < len(grid); y++ {
		row := grid[y]
		for x := 0; x < w && x < len(row); x++ {
			cell := Cell{Ch: row[x].Rune, ID: row[x].ID}
			if cell == s.prev[y][x] {
				continue
			}
			style := s.getStyle(cell.ID)
			ch := cell.Ch
			if ch == 0 {
				ch = ' '
			}
			s.ts.SetContent(x, y, ch, nil, style)
			s.prev[y][x] = cell
		}
	}

	if cx, cy := v.Cursor(); v.CursorVisible() {
		s.ts.ShowCursor(cx, cy)
	} else {
		s.ts.HideCursor()
	}
	s.ts.Show()
}

// PollEvent blocks for the next tcell event.
func (s *Screen) PollEvent() tcell.Event { return s.ts.PollEvent() }

// makeBuffer is a helper to create a 2D Cell slice.
func makeBuffer(w, h int) [][]Cell {
	buf := make([][]Cell, h)
	for i := range buf {
		buf[i] = make([]Cell, w)
	}
	return buf
}
