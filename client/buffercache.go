// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: client/buffercache.go
// Summary: Local per-pane cell cache. Decodes protocol.BufferDelta style
//          entries into attr.Attributes, interns them through a shared
//          attr.Storage, and keeps each cell's attr.Identifier rather than
//          a pre-rendered style so repeated styles across cells and panes
//          share one pool node.

package client

import (
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"

	"texelation/attr"
	"texelation/config"
	"texelation/protocol"
)

// PaneState represents the locally cached state of a pane.
type PaneState struct {
	ID        [16]byte
	Revision  uint32
	UpdatedAt time.Time
	rows      map[int][]Cell
	Title     string
	Rect      clientRect
}

// Cell holds a cell's glyph and the identifier attr.Storage minted for its
// attributes. Resolve the identifier through the cache's Storage to render
// it (see Style).
type Cell struct {
	Ch rune
	ID attr.Identifier
}

type clientRect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Rows returns the pane contents as a slice of strings in row order.
func (p *PaneState) Rows() []string {
	if p == nil {
		return nil
	}
	if len(p.rows) == 0 {
		return nil
	}
	maxRow := 0
	for idx := range p.rows {
		if idx > maxRow {
			maxRow = idx
		}
	}
	out := make([]string, maxRow+1)
	for i := 0; i <= maxRow; i++ {
		row := p.rows[i]
		if len(row) == 0 {
			out[i] = ""
		} else {
			runes := make([]rune, len(row))
			for idx, cell := range row {
				runes[idx] = cell.Ch
			}
			out[i] = trimRightSpaces(string(runes))
		}
	}
	return out
}

// RowCells returns the cells for the given row, if present.
func (p *PaneState) RowCells(row int) []Cell {
	if p == nil || p.rows == nil {
		return nil
	}
	return p.rows[row]
}

// BufferCache maintains pane states keyed by pane ID, all sharing one
// attr.Storage. Identifiers stored in one pane's cells are only meaningful
// against this cache's Storage.
type BufferCache struct {
	panes   map[[16]byte]*PaneState
	order   []paneOrder
	storage *attr.Storage
}

type paneOrder struct {
	id   [16]byte
	seen time.Time
}

// NewBufferCache constructs an empty cache backed by a fresh attr.Storage
// sized from config.Section("attrs").
func NewBufferCache() *BufferCache {
	return &BufferCache{
		panes:   make(map[[16]byte]*PaneState),
		storage: attr.NewStorage(config.AttrsInitialNodes(), config.AttrsMaxNodes()),
	}
}

// Storage returns the cache's shared attribute storage, for resolving
// cell identifiers to renderable style at draw time.
func (c *BufferCache) Storage() *attr.Storage { return c.storage }

// Style resolves cell's identifier to a tcell.Style through the cache's
// Storage.
func (c *BufferCache) Style(cell Cell) tcell.Style {
	var a attr.Attributes
	c.storage.FromAddress(cell.ID, &a)
	return attr.ToTcellStyle(&a)
}

// ApplyDelta merges the buffer delta into the cache and returns the updated
// pane. Cells overwritten by the delta release their prior identifier back
// to Storage before taking on the new one.
func (c *BufferCache) ApplyDelta(delta protocol.BufferDelta) *PaneState {
	if c.panes == nil {
		c.panes = make(map[[16]byte]*PaneState)
	}
	pane := c.panes[delta.PaneID]
	if pane == nil {
		pane = &PaneState{ID: delta.PaneID, rows: make(map[int][]Cell)}
		c.panes[delta.PaneID] = pane
	}
	if delta.Revision < pane.Revision {
		return pane
	}

	styles := decodeStyles(delta.Styles)
	for _, rowDelta := range delta.Rows {
		rowIdx := int(rowDelta.Row)
		row := pane.rows[rowIdx]
		for _, span := range rowDelta.Spans {
			start := int(span.StartCol)
			textRunes := []rune(span.Text)
			needed := start + len(textRunes)
			row = ensureRowLength(row, needed)

			var style attr.Attributes
			if int(span.StyleIndex) < len(styles) {
				style = styles[span.StyleIndex]
			}

			for i, r := range textRunes {
				id, err := c.storage.Ref(&style)
				if err != nil {
					continue
				}
				pos := start + i
				c.storage.Unref(row[pos].ID)
				row[pos] = Cell{Ch: r, ID: id}
			}
		}
		pane.rows[rowIdx] = row
	}
	pane.Revision = delta.Revision
	pane.UpdatedAt = time.Now().UTC()

	c.trackOrdering(delta.PaneID, pane.UpdatedAt)
	return pane
}

// AllPanes returns panes in order of last update.
func (c *BufferCache) AllPanes() []*PaneState {
	panes := make([]*PaneState, len(c.order))
	for i, ord := range c.order {
		panes[i] = c.panes[ord.id]
	}
	return panes
}

// LatestPane returns the most recently updated pane.
func (c *BufferCache) LatestPane() *PaneState {
	if len(c.order) == 0 {
		return nil
	}
	id := c.order[len(c.order)-1].id
	return c.panes[id]
}

func (c *BufferCache) trackOrdering(id [16]byte, ts time.Time) {
	found := false
	for i := range c.order {
		if c.order[i].id == id {
			c.order[i].seen = ts
			found = true
			break
		}
	}
	if !found {
		c.order = append(c.order, paneOrder{id: id, seen: ts})
	}
	sort.Slice(c.order, func(i, j int) bool {
		return c.order[i].seen.Before(c.order[j].seen)
	})
}

func ensureRowLength(row []Cell, n int) []Cell {
	if len(row) >= n {
		return row
	}
	out := make([]Cell, n)
	copy(out, row)
	for i := len(row); i < n; i++ {
		out[i] = Cell{Ch: ' '}
	}
	return out
}

// decodeStyles translates the delta's wire-format style entries into
// Attributes values, ready to be interned through Storage.Ref.
func decodeStyles(entries []protocol.StyleEntry) []attr.Attributes {
	out := make([]attr.Attributes, len(entries))
	for i, entry := range entries {
		out[i] = attributesFromEntry(entry)
	}
	return out
}

func attributesFromEntry(entry protocol.StyleEntry) attr.Attributes {
	var a attr.Attributes
	a.SetBold(entry.AttrFlags&protocol.AttrBold != 0)
	a.SetUnderline(entry.AttrFlags&protocol.AttrUnderline != 0)
	a.SetInverse(entry.AttrFlags&protocol.AttrReverse != 0)
	a.SetBlink(entry.AttrFlags&protocol.AttrBlink != 0)
	a.SetDim(entry.AttrFlags&protocol.AttrDim != 0)
	a.SetItalic(entry.AttrFlags&protocol.AttrItalic != 0)
	a.SetInvisible(entry.AttrFlags&protocol.AttrInvisible != 0)

	a.SetFgMode(colorModeFromWire(entry.FgModel))
	a.SetFg(wireColorValue(entry.FgModel, entry.FgValue))
	a.SetBgMode(colorModeFromWire(entry.BgModel))
	a.SetBg(wireColorValue(entry.BgModel, entry.BgValue))
	return a
}

func colorModeFromWire(m protocol.ColorModel) attr.ColorMode {
	switch m {
	case protocol.ColorModelANSI16:
		return attr.ColorModeP16
	case protocol.ColorModelANSI256:
		return attr.ColorModeP256
	case protocol.ColorModelRGB:
		return attr.ColorModeRGB
	default:
		return attr.ColorModeDefault
	}
}

func wireColorValue(m protocol.ColorModel, value uint32) uint32 {
	if m == protocol.ColorModelRGB {
		r := uint8(value >> 16)
		g := uint8(value >> 8)
		b := uint8(value)
		return attr.ToRGB(r, g, b)
	}
	return value
}

func trimRightSpaces(s string) string {
	runes := []rune(s)
	end := len(runes)
	for end > 0 && runes[end-1] == ' ' {
		end--
	}
	return string(runes[:end])
}
