// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"testing"

	"texelation/protocol"
)

func TestBufferCacheApplyDelta(t *testing.T) {
	cache := NewBufferCache()
	var id [16]byte
	id[0] = 1

	delta := protocol.BufferDelta{
		PaneID:   id,
		Revision: 1,
		Rows: []protocol.RowDelta{
			{Row: 0, Spans: []protocol.CellSpan{{StartCol: 0, Text: "Hello", StyleIndex: 0}}},
			{Row: 1, Spans: []protocol.CellSpan{{StartCol: 2, Text: "World", StyleIndex: 0}}},
		},
	}

	state := cache.ApplyDelta(delta)
	if state == nil {
		t.Fatalf("expected pane state")
	}
	rows := state.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0] != "Hello" {
		t.Fatalf("unexpected row0 %q", rows[0])
	}
	if rows[1] != "  World" {
		t.Fatalf("unexpected row1 %q", rows[1])
	}

	delta2 := protocol.BufferDelta{
		PaneID:   id,
		Revision: 2,
		Rows:     []protocol.RowDelta{{Row: 0, Spans: []protocol.CellSpan{{StartCol: 5, Text: "!", StyleIndex: 0}}}},
	}
	state = cache.ApplyDelta(delta2)
	rows = state.Rows()
	if rows[0] != "Hello!" {
		t.Fatalf("expected Hello!, got %q", rows[0])
	}
}

func TestBufferCacheApplyDeltaStaleRevisionIgnored(t *testing.T) {
	cache := NewBufferCache()
	var id [16]byte
	id[0] = 2

	first := protocol.BufferDelta{
		PaneID:   id,
		Revision: 5,
		Rows:     []protocol.RowDelta{{Row: 0, Spans: []protocol.CellSpan{{StartCol: 0, Text: "world", StyleIndex: 0}}}},
	}
	state := cache.ApplyDelta(first)
	if state.Revision != 5 {
		t.Fatalf("expected revision 5, got %d", state.Revision)
	}

	stale := protocol.BufferDelta{
		PaneID:   id,
		Revision: 4,
		Rows:     []protocol.RowDelta{{Row: 0, Spans: []protocol.CellSpan{{StartCol: 0, Text: "stale", StyleIndex: 0}}}},
	}
	cache.ApplyDelta(stale)
	if got := state.Rows()[0]; got != "world" {
		t.Fatalf("stale delta should be ignored, got %q", got)
	}
}

func TestBufferCacheApplyDeltaReleasesOverwrittenStyles(t *testing.T) {
	cache := NewBufferCache()
	var id [16]byte
	id[0] = 3

	rgb := protocol.StyleEntry{FgModel: protocol.ColorModelRGB, FgValue: 0x112233}
	delta := protocol.BufferDelta{
		PaneID:   id,
		Revision: 1,
		Styles:   []protocol.StyleEntry{rgb},
		Rows:     []protocol.RowDelta{{Row: 0, Spans: []protocol.CellSpan{{StartCol: 0, Text: "hi", StyleIndex: 0}}}},
	}
	cache.ApplyDelta(delta)
	if cache.storage.TreeSize() != 1 {
		t.Fatalf("expected one interned node after first delta, got %d", cache.storage.TreeSize())
	}

	delta2 := protocol.BufferDelta{
		PaneID:   id,
		Revision: 2,
		Rows:     []protocol.RowDelta{{Row: 0, Spans: []protocol.CellSpan{{StartCol: 0, Text: "no", StyleIndex: 0}}}},
	}
	cache.ApplyDelta(delta2)
	if cache.storage.TreeSize() != 0 {
		t.Fatalf("expected overwritten RGB style released, tree size %d", cache.storage.TreeSize())
	}
}

func TestBufferCacheAllPanesOrdersByUpdate(t *testing.T) {
	cache := NewBufferCache()
	var id1, id2 [16]byte
	id1[0], id2[0] = 1, 2

	cache.ApplyDelta(protocol.BufferDelta{PaneID: id1, Revision: 1, Rows: []protocol.RowDelta{{Row: 0, Spans: []protocol.CellSpan{{Text: "a"}}}}})
	cache.ApplyDelta(protocol.BufferDelta{PaneID: id2, Revision: 1, Rows: []protocol.RowDelta{{Row: 0, Spans: []protocol.CellSpan{{Text: "b"}}}}})

	panes := cache.AllPanes()
	if len(panes) != 2 || panes[1].ID != id2 {
		t.Fatalf("expected id2 most recently updated, got %+v", panes)
	}
	if got := cache.LatestPane(); got.ID != id2 {
		t.Fatalf("expected LatestPane id2, got %v", got.ID)
	}
}
