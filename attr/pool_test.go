// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package attr

import "testing"

func TestPoolAllocateNeverReturnsNilOrFakeRoot(t *testing.T) {
	p := NewPool(2, 8)
	for i := 0; i < 8; i++ {
		idx, err := p.Allocate()
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		if idx == NilIndex {
			t.Fatalf("Allocate returned NilIndex")
		}
		if idx == FakeRootIndex {
			t.Fatalf("Allocate returned FakeRootIndex")
		}
		if idx%nodeSize != 0 {
			t.Fatalf("Allocate returned non-aligned index %d", idx)
		}
	}
}

func TestPoolAllocateZeroesBlock(t *testing.T) {
	p := NewPool(1, 4)
	idx, err := p.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	p.SetFlags(idx, 0xAA)
	p.SetFG(idx, 0xBB)
	p.Free(idx)

	idx2, err := p.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if p.Flags(idx2) != 0 || p.FG(idx2) != 0 {
		t.Fatalf("reused block was not zeroed")
	}
}

func TestPoolGrowsUntilMax(t *testing.T) {
	p := NewPool(1, 2)
	idx1, err := p.Allocate()
	if err != nil {
		t.Fatalf("first allocate: %v", err)
	}
	idx2, err := p.Allocate()
	if err != nil {
		t.Fatalf("second allocate (should grow): %v", err)
	}
	if idx1 == idx2 {
		t.Fatalf("expected distinct indices")
	}
	if _, err := p.Allocate(); err != ErrOutOfMemory {
		t.Fatalf("expected ErrOutOfMemory at max_nodes, got %v", err)
	}
}

func TestPoolFreeListReuse(t *testing.T) {
	p := NewPool(2, 2)
	a, _ := p.Allocate()
	b, _ := p.Allocate()
	p.Free(a)
	c, err := p.Allocate()
	if err != nil {
		t.Fatalf("Allocate after free: %v", err)
	}
	if c != a {
		t.Fatalf("expected freed block %d to be reused, got %d", a, c)
	}
	_ = b
}

func TestPoolFieldAccessors(t *testing.T) {
	p := NewPool(1, 1)
	idx, _ := p.Allocate()

	p.SetColor(idx, colorRed)
	p.SetLeft(idx, 123)
	p.SetRight(idx, 456)
	p.SetFlags(idx, 789)
	p.SetFG(idx, 0x112233)
	p.SetBG(idx, 0x445566)
	p.SetRef(idx, 7)

	if p.Color(idx) != colorRed || p.Left(idx) != 123 || p.Right(idx) != 456 ||
		p.Flags(idx) != 789 || p.FG(idx) != 0x112233 || p.BG(idx) != 0x445566 || p.Ref(idx) != 7 {
		t.Fatalf("field accessors round-trip failed")
	}
}
