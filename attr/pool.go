// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: attr/pool.go
// Summary: Fixed-block allocator over a growable 32-bit word array.
// Notes: Tree code reads and writes node fields by array[idx+FIELD]; the
//        offsets below must stay in lockstep with rbtree.go.

package attr

const nodeSize = 7

const (
	fieldColor = 0
	fieldLeft  = 1
	fieldRight = 2
	fieldFlags = 3
	fieldFG    = 4
	fieldBG    = 5
	fieldRef   = 6
)

const (
	colorBlack uint32 = 0
	colorRed   uint32 = 1
)

// NilIndex is the reserved word-index meaning "no node". It is never
// allocated; its backing words stay zero for the life of the pool.
const NilIndex uint32 = 0

// FakeRootIndex is a permanently reserved node used by the tree as a false
// root during top-down insert/remove, so rotations never need to special
// case the real root. It is never handed out by Allocate and never freed.
const FakeRootIndex uint32 = nodeSize

// Pool is a fixed-block allocator over a contiguous array of 32-bit words.
// Every live node occupies a 7-word block at a word-aligned offset; freed
// blocks are threaded through an intrusive singly-linked free list whose
// head is the first word of each free block.
type Pool struct {
	words    []uint32
	maxWords int
	freeHead uint32
}

// NewPool allocates a pool with room for initialNodes live nodes, growing
// (by doubling) up to maxNodes as needed. Two additional blocks are
// reserved internally for NilIndex and FakeRootIndex.
func NewPool(initialNodes, maxNodes int) *Pool {
	if initialNodes < 1 {
		initialNodes = 1
	}
	if maxNodes < initialNodes {
		maxNodes = initialNodes
	}
	p := &Pool{
		maxWords: (maxNodes + 2) * nodeSize,
	}
	p.words = make([]uint32, (initialNodes+2)*nodeSize)
	p.linkFreeRange(2*nodeSize, len(p.words))
	return p
}

// linkFreeRange threads words[from:to) (stepping by nodeSize) onto the
// front of the free list, in ascending index order.
func (p *Pool) linkFreeRange(from, to int) {
	for i := to - nodeSize; i >= from; i -= nodeSize {
		p.words[i] = p.freeHead
		p.freeHead = uint32(i)
	}
}

// Allocate returns a word-index to a zeroed 7-word block. It grows the
// backing array (doubling, bounded by the configured max) when the free
// list is empty, and fails with ErrOutOfMemory once the max is reached.
func (p *Pool) Allocate() (uint32, error) {
	if p.freeHead == NilIndex {
		if !p.grow() {
			return 0, ErrOutOfMemory
		}
	}
	idx := p.freeHead
	p.freeHead = p.words[idx]
	for i := 0; i < nodeSize; i++ {
		p.words[int(idx)+i] = 0
	}
	return idx, nil
}

func (p *Pool) grow() bool {
	oldLen := len(p.words)
	if oldLen >= p.maxWords {
		return false
	}
	newLen := oldLen * 2
	if newLen > p.maxWords {
		newLen = p.maxWords
	}
	if newLen <= oldLen {
		return false
	}
	grown := make([]uint32, newLen)
	copy(grown, p.words)
	p.words = grown
	p.linkFreeRange(oldLen, newLen)
	return true
}

// Free pushes idx back onto the free list. Behavior is undefined if idx
// was not previously allocated or is already free.
func (p *Pool) Free(idx uint32) {
	p.words[idx] = p.freeHead
	p.freeHead = idx
}

func (p *Pool) Color(idx uint32) uint32     { return p.words[int(idx)+fieldColor] }
func (p *Pool) SetColor(idx, v uint32)      { p.words[int(idx)+fieldColor] = v }
func (p *Pool) Left(idx uint32) uint32      { return p.words[int(idx)+fieldLeft] }
func (p *Pool) SetLeft(idx, v uint32)       { p.words[int(idx)+fieldLeft] = v }
func (p *Pool) Right(idx uint32) uint32     { return p.words[int(idx)+fieldRight] }
func (p *Pool) SetRight(idx, v uint32)      { p.words[int(idx)+fieldRight] = v }
func (p *Pool) Flags(idx uint32) uint32     { return p.words[int(idx)+fieldFlags] }
func (p *Pool) SetFlags(idx, v uint32)      { p.words[int(idx)+fieldFlags] = v }
func (p *Pool) FG(idx uint32) uint32        { return p.words[int(idx)+fieldFG] }
func (p *Pool) SetFG(idx, v uint32)         { p.words[int(idx)+fieldFG] = v }
func (p *Pool) BG(idx uint32) uint32        { return p.words[int(idx)+fieldBG] }
func (p *Pool) SetBG(idx, v uint32)         { p.words[int(idx)+fieldBG] = v }
func (p *Pool) Ref(idx uint32) uint32       { return p.words[int(idx)+fieldRef] }
func (p *Pool) SetRef(idx, v uint32)        { p.words[int(idx)+fieldRef] = v }

func (p *Pool) isRed(idx uint32) bool {
	return idx != NilIndex && p.Color(idx) == colorRed
}

func (p *Pool) child(idx uint32, dir int) uint32 {
	if dir == 0 {
		return p.Left(idx)
	}
	return p.Right(idx)
}

func (p *Pool) setChild(idx uint32, dir int, v uint32) {
	if dir == 0 {
		p.SetLeft(idx, v)
	} else {
		p.SetRight(idx, v)
	}
}

func (p *Pool) rotateSingle(root uint32, dir int) uint32 {
	save := p.child(root, 1-dir)
	p.setChild(root, 1-dir, p.child(save, dir))
	p.setChild(save, dir, root)
	p.SetColor(root, colorRed)
	p.SetColor(save, colorBlack)
	return save
}

func (p *Pool) rotateDouble(root uint32, dir int) uint32 {
	save := p.rotateSingle(p.child(root, 1-dir), 1-dir)
	p.setChild(root, 1-dir, save)
	return p.rotateSingle(root, dir)
}
