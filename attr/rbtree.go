// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: attr/rbtree.go
// Summary: Iterative top-down red-black tree keyed by (flags, fg, bg),
//          backed by a Pool. Algorithm follows the classic fake-root,
//          sentinel-nil top-down insert/delete scheme (Julienne Walker's
//          "eternallyconfuzzled" tutorial), translated from pointer links
//          to pool word-indices.

package attr

// Tree is a red-black tree of interned (flags, fg, bg) triples. All node
// storage lives in the backing Pool; Tree itself only tracks the live
// root index and node count.
type Tree struct {
	pool *Pool
	root uint32
	size int
}

// NewTree returns an empty tree over pool.
func NewTree(pool *Pool) *Tree {
	return &Tree{pool: pool}
}

// Size returns the number of live nodes.
func (t *Tree) Size() int { return t.size }

// Root returns the word-index of the tree's root, or NilIndex if empty.
func (t *Tree) Root() uint32 { return t.root }

func compareTriple(aFlags, aFg, aBg, bFlags, bFg, bBg uint32) int {
	switch {
	case aFlags != bFlags:
		if aFlags < bFlags {
			return -1
		}
		return 1
	case aFg != bFg:
		if aFg < bFg {
			return -1
		}
		return 1
	case aBg != bBg:
		if aBg < bBg {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Find returns the word-index of the node matching (flags, fg, bg), or
// NilIndex if absent.
func (t *Tree) Find(flags, fg, bg uint32) uint32 {
	pool := t.pool
	idx := t.root
	for idx != NilIndex {
		c := compareTriple(flags, fg, bg, pool.Flags(idx), pool.FG(idx), pool.BG(idx))
		switch {
		case c == 0:
			return idx
		case c < 0:
			idx = pool.Left(idx)
		default:
			idx = pool.Right(idx)
		}
	}
	return NilIndex
}

// Insert returns the word-index of the node matching (flags, fg, bg),
// allocating a fresh node (REF = 0) only if no equal node already exists.
func (t *Tree) Insert(flags, fg, bg uint32) (uint32, error) {
	pool := t.pool

	if t.root == NilIndex {
		idx, err := pool.Allocate()
		if err != nil {
			return 0, err
		}
		pool.SetFlags(idx, flags)
		pool.SetFG(idx, fg)
		pool.SetBG(idx, bg)
		pool.SetColor(idx, colorBlack)
		t.root = idx
		t.size++
		return idx, nil
	}

	head := FakeRootIndex
	pool.SetLeft(head, NilIndex)
	pool.SetRight(head, t.root)

	var g, p uint32 = NilIndex, NilIndex
	tIdx := head
	q := t.root
	dir, last := 0, 0

	for {
		if q == NilIndex {
			newIdx, err := pool.Allocate()
			if err != nil {
				t.root = pool.Right(head)
				if t.root != NilIndex {
					pool.SetColor(t.root, colorBlack)
				}
				return 0, err
			}
			pool.SetFlags(newIdx, flags)
			pool.SetFG(newIdx, fg)
			pool.SetBG(newIdx, bg)
			pool.SetColor(newIdx, colorRed)
			pool.setChild(p, dir, newIdx)
			q = newIdx
			t.size++
		} else if pool.isRed(pool.Left(q)) && pool.isRed(pool.Right(q)) {
			// Color flip.
			pool.SetColor(q, colorRed)
			pool.SetColor(pool.Left(q), colorBlack)
			pool.SetColor(pool.Right(q), colorBlack)
		}

		if pool.isRed(q) && pool.isRed(p) {
			dir2 := 0
			if pool.Right(tIdx) == g {
				dir2 = 1
			}
			if q == pool.child(p, last) {
				pool.setChild(tIdx, dir2, pool.rotateSingle(g, 1-last))
			} else {
				pool.setChild(tIdx, dir2, pool.rotateDouble(g, 1-last))
			}
		}

		c := compareTriple(flags, fg, bg, pool.Flags(q), pool.FG(q), pool.BG(q))
		if c == 0 {
			break
		}

		last = dir
		if c > 0 {
			dir = 1
		} else {
			dir = 0
		}

		if g != NilIndex {
			tIdx = g
		}
		g, p = p, q
		q = pool.child(q, dir)
	}

	t.root = pool.Right(head)
	pool.SetColor(t.root, colorBlack)

	return q, nil
}

// Remove deletes the node matching (flags, fg, bg) if present, returning
// whether a removal occurred. Callers must only remove nodes whose REF is
// already 0 — REF is not consulted here. The matching node's own block is
// the one freed; when its in-order predecessor takes its place, that node
// is relinked into the position, so it keeps its word-index and REF.
func (t *Tree) Remove(flags, fg, bg uint32) bool {
	pool := t.pool
	if t.root == NilIndex {
		return false
	}

	head := FakeRootIndex
	pool.SetLeft(head, NilIndex)
	pool.SetRight(head, t.root)

	var g, p uint32 = NilIndex, NilIndex
	q := head
	dir := 1
	f := NilIndex

	for pool.child(q, dir) != NilIndex {
		last := dir

		g, p = p, q
		q = pool.child(q, dir)

		c := compareTriple(flags, fg, bg, pool.Flags(q), pool.FG(q), pool.BG(q))
		if c > 0 {
			dir = 1
		} else {
			dir = 0
		}
		if c == 0 {
			f = q
		}

		// Push a red node down.
		if !pool.isRed(q) && !pool.isRed(pool.child(q, dir)) {
			if pool.isRed(pool.child(q, 1-dir)) {
				newP := pool.rotateSingle(q, dir)
				pool.setChild(p, last, newP)
				p = newP
			} else {
				s := pool.child(p, 1-last)
				if s != NilIndex {
					if !pool.isRed(pool.child(s, 1-last)) && !pool.isRed(pool.child(s, last)) {
						// Color flip.
						pool.SetColor(p, colorBlack)
						pool.SetColor(s, colorRed)
						pool.SetColor(q, colorRed)
					} else {
						dir2 := 0
						if pool.Right(g) == p {
							dir2 = 1
						}
						if pool.isRed(pool.child(s, last)) {
							pool.setChild(g, dir2, pool.rotateDouble(p, last))
						} else if pool.isRed(pool.child(s, 1-last)) {
							pool.setChild(g, dir2, pool.rotateSingle(p, last))
						}
						newTop := pool.child(g, dir2)
						pool.SetColor(q, colorRed)
						pool.SetColor(newTop, colorRed)
						pool.SetColor(pool.child(newTop, 0), colorBlack)
						pool.SetColor(pool.child(newTop, 1), colorBlack)
					}
				}
			}
		}
	}

	removed := false
	if f != NilIndex {
		pool.SetFlags(f, pool.Flags(q))
		pool.SetFG(f, pool.FG(q))
		pool.SetBG(f, pool.BG(q))

		replDir := 0
		if pool.Left(q) == NilIndex {
			replDir = 1
		}
		repl := pool.child(q, replDir)

		pSide := 0
		if pool.Right(p) == q {
			pSide = 1
		}
		pool.setChild(p, pSide, repl)

		if f != q {
			// Put q in f's place so identifiers that point at q stay valid.
			fp, fd := head, 1
			for pool.child(fp, fd) != f {
				fp = pool.child(fp, fd)
				fd = (compareTriple(flags, fg, bg, pool.Flags(fp), pool.FG(fp), pool.BG(fp)) + 1) / 2
			}
			pool.SetColor(q, pool.Color(f))
			pool.SetLeft(q, pool.Left(f))
			pool.SetRight(q, pool.Right(f))
			pool.setChild(fp, fd, q)
		}

		pool.Free(f)
		t.size--
		removed = true
	}

	t.root = pool.Right(head)
	if t.root != NilIndex {
		pool.SetColor(t.root, colorBlack)
	}

	return removed
}

// Iterator returns a snapshot of word-indices in ascending (or, if
// reverse, descending) key order. Behavior under concurrent mutation is
// undefined, matching the single-threaded cooperative model this package
// is built for.
func (t *Tree) Iterator(reverse bool) []uint32 {
	pool := t.pool
	out := make([]uint32, 0, t.size)

	var walk func(idx uint32)
	walk = func(idx uint32) {
		if idx == NilIndex {
			return
		}
		if reverse {
			walk(pool.Right(idx))
			out = append(out, idx)
			walk(pool.Left(idx))
		} else {
			walk(pool.Left(idx))
			out = append(out, idx)
			walk(pool.Right(idx))
		}
	}
	walk(t.root)
	return out
}
