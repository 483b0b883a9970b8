package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freelistFixture carves n adjacent free blocks of size `size` out
// of a fresh allocator's initial extension, bypassing the public API so the
// blocks are never inserted into the list by anything but the test itself.
func freelistFixture(t *testing.T, a *Allocator, n int, size int) []uintptr {
	t.Helper()
	require.True(t, size >= minBlockSize && size%dwordSize == 0)

	bp := firstFreeBlock(t, a)
	bigSize := a.view.blockSize(bp)
	require.GreaterOrEqual(t, bigSize, n*size)
	a.view.listDelete(bp, bigSize)

	var bps []uintptr
	cur := bp
	for i := 0; i < n; i++ {
		a.view.writeTags(cur, size, false)
		bps = append(bps, cur)
		cur = nextBp(cur, size)
	}
	return bps
}

func firstFreeBlock(t *testing.T, a *Allocator) uintptr {
	t.Helper()
	for class := 0; class < numClasses; class++ {
		if h := a.view.listHead(class); h != 0 {
			return h
		}
	}
	t.Fatal("no free block found")
	return 0
}

func TestListInsertIsLIFO(t *testing.T) {
	a := newAllocator(t)
	bps := freelistFixture(t, a, 3, 32)
	for _, bp := range bps {
		a.view.listInsert(bp, 32)
	}

	class := classOf(32)
	head := a.view.listHead(class)
	assert.Equal(t, bps[2], head, "most recently inserted block is the head")
	assert.Equal(t, uintptr(0), a.view.pred(head))
	next := a.view.succ(head)
	assert.Equal(t, bps[1], next)
	assert.Equal(t, head, a.view.pred(next))
}

func TestListDeleteStitchesNeighbours(t *testing.T) {
	a := newAllocator(t)
	bps := freelistFixture(t, a, 3, 32)
	for _, bp := range bps {
		a.view.listInsert(bp, 32)
	}

	class := classOf(32)
	middle := bps[1] // inserted second, so sits between head and tail
	a.view.listDelete(middle, 32)

	head := a.view.listHead(class)
	require.Equal(t, bps[2], head)
	assert.Equal(t, bps[0], a.view.succ(head))
	assert.Equal(t, head, a.view.pred(bps[0]))
}

func TestListDeleteAtHeadUpdatesClassHead(t *testing.T) {
	a := newAllocator(t)
	bps := freelistFixture(t, a, 2, 32)
	for _, bp := range bps {
		a.view.listInsert(bp, 32)
	}

	class := classOf(32)
	head := a.view.listHead(class)
	a.view.listDelete(head, 32)
	assert.Equal(t, bps[0], a.view.listHead(class))
	assert.Equal(t, uintptr(0), a.view.pred(bps[0]))
}
