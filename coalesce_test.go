package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// coalesceFixture carves three adjacent, individually-tagged blocks out of
// the initial free extension (all currently allocated, so none of them
// interferes with any free list) and returns their payload pointers.
func coalesceFixture(t *testing.T, a *Allocator, sizes ...int) []uintptr {
	t.Helper()
	bp := firstFreeBlock(t, a)
	total := 0
	for _, s := range sizes {
		total += s
	}
	bigSize := a.view.blockSize(bp)
	require.GreaterOrEqual(t, bigSize, total)
	a.view.listDelete(bp, bigSize)

	var bps []uintptr
	cur := bp
	for _, s := range sizes {
		a.view.writeTags(cur, s, true)
		bps = append(bps, cur)
		cur = nextBp(cur, s)
	}
	return bps
}

func TestCoalesceBothNeighboursAllocated(t *testing.T) {
	a := newAllocator(t)
	bps := coalesceFixture(t, a, 32, 32, 32)
	mid := bps[1]

	a.view.writeTags(mid, 32, false)
	got := a.view.coalesce(mid)
	assert.Equal(t, mid, got)
	assert.Equal(t, 32, a.view.blockSize(mid))
	assert.False(t, a.view.isAllocated(mid))
}

func TestCoalesceNextFree(t *testing.T) {
	a := newAllocator(t)
	bps := coalesceFixture(t, a, 32, 32, 32)
	mid, last := bps[1], bps[2]

	a.view.writeTags(last, 32, false)
	a.view.listInsert(last, 32)

	a.view.writeTags(mid, 32, false)
	got := a.view.coalesce(mid)

	assert.Equal(t, mid, got)
	assert.Equal(t, 64, a.view.blockSize(mid))
	assert.Equal(t, classOf(64), classOf(a.view.blockSize(mid)))
}

func TestCoalescePrevFree(t *testing.T) {
	a := newAllocator(t)
	bps := coalesceFixture(t, a, 32, 32, 32)
	first, mid := bps[0], bps[1]

	a.view.writeTags(first, 32, false)
	a.view.listInsert(first, 32)

	a.view.writeTags(mid, 32, false)
	got := a.view.coalesce(mid)

	assert.Equal(t, first, got)
	assert.Equal(t, 64, a.view.blockSize(first))
}

func TestCoalesceBothNeighboursFree(t *testing.T) {
	a := newAllocator(t)
	bps := coalesceFixture(t, a, 32, 32, 32)
	first, mid, last := bps[0], bps[1], bps[2]

	a.view.writeTags(first, 32, false)
	a.view.listInsert(first, 32)
	a.view.writeTags(last, 32, false)
	a.view.listInsert(last, 32)

	a.view.writeTags(mid, 32, false)
	got := a.view.coalesce(mid)

	assert.Equal(t, first, got)
	assert.Equal(t, 96, a.view.blockSize(first))
}
