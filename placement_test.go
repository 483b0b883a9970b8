package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFitExactMatchReturnsImmediately(t *testing.T) {
	a := newAllocator(t)
	bps := freelistFixture(t, a, 2, 32)
	for _, bp := range bps {
		a.view.listInsert(bp, 32)
	}

	got := a.view.findFit(32)
	require.NotZero(t, got)
	assert.Equal(t, bps[1], got, "LIFO head is an exact match, returned without scanning further")
}

func TestFindFitEscalatesToFirstClassWithAFit(t *testing.T) {
	// Free blocks of 96 bytes (class 10) and 64 bytes (class 6); a 56-byte
	// request finds its own class empty and takes the 64-byte block from the
	// first larger class that holds a fit.
	a := newAllocator(t)
	bps := freelistFixture(t, a, 1, 96)
	big, small := bps[0], uintptr(0)
	a.view.writeTags(big, 96, false)

	rest := nextBp(big, 96)
	a.view.writeTags(rest, 64, false)
	small = rest

	a.view.listInsert(big, 96)   // class 10
	a.view.listInsert(small, 64) // class 6

	got := a.view.findFit(56) // class 5 is empty; class 6 is the first non-empty one and its 64-byte block fits
	assert.Equal(t, small, got)
}

func TestPlaceSplitsWhenRemainderIsBigEnough(t *testing.T) {
	a := newAllocator(t)
	bps := freelistFixture(t, a, 1, 96)
	bp := bps[0]
	a.view.listInsert(bp, 96)

	a.view.place(bp, 32)
	assert.True(t, a.view.isAllocated(bp))
	assert.Equal(t, 32, a.view.blockSize(bp))

	rem := nextBp(bp, 32)
	assert.False(t, a.view.isAllocated(rem))
	assert.Equal(t, 64, a.view.blockSize(rem))
	assert.Equal(t, classOf(64), classOf(a.view.blockSize(rem)))
}

func TestPlaceConsumesWholeBlockWhenRemainderTooSmall(t *testing.T) {
	// A free block exactly 8 bytes larger than asize (one short of the
	// 16-byte minimum split remainder) must be consumed whole.
	a := newAllocator(t)
	bps := freelistFixture(t, a, 1, 40)
	bp := bps[0]
	a.view.listInsert(bp, 40)

	a.view.place(bp, 32) // remainder would be 8, below minBlockSize
	assert.True(t, a.view.isAllocated(bp))
	assert.Equal(t, 40, a.view.blockSize(bp), "whole block consumed, no split")
}
