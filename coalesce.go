package mem

// coalesce merges bp, a just-freed block, with any free neighbours and
// inserts the resulting block into its class's free list. bp's header and
// footer must already be written as (size, free) before calling coalesce.
// Returns the payload pointer of the (possibly merged) block, which may
// differ from bp when the previous neighbour absorbed it.
//
// The epilogue carries allocated=true and size=0, so treating it through
// the ordinary isAllocated/blockSize path makes the right-edge case fall
// out of the same four-way switch without special-casing heap end.
func (h heapView) coalesce(bp uintptr) uintptr {
	size := h.blockSize(bp)
	prev := h.prevBp(bp)
	next := nextBp(bp, size)

	prevAlloc := h.isAllocated(prev)
	nextAlloc := h.isAllocated(next)

	switch {
	case prevAlloc && nextAlloc:
		h.listInsert(bp, size)
		return bp

	case prevAlloc && !nextAlloc:
		nextSize := h.blockSize(next)
		h.listDelete(next, nextSize)
		size += nextSize
		h.writeTags(bp, size, false)
		h.listInsert(bp, size)
		return bp

	case !prevAlloc && nextAlloc:
		prevSize := h.blockSize(prev)
		h.listDelete(prev, prevSize)
		size += prevSize
		h.writeTags(prev, size, false)
		h.listInsert(prev, size)
		return prev

	default:
		prevSize := h.blockSize(prev)
		nextSize := h.blockSize(next)
		h.listDelete(prev, prevSize)
		h.listDelete(next, nextSize)
		size += prevSize + nextSize
		h.writeTags(prev, size, false)
		h.listInsert(prev, size)
		return prev
	}
}
