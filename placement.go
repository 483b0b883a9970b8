package mem

// findFit implements best-fit within each class, escalating to the next
// class only when the current one holds nothing big enough. A class is
// fully scanned before moving on; the tightest (minimum-surplus) candidate
// within the first class that yields any fit wins, even if a later class
// would have yielded a tighter one. See spec §4.4 and Open Questions in §9.
func (h heapView) findFit(asize int) uintptr {
	for class := classOf(asize); class < numClasses; class++ {
		var best uintptr
		bestDiff := -1
		for bp := h.listHead(class); bp != 0; bp = h.succ(bp) {
			size := h.blockSize(bp)
			if size < asize {
				continue
			}
			diff := size - asize
			if diff == 0 {
				return bp
			}
			if bestDiff == -1 || diff < bestDiff {
				bestDiff = diff
				best = bp
			}
		}
		if best != 0 {
			return best
		}
	}
	return 0
}

// place removes bp from its free list and carves out an asize-byte
// allocated block, splitting off a free remainder when the leftover is at
// least minBlockSize; otherwise the whole block is consumed.
func (h heapView) place(bp uintptr, asize int) {
	size := h.blockSize(bp)
	h.listDelete(bp, size)

	remainder := size - asize
	if remainder >= minBlockSize {
		h.writeTags(bp, asize, true)
		rem := nextBp(bp, asize)
		h.writeTags(rem, remainder, false)
		h.listInsert(rem, remainder)
		return
	}

	h.writeTags(bp, size, true)
}
