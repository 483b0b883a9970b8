package mem

// The segregated list table lives at the very base of the heap: numClasses
// consecutive words, each either 0 (empty) or an offset (see heapView.pred)
// to the head of that class's doubly linked free list.

func (h heapView) listHeadSlot(class int) uintptr { return h.lo() + uintptr(class*wordSize) }

func (h heapView) listHead(class int) uintptr {
	return h.fromOffset(h.word(h.listHeadSlot(class)))
}

func (h heapView) setListHead(class int, bp uintptr) {
	h.setWord(h.listHeadSlot(class), h.offset(bp))
}

// listInsert adds bp, a free block of the given size, to the head of its
// class's list (LIFO): new free blocks become the head so that recently
// freed, cache-hot blocks are found first (spec §4.3).
func (h heapView) listInsert(bp uintptr, size int) {
	class := classOf(size)
	head := h.listHead(class)
	h.setSucc(bp, head)
	h.setPred(bp, 0)
	if head != 0 {
		h.setPred(head, bp)
	}
	h.setListHead(class, bp)
}

// listDelete removes bp, a free block of the given size, from its class's
// list, stitching its neighbours past it.
func (h heapView) listDelete(bp uintptr, size int) {
	class := classOf(size)
	pred := h.pred(bp)
	succ := h.succ(bp)
	if pred != 0 {
		h.setSucc(pred, succ)
	} else {
		h.setListHead(class, succ)
	}
	if succ != 0 {
		h.setPred(succ, pred)
	}
}
