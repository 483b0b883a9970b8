package mem

// A block is identified by its payload pointer bp: the address of the
// first byte after its header. Given bp, the header lies at bp-wordSize,
// the footer at bp+size-dwordSize, the next block at bp+size, and the
// previous block is found by reading the size out of the word at bp-dwordSize
// (the previous block's footer). See spec §4.1.

func encodeTag(size int, allocated bool) uint32 {
	v := uint32(size)
	if allocated {
		v |= allocBit
	}
	return v
}

func decodeSize(tag uint32) int { return int(tag &^ uint32(dwordSize-1)) }
func decodeAlloc(tag uint32) bool { return tag&allocBit != 0 }

func headerAddr(bp uintptr) uintptr { return bp - wordSize }

func footerAddr(bp uintptr, size int) uintptr { return bp + uintptr(size) - dwordSize }

func nextBp(bp uintptr, size int) uintptr { return bp + uintptr(size) }

// prevBp reads the footer of the block immediately preceding bp and returns
// that block's payload pointer. Never valid to call on the first real block
// without the prologue preceding it — the prologue supplies a well-defined
// footer there, which is its entire purpose (spec §3).
func (h heapView) prevBp(bp uintptr) uintptr {
	prevFooter := bp - dwordSize
	prevSize := decodeSize(h.word(prevFooter))
	return bp - uintptr(prevSize)
}

func (h heapView) blockSize(bp uintptr) int { return decodeSize(h.word(headerAddr(bp))) }

func (h heapView) isAllocated(bp uintptr) bool { return decodeAlloc(h.word(headerAddr(bp))) }

// writeTags writes matching header and footer words encoding (size, allocated).
func (h heapView) writeTags(bp uintptr, size int, allocated bool) {
	tag := encodeTag(size, allocated)
	h.setWord(headerAddr(bp), tag)
	h.setWord(footerAddr(bp, size), tag)
}

// pred and succ read the two link words overlaid on a free block's
// payload: predecessor at bp, successor at bp+wordSize. Never valid on an
// allocated block — those payload bytes belong to the client.
func (h heapView) pred(bp uintptr) uintptr { return h.fromOffset(h.word(bp)) }
func (h heapView) succ(bp uintptr) uintptr { return h.fromOffset(h.word(bp + wordSize)) }

func (h heapView) setPred(bp, predBp uintptr) { h.setWord(bp, h.offset(predBp)) }
func (h heapView) setSucc(bp, succBp uintptr) { h.setWord(bp+wordSize, h.offset(succBp)) }
