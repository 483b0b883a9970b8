package mem

import "fmt"

// Check runs the whole-heap consistency audit of spec §4.8. It is a
// debug-time tool, not part of the allocator contract: a violation is a
// programming error in the allocator itself (or evidence of corruption by
// an out-of-bounds client write), so Check panics naming the offending
// address rather than returning an error — per spec §7, corruption is a
// fatal condition, not a recoverable one.
//
// A successful audit returns true.
func (a *Allocator) Check() bool {
	lo, hi := a.view.lo(), a.view.hi()

	base := lo + uintptr(listTableBytes)
	prologueHeader := base + wordSize
	if tag := a.view.word(prologueHeader); decodeSize(tag) != prologueSize || !decodeAlloc(tag) {
		panic(fmt.Sprintf("mem: check: malformed prologue at %#x", prologueHeader))
	}

	blockFree := 0
	// The prologue's own payload pointer is prologueHeader+wordSize (its
	// footer, at prologueHeader+wordSize, is the whole of its zero-length
	// payload's footer); the first real block's payload pointer follows it
	// by prologueSize bytes, i.e. two more words.
	bp := prologueHeader + wordSize + wordSize + wordSize
	prevWasFree := false
	for {
		size := a.view.blockSize(bp)
		if size == 0 {
			// epilogue
			if !a.view.isAllocated(bp) {
				panic(fmt.Sprintf("mem: check: unallocated epilogue at %#x", bp))
			}
			if headerAddr(bp) != hi-wordSize {
				panic(fmt.Sprintf("mem: check: epilogue at %#x, want %#x", headerAddr(bp), hi-wordSize))
			}
			break
		}

		if (bp-lo)%dwordSize != 0 {
			panic(fmt.Sprintf("mem: check: block at %#x is not 8-byte aligned", bp))
		}
		if size < minBlockSize || size%dwordSize != 0 {
			panic(fmt.Sprintf("mem: check: block at %#x has invalid size %d", bp, size))
		}

		hTag := a.view.word(headerAddr(bp))
		fTag := a.view.word(footerAddr(bp, size))
		if hTag != fTag {
			panic(fmt.Sprintf("mem: check: header/footer mismatch at %#x", bp))
		}

		free := !decodeAlloc(hTag)
		if free {
			if prevWasFree {
				panic(fmt.Sprintf("mem: check: adjacent free blocks ending at %#x", bp))
			}
			blockFree++
		}
		prevWasFree = free

		bp = nextBp(bp, size)
		if bp >= hi {
			panic(fmt.Sprintf("mem: check: block walk ran past heap end at %#x", bp))
		}
	}

	listFree := 0
	for class := 0; class < numClasses; class++ {
		var pred uintptr
		for n := a.view.listHead(class); n != 0; n = a.view.succ(n) {
			if n < lo || n >= hi {
				panic(fmt.Sprintf("mem: check: free list pointer %#x outside heap", n))
			}
			if a.view.isAllocated(n) {
				panic(fmt.Sprintf("mem: check: allocated block in free list at %#x", n))
			}
			if classOf(a.view.blockSize(n)) != class {
				panic(fmt.Sprintf("mem: check: block at %#x filed in wrong class %d", n, class))
			}
			if a.view.pred(n) != pred {
				panic(fmt.Sprintf("mem: check: broken pred chain at %#x", n))
			}
			pred = n
			listFree++
		}
	}

	if blockFree != listFree {
		panic(fmt.Sprintf("mem: check: %d free blocks by heap walk, %d by list walk", blockFree, listFree))
	}

	return true
}
