// Package mem implements a general-purpose dynamic memory allocator over a
// single contiguous, monotonically extendable region of bytes supplied by a
// heapfile.Provider.
//
// The design follows github.com/cznic/memory in spirit — an Allocator value
// whose zero value is not ready for use (unlike the teacher's, this one
// needs a Provider) but which otherwise owns no state beyond what lives in
// the heap itself and a handle to its provider — while replacing the
// teacher's power-of-two page-and-slot layout with a segregated
// boundary-tag free list: 20 size classes, best-fit-within-class placement,
// immediate coalescing, and buffer-retaining realloc policies.
package mem

const (
	wordSize  = 4 // bytes; the allocator's unit of header/footer/link storage.
	dwordSize = 2 * wordSize

	// minBlockSize is 4 (header) + 8 (pred/succ link space) + 4 (footer).
	minBlockSize = 16

	numClasses = 20

	// fineClassCount is the number of 8-byte-step classes covering sizes
	// 16..128 inclusive (class indices 0..13).
	fineClassCount  = 14
	fineClassTop    = 128
	fineClassStep   = 8
	fineClassFloor  = 16
	firstGeoClass   = fineClassCount // class index 14
	initHeapWords   = 4096 / wordSize
	defaultGrowSize = 4096

	allocBit = 1
)

// listTableBytes is the size in bytes of the 20-entry segregated list
// table persisted at the base of the heap.
const listTableBytes = numClasses * wordSize

// preambleBytes is the four-word pad/prologue-header/prologue-footer/
// epilogue-header region written immediately after the list table.
const preambleBytes = 4 * wordSize

// prologueSize is the total size in bytes of the synthetic prologue block.
const prologueSize = dwordSize
