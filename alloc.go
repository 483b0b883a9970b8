package mem

import (
	"reflect"
	"unsafe"

	"github.com/go-heaplab/heaplab/heapfile"
	"github.com/go-heaplab/heaplab/trace"
)

// Allocator allocates and frees memory out of a single heap owned by a
// heapfile.Provider. Unlike the teacher's Allocator, whose zero value is
// ready for use because it lazily mmaps its own pages, this Allocator needs
// an explicit Provider — construct one with New and call Init once before
// any other method, per spec §6.
type Allocator struct {
	provider heapfile.Provider
	view     heapView

	// Logger, if set, receives a trace line for every Init, Malloc, Calloc,
	// Free and Realloc call, the way the teacher's `if trace { ... }` blocks
	// do when built with tracing enabled. The Unsafe* methods, UsableSize
	// and Check are not traced.
	Logger trace.Logger

	// GrowSize is the minimum number of bytes requested from the
	// provider when find_fit comes up empty (spec §4.7: extend by
	// max(asize, 4096)). Left at its zero value it defaults to 4096.
	GrowSize int

	initialized bool
}

// New returns an Allocator over p. Its Logger starts as trace.Nop — the
// zero value of the Logger field already behaves this way, New just makes
// the default explicit. Call Init before any other method.
func New(p heapfile.Provider) *Allocator {
	return &Allocator{provider: p, view: heapView{p}, Logger: trace.Nop}
}

func (a *Allocator) logf(format string, args ...interface{}) {
	logger := a.Logger
	if logger == nil {
		logger = trace.Nop
	}
	logger.Tracef(format, args...)
}

// mustInit panics if Init has not yet succeeded against this Allocator. Per
// spec §6, calling Malloc/Free/Realloc before Init is a programming error,
// not a recoverable condition — the heap's list table and prologue would
// not exist yet for any of the block-walking code in heapview.go/tags.go to
// read.
func (a *Allocator) mustInit() {
	if !a.initialized {
		panic("mem: use of an uninitialized Allocator; call Init first")
	}
}

func (a *Allocator) growSize() int {
	if a.GrowSize > 0 {
		return a.GrowSize
	}
	return defaultGrowSize
}

// if n%m != 0 { n += m-n%m }. m must be a power of 2.
func roundup(n, m int) int { return (n + m - 1) &^ (m - 1) }

func asizeFor(size int) int {
	a := roundup(size+dwordSize, dwordSize)
	if a < minBlockSize {
		a = minBlockSize
	}
	return a
}

// Init prepares a fresh heap: the segregated list table, the prologue and
// initial epilogue, and a priming 4096-byte extension (spec §4.7). It is
// the first call made against a freshly constructed Allocator; calling it
// again against a Provider whose heap is still at its initial zero size is
// permitted and simply re-primes the heap.
func (a *Allocator) Init() (err error) {
	defer func() { a.logf("Init() %v", err) }()

	tableSize := listTableBytes + preambleBytes
	if _, err := a.provider.Extend(tableSize); err != nil {
		return &ErrOutOfMemory{Requested: tableSize, Err: err}
	}

	lo := a.view.lo()
	for class := 0; class < numClasses; class++ {
		a.view.setWord(lo+uintptr(class*wordSize), 0)
	}

	base := lo + uintptr(listTableBytes)
	a.view.setWord(base, 0) // pad word
	prologueHeader := base + wordSize
	a.view.setWord(prologueHeader, encodeTag(prologueSize, true))
	prologueFooter := prologueHeader + wordSize
	a.view.setWord(prologueFooter, encodeTag(prologueSize, true))
	epilogue := prologueFooter + wordSize
	a.view.setWord(epilogue, encodeTag(0, true))

	if _, err := a.extendHeap(initHeapWords); err != nil {
		return err
	}

	a.initialized = true
	return nil
}

// extendHeap grows the heap by round-up-to-even(words) words, writes the
// new region's header/footer as one free block, plants a fresh epilogue at
// the new tail, and coalesces with whatever free block used to abut the
// old tail (spec §4.6).
func (a *Allocator) extendHeap(words int) (uintptr, error) {
	if words%2 != 0 {
		words++
	}
	size := words * wordSize

	bp, err := a.provider.Extend(size)
	if err != nil {
		return 0, &ErrOutOfMemory{Requested: size, Err: err}
	}

	a.view.writeTags(bp, size, false)
	newEpilogue := bp + uintptr(size) - wordSize
	a.view.setWord(newEpilogue, encodeTag(0, true))
	return a.view.coalesce(bp), nil
}

// mallocBp is the pointer-level core of Malloc: round the request, find a
// fit (escalating to a fresh heap extension if none exists), then place.
func (a *Allocator) mallocBp(size int) (uintptr, error) {
	a.mustInit()
	if size < 0 {
		panic("mem: negative malloc size")
	}
	if size == 0 {
		return 0, nil
	}

	asize := asizeFor(size)
	bp := a.view.findFit(asize)
	if bp == 0 {
		words := asize
		if g := a.growSize(); g > words {
			words = g
		}
		words /= wordSize
		newBp, err := a.extendHeap(words)
		if err != nil {
			return 0, err
		}
		bp = newBp
	}

	a.view.place(bp, asize)
	return bp, nil
}

func (a *Allocator) freeBp(bp uintptr) {
	a.mustInit()
	if bp == 0 {
		return
	}
	size := a.view.blockSize(bp)
	a.view.writeTags(bp, size, false)
	a.view.coalesce(bp)
}

// reallocBp implements the four realloc policies of spec §4.7 in order:
// shrink/equal in place (no split, buffer retained), absorb a following
// free block (no split), extend at the heap tail when bp is the last
// block, and finally malloc+copy+free.
func (a *Allocator) reallocBp(bp uintptr, size int) (uintptr, error) {
	a.mustInit()
	if bp == 0 {
		return a.mallocBp(size)
	}
	if size == 0 {
		a.freeBp(bp)
		return 0, nil
	}

	newSize := asizeFor(size)
	oldSize := a.view.blockSize(bp)

	if newSize <= oldSize {
		return bp, nil
	}

	next := nextBp(bp, oldSize)
	if !a.view.isAllocated(next) {
		nextSize := a.view.blockSize(next)
		if oldSize+nextSize >= newSize {
			a.view.listDelete(next, nextSize)
			a.view.writeTags(bp, oldSize+nextSize, true)
			return bp, nil
		}
	} else if a.view.blockSize(next) == 0 {
		growBy := newSize - oldSize
		if _, err := a.provider.Extend(growBy); err != nil {
			return 0, &ErrOutOfMemory{Requested: growBy, Err: err}
		}
		a.view.writeTags(bp, newSize, true)
		newEpilogue := bp + uintptr(newSize) - wordSize
		a.view.setWord(newEpilogue, encodeTag(0, true))
		return bp, nil
	}

	newBp, err := a.mallocBp(size)
	if err != nil {
		return 0, err
	}
	copyPayload(newBp, bp, oldSize-dwordSize)
	a.freeBp(bp)
	return newBp, nil
}

func copyPayload(dst, src uintptr, n int) {
	if n <= 0 {
		return
	}
	d := unsafe.Slice((*byte)(unsafe.Pointer(dst)), n)
	s := unsafe.Slice((*byte)(unsafe.Pointer(src)), n)
	copy(d, s)
}

func (a *Allocator) usableSize(bp uintptr) int {
	if bp == 0 {
		return 0
	}
	return a.view.blockSize(bp) - dwordSize
}

func bytesAt(addr uintptr, ln int) []byte {
	if addr == 0 {
		return nil
	}
	var b []byte
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	sh.Data = addr
	sh.Len = ln
	sh.Cap = ln
	return b
}

func addrOf(b []byte) uintptr {
	b = b[:cap(b)]
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

// ---- public, []byte-returning API --------------------------------------

// Malloc allocates size bytes and returns a byte slice over the allocated
// memory, uninitialized. It returns (nil, nil) for size == 0 and panics for
// size < 0, matching the teacher's Malloc contract.
func (a *Allocator) Malloc(size int) (r []byte, err error) {
	defer func() { a.logf("Malloc(%#x) %p %v", size, addrArg(r), err) }()
	bp, err := a.mallocBp(size)
	if err != nil {
		return nil, err
	}
	return bytesAt(bp, size), nil
}

// Calloc is like Malloc except the allocated memory is zeroed.
func (a *Allocator) Calloc(size int) ([]byte, error) {
	b, err := a.Malloc(size)
	if err != nil || b == nil {
		return b, err
	}
	for i := range b {
		b[i] = 0
	}
	return b, nil
}

// Free deallocates memory acquired from Malloc, Calloc, or Realloc. Freeing
// nil is a no-op.
func (a *Allocator) Free(b []byte) (err error) {
	defer func() { a.logf("Free(%p) %v", addrArg(b), err) }()
	a.freeBp(addrOf(b))
	return nil
}

// Realloc changes the size of the backing block of b to size bytes,
// following the in-place policies of spec §4.7 before falling back to
// malloc+copy+free. If b's backing array is of zero size this is
// equivalent to Malloc(size); if size == 0 it is equivalent to Free(b).
func (a *Allocator) Realloc(b []byte, size int) (r []byte, err error) {
	defer func() { a.logf("Realloc(%p, %#x) %p %v", addrArg(b), size, addrArg(r), err) }()
	bp, err := a.reallocBp(addrOf(b), size)
	if err != nil {
		return nil, err
	}
	return bytesAt(bp, size), nil
}

// UsableSize reports the usable size of the memory block b points into,
// which may be larger than the size originally requested.
func (a *Allocator) UsableSize(b []byte) int { return a.usableSize(addrOf(b)) }

func addrArg(b []byte) *byte {
	if len(b) == 0 {
		return nil
	}
	return &b[0]
}

// ---- unsafe.Pointer-based API, for callers that cannot carry a []byte ---

// UnsafeMalloc is like Malloc except it returns an unsafe.Pointer.
func (a *Allocator) UnsafeMalloc(size int) (unsafe.Pointer, error) {
	bp, err := a.mallocBp(size)
	if err != nil {
		return nil, err
	}
	return unsafe.Pointer(bp), nil
}

// UnsafeCalloc is like Calloc except it returns an unsafe.Pointer.
func (a *Allocator) UnsafeCalloc(size int) (unsafe.Pointer, error) {
	p, err := a.UnsafeMalloc(size)
	if p == nil || err != nil {
		return p, err
	}
	b := unsafe.Slice((*byte)(p), size)
	for i := range b {
		b[i] = 0
	}
	return p, nil
}

// UnsafeFree is like Free except its argument is an unsafe.Pointer acquired
// from UnsafeMalloc, UnsafeCalloc, or UnsafeRealloc.
func (a *Allocator) UnsafeFree(p unsafe.Pointer) error {
	a.freeBp(uintptr(p))
	return nil
}

// UnsafeRealloc is like Realloc except its first argument and result are
// unsafe.Pointer values.
func (a *Allocator) UnsafeRealloc(p unsafe.Pointer, size int) (unsafe.Pointer, error) {
	bp, err := a.reallocBp(uintptr(p), size)
	if err != nil {
		return nil, err
	}
	return unsafe.Pointer(bp), nil
}

// UnsafeUsableSize is like UsableSize except its argument is an
// unsafe.Pointer acquired from UnsafeMalloc, UnsafeCalloc, or UnsafeRealloc.
func (a *Allocator) UnsafeUsableSize(p unsafe.Pointer) int { return a.usableSize(uintptr(p)) }
