package mem

import (
	"unsafe"

	"github.com/go-heaplab/heaplab/heapfile"
)

// heapView is the narrow unsafe boundary between the allocator's typed
// block operations and the raw bytes a heapfile.Provider hands out. Every
// header, footer, list-table and link word is read and written through
// word and setWord; only client payload bytes are reached otherwise, via
// the slices and copies built in alloc.go (bytesAt, copyPayload).
type heapView struct {
	p heapfile.Provider
}

func (h heapView) lo() uintptr { return h.p.Lo() }
func (h heapView) hi() uintptr { return h.p.Hi() }

func (h heapView) word(addr uintptr) uint32 {
	return *(*uint32)(unsafe.Pointer(addr))
}

func (h heapView) setWord(addr uintptr, v uint32) {
	*(*uint32)(unsafe.Pointer(addr)) = v
}

// offset converts an absolute address into a 4-byte value suitable for
// storage in a list-table head or a free-list link: an offset from lo(), with
// 0 reserved to mean "no block". This is the relative-pointer trick the
// design notes call for — a 64-bit absolute address cannot be stored in the
// word-sized link slots the block layout allots it.
func (h heapView) offset(addr uintptr) uint32 {
	if addr == 0 {
		return 0
	}
	return uint32(addr - h.lo())
}

func (h heapView) fromOffset(off uint32) uintptr {
	if off == 0 {
		return 0
	}
	return h.lo() + uintptr(off)
}
