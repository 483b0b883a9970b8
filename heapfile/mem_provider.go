package heapfile

import (
	"fmt"
	"unsafe"
)

// MemProvider is an in-process Provider backed by a single pre-reserved Go
// byte slice. It never reallocates its backing array, so addresses handed
// out by Extend stay valid for the provider's whole lifetime — the same
// stability guarantee github.com/cznic/exp/lldb's MemFiler gives its
// callers, here applied to a break-pointer heap instead of a paged file.
//
// MemProvider exists for tests: it lets mem.Allocator be exercised without
// a real OS memory mapping.
type MemProvider struct {
	buf []byte
	brk int
}

// NewMemProvider reserves capacity bytes and returns a Provider with a heap
// of initial size zero. capacity bounds how far Extend can ever grow the
// heap; exceeding it returns ErrNoSpace, mirroring the real sbrk-style
// provider's failure mode when the OS refuses to grow the mapping.
func NewMemProvider(capacity int) *MemProvider {
	if capacity <= 0 {
		panic("heapfile: non-positive MemProvider capacity")
	}
	return &MemProvider{buf: make([]byte, capacity)}
}

func (p *MemProvider) base() uintptr { return uintptr(unsafe.Pointer(&p.buf[0])) }

// Lo implements Provider.
func (p *MemProvider) Lo() uintptr { return p.base() }

// Hi implements Provider.
func (p *MemProvider) Hi() uintptr { return p.base() + uintptr(p.brk) }

// Extend implements Provider.
func (p *MemProvider) Extend(n int) (uintptr, error) {
	if n < 0 {
		panic("heapfile: negative Extend size")
	}
	if p.brk+n > len(p.buf) {
		return 0, fmt.Errorf("%w: brk %d + %d > capacity %d", ErrNoSpace, p.brk, n, len(p.buf))
	}

	old := p.Hi()
	p.brk += n
	return old, nil
}

// Cap reports the provider's total reserved capacity in bytes.
func (p *MemProvider) Cap() int { return len(p.buf) }
