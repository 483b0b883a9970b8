package heapfile

import "unsafe"

// MmapProvider is a Provider backed by a single anonymous OS memory
// mapping, reserved in full up front. Extend advances a break pointer
// within the reservation rather than issuing a new mmap per call, which is
// what lets Lo() stay fixed and every address ever handed out remain valid
// for the provider's lifetime.
//
// Grounded on the teacher's own mmap0/unmap pair (mmap_unix.go,
// mmap_windows.go): the same build-tagged syscalls, now wrapped by a
// break-pointer Provider instead of being called once per page as the
// teacher's newPage/newSharedPage did.
type MmapProvider struct {
	buf []byte
	brk int
}

// NewMmapProvider reserves capacity bytes of anonymous memory and returns a
// Provider with a heap of initial size zero.
func NewMmapProvider(capacity int) (*MmapProvider, error) {
	b, err := mmapReserve(capacity)
	if err != nil {
		return nil, err
	}

	return &MmapProvider{buf: b}, nil
}

func (p *MmapProvider) base() uintptr { return uintptr(unsafe.Pointer(&p.buf[0])) }

// Lo implements Provider.
func (p *MmapProvider) Lo() uintptr { return p.base() }

// Hi implements Provider.
func (p *MmapProvider) Hi() uintptr { return p.base() + uintptr(p.brk) }

// Extend implements Provider.
func (p *MmapProvider) Extend(n int) (uintptr, error) {
	if n < 0 {
		panic("heapfile: negative Extend size")
	}
	if p.brk+n > len(p.buf) {
		return 0, ErrNoSpace
	}

	old := p.Hi()
	p.brk += n
	return old, nil
}

// Close releases the underlying OS mapping. It is not necessary to Close a
// MmapProvider when exiting a process.
func (p *MmapProvider) Close() error {
	if p.buf == nil {
		return nil
	}
	err := munmap(unsafe.Pointer(&p.buf[0]), len(p.buf))
	p.buf = nil
	return err
}
