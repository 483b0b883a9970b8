// Copyright 2011 Evan Shaw. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE-MMAP-GO file.

package heapfile

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"syscall"
	"unsafe"
)

var osPageSize = os.Getpagesize()

// mmap on Windows is a two-step process: CreateFileMapping gets a handle,
// then MapViewOfFile gets an actual pointer into memory.

var handleMap = map[uintptr]syscall.Handle{}

func mmapReserve(size int) ([]byte, error) {
	flProtect := uint32(syscall.PAGE_READWRITE)
	dwDesiredAccess := uint32(syscall.FILE_MAP_WRITE)

	maxSizeHigh := uint32(int64(size) >> 32)
	maxSizeLow := uint32(int64(size) & 0xFFFFFFFF)
	h, errno := syscall.CreateFileMapping(syscall.Handle(^uintptr(0)), nil, flProtect, maxSizeHigh, maxSizeLow, nil)
	if h == 0 {
		return nil, fmt.Errorf("heapfile: CreateFileMapping: %w", os.NewSyscallError("CreateFileMapping", errno))
	}

	addr, errno := syscall.MapViewOfFile(h, dwDesiredAccess, 0, 0, uintptr(size))
	if addr == 0 {
		return nil, fmt.Errorf("heapfile: MapViewOfFile: %w", os.NewSyscallError("MapViewOfFile", errno))
	}

	if addr&uintptr(osPageSize-1) != 0 {
		panic("heapfile: mmap returned misaligned region")
	}

	handleMap[addr] = h
	var b []byte
	sh := (*reflect.SliceHeader)(unsafe.Pointer(&b))
	sh.Data = addr
	sh.Len = size
	sh.Cap = size
	return b, nil
}

func munmap(addr unsafe.Pointer, size int) error {
	err := syscall.UnmapViewOfFile(uintptr(addr))
	if err != nil {
		return err
	}

	handle, ok := handleMap[uintptr(addr)]
	if !ok {
		return errors.New("heapfile: unknown mapping base address")
	}
	delete(handleMap, uintptr(addr))

	return os.NewSyscallError("CloseHandle", syscall.CloseHandle(syscall.Handle(handle)))
}
