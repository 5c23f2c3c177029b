// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package portio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// DevMem maps physical memory through /dev/mem. The kernel must permit
// access to the range (CONFIG_STRICT_DEVMEM allows MMIO holes such as
// the EC window but not RAM).
type DevMem struct {
	Path string
}

// MapPhysical mmaps size bytes at address. The mapping offset is
// rounded down to a page boundary and the returned Window is sliced
// back to the requested start.
func (d DevMem) MapPhysical(address uint64, size int) (*Window, error) {
	path := d.Path
	if path == "" {
		path = "/dev/mem"
	}
	if size <= 0 {
		return nil, fmt.Errorf("portio: invalid mapping size %d", size)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrNoDriver, path, err)
	}
	defer file.Close()

	pageSize := uint64(os.Getpagesize())
	pageBase := address &^ (pageSize - 1)
	lead := int(address - pageBase)

	mapping, err := unix.Mmap(int(file.Fd()), int64(pageBase), lead+size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mapping 0x%X+%d from %s: %w", address, size, path, err)
	}
	return NewWindow(address, mapping[lead:lead+size], func() error {
		return unix.Munmap(mapping)
	}), nil
}
