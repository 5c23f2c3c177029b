// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package portio

import "fmt"

// MemoryMapper maps a window of host physical memory. Used for EC RAM
// exposed through a Super-I/O shared-memory interface.
type MemoryMapper interface {
	MapPhysical(address uint64, size int) (*Window, error)
}

// Window is a mapped physical memory range. Offsets are relative to
// the address passed to MapPhysical.
type Window struct {
	address uint64
	data    []byte
	release func() error
}

// NewWindow wraps a byte slice as a Window. release runs once on
// Close and may be nil.
func NewWindow(address uint64, data []byte, release func() error) *Window {
	return &Window{address: address, data: data, release: release}
}

// Address returns the physical base address of the window.
func (w *Window) Address() uint64 { return w.address }

// Size returns the window length in bytes.
func (w *Window) Size() int { return len(w.data) }

// Read8 reads one byte at offset.
func (w *Window) Read8(offset int) (byte, error) {
	if offset < 0 || offset >= len(w.data) {
		return 0, fmt.Errorf("portio: offset 0x%X outside %d-byte window at 0x%X", offset, len(w.data), w.address)
	}
	return w.data[offset], nil
}

// Write8 writes one byte at offset.
func (w *Window) Write8(offset int, value byte) error {
	if offset < 0 || offset >= len(w.data) {
		return fmt.Errorf("portio: offset 0x%X outside %d-byte window at 0x%X", offset, len(w.data), w.address)
	}
	w.data[offset] = value
	return nil
}

// Close unmaps the window. Safe to call more than once.
func (w *Window) Close() error {
	release := w.release
	w.release = nil
	w.data = nil
	if release == nil {
		return nil
	}
	return release()
}
