// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package portio

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// DevPortConfig locates the kernel interfaces for port and MSR access.
type DevPortConfig struct {
	// PortDevice is the port I/O character device. Default /dev/port.
	PortDevice string

	// MSRDevicePattern is a fmt pattern taking the logical CPU number.
	// Default /dev/cpu/%d/msr.
	MSRDevicePattern string

	// Logger receives Debug-level messages about failed MSR opens.
	// Nil discards.
	Logger *slog.Logger
}

// DevPort is the Linux Driver. Port bytes are transferred with
// pread/pwrite at offset = port number on /dev/port. MSR files are
// opened lazily per CPU and held for the lifetime of the DevPort.
type DevPort struct {
	port       *os.File
	msrPattern string
	logger     *slog.Logger

	mu       sync.Mutex
	msrFiles map[int]*os.File
	msrFail  map[int]error
}

// OpenDevPort opens the port device. The returned error wraps
// ErrNoDriver when the device is missing or the caller lacks
// privilege.
func OpenDevPort(config DevPortConfig) (*DevPort, error) {
	if config.PortDevice == "" {
		config.PortDevice = "/dev/port"
	}
	if config.MSRDevicePattern == "" {
		config.MSRDevicePattern = "/dev/cpu/%d/msr"
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	file, err := os.OpenFile(config.PortDevice, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrNoDriver, config.PortDevice, err)
	}
	return &DevPort{
		port:       file,
		msrPattern: config.MSRDevicePattern,
		logger:     logger,
		msrFiles:   make(map[int]*os.File),
		msrFail:    make(map[int]error),
	}, nil
}

// ReadPort reads one byte. A failed read returns 0xFF, the value a
// floating bus reads as, so callers treat it as "nothing here".
func (d *DevPort) ReadPort(port uint16) byte {
	var buffer [1]byte
	if _, err := unix.Pread(int(d.port.Fd()), buffer[:], int64(port)); err != nil {
		return 0xFF
	}
	return buffer[0]
}

// WritePort writes one byte. Errors are dropped: the port contract has
// no failure channel and a failed write is indistinguishable from a
// write no chip decoded.
func (d *DevPort) WritePort(port uint16, value byte) {
	buffer := [1]byte{value}
	_, _ = unix.Pwrite(int(d.port.Fd()), buffer[:], int64(port))
}

// ReadMSR reads an MSR through the msr driver. Open failures are
// remembered per CPU so a missing module costs one open attempt.
func (d *DevPort) ReadMSR(index uint32, cpu int) (uint64, error) {
	file, err := d.msrFile(cpu)
	if err != nil {
		return 0, err
	}
	var buffer [8]byte
	n, err := unix.Pread(int(file.Fd()), buffer[:], int64(index))
	if err != nil {
		return 0, fmt.Errorf("%w: reading MSR 0x%X on cpu %d: %w", ErrMSRUnavailable, index, cpu, err)
	}
	if n != len(buffer) {
		return 0, fmt.Errorf("%w: short read of MSR 0x%X on cpu %d", ErrMSRUnavailable, index, cpu)
	}
	return binary.LittleEndian.Uint64(buffer[:]), nil
}

func (d *DevPort) msrFile(cpu int) (*os.File, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if file, ok := d.msrFiles[cpu]; ok {
		return file, nil
	}
	if err, ok := d.msrFail[cpu]; ok {
		return nil, err
	}

	path := fmt.Sprintf(d.msrPattern, cpu)
	file, err := os.Open(path)
	if err != nil {
		wrapped := fmt.Errorf("%w: opening %s: %w", ErrMSRUnavailable, path, err)
		d.msrFail[cpu] = wrapped
		d.logger.Debug("msr device unavailable", "path", path, "error", err)
		return nil, wrapped
	}
	d.msrFiles[cpu] = file
	return file, nil
}

// Close releases the port device and any open MSR files.
func (d *DevPort) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for cpu, file := range d.msrFiles {
		file.Close()
		delete(d.msrFiles, cpu)
	}
	return d.port.Close()
}
