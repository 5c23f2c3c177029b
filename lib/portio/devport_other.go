// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package portio

import (
	"fmt"
	"log/slog"
	"runtime"
)

// DevPortConfig locates the kernel interfaces for port and MSR access.
type DevPortConfig struct {
	PortDevice       string
	MSRDevicePattern string
	Logger           *slog.Logger
}

// DevPort is unavailable on this platform.
type DevPort struct{}

// OpenDevPort always fails with ErrNoDriver on non-Linux platforms.
func OpenDevPort(config DevPortConfig) (*DevPort, error) {
	return nil, fmt.Errorf("%w: port I/O is not supported on %s", ErrNoDriver, runtime.GOOS)
}

func (d *DevPort) ReadPort(port uint16) byte         { return 0xFF }
func (d *DevPort) WritePort(port uint16, value byte) {}
func (d *DevPort) ReadMSR(index uint32, cpu int) (uint64, error) {
	return 0, ErrMSRUnavailable
}
func (d *DevPort) Close() error { return nil }
