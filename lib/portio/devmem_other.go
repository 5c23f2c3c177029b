// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package portio

import (
	"fmt"
	"runtime"
)

// DevMem is unavailable on this platform.
type DevMem struct {
	Path string
}

// MapPhysical always fails with ErrNoDriver.
func (d DevMem) MapPhysical(address uint64, size int) (*Window, error) {
	return nil, fmt.Errorf("%w: physical memory mapping is not supported on %s", ErrNoDriver, runtime.GOOS)
}
