// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package portio

import (
	"errors"
	"fmt"
)

// ErrNoDriver is returned when the port I/O device cannot be opened,
// typically because the process is not root or the platform has no
// /dev/port.
var ErrNoDriver = errors.New("portio: port I/O driver unavailable")

// ErrMSRUnavailable is returned by ReadMSR when the register cannot be
// read: the msr module is not loaded, the CPU does not implement the
// register, or the read faulted.
var ErrMSRUnavailable = errors.New("portio: MSR unavailable")

// Driver is the privileged hardware access boundary. Implementations
// are synchronous and side-effect free to call repeatedly, but they
// are not safe for concurrent use against the same ports: callers
// serialize through the bus arbiter.
type Driver interface {
	// ReadPort reads one byte from an I/O port.
	ReadPort(port uint16) byte

	// WritePort writes one byte to an I/O port.
	WritePort(port uint16, value byte)

	// ReadMSR reads a 64-bit model-specific register on the given
	// logical CPU. The low 32 bits are EAX, the high 32 bits EDX.
	ReadMSR(index uint32, cpu int) (uint64, error)
}

// PortPair is a Super-I/O configuration port pair: the index
// (register) port and the data (value) port.
type PortPair struct {
	Register uint16
	Value    uint16
}

// String returns the pair as "0x2E/0x2F".
func (p PortPair) String() string {
	return fmt.Sprintf("0x%X/0x%X", p.Register, p.Value)
}

// DefaultPortPairs are the fixed candidate configuration port pairs in
// probe priority order.
var DefaultPortPairs = []PortPair{
	{Register: 0x2E, Value: 0x2F},
	{Register: 0x4E, Value: 0x4F},
}
