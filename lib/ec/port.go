// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ec

import (
	"errors"
	"fmt"
	"time"

	"github.com/bureau-foundation/hwmon/lib/clock"
	"github.com/bureau-foundation/hwmon/lib/portio"
)

const (
	// CommandPort is the ACPI EC command/status port.
	CommandPort = 0x66
	// DataPort is the ACPI EC data port.
	DataPort = 0x62

	statusOutputFull = 1 << 0
	statusInputFull  = 1 << 1

	commandRead  = 0x80
	commandWrite = 0x81

	waitAttempts = 100
	waitInterval = time.Millisecond
)

// ErrTimeout is returned when the controller does not drain its input
// buffer or fill its output buffer within 100 polls.
var ErrTimeout = errors.New("ec: controller did not respond")

// Port is the ACPI EC register protocol. It does not lock the bus:
// callers hold the arbiter across a batch of reads.
type Port struct {
	driver portio.Driver
	clock  clock.Clock
}

// NewPort returns a Port over driver. A nil clock uses the real clock.
func NewPort(driver portio.Driver, c clock.Clock) *Port {
	if c == nil {
		c = clock.Real()
	}
	return &Port{driver: driver, clock: c}
}

// Present reports whether anything decodes the status port. An
// undecoded port floats to 0xFF.
func (p *Port) Present() bool {
	return p.driver.ReadPort(CommandPort) != 0xFF
}

// Read returns one EC register.
func (p *Port) Read(register byte) (byte, error) {
	if err := p.waitInputEmpty(); err != nil {
		return 0, fmt.Errorf("reading EC register 0x%02X before command: %w", register, err)
	}
	p.driver.WritePort(CommandPort, commandRead)

	if err := p.waitInputEmpty(); err != nil {
		return 0, fmt.Errorf("reading EC register 0x%02X before address: %w", register, err)
	}
	p.driver.WritePort(DataPort, register)

	if err := p.waitOutputFull(); err != nil {
		return 0, fmt.Errorf("reading EC register 0x%02X: %w", register, err)
	}
	return p.driver.ReadPort(DataPort), nil
}

// ReadWord returns a big-endian word from register and register+1.
func (p *Port) ReadWord(register byte) (uint16, error) {
	high, err := p.Read(register)
	if err != nil {
		return 0, err
	}
	low, err := p.Read(register + 1)
	if err != nil {
		return 0, err
	}
	return uint16(high)<<8 | uint16(low), nil
}

// Write stores one EC register.
func (p *Port) Write(register, value byte) error {
	if err := p.waitInputEmpty(); err != nil {
		return fmt.Errorf("writing EC register 0x%02X before command: %w", register, err)
	}
	p.driver.WritePort(CommandPort, commandWrite)

	if err := p.waitInputEmpty(); err != nil {
		return fmt.Errorf("writing EC register 0x%02X before address: %w", register, err)
	}
	p.driver.WritePort(DataPort, register)

	if err := p.waitInputEmpty(); err != nil {
		return fmt.Errorf("writing EC register 0x%02X before value: %w", register, err)
	}
	p.driver.WritePort(DataPort, value)
	return nil
}

func (p *Port) waitInputEmpty() error {
	for range waitAttempts {
		if p.driver.ReadPort(CommandPort)&statusInputFull == 0 {
			return nil
		}
		p.clock.Sleep(waitInterval)
	}
	return ErrTimeout
}

func (p *Port) waitOutputFull() error {
	for range waitAttempts {
		if p.driver.ReadPort(CommandPort)&statusOutputFull != 0 {
			return nil
		}
		p.clock.Sleep(waitInterval)
	}
	return ErrTimeout
}
