// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ec

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/hwmon/lib/clock"
	"github.com/bureau-foundation/hwmon/lib/portio"
)

// Controller is an auxiliary embedded controller attached to a
// Super-I/O chip.
type Controller interface {
	// Enable turns the EC firmware's own fan controller on or off.
	// The host must disable it before driving fans directly. It
	// reports whether the register read back as written. The first
	// call records the firmware's setting for Restore.
	Enable(enabled bool) (bool, error)

	// Restore writes back the setting recorded by the first Enable.
	// A no-op when Enable was never called.
	Restore()

	// Close releases mappings or handles. It does not Restore.
	Close() error

	// Kind names the access strategy, "smfi" or "ecio".
	Kind() string
}

const (
	// fanControlArea is the EC RAM offset of the fan-control block
	// on Gigabyte ITE-bridged controllers.
	fanControlArea = 0x900

	// fanControlEnable is the register within the block whose bit 0
	// selects EC firmware fan control.
	fanControlEnable = 0x47

	// smfiWindowSize covers the fan-control block.
	smfiWindowSize = 0x1000
)

// SMFIController reaches EC RAM through the Super-I/O shared-memory
// window at a host physical address.
type SMFIController struct {
	address uint32
	mapper  portio.MemoryMapper
	logger  *slog.Logger

	window      *portio.Window
	initial     byte
	initialized bool
}

// NewSMFIController returns a controller for the EC RAM window at
// address. Nothing is mapped until the first Enable.
func NewSMFIController(address uint32, mapper portio.MemoryMapper, logger *slog.Logger) *SMFIController {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SMFIController{address: address, mapper: mapper, logger: logger}
}

// Address returns the host physical address of the window.
func (c *SMFIController) Address() uint32 { return c.address }

func (c *SMFIController) Kind() string { return "smfi" }

func (c *SMFIController) Enable(enabled bool) (bool, error) {
	if c.window == nil {
		window, err := c.mapper.MapPhysical(uint64(c.address), smfiWindowSize)
		if err != nil {
			return false, fmt.Errorf("mapping EC window at 0x%08X: %w", c.address, err)
		}
		c.window = window
	}
	offset := fanControlArea + fanControlEnable
	current, err := c.window.Read8(offset)
	if err != nil {
		return false, err
	}
	if !c.initialized {
		c.initial = current
		c.initialized = true
	}
	updated := setBit0(current, enabled)
	if err := c.window.Write8(offset, updated); err != nil {
		return false, err
	}
	readBack, err := c.window.Read8(offset)
	if err != nil {
		return false, err
	}
	return readBack == updated, nil
}

func (c *SMFIController) Restore() {
	if !c.initialized || c.window == nil {
		return
	}
	if err := c.window.Write8(fanControlArea+fanControlEnable, c.initial); err != nil {
		c.logger.Debug("restoring EC fan control failed", "address", c.address, "error", err)
	}
}

func (c *SMFIController) Close() error {
	if c.window == nil {
		return nil
	}
	err := c.window.Close()
	c.window = nil
	return err
}

// ECIOController drives the fan-control register through the ACPI EC
// port protocol. Used where the shared-memory window is not
// available.
type ECIOController struct {
	port        *Port
	initial     byte
	initialized bool
	logger      *slog.Logger
}

// TryOpenECIO probes the ACPI EC ports and returns a controller, or
// nil when nothing answers.
func TryOpenECIO(driver portio.Driver, c clock.Clock, logger *slog.Logger) *ECIOController {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	port := NewPort(driver, c)
	if !port.Present() {
		return nil
	}
	if _, err := port.Read(fanControlEnable); err != nil {
		logger.Debug("EC port present but unresponsive", "error", err)
		return nil
	}
	return &ECIOController{port: port, logger: logger}
}

func (c *ECIOController) Kind() string { return "ecio" }

func (c *ECIOController) Enable(enabled bool) (bool, error) {
	current, err := c.port.Read(fanControlEnable)
	if err != nil {
		return false, err
	}
	if !c.initialized {
		c.initial = current
		c.initialized = true
	}
	updated := setBit0(current, enabled)
	if err := c.port.Write(fanControlEnable, updated); err != nil {
		return false, err
	}
	readBack, err := c.port.Read(fanControlEnable)
	if err != nil {
		return false, err
	}
	return readBack == updated, nil
}

func (c *ECIOController) Restore() {
	if !c.initialized {
		return
	}
	if err := c.port.Write(fanControlEnable, c.initial); err != nil {
		c.logger.Debug("restoring EC fan control failed", "error", err)
	}
}

func (c *ECIOController) Close() error { return nil }

func setBit0(value byte, set bool) byte {
	if set {
		return value | 0x01
	}
	return value &^ 0x01
}
