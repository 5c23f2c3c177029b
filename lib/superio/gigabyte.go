// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package superio

import (
	"log/slog"

	"github.com/bureau-foundation/hwmon/lib/clock"
	"github.com/bureau-foundation/hwmon/lib/ec"
	"github.com/bureau-foundation/hwmon/lib/portio"
	"github.com/bureau-foundation/hwmon/lib/smbios"
)

const (
	registerSMFIRAMBase     byte = 0xF5
	registerSMFIRAMBaseHigh byte = 0xFC
)

// ControllerResolver finds the embedded controller that Gigabyte boards
// bridge behind their secondary ITE chip. It must run while the chip
// is in configuration mode and the bus lock is held.
type ControllerResolver struct {
	Driver portio.Driver

	// Mapper maps the EC RAM window. Nil disables the shared-memory
	// strategy.
	Mapper portio.MemoryMapper

	Clock  clock.Clock
	Logger *slog.Logger
}

// Resolve returns the auxiliary controller for chip, or nil. Only
// Gigabyte boards with an IT8790E, IT8792E or IT87952E on 0x4E
// qualify. The shared-memory window is tried first; the ACPI EC ports
// are the fallback, available only for the IT8792E on AMD platforms.
// Neither failing is an error: the ITE device works without it.
func (r *ControllerResolver) Resolve(channel *portio.Channel, chip Chip, board smbios.Info) ec.Controller {
	if board.Board.Manufacturer() != smbios.ManufacturerGigabyte || channel.RegisterPort() != 0x4E {
		return nil
	}
	switch chip {
	case ChipIT8790E, ChipIT8792E, ChipIT87952E:
	default:
		return nil
	}

	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	vendor := board.CPUVendor()

	if address, ok := r.readSMFIAddress(channel, chip); ok {
		if r.Mapper != nil {
			logger.Info("found Gigabyte EC shared-memory window",
				"chip", chip.String(), "host_address", address)
			return ec.NewSMFIController(address, r.Mapper, logger)
		}
		logger.Debug("EC shared-memory window found but no memory mapper configured",
			"host_address", address)
	}

	if chip == ChipIT8792E && vendor == smbios.CPUVendorAMD {
		if controller := ec.TryOpenECIO(r.Driver, r.Clock, logger); controller != nil {
			logger.Info("using ACPI EC ports for Gigabyte EC", "chip", chip.String())
			return controller
		}
	}

	return nil
}

// readSMFIAddress reads the host address of the EC RAM window from the
// shared-memory logical device, with the usual double read.
func (r *ControllerResolver) readSMFIAddress(channel *portio.Channel, chip Chip) (uint32, bool) {
	sleep := func() {
		if r.Clock != nil {
			r.Clock.Sleep(settleDelay)
		}
	}

	channel.Select(ldnITESharedMemory)

	enabled := channel.Read8(portio.RegisterLogicalActive)
	sleep()
	enabledVerify := channel.Read8(portio.RegisterLogicalActive)
	if enabled != enabledVerify || enabled == 0 {
		return 0, false
	}

	var high, highVerify byte
	address := channel.Read16(registerSMFIRAMBase)
	if chip == ChipIT87952E {
		high = channel.Read8(registerSMFIRAMBaseHigh)
	}
	sleep()
	addressVerify := channel.Read16(registerSMFIRAMBase)
	if chip == ChipIT87952E {
		highVerify = channel.Read8(registerSMFIRAMBaseHigh)
	}
	if address != addressVerify || high != highVerify {
		return 0, false
	}

	return SMFIHostAddress(chip, address, high), true
}

// SMFIHostAddress reassembles the host physical address of the EC RAM
// window. The register word reads as 0xXRYY and maps to 0xFFYYX000;
// on the IT87952E the extra high byte supplies bits 24..27 under a
// 0xFC000000 base.
func SMFIHostAddress(chip Chip, address uint16, high byte) uint32 {
	base := uint32(0xFF000000)
	if chip == ChipIT87952E {
		base = 0xFC000000
	}
	word := uint32(address)
	return base | word&0xF000 | (word&0xFF)<<16 | (uint32(high)&0x0F)<<24
}
