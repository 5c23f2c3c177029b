// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package superio

import (
	"github.com/bureau-foundation/hwmon/lib/ec"
	"github.com/bureau-foundation/hwmon/lib/portio"
)

const (
	registerFintekVendorID byte   = 0x23
	registerITEChipVersion byte   = 0x22
	fintekVendorID         uint16 = 0x1934
)

// probeWinbondFintek runs the Winbond/Nuvoton/Fintek protocol on one
// pair. Configuration mode is exited on every path before the report
// is written.
func (d *Detector) probeWinbondFintek(channel *portio.Channel, report *Report) Device {
	channel.EnterWinbondNuvotonFintek()

	id := channel.Read8(portio.RegisterChipID)
	revision := channel.Read8(portio.RegisterChipRevision)
	chip, logicalDevice := DecodeWinbondFintek(id, revision, d.board.Board.Model())

	if chip == ChipUnknown {
		channel.ExitWinbondNuvotonFintek()
		if !isSentinel8(id) {
			report.unknownChip(channel.Pair(), FamilyWinbondNuvotonFintek, uint16(id)<<8|uint16(revision))
		}
		return nil
	}

	channel.Select(logicalDevice)
	address, verify := d.readVerified16(channel, portio.RegisterBaseAddress)
	vendorID := channel.Read16(registerFintekVendorID)

	if address == verify && chip.unlocksIOSpace() {
		channel.DisableNuvotonIOSpaceLock()
	}

	channel.ExitWinbondNuvotonFintek()

	if address != verify {
		report.addressVerificationFailed(chip, revision)
		return nil
	}

	fintek := chip.Kind() == KindF718xx

	// Some Fintek parts report the base with the index-port offset
	// already added.
	if fintek && address&0x07 == 0x05 {
		address &= 0xFFF8
	}

	if !validAddress(address) {
		report.invalidAddress(chip, revision, address)
		return nil
	}

	if fintek && vendorID != fintekVendorID {
		report.invalidVendorID(chip, revision, vendorID)
		return nil
	}

	return newDevice(Identity{
		Family:   FamilyWinbondNuvotonFintek,
		Chip:     chip,
		Revision: revision,
		Address:  address,
		Pair:     channel.Pair(),
	}, d.driver, nil)
}

// probeITE runs the ITE protocol. ITE chips only answer on 0x2E and,
// for the secondary IT879x parts, 0x4E.
func (d *Detector) probeITE(channel *portio.Channel, report *Report) Device {
	pair := channel.Pair()
	if pair.Register != 0x2E && pair.Register != 0x4E {
		return nil
	}

	// Firmware on some boards leaves the chip at 0x4E in configuration
	// mode. Replaying the key in that state makes an IT8792E report
	// 0x8883, so a non-sentinel ID on 0x4E is taken as-is.
	var (
		id     uint16
		loaded bool
	)
	if pair.Register == 0x4E {
		id, loaded = channel.TryRead16(portio.RegisterChipID)
		loaded = loaded && !isSentinel16(id)
	}
	if loaded {
		d.logger.Debug("ITE chip already in configuration mode",
			"pair", pair.String(), "chip_id", id)
	} else {
		channel.EnterITE()
		id = channel.Read16(portio.RegisterChipID)
	}

	chip := DecodeITE(id)
	if chip == ChipUnknown {
		channel.ExitITE()
		if !isSentinel16(id) {
			report.unknownChip(pair, FamilyITE, id)
		}
		return nil
	}

	channel.Select(ldnITEEnvironmentController)
	address, verify := d.readVerified16(channel, portio.RegisterBaseAddress)
	version := channel.Read8(registerITEChipVersion) & 0x0F

	var gpioAddress, gpioVerify uint16
	if chip == ChipIT8705F {
		channel.Select(ldnIT8705GPIO)
		gpioAddress, gpioVerify = d.readVerified16(channel, portio.RegisterBaseAddress)
	} else {
		channel.Select(ldnITEGPIO)
		gpioAddress, gpioVerify = d.readVerified16(channel, portio.RegisterBaseAddress+2)
	}

	controller := d.resolver.Resolve(channel, chip, d.board)

	channel.ExitITE()

	if address != verify || !validAddress(address) {
		report.invalidITEAddress(chip, address)
		closeController(controller, d)
		return nil
	}
	if gpioAddress != gpioVerify || !validAddress(gpioAddress) {
		report.invalidGPIOAddress(chip, gpioAddress)
		closeController(controller, d)
		return nil
	}

	return newDevice(Identity{
		Family:      FamilyITE,
		Chip:        chip,
		Revision:    version,
		Address:     address,
		GPIOAddress: gpioAddress,
		Pair:        pair,
	}, d.driver, controller)
}

// probeSMSC only identifies: no SMSC hardware monitor is driven, so a
// responding chip is reported and the pair yields nothing.
func (d *Detector) probeSMSC(channel *portio.Channel, report *Report) Device {
	channel.EnterSMSC()
	id := channel.Read16(portio.RegisterChipID)
	channel.ExitSMSC()

	if !isSentinel16(id) {
		report.unknownChip(channel.Pair(), FamilySMSC, id)
	}
	return nil
}

func closeController(controller ec.Controller, d *Detector) {
	if controller == nil {
		return
	}
	if err := controller.Close(); err != nil {
		d.logger.Debug("closing unused embedded controller failed", "error", err)
	}
}
