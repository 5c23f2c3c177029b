// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package portio

import (
	"errors"
	"testing"
)

func TestSimulatedChipRequiresKey(t *testing.T) {
	sim := NewSimulator()
	chip := NewSimulatedChip(ProtocolWinbondNuvotonFintek)
	chip.SetChipID(0xC561)
	sim.AttachChip(primary, chip)

	channel := NewChannel(sim, primary)
	if got := channel.Read8(RegisterChipID); got != 0xFF {
		t.Errorf("locked chip ID = 0x%02X, want 0xFF", got)
	}

	channel.EnterWinbondNuvotonFintek()
	if !chip.Entered() {
		t.Fatal("chip did not enter configuration mode")
	}
	if got := channel.Read16(RegisterChipID); got != 0xC561 {
		t.Errorf("chip ID = 0x%04X, want 0xC561", got)
	}

	channel.ExitWinbondNuvotonFintek()
	if chip.Entered() {
		t.Error("chip still in configuration mode after exit")
	}
}

func TestSimulatedNoise(t *testing.T) {
	sim := NewSimulator()
	chip := NewSimulatedChip(ProtocolWinbondNuvotonFintek)
	chip.FirmwareEntered = true
	chip.SetDeviceWord(0x0B, 0x60, 0x0290)
	chip.Noise[RegisterKey{LDN: 0x0B, Index: 0x60}] = []byte{0x03}
	sim.AttachChip(primary, chip)

	channel := NewChannel(sim, primary)
	channel.Select(0x0B)
	if got := channel.Read16(0x60); got != 0x0390 {
		t.Errorf("first read = 0x%04X, want 0x0390", got)
	}
	if got := channel.Read16(0x60); got != 0x0290 {
		t.Errorf("second read = 0x%04X, want 0x0290", got)
	}
}

func TestSimulatedReentryCorruptsID(t *testing.T) {
	sim := NewSimulator()
	chip := NewSimulatedChip(ProtocolITE)
	chip.FirmwareEntered = true
	chip.ReentryID = 0x8883
	chip.SetChipID(0x8733)
	sim.AttachChip(secondary, chip)

	channel := NewChannel(sim, secondary)
	channel.EnterITE()
	if !chip.Corrupted() {
		t.Fatal("replayed key did not corrupt the chip")
	}
	if got := channel.Read16(RegisterChipID); got != 0x8883 {
		t.Errorf("chip ID = 0x%04X, want 0x8883", got)
	}
}

func TestSimulatedIOSpaceBanked(t *testing.T) {
	sim := NewSimulator()
	space := NewSimulatedIOSpace(IOSpaceBanked)
	space.Registers[0x0127] = 0x2A
	sim.AttachIOSpace(0x290, space)

	sim.WritePort(0x295, 0x4E)
	sim.WritePort(0x296, 0x01)
	sim.WritePort(0x295, 0x27)
	if got := sim.ReadPort(0x296); got != 0x2A {
		t.Errorf("bank 1 register 0x27 = 0x%02X, want 0x2A", got)
	}
}

func TestSimulatedIOSpacePaged(t *testing.T) {
	sim := NewSimulator()
	space := NewSimulatedIOSpace(IOSpacePaged)
	space.Registers[0x0100] = 0x31
	sim.AttachIOSpace(0xA20, space)

	sim.WritePort(0xA24, 0xFF)
	sim.WritePort(0xA24, 0x01)
	sim.WritePort(0xA25, 0x00)
	if got := sim.ReadPort(0xA26); got != 0x31 {
		t.Errorf("page 1 register 0x00 = 0x%02X, want 0x31", got)
	}
}

func TestSimulatedMSR(t *testing.T) {
	sim := NewSimulator()
	if _, err := sim.ReadMSR(0x641, 0); !errors.Is(err, ErrMSRUnavailable) {
		t.Errorf("unset MSR error = %v, want ErrMSRUnavailable", err)
	}
	sim.SetMSR(0x641, 0x1234)
	value, err := sim.ReadMSR(0x641, 0)
	if err != nil || value != 0x1234 {
		t.Errorf("ReadMSR = (0x%X, %v)", value, err)
	}
	if sim.MSRReads() != 2 {
		t.Errorf("MSRReads() = %d, want 2", sim.MSRReads())
	}
}
