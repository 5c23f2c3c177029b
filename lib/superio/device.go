// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package superio

import (
	"github.com/bureau-foundation/hwmon/lib/ec"
	"github.com/bureau-foundation/hwmon/lib/hardware"
	"github.com/bureau-foundation/hwmon/lib/portio"
)

// Device is a detected chip bound to its verified hardware-monitor
// address. Register access touches the shared port space: callers
// hold the bus arbiter across a batch of reads.
type Device interface {
	Identity() Identity
	Chip() Chip

	// ReadRegister reads a monitor register. For banked and paged
	// families the high byte selects the bank or page.
	ReadRegister(register uint16) byte
	WriteRegister(register uint16, value byte)

	// Sensors lists the registers the device knows how to convert.
	Sensors() []SensorSpec

	// Controller is the auxiliary embedded controller, or nil.
	Controller() ec.Controller

	// Close restores and releases the auxiliary controller, if any.
	Close() error
}

// SensorSpec describes one register-backed reading.
type SensorSpec struct {
	Name     string
	Type     hardware.SensorType
	Register uint16

	// Convert turns the raw register into a value in the sensor
	// type's unit. It reports false for a reading that means "no
	// sensor connected".
	Convert func(raw byte) (float64, bool)
}

// Read reads the sensor's register from device and converts it.
func (s SensorSpec) Read(device Device) (float64, bool) {
	return s.Convert(device.ReadRegister(s.Register))
}

// Temperatures below -55 °C or above 125 °C are outside every
// supported diode's range and mean an open input.
const (
	minTemperature = -55
	maxTemperature = 125
)

// signedCelsius converts a two's-complement degree byte.
func signedCelsius(raw byte) (float64, bool) {
	value := float64(int8(raw))
	return value, value >= minTemperature && value <= maxTemperature
}

// Register windows a monitor decodes at its base address.
const (
	offsetPage  = 4
	offsetIndex = 5
	offsetData  = 6

	registerBankSelect = 0x4E
	pageSelect         = 0xFF
)

type registerWindow interface {
	read(register uint16) byte
	write(register uint16, value byte)
}

// flatWindow is a single index/data pair. The high byte of a register
// is ignored.
type flatWindow struct {
	driver portio.Driver
	base   uint16
}

func (w flatWindow) read(register uint16) byte {
	w.driver.WritePort(w.base+offsetIndex, byte(register))
	return w.driver.ReadPort(w.base + offsetData)
}

func (w flatWindow) write(register uint16, value byte) {
	w.driver.WritePort(w.base+offsetIndex, byte(register))
	w.driver.WritePort(w.base+offsetData, value)
}

// bankedWindow selects the bank through register 0x4E before every
// access.
type bankedWindow struct {
	driver portio.Driver
	base   uint16
}

func (w bankedWindow) selectBank(register uint16) {
	w.driver.WritePort(w.base+offsetIndex, registerBankSelect)
	w.driver.WritePort(w.base+offsetData, byte(register>>8))
	w.driver.WritePort(w.base+offsetIndex, byte(register))
}

func (w bankedWindow) read(register uint16) byte {
	w.selectBank(register)
	return w.driver.ReadPort(w.base + offsetData)
}

func (w bankedWindow) write(register uint16, value byte) {
	w.selectBank(register)
	w.driver.WritePort(w.base+offsetData, value)
}

// pagedWindow is the NCT668x EC space: arm the page register with
// 0xFF, write the page, then index and data.
type pagedWindow struct {
	driver portio.Driver
	base   uint16
}

func (w pagedWindow) selectPage(register uint16) {
	w.driver.WritePort(w.base+offsetPage, pageSelect)
	w.driver.WritePort(w.base+offsetPage, byte(register>>8))
	w.driver.WritePort(w.base+offsetIndex, byte(register))
}

func (w pagedWindow) read(register uint16) byte {
	w.selectPage(register)
	return w.driver.ReadPort(w.base + offsetData)
}

func (w pagedWindow) write(register uint16, value byte) {
	w.selectPage(register)
	w.driver.WritePort(w.base+offsetData, value)
}

// device is the state shared by every family.
type device struct {
	identity Identity
	window   registerWindow
	sensors  []SensorSpec
}

func (d *device) Identity() Identity                        { return d.identity }
func (d *device) Chip() Chip                                { return d.identity.Chip }
func (d *device) ReadRegister(register uint16) byte         { return d.window.read(register) }
func (d *device) WriteRegister(register uint16, value byte) { d.window.write(register, value) }
func (d *device) Sensors() []SensorSpec                     { return d.sensors }
func (d *device) Controller() ec.Controller                 { return nil }
func (d *device) Close() error                              { return nil }

// newDevice dispatches a verified identity to its family.
func newDevice(identity Identity, driver portio.Driver, controller ec.Controller) Device {
	switch identity.Chip.Kind() {
	case KindW836xx:
		return NewW836xx(identity, driver)
	case KindNCT677x:
		return NewNCT677x(identity, driver)
	case KindF718xx:
		return NewF718xx(identity, driver)
	case KindIT87xx:
		return NewIT87xx(identity, driver, controller)
	default:
		return nil
	}
}
