// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package superio

import (
	"github.com/bureau-foundation/hwmon/lib/ec"
	"github.com/bureau-foundation/hwmon/lib/hardware"
	"github.com/bureau-foundation/hwmon/lib/portio"
)

// W836xx drives the Winbond W836xx parts through the banked window.
type W836xx struct{ device }

var w836xxSensors = []SensorSpec{
	{Name: "CPU", Type: hardware.SensorTemperature, Register: 0x150, Convert: signedCelsius},
	{Name: "Auxiliary", Type: hardware.SensorTemperature, Register: 0x250, Convert: signedCelsius},
	{Name: "System", Type: hardware.SensorTemperature, Register: 0x027, Convert: signedCelsius},
}

func NewW836xx(identity Identity, driver portio.Driver) *W836xx {
	return &W836xx{device{
		identity: identity,
		window:   bankedWindow{driver: driver, base: identity.Address},
		sensors:  w836xxSensors,
	}}
}

// NCT677x drives the Nuvoton NCT6xxx parts. Most use the Winbond bank
// layout; the NCT6683D, NCT6686D and NCT6687D keep their monitor in
// the paged EC space.
type NCT677x struct {
	device
	ecSpace bool
}

var nct677xSensors = []SensorSpec{
	{Name: "System", Type: hardware.SensorTemperature, Register: 0x027, Convert: signedCelsius},
	{Name: "CPU Core", Type: hardware.SensorTemperature, Register: 0x073, Convert: signedCelsius},
	{Name: "Auxiliary", Type: hardware.SensorTemperature, Register: 0x075, Convert: signedCelsius},
}

var nct668xSensors = []SensorSpec{
	{Name: "CPU", Type: hardware.SensorTemperature, Register: 0x100, Convert: signedCelsius},
	{Name: "System", Type: hardware.SensorTemperature, Register: 0x102, Convert: signedCelsius},
	{Name: "VRM MOS", Type: hardware.SensorTemperature, Register: 0x104, Convert: signedCelsius},
	{Name: "PCH", Type: hardware.SensorTemperature, Register: 0x106, Convert: signedCelsius},
}

func NewNCT677x(identity Identity, driver portio.Driver) *NCT677x {
	if identity.Chip.usesECSpace() {
		return &NCT677x{
			device: device{
				identity: identity,
				window:   pagedWindow{driver: driver, base: identity.Address},
				sensors:  nct668xSensors,
			},
			ecSpace: true,
		}
	}
	return &NCT677x{device: device{
		identity: identity,
		window:   bankedWindow{driver: driver, base: identity.Address},
		sensors:  nct677xSensors,
	}}
}

// ECSpace reports whether registers are addressed as EC space pages.
func (n *NCT677x) ECSpace() bool { return n.ecSpace }

// F718xx drives the Fintek F718xx parts through a flat window.
type F718xx struct{ device }

var f718xxSensors = []SensorSpec{
	{Name: "CPU", Type: hardware.SensorTemperature, Register: 0x72, Convert: signedCelsius},
	{Name: "System", Type: hardware.SensorTemperature, Register: 0x74, Convert: signedCelsius},
	{Name: "Auxiliary", Type: hardware.SensorTemperature, Register: 0x76, Convert: signedCelsius},
}

func NewF718xx(identity Identity, driver portio.Driver) *F718xx {
	return &F718xx{device{
		identity: identity,
		window:   flatWindow{driver: driver, base: identity.Address},
		sensors:  f718xxSensors,
	}}
}

// IT87xx drives the ITE environment controller through a flat window
// and exposes the GPIO block and any bridged embedded controller.
type IT87xx struct {
	device
	driver     portio.Driver
	controller ec.Controller
}

var it87xxSensors = []SensorSpec{
	{Name: "Temperature #1", Type: hardware.SensorTemperature, Register: 0x29, Convert: signedCelsius},
	{Name: "Temperature #2", Type: hardware.SensorTemperature, Register: 0x2A, Convert: signedCelsius},
	{Name: "Temperature #3", Type: hardware.SensorTemperature, Register: 0x2B, Convert: signedCelsius},
}

func NewIT87xx(identity Identity, driver portio.Driver, controller ec.Controller) *IT87xx {
	return &IT87xx{
		device: device{
			identity: identity,
			window:   flatWindow{driver: driver, base: identity.Address},
			sensors:  it87xxSensors,
		},
		driver:     driver,
		controller: controller,
	}
}

// Controller returns the bridged embedded controller, or nil.
func (i *IT87xx) Controller() ec.Controller { return i.controller }

// ReadGPIO reads GPIO set index (0-based) from the GPIO block.
func (i *IT87xx) ReadGPIO(index int) byte {
	return i.driver.ReadPort(i.identity.GPIOAddress + uint16(index))
}

// WriteGPIO writes GPIO set index.
func (i *IT87xx) WriteGPIO(index int, value byte) {
	i.driver.WritePort(i.identity.GPIOAddress+uint16(index), value)
}

// Close hands fan control back to the EC firmware and releases the
// controller.
func (i *IT87xx) Close() error {
	if i.controller == nil {
		return nil
	}
	i.controller.Restore()
	err := i.controller.Close()
	i.controller = nil
	return err
}
