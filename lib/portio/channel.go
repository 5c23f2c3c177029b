// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package portio

// Global Super-I/O configuration registers.
const (
	RegisterConfigControl  = 0x02
	RegisterDeviceSelect   = 0x07
	RegisterChipID         = 0x20
	RegisterChipRevision   = 0x21
	RegisterBaseAddress    = 0x60
	RegisterLogicalActive  = 0x30
	registerNuvotonIOLock  = 0x28
	nuvotonIOSpaceLockMask = 0x10
)

// Channel performs indexed register access over one configuration
// port pair. A Channel holds no state besides the pair; it is cheap to
// create one per probe.
type Channel struct {
	driver Driver
	pair   PortPair
}

// NewChannel binds driver to the given port pair.
func NewChannel(driver Driver, pair PortPair) *Channel {
	return &Channel{driver: driver, pair: pair}
}

// Pair returns the configuration port pair.
func (c *Channel) Pair() PortPair { return c.pair }

// RegisterPort returns the index port of the pair.
func (c *Channel) RegisterPort() uint16 { return c.pair.Register }

// ValuePort returns the data port of the pair.
func (c *Channel) ValuePort() uint16 { return c.pair.Value }

// Driver returns the underlying driver.
func (c *Channel) Driver() Driver { return c.driver }

// Read8 reads one configuration register.
func (c *Channel) Read8(register byte) byte {
	c.driver.WritePort(c.pair.Register, register)
	return c.driver.ReadPort(c.pair.Value)
}

// Write8 writes one configuration register.
func (c *Channel) Write8(register, value byte) {
	c.driver.WritePort(c.pair.Register, register)
	c.driver.WritePort(c.pair.Value, value)
}

// Read16 reads a big-endian word: register holds the high byte and
// register+1 the low byte.
func (c *Channel) Read16(register byte) uint16 {
	return uint16(c.Read8(register))<<8 | uint16(c.Read8(register+1))
}

// Write16 writes a big-endian word across register and register+1.
func (c *Channel) Write16(register byte, value uint16) {
	c.Write8(register, byte(value>>8))
	c.Write8(register+1, byte(value))
}

// TryRead16 reads a word without entering configuration mode first.
// It reports false when either byte reads as 0xFF, the floating-bus
// value of a chip that is not listening.
func (c *Channel) TryRead16(register byte) (uint16, bool) {
	high := c.Read8(register)
	if high == 0xFF {
		return 0, false
	}
	low := c.Read8(register + 1)
	if low == 0xFF {
		return 0, false
	}
	return uint16(high)<<8 | uint16(low), true
}

// Select switches the configuration space to a logical device.
func (c *Channel) Select(logicalDevice byte) {
	c.Write8(RegisterDeviceSelect, logicalDevice)
}

// EnterWinbondNuvotonFintek unlocks configuration mode on Winbond,
// Nuvoton, and Fintek chips.
func (c *Channel) EnterWinbondNuvotonFintek() {
	c.driver.WritePort(c.pair.Register, 0x87)
	c.driver.WritePort(c.pair.Register, 0x87)
}

// ExitWinbondNuvotonFintek leaves configuration mode.
func (c *Channel) ExitWinbondNuvotonFintek() {
	c.driver.WritePort(c.pair.Register, 0xAA)
}

// DisableNuvotonIOSpaceLock clears the hardware-monitor I/O space lock
// bit on NCT679x-class chips. Without this the monitor registers read
// back as zero after the BIOS has locked them.
func (c *Channel) DisableNuvotonIOSpaceLock() {
	options := c.Read8(registerNuvotonIOLock)
	if options&nuvotonIOSpaceLockMask != 0 {
		c.Write8(registerNuvotonIOLock, options&^nuvotonIOSpaceLockMask)
	}
}

// EnterITE unlocks configuration mode on ITE chips. The final key byte
// differs for the secondary port.
func (c *Channel) EnterITE() {
	c.driver.WritePort(c.pair.Register, 0x87)
	c.driver.WritePort(c.pair.Register, 0x01)
	c.driver.WritePort(c.pair.Register, 0x55)
	if c.pair.Register == 0x4E {
		c.driver.WritePort(c.pair.Register, 0xAA)
	} else {
		c.driver.WritePort(c.pair.Register, 0x55)
	}
}

// ExitITE leaves configuration mode. The secondary chip on 0x4E is
// left in configuration mode; exiting it breaks later reads on some
// boards.
func (c *Channel) ExitITE() {
	if c.pair.Register == 0x4E {
		return
	}
	c.Write8(RegisterConfigControl, 0x02)
}

// EnterSMSC unlocks configuration mode on SMSC chips.
func (c *Channel) EnterSMSC() {
	c.driver.WritePort(c.pair.Register, 0x55)
}

// ExitSMSC leaves configuration mode.
func (c *Channel) ExitSMSC() {
	c.driver.WritePort(c.pair.Register, 0xAA)
}
