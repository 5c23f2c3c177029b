// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package portio

import (
	"bytes"
	"fmt"
	"sync"
)

// Protocol selects which configuration-mode key unlocks a simulated
// Super-I/O chip and how it leaves configuration mode.
type Protocol int

const (
	ProtocolWinbondNuvotonFintek Protocol = iota
	ProtocolITE
	ProtocolSMSC
)

// RegisterKey addresses one configuration register of a simulated
// chip. LDN is ignored for global registers (index below 0x30).
type RegisterKey struct {
	LDN   byte
	Index byte
}

// SimulatedChip is a Super-I/O chip sitting behind one configuration
// port pair. Registers below 0x30 are global; the rest are banked by
// the selected logical device.
type SimulatedChip struct {
	Protocol Protocol

	// Noise queues values returned by successive reads of a register
	// before the stored value is returned. Models registers that have
	// not settled after a logical-device select.
	Noise map[RegisterKey][]byte

	// FirmwareEntered starts the chip in configuration mode, as some
	// boards leave the secondary ITE chip after POST.
	FirmwareEntered bool

	// ReentryID, when non-zero, is the chip ID word the chip presents
	// after its entry key is replayed while already in configuration
	// mode.
	ReentryID uint16

	global  map[byte]byte
	devices map[byte]map[byte]byte

	entered   bool
	corrupted bool
	ldn       byte
	index     byte
	keys      []byte
}

// NewSimulatedChip returns an empty chip speaking the given protocol.
func NewSimulatedChip(protocol Protocol) *SimulatedChip {
	return &SimulatedChip{
		Protocol: protocol,
		Noise:    make(map[RegisterKey][]byte),
		global:   make(map[byte]byte),
		devices:  make(map[byte]map[byte]byte),
	}
}

// SetChipID stores the identification word at registers 0x20/0x21.
func (c *SimulatedChip) SetChipID(id uint16) {
	c.global[RegisterChipID] = byte(id >> 8)
	c.global[RegisterChipRevision] = byte(id)
}

// SetGlobal stores a global configuration register.
func (c *SimulatedChip) SetGlobal(index, value byte) {
	c.global[index] = value
}

// Global returns a global configuration register.
func (c *SimulatedChip) Global(index byte) byte {
	return c.global[index]
}

// SetDevice stores a register of one logical device.
func (c *SimulatedChip) SetDevice(ldn, index, value byte) {
	registers, ok := c.devices[ldn]
	if !ok {
		registers = make(map[byte]byte)
		c.devices[ldn] = registers
	}
	registers[index] = value
}

// SetDeviceWord stores a big-endian word at index and index+1 of one
// logical device.
func (c *SimulatedChip) SetDeviceWord(ldn, index byte, value uint16) {
	c.SetDevice(ldn, index, byte(value>>8))
	c.SetDevice(ldn, index+1, byte(value))
}

// Entered reports whether the chip is in configuration mode.
func (c *SimulatedChip) Entered() bool { return c.entered }

// Corrupted reports whether the entry key was replayed while the chip
// was already in configuration mode.
func (c *SimulatedChip) Corrupted() bool { return c.corrupted }

func (c *SimulatedChip) entryKey(registerPort uint16) []byte {
	switch c.Protocol {
	case ProtocolITE:
		if registerPort == 0x4E {
			return []byte{0x87, 0x01, 0x55, 0xAA}
		}
		return []byte{0x87, 0x01, 0x55, 0x55}
	case ProtocolSMSC:
		return []byte{0x55}
	default:
		return []byte{0x87, 0x87}
	}
}

func (c *SimulatedChip) writeRegisterPort(registerPort uint16, value byte) {
	c.keys = append(c.keys, value)
	if len(c.keys) > 8 {
		c.keys = c.keys[len(c.keys)-8:]
	}
	keyed := bytes.HasSuffix(c.keys, c.entryKey(registerPort))

	if !c.entered {
		if keyed {
			c.entered = true
			c.keys = c.keys[:0]
		}
		return
	}
	if keyed && c.Protocol == ProtocolITE && c.ReentryID != 0 {
		c.corrupted = true
	}
	if value == 0xAA && c.Protocol != ProtocolITE {
		c.entered = false
		return
	}
	c.index = value
}

func (c *SimulatedChip) writeValuePort(value byte) {
	if !c.entered {
		return
	}
	switch {
	case c.index == RegisterDeviceSelect:
		c.ldn = value
	case c.index == RegisterConfigControl && c.Protocol == ProtocolITE && value&0x02 != 0:
		c.entered = false
	case c.index < 0x30:
		c.global[c.index] = value
	default:
		c.SetDevice(c.ldn, c.index, value)
	}
}

func (c *SimulatedChip) readValuePort() byte {
	if !c.entered {
		return 0xFF
	}
	key := RegisterKey{Index: c.index}
	if c.index >= 0x30 {
		key.LDN = c.ldn
	}
	if queued := c.Noise[key]; len(queued) > 0 {
		c.Noise[key] = queued[1:]
		return queued[0]
	}
	switch {
	case c.index == RegisterDeviceSelect:
		return c.ldn
	case c.corrupted && c.index == RegisterChipID:
		return byte(c.ReentryID >> 8)
	case c.corrupted && c.index == RegisterChipRevision:
		return byte(c.ReentryID)
	case c.index < 0x30:
		return c.global[c.index]
	default:
		return c.devices[c.ldn][c.index]
	}
}

// IOSpaceMode selects how a simulated hardware-monitor I/O space
// decodes its index/data ports.
type IOSpaceMode int

const (
	// IOSpaceFlat: index at base+5, data at base+6.
	IOSpaceFlat IOSpaceMode = iota
	// IOSpaceBanked: as flat, with the bank selected by writing
	// register 0x4E.
	IOSpaceBanked
	// IOSpacePaged: page at base+4 (armed by writing 0xFF), index at
	// base+5, data at base+6.
	IOSpacePaged
)

// SimulatedIOSpace is the register file a Super-I/O hardware monitor
// decodes at its base address. Registers are keyed bank<<8 | index.
type SimulatedIOSpace struct {
	Mode      IOSpaceMode
	Registers map[uint16]byte

	index     byte
	bank      byte
	pageArmed bool
}

// NewSimulatedIOSpace returns an empty I/O space.
func NewSimulatedIOSpace(mode IOSpaceMode) *SimulatedIOSpace {
	return &SimulatedIOSpace{Mode: mode, Registers: make(map[uint16]byte)}
}

func (s *SimulatedIOSpace) write(offset uint16, value byte) {
	switch offset {
	case 4:
		if s.Mode != IOSpacePaged {
			return
		}
		if s.pageArmed {
			s.bank = value
			s.pageArmed = false
		} else if value == 0xFF {
			s.pageArmed = true
		}
	case 5:
		s.index = value
	case 6:
		if s.Mode == IOSpaceBanked && s.index == 0x4E {
			s.bank = value
			return
		}
		s.Registers[uint16(s.bank)<<8|uint16(s.index)] = value
	}
}

func (s *SimulatedIOSpace) read(offset uint16) byte {
	if offset != 6 {
		return 0xFF
	}
	if s.Mode == IOSpaceBanked && s.index == 0x4E {
		return s.bank
	}
	return s.Registers[uint16(s.bank)<<8|uint16(s.index)]
}

// SimulatedEC is an ACPI-style embedded controller on the command
// (0x66) and data (0x62) ports.
type SimulatedEC struct {
	Registers [256]byte

	// Busy holds the input-buffer-full flag set, so every wait for the
	// controller times out.
	Busy bool

	command byte
	phase   int
	address byte
	output  byte
	full    bool
}

const (
	ecCommandPort = 0x66
	ecDataPort    = 0x62
)

func (e *SimulatedEC) status() byte {
	var status byte
	if e.full {
		status |= 0x01
	}
	if e.Busy {
		status |= 0x02
	}
	return status
}

func (e *SimulatedEC) writeCommand(value byte) {
	e.command = value
	e.phase = 1
}

func (e *SimulatedEC) writeData(value byte) {
	switch {
	case e.command == 0x80 && e.phase == 1:
		e.output = e.Registers[value]
		e.full = true
		e.phase = 0
	case e.command == 0x81 && e.phase == 1:
		e.address = value
		e.phase = 2
	case e.command == 0x81 && e.phase == 2:
		e.Registers[e.address] = value
		e.phase = 0
	}
}

func (e *SimulatedEC) readData() byte {
	e.full = false
	return e.output
}

// PortWrite is one recorded WritePort call.
type PortWrite struct {
	Port  uint16
	Value byte
}

// String returns "0x2E<-0x87".
func (w PortWrite) String() string {
	return fmt.Sprintf("0x%X<-0x%02X", w.Port, w.Value)
}

// Simulator is an in-memory Driver modelling an LPC bus. It is safe
// for concurrent use; each port access is atomic.
type Simulator struct {
	mu       sync.Mutex
	chips    map[uint16]*SimulatedChip
	spaces   map[uint16]*SimulatedIOSpace
	ec       *SimulatedEC
	msrs     map[uint32]uint64
	writes   []PortWrite
	msrReads int
}

// NewSimulator returns an empty bus: every port reads 0xFF and every
// MSR read fails.
func NewSimulator() *Simulator {
	return &Simulator{
		chips:  make(map[uint16]*SimulatedChip),
		spaces: make(map[uint16]*SimulatedIOSpace),
		msrs:   make(map[uint32]uint64),
	}
}

// AttachChip places a chip behind a configuration port pair. A chip
// with FirmwareEntered starts in configuration mode.
func (s *Simulator) AttachChip(pair PortPair, chip *SimulatedChip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chip.entered = chip.FirmwareEntered
	s.chips[pair.Register] = chip
}

// AttachIOSpace decodes an I/O space at base (ports base..base+7).
func (s *Simulator) AttachIOSpace(base uint16, space *SimulatedIOSpace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spaces[base] = space
}

// AttachEC places an ACPI embedded controller on ports 0x62/0x66.
func (s *Simulator) AttachEC(ec *SimulatedEC) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ec = ec
}

// SetMSR makes an MSR readable with the given value on every CPU.
func (s *Simulator) SetMSR(index uint32, value uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msrs[index] = value
}

// Writes returns a copy of every port write so far.
func (s *Simulator) Writes() []PortWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PortWrite(nil), s.writes...)
}

// WritesTo returns the values written to one port, in order.
func (s *Simulator) WritesTo(port uint16) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	var values []byte
	for _, write := range s.writes {
		if write.Port == port {
			values = append(values, write.Value)
		}
	}
	return values
}

// ResetWrites clears the write log.
func (s *Simulator) ResetWrites() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = nil
}

// MSRReads returns how many ReadMSR calls were made.
func (s *Simulator) MSRReads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.msrReads
}

func (s *Simulator) ReadPort(port uint16) byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chip, ok := s.chips[port-1]; ok {
		return chip.readValuePort()
	}
	if s.ec != nil {
		switch port {
		case ecCommandPort:
			return s.ec.status()
		case ecDataPort:
			return s.ec.readData()
		}
	}
	if space, offset, ok := s.space(port); ok {
		return space.read(offset)
	}
	return 0xFF
}

func (s *Simulator) WritePort(port uint16, value byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writes = append(s.writes, PortWrite{Port: port, Value: value})
	if chip, ok := s.chips[port]; ok {
		chip.writeRegisterPort(port, value)
		return
	}
	if chip, ok := s.chips[port-1]; ok {
		chip.writeValuePort(value)
		return
	}
	if s.ec != nil {
		switch port {
		case ecCommandPort:
			s.ec.writeCommand(value)
			return
		case ecDataPort:
			s.ec.writeData(value)
			return
		}
	}
	if space, offset, ok := s.space(port); ok {
		space.write(offset, value)
	}
}

func (s *Simulator) ReadMSR(index uint32, cpu int) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msrReads++
	value, ok := s.msrs[index]
	if !ok {
		return 0, fmt.Errorf("%w: MSR 0x%X not simulated", ErrMSRUnavailable, index)
	}
	return value, nil
}

func (s *Simulator) space(port uint16) (*SimulatedIOSpace, uint16, bool) {
	for base, space := range s.spaces {
		if port >= base && port < base+8 {
			return space, port - base, true
		}
	}
	return nil, 0, false
}
