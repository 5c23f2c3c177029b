// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package superio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/hwmon/lib/busarb"
	"github.com/bureau-foundation/hwmon/lib/clock"
	"github.com/bureau-foundation/hwmon/lib/portio"
	"github.com/bureau-foundation/hwmon/lib/smbios"
)

// settleDelay is the wait between the two reads of a base address
// register. Reads taken right after a logical-device select are not
// reliable.
const settleDelay = time.Millisecond

// Guard brackets the probe of one port pair with a durable marker so a
// probe that takes the machine down is not repeated on the next start.
// [watchdog.ProbeGuard] implements it.
type Guard interface {
	Interrupted(target string) bool
	Begin(target, stage string) error
	End(target string) error
}

// Config configures a Detector.
type Config struct {
	// Driver performs port I/O. Required.
	Driver portio.Driver

	// Arbiter serializes access to the legacy port space with other
	// processes. Nil means a process-local mutex.
	Arbiter busarb.Arbiter

	// LockTimeout bounds the wait for Arbiter. Zero means
	// busarb.DefaultTimeout.
	LockTimeout time.Duration

	// Clock provides the settle delay. Nil means clock.Real().
	Clock clock.Clock

	// Board is the SMBIOS record. It selects the NCT6687D variant and
	// gates the Gigabyte embedded controller resolver.
	Board smbios.Info

	// Mapper maps the Gigabyte EC RAM window. Nil disables the
	// shared-memory strategy.
	Mapper portio.MemoryMapper

	// Guard is optional.
	Guard Guard

	// Pairs overrides portio.DefaultPortPairs.
	Pairs []portio.PortPair

	Logger *slog.Logger
}

// Result is the outcome of one detection pass.
type Result struct {
	// Devices holds one handle per verified chip, in probe order.
	Devices []Device

	// Report is the diagnostic text, "" when nothing was recorded.
	Report string
}

// Identities returns the identity of every detected device.
func (r Result) Identities() []Identity {
	identities := make([]Identity, len(r.Devices))
	for i, device := range r.Devices {
		identities[i] = device.Identity()
	}
	return identities
}

// Detector scans the Super-I/O configuration ports. A Detector may be
// reused; every Detect call is an independent pass.
type Detector struct {
	driver      portio.Driver
	arbiter     busarb.Arbiter
	lockTimeout time.Duration
	clock       clock.Clock
	board       smbios.Info
	guard       Guard
	pairs       []portio.PortPair
	resolver    *ControllerResolver
	logger      *slog.Logger
}

// New validates config and returns a Detector.
func New(config Config) (*Detector, error) {
	if config.Driver == nil {
		return nil, fmt.Errorf("superio: driver is required")
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Arbiter == nil {
		config.Arbiter = busarb.NewMutex(config.Clock)
	}
	if config.LockTimeout <= 0 {
		config.LockTimeout = busarb.DefaultTimeout
	}
	if len(config.Pairs) == 0 {
		config.Pairs = portio.DefaultPortPairs
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Detector{
		driver:      config.Driver,
		arbiter:     config.Arbiter,
		lockTimeout: config.LockTimeout,
		clock:       config.Clock,
		board:       config.Board,
		guard:       config.Guard,
		pairs:       config.Pairs,
		resolver: &ControllerResolver{
			Driver: config.Driver,
			Mapper: config.Mapper,
			Clock:  config.Clock,
			Logger: logger,
		},
		logger: logger,
	}, nil
}

// Detect runs one pass over every port pair. A bus lock timeout yields
// an empty Result and a nil error: another process owns the bus and
// the caller carries on without Super-I/O sensors.
//
// ctx is checked between port pairs only; a register sequence already
// started is always finished so no chip is left in configuration
// mode. On cancellation Detect returns the devices found so far along
// with ctx.Err().
func (d *Detector) Detect(ctx context.Context) (Result, error) {
	if !d.arbiter.Acquire(d.lockTimeout) {
		d.logger.Debug("bus lock not acquired, skipping Super-I/O detection",
			"timeout", d.lockTimeout)
		return Result{}, nil
	}
	defer d.arbiter.Release()

	var (
		report  Report
		devices []Device
	)
	for _, pair := range d.pairs {
		if err := ctx.Err(); err != nil {
			return Result{Devices: devices, Report: report.String()}, err
		}
		if device := d.probePair(pair, &report); device != nil {
			d.logger.Info("detected Super-I/O chip",
				"chip", device.Chip().String(),
				"address", fmt.Sprintf("0x%X", device.Identity().Address),
				"register_port", fmt.Sprintf("0x%X", pair.Register))
			devices = append(devices, device)
		}
	}

	return Result{Devices: devices, Report: report.String()}, nil
}

// probePair tries each family on one pair in order, stopping at the
// first verified chip.
func (d *Detector) probePair(pair portio.PortPair, report *Report) Device {
	target := pair.String()
	if d.guard != nil && d.guard.Interrupted(target) {
		d.logger.Warn("skipping port pair left mid-probe by a previous run", "pair", target)
		report.skipped(pair)
		return nil
	}
	defer d.endGuard(target)

	channel := portio.NewChannel(d.driver, pair)
	probes := []struct {
		family Family
		probe  func(*portio.Channel, *Report) Device
	}{
		{FamilyWinbondNuvotonFintek, d.probeWinbondFintek},
		{FamilyITE, d.probeITE},
		{FamilySMSC, d.probeSMSC},
	}
	for _, step := range probes {
		d.beginGuard(target, step.family)
		if device := step.probe(channel, report); device != nil {
			return device
		}
	}
	return nil
}

func (d *Detector) beginGuard(target string, family Family) {
	if d.guard == nil {
		return
	}
	if err := d.guard.Begin(target, family.token()); err != nil {
		d.logger.Warn("recording probe marker failed", "pair", target, "error", err)
	}
}

func (d *Detector) endGuard(target string) {
	if d.guard == nil {
		return
	}
	if err := d.guard.End(target); err != nil {
		d.logger.Warn("clearing probe marker failed", "pair", target, "error", err)
	}
}

// readVerified16 reads a word register, waits for it to settle, and
// reads it again.
func (d *Detector) readVerified16(channel *portio.Channel, register byte) (uint16, uint16) {
	first := channel.Read16(register)
	d.clock.Sleep(settleDelay)
	return first, channel.Read16(register)
}

// validAddress is the range and decode-window alignment every
// hardware-monitor base address must satisfy.
func validAddress(address uint16) bool {
	return address >= 0x100 && address&0xF007 == 0
}
