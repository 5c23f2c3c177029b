// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package motherboard

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bureau-foundation/hwmon/lib/busarb"
	"github.com/bureau-foundation/hwmon/lib/hardware"
	"github.com/bureau-foundation/hwmon/lib/superio"
)

type superIOConfig struct {
	device      superio.Device
	index       int
	parent      hardware.Node
	arbiter     busarb.Arbiter
	lockTimeout time.Duration
	settings    hardware.Settings
	logger      *slog.Logger
}

// SuperIOHardware exposes one Super-I/O chip's register-backed sensors.
type SuperIOHardware struct {
	hardware.Base

	device      superio.Device
	arbiter     busarb.Arbiter
	lockTimeout time.Duration
	specs       []superio.SensorSpec
	sensors     []*hardware.Sensor
	raw         []byte
	read        bool
	skipped     int
}

func newSuperIOHardware(config superIOConfig) *SuperIOHardware {
	chip := config.device.Chip()
	lockTimeout := config.lockTimeout
	if lockTimeout <= 0 {
		lockTimeout = busarb.DefaultTimeout
	}
	node := &SuperIOHardware{
		device:      config.device,
		arbiter:     config.arbiter,
		lockTimeout: lockTimeout,
		specs:       config.device.Sensors(),
	}
	node.raw = make([]byte, len(node.specs))
	node.Init(node, hardware.BaseConfig{
		Identifier: config.parent.Identifier().Child(
			strings.ToLower(chip.String()), fmt.Sprint(config.index)),
		DefaultName: chip.Name(),
		Type:        hardware.TypeSuperIO,
		Parent:      config.parent,
		Settings:    config.settings,
		Logger:      config.logger,
	})

	counts := make(map[hardware.SensorType]int)
	for _, spec := range node.specs {
		node.sensors = append(node.sensors, node.NewSensor(spec.Name, counts[spec.Type], spec.Type))
		counts[spec.Type]++
	}
	return node
}

// Device returns the chip handle.
func (s *SuperIOHardware) Device() superio.Device { return s.device }

// Update reads every sensor register under one bus acquisition. A
// reading the chip flags as disconnected leaves its sensor untouched,
// so a sensor that never reads valid stays hidden.
func (s *SuperIOHardware) Update() {
	if s.arbiter != nil {
		if !s.arbiter.Acquire(s.lockTimeout) {
			s.skipped++
			s.Logger().Debug("bus busy, skipping Super-I/O update",
				"hardware", s.Identifier().String())
			return
		}
		defer s.arbiter.Release()
	}

	s.read = true
	for i, spec := range s.specs {
		s.raw[i] = s.device.ReadRegister(spec.Register)
		value, ok := spec.Convert(s.raw[i])
		if !ok {
			continue
		}
		s.sensors[i].Set(value)
		s.sensors[i].Activate()
	}
}

// Report lists the chip identity and, for every sensor register, the
// raw byte from the last update and the sensor value derived from it.
func (s *SuperIOHardware) Report() string {
	identity := s.device.Identity()
	var builder strings.Builder
	fmt.Fprintf(&builder, "%s\n\n", s.device.Chip().Name())
	fmt.Fprintf(&builder, "Chip ID: 0x%04X\n", uint16(identity.Chip))
	fmt.Fprintf(&builder, "Chip revision: 0x%X\n", identity.Revision)
	fmt.Fprintf(&builder, "Base address: 0x%X\n", identity.Address)
	if identity.GPIOAddress != 0 {
		fmt.Fprintf(&builder, "GPIO address: 0x%X\n", identity.GPIOAddress)
	}
	fmt.Fprintf(&builder, "Configuration port: %s\n", identity.Pair)
	if controller := s.device.Controller(); controller != nil {
		fmt.Fprintf(&builder, "Embedded controller: %s\n", controller.Kind())
	}
	fmt.Fprintf(&builder, "Skipped updates: %d\n\n", s.skipped)
	for i, spec := range s.specs {
		raw := "--"
		if s.read {
			raw = fmt.Sprintf("%02X", s.raw[i])
		}
		value, ok := s.sensors[i].Value()
		if ok {
			fmt.Fprintf(&builder, "Register 0x%03X %s %-12s %g\n", spec.Register, raw, spec.Name, value)
		} else {
			fmt.Fprintf(&builder, "Register 0x%03X %s %-12s -\n", spec.Register, raw, spec.Name)
		}
	}
	builder.WriteString("\n")
	return builder.String()
}

// Close releases the chip handle.
func (s *SuperIOHardware) Close() {
	if err := s.device.Close(); err != nil {
		s.Logger().Debug("closing Super-I/O device failed",
			"hardware", s.Identifier().String(), "error", err)
	}
}
