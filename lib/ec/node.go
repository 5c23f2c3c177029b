// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ec

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bureau-foundation/hwmon/lib/busarb"
	"github.com/bureau-foundation/hwmon/lib/hardware"
	"github.com/bureau-foundation/hwmon/lib/smbios"
)

// SensorSource describes one EC register exposed as a sensor.
type SensorSource struct {
	Name string `yaml:"name"`

	// Type is a hardware.SensorType name, e.g. "Temperature".
	Type string `yaml:"type"`

	Register byte `yaml:"register"`

	// Width is 1 or 2 bytes. Two-byte values are big-endian.
	Width int `yaml:"width"`

	// Scale multiplies the raw value. Zero means 1.
	Scale float64 `yaml:"scale"`

	// Signed interprets the raw value as two's complement.
	Signed bool `yaml:"signed"`

	// Blank, when non-zero, is the raw value the EC reports for an
	// absent sensor.
	Blank uint16 `yaml:"blank"`
}

// Validate checks the source for use as a sensor.
func (s SensorSource) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("EC sensor at register 0x%02X has no name", s.Register)
	}
	if _, ok := hardware.ParseSensorType(s.Type); !ok {
		return fmt.Errorf("EC sensor %q: unknown type %q", s.Name, s.Type)
	}
	if s.Width != 1 && s.Width != 2 {
		return fmt.Errorf("EC sensor %q: width %d (must be 1 or 2)", s.Name, s.Width)
	}
	if s.Width == 2 && s.Register == 0xFF {
		return fmt.Errorf("EC sensor %q: word at 0xFF runs past the register space", s.Name)
	}
	return nil
}

func (s SensorSource) convert(raw uint16) (float64, bool) {
	if s.Blank != 0 && raw == s.Blank {
		return 0, false
	}
	scale := s.Scale
	if scale == 0 {
		scale = 1
	}
	value := float64(raw)
	if s.Signed {
		if s.Width == 1 {
			value = float64(int8(raw))
		} else {
			value = float64(int16(raw))
		}
	}
	return value * scale, true
}

// BoardSensors maps normalized board models to their EC sensor
// layouts.
type BoardSensors map[smbios.Model][]SensorSource

// asusROGSensors is the register layout shared by ASUS ROG boards of
// the X570/B550 generation.
var asusROGSensors = []SensorSource{
	{Name: "Chipset", Type: "Temperature", Register: 0x3A, Width: 1, Signed: true},
	{Name: "CPU", Type: "Temperature", Register: 0x3B, Width: 1, Signed: true},
	{Name: "Motherboard", Type: "Temperature", Register: 0x3C, Width: 1, Signed: true},
	{Name: "T Sensor", Type: "Temperature", Register: 0x3D, Width: 1, Signed: true, Blank: 0xD8},
	{Name: "VRM", Type: "Temperature", Register: 0x3E, Width: 1, Signed: true},
	{Name: "CPU Optional", Type: "Fan", Register: 0xB0, Width: 2},
	{Name: "Chipset", Type: "Fan", Register: 0xB4, Width: 2},
	{Name: "Water Flow", Type: "Flow", Register: 0xBC, Width: 2, Scale: 1.0 / 42},
}

// DefaultBoards is the built-in board table.
var DefaultBoards = BoardSensors{
	"ROG_CROSSHAIR_VIII_HERO":      asusROGSensors,
	"ROG_CROSSHAIR_VIII_DARK_HERO": asusROGSensors,
	"ROG_STRIX_X570_E_GAMING": {
		{Name: "Chipset", Type: "Temperature", Register: 0x3A, Width: 1, Signed: true},
		{Name: "CPU", Type: "Temperature", Register: 0x3B, Width: 1, Signed: true},
		{Name: "Motherboard", Type: "Temperature", Register: 0x3C, Width: 1, Signed: true},
		{Name: "T Sensor", Type: "Temperature", Register: 0x3D, Width: 1, Signed: true, Blank: 0xD8},
		{Name: "VRM", Type: "Temperature", Register: 0x3E, Width: 1, Signed: true},
		{Name: "Chipset", Type: "Fan", Register: 0xB4, Width: 2},
	},
	"ROG_STRIX_B550_E_GAMING": {
		{Name: "CPU", Type: "Temperature", Register: 0x3B, Width: 1, Signed: true},
		{Name: "Motherboard", Type: "Temperature", Register: 0x3C, Width: 1, Signed: true},
		{Name: "T Sensor", Type: "Temperature", Register: 0x3D, Width: 1, Signed: true, Blank: 0xD8},
		{Name: "VRM", Type: "Temperature", Register: 0x3E, Width: 1, Signed: true},
	},
}

// Merge returns a table with extra's entries overriding b's.
func (b BoardSensors) Merge(extra BoardSensors) BoardSensors {
	merged := make(BoardSensors, len(b)+len(extra))
	for model, sources := range b {
		merged[model] = sources
	}
	for model, sources := range extra {
		merged[model] = sources
	}
	return merged
}

// Config configures an EmbeddedController node.
type Config struct {
	Model    smbios.Model
	Boards   BoardSensors
	Port     *Port
	Arbiter  busarb.Arbiter
	Parent   hardware.Node
	Settings hardware.Settings
	Logger   *slog.Logger

	// LockTimeout bounds each Update's wait for the bus. Zero uses
	// busarb.DefaultTimeout.
	LockTimeout time.Duration
}

// EmbeddedController is the hardware node for an ACPI EC with a known
// register layout.
type EmbeddedController struct {
	hardware.Base

	port        *Port
	arbiter     busarb.Arbiter
	lockTimeout time.Duration
	sources     []SensorSource
	sensors     []*hardware.Sensor
	failures    int
}

// present checks the EC status port under the bus lock. A busy bus
// counts as no EC.
func present(port *Port, arbiter busarb.Arbiter, timeout time.Duration) bool {
	if arbiter != nil {
		if !arbiter.Acquire(timeout) {
			return false
		}
		defer arbiter.Release()
	}
	return port.Present()
}

// Create returns the EC node for the board model, or nil when the
// model has no table (or an invalid one) or no EC answers on the
// port.
func Create(config Config) *EmbeddedController {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sources, ok := config.Boards[config.Model]
	if !ok || len(sources) == 0 || config.Port == nil {
		return nil
	}
	for _, source := range sources {
		if err := source.Validate(); err != nil {
			logger.Warn("ignoring EC board table", "model", string(config.Model), "error", err)
			return nil
		}
	}
	lockTimeout := config.LockTimeout
	if lockTimeout <= 0 {
		lockTimeout = busarb.DefaultTimeout
	}
	if !present(config.Port, config.Arbiter, lockTimeout) {
		logger.Debug("no embedded controller on ACPI EC ports", "model", string(config.Model))
		return nil
	}

	identifier := hardware.NewIdentifier("ec")
	if config.Parent != nil {
		identifier = config.Parent.Identifier().Child("ec")
	}

	controller := &EmbeddedController{
		port:        config.Port,
		arbiter:     config.Arbiter,
		lockTimeout: lockTimeout,
		sources:     sources,
	}
	controller.Init(controller, hardware.BaseConfig{
		Identifier:  identifier,
		DefaultName: "Embedded Controller",
		Type:        hardware.TypeEmbeddedController,
		Parent:      config.Parent,
		Settings:    config.Settings,
		Logger:      logger,
	})

	counts := make(map[hardware.SensorType]int)
	for _, source := range sources {
		sensorType, _ := hardware.ParseSensorType(source.Type)
		controller.sensors = append(controller.sensors,
			controller.NewSensor(source.Name, counts[sensorType], sensorType))
		counts[sensorType]++
	}
	return controller
}

// Update reads every register under one bus acquisition. A missed
// acquisition skips the tick; a failed read leaves that sensor as it
// was.
func (c *EmbeddedController) Update() {
	if c.arbiter != nil {
		if !c.arbiter.Acquire(c.lockTimeout) {
			c.Logger().Debug("bus busy, skipping EC update")
			return
		}
		defer c.arbiter.Release()
	}

	for i, source := range c.sources {
		var raw uint16
		var err error
		if source.Width == 2 {
			raw, err = c.port.ReadWord(source.Register)
		} else {
			var value byte
			value, err = c.port.Read(source.Register)
			raw = uint16(value)
		}
		if err != nil {
			c.failures++
			c.Logger().Debug("EC register read failed",
				"register", source.Register,
				"sensor", source.Name,
				"error", err)
			continue
		}
		value, ok := source.convert(raw)
		if !ok {
			continue
		}
		c.sensors[i].Set(value)
		c.sensors[i].Activate()
	}
}

// Report lists the register layout and read failures.
func (c *EmbeddedController) Report() string {
	var builder strings.Builder
	builder.WriteString("Embedded Controller\n\n")
	ordered := append([]SensorSource(nil), c.sources...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Register < ordered[j].Register })
	for _, source := range ordered {
		fmt.Fprintf(&builder, "Register 0x%02X (%d byte): %s %s\n", source.Register, source.Width, source.Type, source.Name)
	}
	fmt.Fprintf(&builder, "Read failures: %d\n", c.failures)
	return builder.String()
}
