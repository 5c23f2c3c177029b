// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package motherboard builds the motherboard branch of the hardware
// tree: the board node, one SuperIOHardware child per detected chip,
// and the optional embedded controller.
package motherboard

import (
	"log/slog"
	"strings"
	"time"

	"github.com/bureau-foundation/hwmon/lib/busarb"
	"github.com/bureau-foundation/hwmon/lib/hardware"
	"github.com/bureau-foundation/hwmon/lib/smbios"
	"github.com/bureau-foundation/hwmon/lib/superio"
)

// Config configures a Motherboard.
type Config struct {
	Board smbios.Info

	// Devices are the detected Super-I/O chips in probe order. The
	// motherboard takes ownership: closing the tree closes them.
	Devices []superio.Device

	// DetectionReport is the Super-I/O detection report text.
	DetectionReport string

	// Arbiter guards register reads in SuperIOHardware.Update. Nil
	// reads without locking.
	Arbiter     busarb.Arbiter
	LockTimeout time.Duration

	// EmbeddedController builds the EC child given the motherboard
	// as parent. It may return nil. Nil means no EC.
	EmbeddedController func(parent hardware.Node) hardware.Node

	Settings hardware.Settings
	Logger   *slog.Logger
}

// Motherboard is the root of the board branch. It has no sensors of
// its own.
type Motherboard struct {
	hardware.Base

	board           smbios.Info
	detectionReport string
	children        []hardware.Node
}

// New builds the board node and its children.
func New(config Config) *Motherboard {
	board := &Motherboard{
		board:           config.Board,
		detectionReport: config.DetectionReport,
	}
	board.Init(board, hardware.BaseConfig{
		Identifier:  hardware.NewIdentifier("motherboard"),
		DefaultName: Name(config.Board),
		Type:        hardware.TypeMotherboard,
		Settings:    config.Settings,
		Logger:      config.Logger,
	})

	for _, group := range groupByChip(config.Devices) {
		for index, device := range group {
			board.children = append(board.children, newSuperIOHardware(superIOConfig{
				device:      device,
				index:       index,
				parent:      board,
				arbiter:     config.Arbiter,
				lockTimeout: config.LockTimeout,
				settings:    config.Settings,
				logger:      board.Logger(),
			}))
		}
	}

	if config.EmbeddedController != nil {
		if controller := config.EmbeddedController(board); controller != nil {
			board.children = append(board.children, controller)
		}
	}

	return board
}

// groupByChip groups devices by chip, groups in order of first
// appearance and devices in probe order within a group. Identical
// chips get a stable per-chip index from their position in the group.
func groupByChip(devices []superio.Device) [][]superio.Device {
	var (
		order  []superio.Chip
		groups = make(map[superio.Chip][]superio.Device)
	)
	for _, device := range devices {
		chip := device.Chip()
		if _, seen := groups[chip]; !seen {
			order = append(order, chip)
		}
		groups[chip] = append(groups[chip], device)
	}
	grouped := make([][]superio.Device, 0, len(order))
	for _, chip := range order {
		grouped = append(grouped, groups[chip])
	}
	return grouped
}

// Name is the detected board name: "<Manufacturer> <Product>", the
// product alone for an unrecognized manufacturer, the manufacturer
// alone without a product, and "Unknown" without a board record.
func Name(info smbios.Info) string {
	if info.Board == nil {
		return smbios.ManufacturerUnknown.String()
	}
	manufacturer := info.Board.Manufacturer()
	product := strings.TrimSpace(info.Board.ProductName)
	switch {
	case product == "":
		return manufacturer.String()
	case manufacturer == smbios.ManufacturerUnknown:
		return product
	default:
		return manufacturer.String() + " " + product
	}
}

// Manufacturer returns the classified board vendor.
func (m *Motherboard) Manufacturer() smbios.Manufacturer { return m.board.Board.Manufacturer() }

// Model returns the normalized board model.
func (m *Motherboard) Model() smbios.Model { return m.board.Board.Model() }

// SMBIOS returns the board record the node was built from.
func (m *Motherboard) SMBIOS() smbios.Info { return m.board }

func (m *Motherboard) SubHardware() []hardware.Node { return m.children }

// Report returns the SMBIOS summary followed by the detection report.
func (m *Motherboard) Report() string {
	var builder strings.Builder
	builder.WriteString("Motherboard\n\n")
	builder.WriteString(m.board.Report())
	builder.WriteString(m.detectionReport)
	return builder.String()
}
