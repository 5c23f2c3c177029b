// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package smbios exposes the board, BIOS, and processor identity the
// detection engine keys its vendor-specific behaviour on. On Linux the
// kernel has already parsed the SMBIOS tables into /sys/class/dmi/id;
// processor vendors come from /proc/cpuinfo.
package smbios

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/hwmon/lib/sysfs"
)

// Board is the baseboard record.
type Board struct {
	ManufacturerName string
	ProductName      string
	Version          string
	SerialNumber     string
}

// Manufacturer classifies the board vendor.
func (b *Board) Manufacturer() Manufacturer {
	if b == nil {
		return ManufacturerUnknown
	}
	return IdentifyManufacturer(b.ManufacturerName)
}

// Model classifies the board product.
func (b *Board) Model() Model {
	if b == nil {
		return ModelUnknown
	}
	return IdentifyModel(b.ProductName)
}

// BIOS is the firmware record.
type BIOS struct {
	Vendor  string
	Version string
	Date    string
}

// Processor is one physical package.
type Processor struct {
	// ManufacturerName is the vendor in SMBIOS form, e.g.
	// "Advanced Micro Devices, Inc.".
	ManufacturerName string

	// Version is the marketing name, e.g. "AMD Ryzen 9 7950X
	// 16-Core Processor".
	Version string
}

// Info is the subset of SMBIOS the engine consumes. Board is nil when
// the firmware publishes no baseboard record.
type Info struct {
	Board      *Board
	BIOS       BIOS
	Processors []Processor
}

// Read returns the identity of the running machine.
func Read() Info {
	return ReadFrom("/sys", "/proc")
}

// ReadFrom reads DMI attributes under sysRoot and processor records
// from procRoot/cpuinfo. Missing files produce empty fields.
func ReadFrom(sysRoot, procRoot string) Info {
	dmi := func(name string) string {
		return sysfs.ReadString(sysfs.Join(sysRoot, "class", "dmi", "id", name))
	}

	info := Info{
		BIOS: BIOS{
			Vendor:  dmi("bios_vendor"),
			Version: dmi("bios_version"),
			Date:    dmi("bios_date"),
		},
		Processors: readProcessors(filepath.Join(procRoot, "cpuinfo")),
	}

	board := Board{
		ManufacturerName: dmi("board_vendor"),
		ProductName:      dmi("board_name"),
		Version:          dmi("board_version"),
		SerialNumber:     dmi("board_serial"),
	}
	if board.ManufacturerName != "" || board.ProductName != "" {
		info.Board = &board
	}
	return info
}

// cpuVendorNames maps cpuinfo vendor_id strings to the manufacturer
// names SMBIOS type 4 records carry.
var cpuVendorNames = map[string]string{
	"GenuineIntel": "Intel(R) Corporation",
	"AuthenticAMD": "Advanced Micro Devices, Inc.",
	"HygonGenuine": "Chengdu Hygon IC Design Co., Ltd.",
}

// readProcessors returns one Processor per distinct "physical id" in
// cpuinfo, in first-seen order. Kernels that omit physical id (some
// VMs) yield a single processor.
func readProcessors(path string) []Processor {
	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()

	var processors []Processor
	seen := make(map[string]bool)
	var vendor, model, physicalID string

	flush := func() {
		if vendor == "" && model == "" {
			return
		}
		if !seen[physicalID] {
			seen[physicalID] = true
			name := vendor
			if mapped, ok := cpuVendorNames[vendor]; ok {
				name = mapped
			}
			processors = append(processors, Processor{ManufacturerName: name, Version: model})
		}
		vendor, model, physicalID = "", "", ""
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "vendor_id":
			vendor = value
		case "model name":
			model = value
		case "physical id":
			physicalID = value
		}
	}
	flush()
	return processors
}
