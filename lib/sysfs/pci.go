// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sysfs

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PCIDevice is the identity of a PCI function as reported by its
// uevent file.
type PCIDevice struct {
	// VendorID and DeviceID are lower-case hex without a prefix,
	// e.g. "8086" and "a780".
	VendorID string
	DeviceID string

	// Slot is the PCI address, e.g. "0000:00:02.0".
	Slot string

	// Driver is the bound kernel driver, e.g. "i915". Empty when no
	// driver is bound.
	Driver string
}

// VendorName returns a display name for the vendor.
func (d PCIDevice) VendorName() string {
	return PCIVendorName(d.VendorID)
}

// IsCardDevice returns true for DRM card device names (card0, card1, ...)
// but not connectors (card0-DP-1) or render nodes (renderD128).
func IsCardDevice(name string) bool {
	suffix, ok := strings.CutPrefix(name, "card")
	if !ok || suffix == "" {
		return false
	}
	for _, character := range suffix {
		if character < '0' || character > '9' {
			return false
		}
	}
	return true
}

// ReadDriverName returns the kernel driver name for a PCI device by
// reading the basename of the "driver" symlink in the device directory.
func ReadDriverName(devicePath string) string {
	link, err := os.Readlink(filepath.Join(devicePath, "driver"))
	if err != nil {
		return ""
	}
	return filepath.Base(link)
}

// ReadPCIDevice parses the device's uevent file:
//
//	PCI_ID=8086:A780
//	PCI_SLOT_NAME=0000:00:02.0
//
// ok is false when the file is missing or has no PCI_ID.
func ReadPCIDevice(devicePath string) (device PCIDevice, ok bool) {
	data, err := os.ReadFile(filepath.Join(devicePath, "uevent"))
	if err != nil {
		return PCIDevice{}, false
	}

	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch key {
		case "PCI_ID":
			vendor, product, found := strings.Cut(value, ":")
			if found {
				device.VendorID = strings.ToLower(vendor)
				device.DeviceID = strings.ToLower(product)
			}
		case "PCI_SLOT_NAME":
			device.Slot = value
		case "DRIVER":
			device.Driver = value
		}
	}
	if device.VendorID == "" {
		return PCIDevice{}, false
	}
	if device.Driver == "" {
		device.Driver = ReadDriverName(devicePath)
	}
	return device, true
}

// PCIVendorName maps a PCI vendor ID to a human-readable name.
func PCIVendorName(vendorID string) string {
	switch vendorID {
	case "1002":
		return "AMD"
	case "10de":
		return "NVIDIA"
	case "8086":
		return "Intel"
	default:
		if vendorID != "" {
			return fmt.Sprintf("0x%s", vendorID)
		}
		return ""
	}
}

// DRMCard is one /sys/class/drm/cardN entry.
type DRMCard struct {
	// Name is the card directory name, e.g. "card0".
	Name string

	// DevicePath is the sysfs path of the backing PCI device.
	DevicePath string

	Device PCIDevice
}

// DRMCards lists PCI-backed DRM cards under sysRoot, sorted by name.
func DRMCards(sysRoot string) []DRMCard {
	base := Join(sysRoot, "class", "drm")
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}

	var cards []DRMCard
	for _, entry := range entries {
		if !IsCardDevice(entry.Name()) {
			continue
		}
		devicePath := filepath.Join(base, entry.Name(), "device")
		device, ok := ReadPCIDevice(devicePath)
		if !ok {
			continue
		}
		cards = append(cards, DRMCard{Name: entry.Name(), DevicePath: devicePath, Device: device})
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].Name < cards[j].Name })
	return cards
}
