// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gpu

import (
	"log/slog"
	"strings"

	"github.com/bureau-foundation/hwmon/lib/clock"
	"github.com/bureau-foundation/hwmon/lib/hardware"
	"github.com/bureau-foundation/hwmon/lib/sysfs"
)

const intelVendorID = "8086"

// ProbeConfig configures Probe.
type ProbeConfig struct {
	// SysRoot is the sysfs mount, "/sys" in production.
	SysRoot string

	Source   DeviceInfoSource
	MSR      MSRReader
	Clock    clock.Clock
	Settings hardware.Settings
	Logger   *slog.Logger
}

// Probe builds a node for every Intel integrated GPU among the DRM
// cards under SysRoot. A card the source cannot sample is skipped.
func Probe(config ProbeConfig) []*IntegratedGPU {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var gpus []*IntegratedGPU
	for _, card := range sysfs.DRMCards(config.SysRoot) {
		if card.Device.VendorID != intelVendorID || !integratedSlot(card.Device.Slot) {
			continue
		}
		info, ok := config.Source.DeviceInfo(card.Device.Slot)
		if !ok {
			logger.Debug("no statistics for Intel GPU", "card", card.Name, "pci_slot", card.Device.Slot)
			continue
		}
		gpus = append(gpus, NewIntegratedGPU(IntegratedConfig{
			DeviceID: card.Device.Slot,
			Info:     info,
			Source:   config.Source,
			MSR:      config.MSR,
			Clock:    config.Clock,
			Settings: config.Settings,
			Logger:   logger,
		}))
		logger.Info("Intel integrated GPU found",
			"card", card.Name, "pci_slot", card.Device.Slot, "engines", len(info.Nodes))
	}
	return gpus
}

// integratedSlot reports whether a PCI address is on the root bus,
// where Intel places its integrated graphics ("0000:00:02.0").
// Discrete Intel cards sit behind a bridge on another bus.
func integratedSlot(slot string) bool {
	parts := strings.Split(slot, ":")
	return len(parts) == 3 && parts[1] == "00"
}
