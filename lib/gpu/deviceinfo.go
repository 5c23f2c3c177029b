// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gpu

import "time"

// TickDuration is the unit of NodeInfo.RunningTime.
const TickDuration = 100 * time.Nanosecond

// DeviceInfo is one sample of a GPU's memory and engine statistics.
// Memory figures are bytes.
type DeviceInfo struct {
	DedicatedLimit uint64
	DedicatedUsed  uint64
	SharedLimit    uint64
	SharedUsed     uint64

	// Nodes are the GPU engines. IDs are dense, 0 to len(Nodes)-1.
	Nodes []NodeInfo
}

// NodeInfo is one engine's accumulated busy time.
type NodeInfo struct {
	ID   int
	Name string

	// RunningTime is the engine's total busy time in TickDuration units.
	RunningTime uint64

	// QueryTime is when RunningTime was sampled.
	QueryTime time.Time
}

// DeviceInfoSource samples device statistics by device ID.
type DeviceInfoSource interface {
	// DeviceInfo returns the current sample. ok is false when the
	// device is unknown or unreadable.
	DeviceInfo(deviceID string) (info DeviceInfo, ok bool)
}

// MSRReader reads model-specific registers. portio.Driver satisfies it.
type MSRReader interface {
	ReadMSR(index uint32, cpu int) (uint64, error)
}
