// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"encoding/hex"
	"time"

	"github.com/bureau-foundation/hwmon/lib/hardware"
)

// Snapshot is one polling pass worth of readings.
type Snapshot struct {
	Time time.Time `json:"time"`

	// Topology is the hex topology fingerprint of the tree the
	// snapshot was taken from. Consumers compare it across snapshots
	// to notice rebuilds that changed the set of sensors.
	Topology string `json:"topology,omitempty"`

	Hardware []HardwareSnapshot `json:"hardware"`
}

// HardwareSnapshot is one node, listed parents before children.
type HardwareSnapshot struct {
	Identifier string           `json:"identifier"`
	Name       string           `json:"name"`
	Type       string           `json:"type"`
	Parent     string           `json:"parent,omitempty"`
	Depth      int              `json:"depth"`
	Sensors    []SensorSnapshot `json:"sensors,omitempty"`
}

// SensorSnapshot is one active sensor. Value, Min and Max are nil
// until the sensor has produced its first reading.
type SensorSnapshot struct {
	Identifier string   `json:"identifier"`
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Unit       string   `json:"unit,omitempty"`
	Value      *float64 `json:"value,omitempty"`
	Min        *float64 `json:"min,omitempty"`
	Max        *float64 `json:"max,omitempty"`
}

// Capture copies the current state of the tree. Inactive sensors are
// left out. The tree is read, not updated.
func Capture(computer *hardware.Computer, now time.Time) Snapshot {
	snapshot := Snapshot{Time: now}
	computer.Walk(func(node hardware.Node, depth int) {
		entry := HardwareSnapshot{
			Identifier: node.Identifier().String(),
			Name:       node.Name(),
			Type:       node.HardwareType().String(),
			Depth:      depth,
		}
		if parent := node.Parent(); parent != nil {
			entry.Parent = parent.Identifier().String()
		}
		for _, sensor := range node.Sensors() {
			entry.Sensors = append(entry.Sensors, captureSensor(sensor))
		}
		snapshot.Hardware = append(snapshot.Hardware, entry)
	})
	return snapshot
}

func captureSensor(sensor *hardware.Sensor) SensorSnapshot {
	entry := SensorSnapshot{
		Identifier: sensor.Identifier().String(),
		Name:       sensor.Name(),
		Type:       sensor.Type().String(),
		Unit:       sensor.Type().Unit(),
	}
	if value, ok := sensor.Value(); ok {
		entry.Value = &value
		minimum, _ := sensor.Min()
		maximum, _ := sensor.Max()
		entry.Min = &minimum
		entry.Max = &maximum
	}
	return entry
}

// FormatTopology renders a topology fingerprint for Snapshot.Topology.
func FormatTopology(fingerprint [32]byte) string {
	return hex.EncodeToString(fingerprint[:])
}

// SensorCount returns the number of sensors in the snapshot.
func (s Snapshot) SensorCount() int {
	count := 0
	for _, entry := range s.Hardware {
		count += len(entry.Sensors)
	}
	return count
}
