// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gpu

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bureau-foundation/hwmon/lib/clock"
	"github.com/bureau-foundation/hwmon/lib/hardware"
)

const (
	msrRAPLPowerUnit   = 0x606
	msrPP1EnergyStatus = 0x641
)

// DefaultIntegratedName is the display name of an Intel integrated GPU.
const DefaultIntegratedName = "Intel Integrated Graphics"

// IntegratedConfig configures an IntegratedGPU.
type IntegratedConfig struct {
	// DeviceID is the source's key for the device, the PCI slot for
	// FdinfoSource.
	DeviceID string

	// Name defaults to DefaultIntegratedName.
	Name string

	// Info is the first sample. It decides which memory sensors exist
	// and seeds the engine baselines.
	Info DeviceInfo

	Source DeviceInfoSource

	// MSR reads the RAPL energy counter. Nil means no power sensor.
	MSR MSRReader

	Clock    clock.Clock
	Settings hardware.Settings
	Logger   *slog.Logger
}

// IntegratedGPU reports memory use, engine load, and package power of
// an Intel integrated GPU.
type IntegratedGPU struct {
	hardware.Base

	deviceID string
	source   DeviceInfoSource
	msr      MSRReader
	clock    clock.Clock

	dedicatedUsed *hardware.Sensor
	sharedUsed    *hardware.Sensor
	sharedFree    *hardware.Sensor
	sharedTotal   *hardware.Sensor

	power      *hardware.Sensor
	energy     RateCounter
	energyUnit float64

	engines map[int]*engine

	last            DeviceInfo
	missedSamples   int
	shapeMismatches int
}

// engine is the retained state of one GPU engine, keyed by node ID.
type engine struct {
	name    string
	sensor  *hardware.Sensor
	running uint64
	at      time.Time
}

// NewIntegratedGPU builds the node. The power sensor, when available,
// is active from construction; the rest activate on their first
// update.
func NewIntegratedGPU(config IntegratedConfig) *IntegratedGPU {
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	name := config.Name
	if name == "" {
		name = DefaultIntegratedName
	}

	gpu := &IntegratedGPU{
		deviceID: config.DeviceID,
		source:   config.Source,
		msr:      config.MSR,
		clock:    config.Clock,
		engines:  make(map[int]*engine),
		last:     config.Info,
	}
	gpu.Init(gpu, hardware.BaseConfig{
		Identifier:  hardware.NewIdentifier("gpu-intel-integrated", config.DeviceID),
		DefaultName: name,
		Type:        hardware.TypeGPUIntel,
		Settings:    config.Settings,
		Logger:      config.Logger,
	})

	memoryIndex := 0
	if config.Info.DedicatedLimit > 0 {
		gpu.dedicatedUsed = gpu.NewSensor("GPU Dedicated Memory Used", memoryIndex, hardware.SensorSmallData)
		memoryIndex++
	}
	gpu.sharedUsed = gpu.NewSensor("GPU Shared Memory Used", memoryIndex, hardware.SensorSmallData)
	memoryIndex++
	if config.Info.SharedLimit > 0 {
		gpu.sharedFree = gpu.NewSensor("GPU Shared Memory Free", memoryIndex, hardware.SensorSmallData)
		gpu.sharedTotal = gpu.NewSensor("GPU Shared Memory Total", memoryIndex+1, hardware.SensorSmallData)
	}

	gpu.initPower()
	gpu.initEngines(config.Info.Nodes)
	return gpu
}

func (g *IntegratedGPU) initPower() {
	if g.msr == nil {
		return
	}
	energy, err := g.msr.ReadMSR(msrPP1EnergyStatus, 0)
	if err != nil {
		g.Logger().Debug("GPU energy counter unavailable", "device", g.deviceID, "error", err)
		return
	}
	g.energyUnit = energyUnit(g.msr)
	if g.energyUnit == 0 {
		return
	}
	g.energy = RateCounter{Scale: g.energyUnit}
	g.energy.Reset(uint32(energy), g.clock.Now())
	g.power = g.NewSensor("GPU Power", 0, hardware.SensorPower)
	g.power.Activate()
}

// energyUnit returns joules per RAPL energy count, 1/2^ESU with ESU
// in bits 12:8 of the power unit register. 0 when the register is
// unreadable or reports no unit.
func energyUnit(msr MSRReader) float64 {
	raw, err := msr.ReadMSR(msrRAPLPowerUnit, 0)
	if err != nil {
		return 0
	}
	esu := (raw >> 8) & 0x1F
	if esu == 0 {
		return 0
	}
	return 1 / float64(uint64(1)<<esu)
}

// initEngines creates one load sensor per engine, indexed in name
// order. Nodes with duplicate IDs keep the first.
func (g *IntegratedGPU) initEngines(nodes []NodeInfo) {
	sorted := make([]NodeInfo, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	index := 0
	for _, node := range sorted {
		if _, exists := g.engines[node.ID]; exists {
			continue
		}
		g.engines[node.ID] = &engine{
			name:    node.Name,
			sensor:  g.NewSensor(engineSensorName(node.Name), index, hardware.SensorLoad),
			running: node.RunningTime,
			at:      node.QueryTime,
		}
		index++
	}
}

// engineSensorName turns a DRM engine class ("video-enhance") into a
// display name ("GPU Video Enhance").
func engineSensorName(class string) string {
	words := strings.FieldsFunc(class, func(r rune) bool { return r == '-' || r == '_' })
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return "GPU " + strings.Join(words, " ")
}

// DeviceID returns the source key the node samples.
func (g *IntegratedGPU) DeviceID() string { return g.deviceID }

// Update samples the source once. A failed sample leaves every
// sensor as it was.
func (g *IntegratedGPU) Update() {
	info, ok := g.source.DeviceInfo(g.deviceID)
	if !ok {
		g.missedSamples++
		return
	}
	g.last = info

	if g.dedicatedUsed != nil {
		g.dedicatedUsed.Set(BytesToMiB(info.DedicatedUsed))
		g.dedicatedUsed.Activate()
	}

	used := BytesToMiB(info.SharedUsed)
	g.sharedUsed.Set(used)
	g.sharedUsed.Activate()

	if g.sharedTotal != nil {
		total := BytesToMiB(info.SharedLimit)
		g.sharedTotal.Set(total)
		g.sharedTotal.Activate()
		g.sharedFree.Set(total - used)
		g.sharedFree.Activate()
	}

	g.updatePower()
	g.updateEngines(info.Nodes)
}

func (g *IntegratedGPU) updatePower() {
	if g.power == nil {
		return
	}
	energy, err := g.msr.ReadMSR(msrPP1EnergyStatus, 0)
	if err != nil {
		return
	}
	if watts, advanced := g.energy.Update(uint32(energy), g.clock.Now()); advanced {
		g.power.Set(watts)
	}
}

// updateEngines derives each engine's load from its busy-time delta.
// A sample whose engine count differs from the retained set is
// skipped whole.
func (g *IntegratedGPU) updateEngines(nodes []NodeInfo) {
	if len(nodes) != len(g.engines) {
		g.shapeMismatches++
		g.Logger().Debug("GPU engine count changed, skipping load update",
			"device", g.deviceID, "retained", len(g.engines), "reported", len(nodes))
		return
	}

	for _, node := range nodes {
		state, ok := g.engines[node.ID]
		if !ok {
			continue
		}
		ticks := int64(node.QueryTime.Sub(state.at) / TickDuration)
		if ticks == 0 {
			continue
		}
		previous := state.running
		state.running = node.RunningTime
		state.at = node.QueryTime
		if node.RunningTime < previous || ticks < 0 {
			// A client exited and took its busy time with it.
			continue
		}
		state.sensor.Set(100 * float64(node.RunningTime-previous) / float64(ticks))
		state.sensor.Activate()
	}
}

// Report lists the last sample and counters.
func (g *IntegratedGPU) Report() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%s\n\n", g.Name())
	fmt.Fprintf(&builder, "Device: %s\n", g.deviceID)
	fmt.Fprintf(&builder, "Dedicated memory: %d / %d bytes\n", g.last.DedicatedUsed, g.last.DedicatedLimit)
	fmt.Fprintf(&builder, "Shared memory: %d / %d bytes\n", g.last.SharedUsed, g.last.SharedLimit)
	if g.power != nil {
		fmt.Fprintf(&builder, "Energy unit: %g J\n", g.energyUnit)
	} else {
		builder.WriteString("Energy unit: unavailable\n")
	}
	fmt.Fprintf(&builder, "Missed samples: %d\n", g.missedSamples)
	fmt.Fprintf(&builder, "Engine count changes: %d\n", g.shapeMismatches)

	ids := make([]int, 0, len(g.engines))
	for id := range g.engines {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		state := g.engines[id]
		fmt.Fprintf(&builder, "Engine %d %-16s %d ticks\n", id, state.name, state.running)
	}
	builder.WriteString("\n")
	return builder.String()
}
