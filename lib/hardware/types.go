// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hardware

import "strings"

// Type tags the kind of hardware a node represents.
type Type int

const (
	TypeMotherboard Type = iota
	TypeSuperIO
	TypeEmbeddedController
	TypeCPU
	TypeGPUIntel
	TypeGPUAMD
	TypeGPUNvidia
	TypeMemory
)

var typeNames = [...]string{
	TypeMotherboard:        "Motherboard",
	TypeSuperIO:            "SuperIO",
	TypeEmbeddedController: "EmbeddedController",
	TypeCPU:                "Cpu",
	TypeGPUIntel:           "GpuIntel",
	TypeGPUAMD:             "GpuAmd",
	TypeGPUNvidia:          "GpuNvidia",
	TypeMemory:             "Memory",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "Unknown"
	}
	return typeNames[t]
}

// SensorType is the physical quantity a sensor measures. It fixes the
// unit: Temperature in °C, Fan in RPM, Voltage in V, Power in W, Load
// and Control and Level in %, Data in GiB, SmallData in MiB.
type SensorType int

const (
	SensorVoltage SensorType = iota
	SensorCurrent
	SensorPower
	SensorClock
	SensorTemperature
	SensorLoad
	SensorFrequency
	SensorFan
	SensorFlow
	SensorControl
	SensorLevel
	SensorFactor
	SensorData
	SensorSmallData
	SensorThroughput
	SensorEnergy
	SensorNoise
)

var sensorTypeNames = [...]string{
	SensorVoltage:     "Voltage",
	SensorCurrent:     "Current",
	SensorPower:       "Power",
	SensorClock:       "Clock",
	SensorTemperature: "Temperature",
	SensorLoad:        "Load",
	SensorFrequency:   "Frequency",
	SensorFan:         "Fan",
	SensorFlow:        "Flow",
	SensorControl:     "Control",
	SensorLevel:       "Level",
	SensorFactor:      "Factor",
	SensorData:        "Data",
	SensorSmallData:   "SmallData",
	SensorThroughput:  "Throughput",
	SensorEnergy:      "Energy",
	SensorNoise:       "Noise",
}

var sensorUnits = [...]string{
	SensorVoltage:     "V",
	SensorCurrent:     "A",
	SensorPower:       "W",
	SensorClock:       "MHz",
	SensorTemperature: "°C",
	SensorLoad:        "%",
	SensorFrequency:   "Hz",
	SensorFan:         "RPM",
	SensorFlow:        "L/h",
	SensorControl:     "%",
	SensorLevel:       "%",
	SensorFactor:      "",
	SensorData:        "GiB",
	SensorSmallData:   "MiB",
	SensorThroughput:  "B/s",
	SensorEnergy:      "mWh",
	SensorNoise:       "dBA",
}

func (t SensorType) String() string {
	if t < 0 || int(t) >= len(sensorTypeNames) {
		return "Unknown"
	}
	return sensorTypeNames[t]
}

// Token is the lower-case identifier segment for the type, e.g.
// "smalldata".
func (t SensorType) Token() string {
	return strings.ToLower(t.String())
}

// Unit returns the display unit.
func (t SensorType) Unit() string {
	if t < 0 || int(t) >= len(sensorUnits) {
		return ""
	}
	return sensorUnits[t]
}

// ParseSensorType is the inverse of String.
func ParseSensorType(name string) (SensorType, bool) {
	for index, candidate := range sensorTypeNames {
		if candidate == name {
			return SensorType(index), true
		}
	}
	return 0, false
}
