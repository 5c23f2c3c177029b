// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hardware

import (
	"math"
	"strconv"
)

// Sensor is one measured value owned by a hardware node. The owning
// node writes it during Update; readers see the last written value.
// A Sensor is not safe for concurrent use: the polling goroutine owns
// the whole tree.
type Sensor struct {
	owner       Node
	identifier  Identifier
	index       int
	sensorType  SensorType
	defaultName string
	name        string
	settings    Settings

	value    float64
	hasValue bool
	min      float64
	max      float64
	active   bool

	parameters []*Parameter
}

// newSensor builds a sensor owned by owner. The display name is
// restored from settings if the user renamed it.
func newSensor(owner Node, name string, index int, sensorType SensorType, settings Settings, descriptions []ParameterDescription) *Sensor {
	settings = orDiscard(settings)
	identifier := owner.Identifier().Child(sensorType.Token(), strconv.Itoa(index))
	sensor := &Sensor{
		owner:       owner,
		identifier:  identifier,
		index:       index,
		sensorType:  sensorType,
		defaultName: name,
		name:        settings.Value(identifier.Key("name"), name),
		settings:    settings,
	}
	for _, description := range descriptions {
		sensor.parameters = append(sensor.parameters, newParameter(sensor, description, settings))
	}
	return sensor
}

// Identifier is the owner's identifier plus the type token and index.
func (s *Sensor) Identifier() Identifier { return s.identifier }

// Index distinguishes sensors of the same type on one node.
func (s *Sensor) Index() int { return s.index }

func (s *Sensor) Type() SensorType { return s.sensorType }

// Hardware returns the owning node.
func (s *Sensor) Hardware() Node { return s.owner }

func (s *Sensor) Name() string { return s.name }

// SetName overrides the display name and persists it. An empty name
// restores the default and removes the persisted override.
func (s *Sensor) SetName(name string) {
	if name == "" || name == s.defaultName {
		s.name = s.defaultName
		s.settings.Remove(s.identifier.Key("name"))
		return
	}
	s.name = name
	s.settings.SetValue(s.identifier.Key("name"), name)
}

// Value returns the last recorded value. ok is false until the first
// Set.
func (s *Sensor) Value() (value float64, ok bool) {
	return s.value, s.hasValue
}

// Min returns the lowest value recorded since creation or ResetMin.
func (s *Sensor) Min() (float64, bool) { return s.min, s.hasValue }

// Max returns the highest value recorded since creation or ResetMax.
func (s *Sensor) Max() (float64, bool) { return s.max, s.hasValue }

// Set records a reading. NaN and infinities are not readings and are
// ignored, leaving the previous value in place.
func (s *Sensor) Set(value float64) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return
	}
	if !s.hasValue {
		s.min, s.max = value, value
	} else {
		s.min = math.Min(s.min, value)
		s.max = math.Max(s.max, value)
	}
	s.value = value
	s.hasValue = true
}

// ResetMin restarts minimum tracking from the current value.
func (s *Sensor) ResetMin() { s.min = s.value }

// ResetMax restarts maximum tracking from the current value.
func (s *Sensor) ResetMax() { s.max = s.value }

// Activate makes the sensor visible. Idempotent; there is no
// deactivation.
func (s *Sensor) Activate() { s.active = true }

// Active reports whether the sensor has been activated.
func (s *Sensor) Active() bool { return s.active }

// Parameters returns the sensor's tunable parameters.
func (s *Sensor) Parameters() []*Parameter { return s.parameters }

// Parameter returns the parameter with the given name, or nil.
func (s *Sensor) Parameter(name string) *Parameter {
	for _, parameter := range s.parameters {
		if parameter.Name() == name {
			return parameter
		}
	}
	return nil
}

func (s *Sensor) Accept(visitor Visitor) error {
	if visitor == nil {
		return ErrNilVisitor
	}
	visitor.VisitSensor(s)
	return nil
}

func (s *Sensor) Traverse(visitor Visitor) error {
	if visitor == nil {
		return ErrNilVisitor
	}
	for _, parameter := range s.parameters {
		if err := parameter.Accept(visitor); err != nil {
			return err
		}
	}
	return nil
}
