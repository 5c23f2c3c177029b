// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hardware

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrParameterRange is returned by Parameter.SetValue for NaN or a
// value outside the parameter's declared range.
var ErrParameterRange = errors.New("hardware: parameter value out of range")

// ParameterDescription declares a tunable sensor parameter, such as a
// voltage divider factor or a temperature offset.
type ParameterDescription struct {
	Name        string
	Description string
	Default     float64

	// Min and Max bound accepted values inclusively. Both zero means
	// unbounded.
	Min float64
	Max float64
}

// Parameter is a user-adjustable value attached to a sensor. Values
// that differ from the default are persisted.
type Parameter struct {
	sensor      *Sensor
	description ParameterDescription
	identifier  Identifier
	settings    Settings
	value       float64
	isDefault   bool
}

func newParameter(sensor *Sensor, description ParameterDescription, settings Settings) *Parameter {
	parameter := &Parameter{
		sensor:      sensor,
		description: description,
		identifier:  sensor.Identifier().Child("parameter", description.Name),
		settings:    settings,
		value:       description.Default,
		isDefault:   true,
	}
	stored := settings.Value(parameter.identifier.String(), "")
	if stored != "" {
		if value, err := strconv.ParseFloat(stored, 64); err == nil && parameter.inRange(value) {
			parameter.value = value
			parameter.isDefault = false
		}
	}
	return parameter
}

func (p *Parameter) Identifier() Identifier { return p.identifier }
func (p *Parameter) Name() string           { return p.description.Name }
func (p *Parameter) Description() string    { return p.description.Description }
func (p *Parameter) Default() float64       { return p.description.Default }
func (p *Parameter) Sensor() *Sensor        { return p.sensor }
func (p *Parameter) Value() float64         { return p.value }
func (p *Parameter) IsDefault() bool        { return p.isDefault }

func (p *Parameter) inRange(value float64) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false
	}
	if p.description.Min == 0 && p.description.Max == 0 {
		return true
	}
	return value >= p.description.Min && value <= p.description.Max
}

// SetValue overrides the parameter and persists it.
func (p *Parameter) SetValue(value float64) error {
	if !p.inRange(value) {
		return fmt.Errorf("%w: %s = %v (allowed %v..%v)", ErrParameterRange,
			p.identifier, value, p.description.Min, p.description.Max)
	}
	p.value = value
	p.isDefault = false
	p.settings.SetValue(p.identifier.String(), strconv.FormatFloat(value, 'g', -1, 64))
	return nil
}

// Reset restores the default and removes the persisted override.
func (p *Parameter) Reset() {
	p.value = p.description.Default
	p.isDefault = true
	p.settings.Remove(p.identifier.String())
}

func (p *Parameter) Accept(visitor Visitor) error {
	if visitor == nil {
		return ErrNilVisitor
	}
	visitor.VisitParameter(p)
	return nil
}
