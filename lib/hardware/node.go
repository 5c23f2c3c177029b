// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hardware

import "log/slog"

// Node is one unit of hardware in the tree.
type Node interface {
	Identifier() Identifier

	// Name is the display name: the user override if one is stored,
	// otherwise the detected default.
	Name() string

	// SetName overrides the display name. "" restores the default.
	SetName(name string)

	HardwareType() Type

	// Parent is a non-owning back-reference; nil for top-level nodes.
	Parent() Node

	// SubHardware returns owned child nodes in a stable order.
	SubHardware() []Node

	// Sensors returns the node's active sensors in creation order.
	Sensors() []*Sensor

	// Update refreshes the node's own sensors. It does not descend
	// into subhardware; UpdateVisitor does that.
	Update()

	// Accept dispatches to visitor.VisitHardware.
	Accept(visitor Visitor) error

	// Traverse accepts visitor on each subhardware node and sensor.
	Traverse(visitor Visitor) error

	// Report returns the node's diagnostic text, or "".
	Report() string

	// Close releases resources the node itself holds (device handles,
	// mappings). It does not close subhardware; CloseTree does.
	Close()
}

// BaseConfig configures a Base.
type BaseConfig struct {
	Identifier Identifier

	// DefaultName is used until the user overrides the name, and
	// again after the override is cleared.
	DefaultName string

	Type   Type
	Parent Node

	// Settings restores and persists user overrides. Nil disables
	// persistence.
	Settings Settings

	// Logger is available to the embedding node. Nil discards.
	Logger *slog.Logger
}

// Base implements the bookkeeping half of Node: identity, naming,
// sensor ownership, and visitor dispatch. Concrete nodes embed it and
// provide Update, Report, Close, and SubHardware as needed.
//
// Dispatch needs the embedding node, not the Base, so constructors
// must call Init with the outer value:
//
//	board := &Board{}
//	board.Init(board, hardware.BaseConfig{...})
type Base struct {
	self         Node
	identifier   Identifier
	defaultName  string
	name         string
	hardwareType Type
	parent       Node
	settings     Settings
	logger       *slog.Logger
	sensors      []*Sensor
}

// Init binds the Base to its embedding node.
func (b *Base) Init(self Node, config BaseConfig) {
	b.self = self
	b.identifier = config.Identifier
	b.defaultName = config.DefaultName
	b.hardwareType = config.Type
	b.parent = config.Parent
	b.settings = orDiscard(config.Settings)
	b.logger = config.Logger
	if b.logger == nil {
		b.logger = slog.New(slog.DiscardHandler)
	}
	b.name = b.settings.Value(b.identifier.Key("name"), b.defaultName)
}

func (b *Base) Identifier() Identifier { return b.identifier }
func (b *Base) Name() string           { return b.name }
func (b *Base) HardwareType() Type     { return b.hardwareType }
func (b *Base) Parent() Node           { return b.parent }

// Logger returns the node's logger.
func (b *Base) Logger() *slog.Logger { return b.logger }

// NodeSettings returns the settings store the node was built with.
func (b *Base) NodeSettings() Settings { return b.settings }

// DefaultName returns the detected name, ignoring any override.
func (b *Base) DefaultName() string { return b.defaultName }

func (b *Base) SetName(name string) {
	key := b.identifier.Key("name")
	if name == "" {
		b.name = b.defaultName
		b.settings.Remove(key)
		return
	}
	b.name = name
	b.settings.SetValue(key, name)
}

// SubHardware returns nil. Nodes with children override it.
func (b *Base) SubHardware() []Node { return nil }

// NewSensor creates a sensor owned by this node. It starts inactive.
func (b *Base) NewSensor(name string, index int, sensorType SensorType, parameters ...ParameterDescription) *Sensor {
	sensor := newSensor(b.self, name, index, sensorType, b.settings, parameters)
	b.sensors = append(b.sensors, sensor)
	return sensor
}

// Sensors returns the active sensors.
func (b *Base) Sensors() []*Sensor {
	var active []*Sensor
	for _, sensor := range b.sensors {
		if sensor.Active() {
			active = append(active, sensor)
		}
	}
	return active
}

// AllSensors returns every sensor including inactive ones.
func (b *Base) AllSensors() []*Sensor { return b.sensors }

// Update does nothing. Nodes with sensors override it.
func (b *Base) Update() {}

// Report returns "". Nodes with diagnostics override it.
func (b *Base) Report() string { return "" }

// Close does nothing. Nodes holding resources override it.
func (b *Base) Close() {}

func (b *Base) Accept(visitor Visitor) error {
	if visitor == nil {
		return ErrNilVisitor
	}
	visitor.VisitHardware(b.self)
	return nil
}

func (b *Base) Traverse(visitor Visitor) error {
	if visitor == nil {
		return ErrNilVisitor
	}
	for _, child := range b.self.SubHardware() {
		if err := child.Accept(visitor); err != nil {
			return err
		}
	}
	for _, sensor := range b.self.Sensors() {
		if err := sensor.Accept(visitor); err != nil {
			return err
		}
	}
	return nil
}
