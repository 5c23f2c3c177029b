// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hardware

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// mapSettings is an in-memory Settings for tests.
type mapSettings map[string]string

func (m mapSettings) Value(key, def string) string {
	if value, ok := m[key]; ok {
		return value
	}
	return def
}
func (m mapSettings) SetValue(key, value string) { m[key] = value }
func (m mapSettings) Remove(key string)          { delete(m, key) }

// testNode is a configurable Node for tree tests.
type testNode struct {
	Base
	children []Node
	updates  *[]string
	closes   int
	panics   bool
	report   string
}

func newTestNode(id Identifier, parent Node, settings Settings, updates *[]string) *testNode {
	node := &testNode{updates: updates}
	node.Init(node, BaseConfig{
		Identifier:  id,
		DefaultName: "Test " + id.String(),
		Type:        TypeSuperIO,
		Parent:      parent,
		Settings:    settings,
	})
	return node
}

func (n *testNode) SubHardware() []Node { return n.children }
func (n *testNode) Report() string      { return n.report }

func (n *testNode) Update() {
	if n.updates != nil {
		*n.updates = append(*n.updates, n.Identifier().String())
	}
}

func (n *testNode) Close() {
	n.closes++
	if n.panics {
		panic("device handle already released")
	}
}

func TestIdentifier(t *testing.T) {
	id := NewIdentifier("motherboard").Child("nct6779d", "0")
	if id.String() != "motherboard/nct6779d/0" {
		t.Errorf("String() = %q", id.String())
	}
	if got := NewIdentifier("a/b", "c d").String(); got != "a_b/cd" {
		t.Errorf("sanitized identifier = %q, want a_b/cd", got)
	}
	if got := id.Key("name"); got != "motherboard/nct6779d/0/name" {
		t.Errorf("Key(name) = %q", got)
	}
	if !NewIdentifier("a").Less(NewIdentifier("b")) {
		t.Error("a is not less than b")
	}
	if !(Identifier{}).IsZero() {
		t.Error("zero Identifier not IsZero")
	}
}

func TestSensorIdentifierAndTypeToken(t *testing.T) {
	node := newTestNode(NewIdentifier("gpu-intel-integrated", "0x46a6"), nil, nil, nil)
	sensor := node.NewSensor("D3D Shared Memory Used", 1, SensorSmallData)
	if got := sensor.Identifier().String(); got != "gpu-intel-integrated/0x46a6/smalldata/1" {
		t.Errorf("Identifier() = %q", got)
	}
	if SensorTemperature.Token() != "temperature" {
		t.Errorf("Token() = %q", SensorTemperature.Token())
	}
	if parsed, ok := ParseSensorType("Fan"); !ok || parsed != SensorFan {
		t.Errorf("ParseSensorType(Fan) = %v, %v", parsed, ok)
	}
}

func TestSensorActivationIsOneWay(t *testing.T) {
	node := newTestNode(NewIdentifier("node"), nil, nil, nil)
	sensor := node.NewSensor("Temperature #1", 0, SensorTemperature)

	if sensor.Active() {
		t.Fatal("new sensor is active")
	}
	if len(node.Sensors()) != 0 {
		t.Fatalf("inactive sensor listed: %v", node.Sensors())
	}
	if _, ok := sensor.Value(); ok {
		t.Fatal("new sensor has a value")
	}

	sensor.Set(41.5)
	sensor.Activate()
	if !sensor.Active() || len(node.Sensors()) != 1 {
		t.Fatal("sensor not active after first valid read")
	}

	// A later failed read produces no value; the sensor stays visible
	// with its last reading.
	sensor.Set(math.NaN())
	sensor.Activate()
	if !sensor.Active() {
		t.Fatal("sensor deactivated")
	}
	if value, ok := sensor.Value(); !ok || value != 41.5 {
		t.Errorf("Value() = (%v, %v), want (41.5, true)", value, ok)
	}
}

func TestSensorMinMax(t *testing.T) {
	node := newTestNode(NewIdentifier("node"), nil, nil, nil)
	sensor := node.NewSensor("Fan #1", 0, SensorFan)
	for _, value := range []float64{900, 1200, 800, 1000} {
		sensor.Set(value)
	}
	if low, _ := sensor.Min(); low != 800 {
		t.Errorf("Min() = %v, want 800", low)
	}
	if high, _ := sensor.Max(); high != 1200 {
		t.Errorf("Max() = %v, want 1200", high)
	}
	sensor.ResetMax()
	if high, _ := sensor.Max(); high != 1000 {
		t.Errorf("Max() after reset = %v, want 1000", high)
	}
}

func TestNodeNameOverride(t *testing.T) {
	settings := mapSettings{}
	node := newTestNode(NewIdentifier("motherboard"), nil, settings, nil)
	if node.Name() != "Test motherboard" {
		t.Fatalf("default name = %q", node.Name())
	}

	node.SetName("Workstation board")
	if settings["motherboard/name"] != "Workstation board" {
		t.Errorf("persisted name = %q", settings["motherboard/name"])
	}

	restored := newTestNode(NewIdentifier("motherboard"), nil, settings, nil)
	if restored.Name() != "Workstation board" {
		t.Errorf("restored name = %q", restored.Name())
	}

	restored.SetName("")
	if restored.Name() != "Test motherboard" {
		t.Errorf("cleared name = %q, want default", restored.Name())
	}
	if _, ok := settings["motherboard/name"]; ok {
		t.Error("override still persisted after clear")
	}
}

func TestSensorNameOverride(t *testing.T) {
	settings := mapSettings{}
	node := newTestNode(NewIdentifier("node"), nil, settings, nil)
	sensor := node.NewSensor("Temperature #1", 0, SensorTemperature)
	sensor.SetName("CPU Socket")
	if settings["node/temperature/0/name"] != "CPU Socket" {
		t.Errorf("settings = %v", settings)
	}
	sensor.SetName("")
	if sensor.Name() != "Temperature #1" {
		t.Errorf("Name() after clear = %q", sensor.Name())
	}
}

func TestParameterRange(t *testing.T) {
	settings := mapSettings{}
	node := newTestNode(NewIdentifier("node"), nil, settings, nil)
	sensor := node.NewSensor("Temperature #1", 0, SensorTemperature,
		ParameterDescription{Name: "Offset [°C]", Description: "Temperature offset.", Default: 0, Min: -50, Max: 50})
	parameter := sensor.Parameter("Offset [°C]")
	if parameter == nil {
		t.Fatal("parameter not found")
	}

	if err := parameter.SetValue(math.NaN()); !errors.Is(err, ErrParameterRange) {
		t.Errorf("SetValue(NaN) error = %v, want ErrParameterRange", err)
	}
	if err := parameter.SetValue(51); !errors.Is(err, ErrParameterRange) {
		t.Errorf("SetValue(51) error = %v, want ErrParameterRange", err)
	}
	if !parameter.IsDefault() {
		t.Error("rejected value changed the parameter")
	}

	if err := parameter.SetValue(-3.5); err != nil {
		t.Fatalf("SetValue(-3.5): %v", err)
	}
	key := "node/temperature/0/parameter/Offset[°C]"
	if settings[key] != "-3.5" {
		t.Errorf("persisted %q = %q, settings %v", key, settings[key], settings)
	}

	// A rebuilt tree restores the override.
	rebuilt := newTestNode(NewIdentifier("node"), nil, settings, nil)
	again := rebuilt.NewSensor("Temperature #1", 0, SensorTemperature,
		ParameterDescription{Name: "Offset [°C]", Min: -50, Max: 50})
	if value := again.Parameter("Offset [°C]").Value(); value != -3.5 {
		t.Errorf("restored value = %v, want -3.5", value)
	}

	again.Parameter("Offset [°C]").Reset()
	if _, ok := settings[key]; ok {
		t.Error("Reset left the override persisted")
	}
}

func TestAcceptNilVisitor(t *testing.T) {
	node := newTestNode(NewIdentifier("node"), nil, nil, nil)
	sensor := node.NewSensor("Load", 0, SensorLoad)
	computer := NewComputer(nil)
	computer.Add(node)

	if err := node.Accept(nil); !errors.Is(err, ErrNilVisitor) {
		t.Errorf("node.Accept(nil) = %v", err)
	}
	if err := node.Traverse(nil); !errors.Is(err, ErrNilVisitor) {
		t.Errorf("node.Traverse(nil) = %v", err)
	}
	if err := sensor.Accept(nil); !errors.Is(err, ErrNilVisitor) {
		t.Errorf("sensor.Accept(nil) = %v", err)
	}
	if err := computer.Accept(nil); !errors.Is(err, ErrNilVisitor) {
		t.Errorf("computer.Accept(nil) = %v", err)
	}
}

func TestUpdateVisitorOrder(t *testing.T) {
	var updates []string
	root := newTestNode(NewIdentifier("motherboard"), nil, nil, &updates)
	first := newTestNode(NewIdentifier("motherboard", "it8688e", "0"), root, nil, &updates)
	second := newTestNode(NewIdentifier("motherboard", "it8792e", "0"), root, nil, &updates)
	grandchild := newTestNode(NewIdentifier("motherboard", "it8792e", "0", "ec"), second, nil, &updates)
	second.children = []Node{grandchild}
	root.children = []Node{first, second}

	gpu := newTestNode(NewIdentifier("gpu-intel-integrated", "0"), nil, nil, &updates)

	computer := NewComputer(nil)
	computer.Add(root)
	computer.Add(nil)
	computer.Add(gpu)
	computer.Update()

	want := []string{
		"motherboard",
		"motherboard/it8688e/0",
		"motherboard/it8792e/0",
		"motherboard/it8792e/0/ec",
		"gpu-intel-integrated/0",
	}
	if strings.Join(updates, ",") != strings.Join(want, ",") {
		t.Errorf("update order = %v, want %v", updates, want)
	}
}

func TestSensorVisitorSeesNestedSensors(t *testing.T) {
	root := newTestNode(NewIdentifier("motherboard"), nil, nil, nil)
	child := newTestNode(NewIdentifier("motherboard", "nct6779d", "0"), root, nil, nil)
	root.children = []Node{child}
	child.NewSensor("CPU Core", 0, SensorTemperature).Activate()
	child.NewSensor("Hidden", 1, SensorTemperature)

	computer := NewComputer(nil)
	computer.Add(root)

	var seen []string
	computer.Accept(SensorVisitor(func(sensor *Sensor) {
		seen = append(seen, sensor.Name())
	}))
	if len(seen) != 1 || seen[0] != "CPU Core" {
		t.Errorf("visited sensors = %v, want [CPU Core]", seen)
	}
}

func TestCloseTreeVisitsEveryNodeOnce(t *testing.T) {
	root := newTestNode(NewIdentifier("motherboard"), nil, nil, nil)
	failing := newTestNode(NewIdentifier("motherboard", "a", "0"), root, nil, nil)
	failing.panics = true
	healthy := newTestNode(NewIdentifier("motherboard", "b", "0"), root, nil, nil)
	// The same child reachable twice must still close once.
	root.children = []Node{failing, healthy, healthy}

	CloseTree(root, nil)

	for _, node := range []*testNode{root, failing, healthy} {
		if node.closes != 1 {
			t.Errorf("%s closed %d times, want 1", node.Identifier(), node.closes)
		}
	}
}

func TestCloseTreeWithoutSubhardware(t *testing.T) {
	node := newTestNode(NewIdentifier("lonely"), nil, nil, nil)
	CloseTree(node, nil)
	if node.closes != 1 {
		t.Errorf("closed %d times, want 1", node.closes)
	}

	computer := NewComputer(nil)
	computer.Close()
	computer.Close()
	if len(computer.Hardware()) != 0 {
		t.Error("computer not empty after Close")
	}
}

func TestComputerReport(t *testing.T) {
	root := newTestNode(NewIdentifier("motherboard"), nil, nil, nil)
	root.report = "Motherboard\n\nLpcIO\n"
	child := newTestNode(NewIdentifier("motherboard", "ec"), root, nil, nil)
	child.report = "Embedded Controller"
	root.children = []Node{child}

	computer := NewComputer(nil)
	computer.Add(root)
	want := "Motherboard\n\nLpcIO\n\nEmbedded Controller\n\n"
	if got := computer.Report(); got != want {
		t.Errorf("Report() = %q, want %q", got, want)
	}
}

func TestFingerprintTracksShapeOnly(t *testing.T) {
	build := func(extraSensor bool) *Computer {
		root := newTestNode(NewIdentifier("motherboard"), nil, nil, nil)
		child := newTestNode(NewIdentifier("motherboard", "nct6779d", "0"), root, nil, nil)
		root.children = []Node{child}
		child.NewSensor("CPU Core", 0, SensorTemperature)
		if extraSensor {
			child.NewSensor("System", 1, SensorTemperature)
		}
		computer := NewComputer(nil)
		computer.Add(root)
		return computer
	}

	first := build(false)
	second := build(false)
	second.Hardware()[0].SetName("Renamed")
	second.Hardware()[0].SubHardware()[0].(*testNode).AllSensors()[0].Set(55)
	if Fingerprint(first) != Fingerprint(second) {
		t.Error("name or value change altered the fingerprint")
	}
	if Fingerprint(first) == Fingerprint(build(true)) {
		t.Error("added sensor did not alter the fingerprint")
	}
}
