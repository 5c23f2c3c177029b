// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/hwmon/lib/clock"
	"github.com/bureau-foundation/hwmon/lib/hardware"
	"github.com/bureau-foundation/hwmon/lib/monitor"
	"github.com/bureau-foundation/hwmon/lib/testutil"
)

// counterNode reports how many times it has been updated.
type counterNode struct {
	hardware.Base

	updates  *hardware.Sensor
	idle     *hardware.Sensor
	children []hardware.Node
	count    int
	closed   int
}

func newCounterNode(name string, parent hardware.Node) *counterNode {
	node := &counterNode{}
	identifier := hardware.NewIdentifier("test", name)
	if parent != nil {
		identifier = parent.Identifier().Child(name)
	}
	node.Init(node, hardware.BaseConfig{
		Identifier:  identifier,
		DefaultName: "Counter " + name,
		Type:        hardware.TypeMotherboard,
		Parent:      parent,
	})
	node.updates = node.NewSensor("Updates", 0, hardware.SensorFactor)
	node.idle = node.NewSensor("Idle", 1, hardware.SensorFactor)
	return node
}

func (n *counterNode) Update() {
	n.count++
	n.updates.Set(float64(n.count))
	n.updates.Activate()
}

func (n *counterNode) SubHardware() []hardware.Node { return n.children }
func (n *counterNode) Close()                       { n.closed++ }

func computerWith(nodes ...hardware.Node) *hardware.Computer {
	computer := hardware.NewComputer(nil)
	for _, node := range nodes {
		computer.Add(node)
	}
	return computer
}

// lockedBuffer is a bytes.Buffer safe for a logger on another
// goroutine.
type lockedBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}

type harness struct {
	clock     *clock.FakeClock
	monitor   *monitor.Monitor
	snapshots chan monitor.Snapshot
	done      chan error
	cancel    context.CancelFunc
}

func startMonitor(t *testing.T, config monitor.Config) *harness {
	t.Helper()
	h := &harness{
		clock:     clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		snapshots: make(chan monitor.Snapshot, 4),
		done:      make(chan error, 1),
	}
	config.Clock = h.clock
	config.Interval = time.Second
	config.Sink = monitor.SinkFunc(func(snapshot monitor.Snapshot) error {
		h.snapshots <- snapshot
		return nil
	})
	var err error
	h.monitor, err = monitor.New(config)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.monitor.Run(ctx) }()
	h.clock.WaitForTickers(1)
	t.Cleanup(cancel)
	return h
}

func (h *harness) tick(t *testing.T) monitor.Snapshot {
	t.Helper()
	h.clock.Advance(time.Second)
	return testutil.RequireReceive(t, h.snapshots, 5*time.Second, "waiting for snapshot")
}

func (h *harness) stop(t *testing.T) {
	t.Helper()
	h.cancel()
	if err := testutil.RequireReceive(t, h.done, 5*time.Second, "waiting for Run to return"); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func sensorValue(t *testing.T, snapshot monitor.Snapshot, identifier string) float64 {
	t.Helper()
	for _, entry := range snapshot.Hardware {
		for _, sensor := range entry.Sensors {
			if sensor.Identifier == identifier {
				if sensor.Value == nil {
					t.Fatalf("sensor %s has no value", identifier)
				}
				return *sensor.Value
			}
		}
	}
	t.Fatalf("sensor %s not in snapshot", identifier)
	return 0
}

func TestRunEmitsSnapshotPerTick(t *testing.T) {
	node := newCounterNode("a", nil)
	h := startMonitor(t, monitor.Config{
		Build: func(context.Context) (*hardware.Computer, error) { return computerWith(node), nil },
	})

	first := h.tick(t)
	if got := sensorValue(t, first, "test/a/factor/0"); got != 1 {
		t.Errorf("first pass value = %v, want 1", got)
	}
	if !first.Time.Equal(time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC)) {
		t.Errorf("snapshot time = %v", first.Time)
	}
	if first.Topology == "" {
		t.Error("snapshot has no topology fingerprint")
	}

	second := h.tick(t)
	if got := sensorValue(t, second, "test/a/factor/0"); got != 2 {
		t.Errorf("second pass value = %v, want 2", got)
	}

	latest, ok := h.monitor.Latest()
	if !ok || sensorValue(t, latest, "test/a/factor/0") != 2 {
		t.Errorf("Latest = %+v, %v", latest, ok)
	}

	h.stop(t)
	if node.closed != 1 {
		t.Errorf("node closed %d times, want 1", node.closed)
	}
}

func TestLatestBeforeFirstPass(t *testing.T) {
	m, err := monitor.New(monitor.Config{
		Build:    func(context.Context) (*hardware.Computer, error) { return computerWith(), nil },
		Interval: time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := m.Latest(); ok {
		t.Error("Latest reported a snapshot before any pass")
	}
}

func TestRebuildReplacesTree(t *testing.T) {
	logs := &lockedBuffer{}
	first := newCounterNode("a", nil)
	second := newCounterNode("b", nil)
	builds := 0
	h := startMonitor(t, monitor.Config{
		Build: func(context.Context) (*hardware.Computer, error) {
			builds++
			if builds == 1 {
				return computerWith(first), nil
			}
			return computerWith(second), nil
		},
		Logger: slog.New(slog.NewTextHandler(logs, nil)),
	})

	before := h.tick(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.monitor.Rebuild(ctx); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if first.closed != 1 {
		t.Errorf("old tree closed %d times, want 1", first.closed)
	}
	if !strings.Contains(logs.String(), "hardware topology changed") {
		t.Errorf("topology change not logged:\n%s", logs.String())
	}

	after := h.tick(t)
	if got := sensorValue(t, after, "test/b/factor/0"); got != 1 {
		t.Errorf("new tree value = %v, want 1", got)
	}
	if after.Topology == before.Topology {
		t.Error("topology fingerprint unchanged after rebuild with different hardware")
	}

	h.stop(t)
	if first.closed != 1 || second.closed != 1 {
		t.Errorf("closed counts = %d, %d, want 1, 1", first.closed, second.closed)
	}
}

func TestRebuildFailureKeepsPolling(t *testing.T) {
	node := newCounterNode("a", nil)
	builds := 0
	h := startMonitor(t, monitor.Config{
		Build: func(context.Context) (*hardware.Computer, error) {
			builds++
			if builds > 1 {
				return nil, errors.New("bus unavailable")
			}
			return computerWith(node), nil
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.monitor.Rebuild(ctx); err == nil {
		t.Fatal("Rebuild succeeded, want detection error")
	}

	snapshot := h.tick(t)
	if len(snapshot.Hardware) != 0 {
		t.Errorf("snapshot after failed rebuild has %d nodes, want 0", len(snapshot.Hardware))
	}
	h.stop(t)
}

func TestRebuildWithoutRunHonoursContext(t *testing.T) {
	m, err := monitor.New(monitor.Config{
		Build:    func(context.Context) (*hardware.Computer, error) { return computerWith(), nil },
		Interval: time.Second,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Rebuild(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Rebuild = %v, want context.Canceled", err)
	}
}

func TestRunReturnsBuildError(t *testing.T) {
	failure := errors.New("no port access")
	m, err := monitor.New(monitor.Config{
		Build:    func(context.Context) (*hardware.Computer, error) { return nil, failure },
		Interval: time.Second,
		Clock:    clock.Fake(time.Unix(0, 0)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Run(context.Background()); !errors.Is(err, failure) {
		t.Errorf("Run = %v, want wrapped %v", err, failure)
	}
}

func TestRunRejectsNilTree(t *testing.T) {
	m, err := monitor.New(monitor.Config{
		Build:    func(context.Context) (*hardware.Computer, error) { return nil, nil },
		Interval: time.Second,
		Clock:    clock.Fake(time.Unix(0, 0)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Run(context.Background()); err == nil {
		t.Error("Run accepted a nil tree")
	}
}

func TestDetectionIsBounded(t *testing.T) {
	var (
		hadDeadline bool
		remaining   time.Duration
	)
	m, err := monitor.New(monitor.Config{
		Build: func(ctx context.Context) (*hardware.Computer, error) {
			var deadline time.Time
			deadline, hadDeadline = ctx.Deadline()
			remaining = time.Until(deadline)
			return nil, errors.New("stop")
		},
		Interval:         time.Second,
		DetectionTimeout: 2 * time.Second,
		Clock:            clock.Fake(time.Unix(0, 0)),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Run(context.Background())
	if !hadDeadline {
		t.Fatal("Build context has no deadline")
	}
	if remaining > 2*time.Second || remaining <= 0 {
		t.Errorf("detection deadline %v away, want within 2s", remaining)
	}
}

func TestSinkErrorStopsRun(t *testing.T) {
	node := newCounterNode("a", nil)
	fake := clock.Fake(time.Unix(0, 0))
	failure := errors.New("disk full")
	m, err := monitor.New(monitor.Config{
		Build:    func(context.Context) (*hardware.Computer, error) { return computerWith(node), nil },
		Sink:     monitor.SinkFunc(func(monitor.Snapshot) error { return failure }),
		Interval: time.Second,
		Clock:    fake,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()
	fake.WaitForTickers(1)
	fake.Advance(time.Second)

	if err := testutil.RequireReceive(t, done, 5*time.Second, "waiting for Run"); !errors.Is(err, failure) {
		t.Errorf("Run = %v, want wrapped %v", err, failure)
	}
	if node.closed != 1 {
		t.Errorf("tree closed %d times after sink failure, want 1", node.closed)
	}
}

func TestNewValidation(t *testing.T) {
	build := func(context.Context) (*hardware.Computer, error) { return computerWith(), nil }
	tests := []struct {
		name   string
		config monitor.Config
	}{
		{"missing build", monitor.Config{Interval: time.Second}},
		{"zero interval", monitor.Config{Build: build}},
		{"negative interval", monitor.Config{Build: build, Interval: -time.Second}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := monitor.New(test.config); err == nil {
				t.Error("New accepted an invalid config")
			}
		})
	}
}

func TestCaptureListsActiveSensorsOnly(t *testing.T) {
	parent := newCounterNode("a", nil)
	child := newCounterNode("child", parent)
	parent.children = []hardware.Node{child}
	computer := computerWith(parent)

	before := monitor.Capture(computer, time.Unix(0, 0))
	if before.SensorCount() != 0 {
		t.Errorf("sensors before any update = %d, want 0", before.SensorCount())
	}

	computer.Update()
	computer.Update()
	snapshot := monitor.Capture(computer, time.Unix(10, 0))

	if len(snapshot.Hardware) != 2 {
		t.Fatalf("hardware entries = %d, want 2", len(snapshot.Hardware))
	}
	top, sub := snapshot.Hardware[0], snapshot.Hardware[1]
	if top.Depth != 0 || top.Parent != "" {
		t.Errorf("top-level entry = %+v", top)
	}
	if sub.Depth != 1 || sub.Parent != "test/a" || sub.Identifier != "test/a/child" {
		t.Errorf("child entry = %+v", sub)
	}
	if len(sub.Sensors) != 1 {
		t.Fatalf("child sensors = %+v, want only the active one", sub.Sensors)
	}
	sensor := sub.Sensors[0]
	if sensor.Name != "Updates" || sensor.Type != "Factor" {
		t.Errorf("sensor = %+v", sensor)
	}
	if *sensor.Value != 2 || *sensor.Min != 1 || *sensor.Max != 2 {
		t.Errorf("value/min/max = %v/%v/%v, want 2/1/2", *sensor.Value, *sensor.Min, *sensor.Max)
	}
}
