// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/hwmon/lib/clock"
	"github.com/bureau-foundation/hwmon/lib/hardware"
)

// DefaultDetectionTimeout bounds one detection pass when the config
// leaves it unset.
const DefaultDetectionTimeout = 5 * time.Second

// Sink receives every snapshot. A Sink error stops Run.
type Sink interface {
	WriteSnapshot(snapshot Snapshot) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(snapshot Snapshot) error

func (f SinkFunc) WriteSnapshot(snapshot Snapshot) error { return f(snapshot) }

// Config configures a Monitor.
type Config struct {
	// Build runs one detection pass and returns the tree. The context
	// carries the detection deadline.
	Build func(ctx context.Context) (*hardware.Computer, error)

	// Sink receives a snapshot after every update pass. Nil discards.
	Sink Sink

	Interval         time.Duration
	DetectionTimeout time.Duration

	Clock  clock.Clock
	Logger *slog.Logger
}

// Monitor polls a hardware tree on a fixed interval.
type Monitor struct {
	build            func(ctx context.Context) (*hardware.Computer, error)
	sink             Sink
	interval         time.Duration
	detectionTimeout time.Duration
	clock            clock.Clock
	logger           *slog.Logger

	rebuilds chan chan error

	mu        sync.Mutex
	latest    Snapshot
	hasLatest bool
}

// New validates config and returns an idle Monitor. Call Run to start
// polling.
func New(config Config) (*Monitor, error) {
	if config.Build == nil {
		return nil, errors.New("monitor: Build is required")
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("monitor: interval must be positive, got %v", config.Interval)
	}
	if config.DetectionTimeout <= 0 {
		config.DetectionTimeout = DefaultDetectionTimeout
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Monitor{
		build:            config.Build,
		sink:             config.Sink,
		interval:         config.Interval,
		detectionTimeout: config.DetectionTimeout,
		clock:            config.Clock,
		logger:           config.Logger,
		rebuilds:         make(chan chan error),
	}, nil
}

// Run builds the tree and polls it until ctx is cancelled. The tree
// is closed before Run returns. Cancellation is not an error; a
// failed initial build or a Sink error is.
func (m *Monitor) Run(ctx context.Context) error {
	computer, err := m.detect(ctx)
	if err != nil {
		return err
	}
	defer func() { computer.Close() }()

	topology := hardware.Fingerprint(computer)
	m.logger.Info("hardware monitor started",
		"interval", m.interval,
		"hardware", len(computer.Hardware()),
		"topology", FormatTopology(topology))

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("hardware monitor stopping")
			return nil

		case done := <-m.rebuilds:
			computer.Close()
			next, err := m.detect(ctx)
			if err != nil {
				m.logger.Error("hardware rebuild failed, polling an empty tree", "error", err)
				next = hardware.NewComputer(m.logger)
			}
			computer = next
			if changed := hardware.Fingerprint(computer); changed != topology {
				m.logger.Info("hardware topology changed",
					"previous", FormatTopology(topology),
					"current", FormatTopology(changed))
				topology = changed
			}
			done <- err

		case <-ticker.C:
			computer.Accept(hardware.UpdateVisitor{})
			snapshot := Capture(computer, m.clock.Now())
			snapshot.Topology = FormatTopology(topology)

			m.mu.Lock()
			m.latest = snapshot
			m.hasLatest = true
			m.mu.Unlock()

			if m.sink != nil {
				if err := m.sink.WriteSnapshot(snapshot); err != nil {
					return fmt.Errorf("writing snapshot: %w", err)
				}
			}
		}
	}
}

// Rebuild asks the running loop to close its tree and detect again,
// and waits for the new tree. It blocks until Run picks the request
// up or ctx is done. The returned error is the detection error, in
// which case the loop keeps polling an empty tree.
func (m *Monitor) Rebuild(ctx context.Context) error {
	done := make(chan error, 1)
	select {
	case m.rebuilds <- done:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Latest returns the most recent snapshot, if any pass has run.
func (m *Monitor) Latest() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latest, m.hasLatest
}

func (m *Monitor) detect(ctx context.Context) (*hardware.Computer, error) {
	ctx, cancel := context.WithTimeout(ctx, m.detectionTimeout)
	defer cancel()

	start := m.clock.Now()
	computer, err := m.build(ctx)
	if err != nil {
		return nil, fmt.Errorf("building hardware tree: %w", err)
	}
	if computer == nil {
		return nil, errors.New("building hardware tree: Build returned no tree")
	}
	m.logger.Debug("hardware detection complete",
		"elapsed", m.clock.Now().Sub(start),
		"hardware", len(computer.Hardware()))
	return computer, nil
}
