// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/hwmon/lib/clock"
)

// DefaultStaleAfter is how old a leftover marker may be before it is
// ignored.
const DefaultStaleAfter = 10 * time.Minute

// GuardConfig configures a ProbeGuard.
type GuardConfig struct {
	// Path is the state file. Its directory must exist.
	Path string

	// Component is recorded in the state file.
	Component string

	// StaleAfter bounds how old an interrupted marker may be and still
	// cause a skip. Zero means DefaultStaleAfter.
	StaleAfter time.Duration

	// Clock supplies timestamps. Nil means clock.Real().
	Clock clock.Clock

	Logger *slog.Logger
}

// ProbeGuard brackets individual probes with a durable marker. It is
// safe for concurrent use, though probes are normally sequential.
type ProbeGuard struct {
	path       string
	component  string
	clock      clock.Clock
	logger     *slog.Logger
	mutex      sync.Mutex
	active     string
	leftover   State
	isLeftover bool
}

// OpenProbeGuard reads any marker left by an interrupted run and
// returns a guard ready for use. An unreadable marker is logged and
// discarded rather than failing: a corrupt file is not evidence of a
// crash during a probe.
func OpenProbeGuard(config GuardConfig) (*ProbeGuard, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("probe guard: path is required")
	}
	if config.StaleAfter <= 0 {
		config.StaleAfter = DefaultStaleAfter
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	guard := &ProbeGuard{
		path:      config.Path,
		component: config.Component,
		clock:     config.Clock,
		logger:    logger,
	}

	state, recent, err := Check(config.Path, config.StaleAfter, config.Clock.Now())
	switch {
	case err != nil:
		logger.Warn("discarding unreadable probe marker", "path", config.Path, "error", err)
		if err := Clear(config.Path); err != nil {
			return nil, err
		}
	case recent:
		logger.Warn("previous probe did not complete",
			"target", state.Target,
			"stage", state.Stage,
			"started", state.Timestamp)
		guard.leftover = state
		guard.isLeftover = true
		// The skip applies to this pass only. Removing the marker now
		// means a second crash on the next pass is needed to skip again.
		if err := Clear(config.Path); err != nil {
			return nil, err
		}
	}

	return guard, nil
}

// Interrupted reports whether target was being probed when a previous
// run died.
func (g *ProbeGuard) Interrupted(target string) bool {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return g.isLeftover && g.leftover.Target == target
}

// Begin durably records that target is about to be probed.
func (g *ProbeGuard) Begin(target, stage string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	state := State{
		Component: g.component,
		Target:    target,
		Stage:     stage,
		Timestamp: g.clock.Now(),
	}
	if err := Write(g.path, state); err != nil {
		return err
	}
	g.active = target
	return nil
}

// End removes the marker for target. Ending a target that is not the
// active one is a no-op.
func (g *ProbeGuard) End(target string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if g.active != target {
		return nil
	}
	g.active = ""
	return Clear(g.path)
}
