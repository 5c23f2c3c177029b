// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package busarb serializes access to the legacy ISA/LPC port space.
//
// One lock guards the whole port space, not individual ports: probing
// one vendor family can disturb decode logic shared with another, so
// probes of different port pairs are serialized too. Acquisition is
// always bounded. Callers that fail to acquire degrade (detect no
// chips, skip a tick) rather than block.
package busarb

import (
	"time"

	"github.com/bureau-foundation/hwmon/lib/clock"
)

// DefaultTimeout is the acquisition bound used for detection passes.
const DefaultTimeout = 100 * time.Millisecond

// pollInterval is how often a contended lock is retried.
const pollInterval = time.Millisecond

// Arbiter is a bounded-wait mutual exclusion handle over the port
// space.
type Arbiter interface {
	// Acquire waits at most timeout for the lock and reports whether
	// it was obtained. A true return must be paired with Release.
	Acquire(timeout time.Duration) bool

	// Release gives up a lock obtained by Acquire.
	Release()
}

// Mutex is an in-process Arbiter. It does not coordinate with other
// processes; use FileLock for that.
type Mutex struct {
	clock clock.Clock
	slot  chan struct{}
}

// NewMutex returns an unlocked Mutex. A nil clock uses the real clock.
func NewMutex(c clock.Clock) *Mutex {
	if c == nil {
		c = clock.Real()
	}
	return &Mutex{clock: c, slot: make(chan struct{}, 1)}
}

func (m *Mutex) Acquire(timeout time.Duration) bool {
	return poll(m.clock, timeout, m.tryAcquire)
}

func (m *Mutex) tryAcquire() bool {
	select {
	case m.slot <- struct{}{}:
		return true
	default:
		return false
	}
}

// Release panics if the Mutex is not held: an unpaired Release is a
// caller bug that would otherwise let two probes interleave.
func (m *Mutex) Release() {
	select {
	case <-m.slot:
	default:
		panic("busarb: Release of unheld Mutex")
	}
}

// poll calls try until it succeeds or timeout elapses on c. try is
// always attempted at least once, so a zero timeout is a trylock.
func poll(c clock.Clock, timeout time.Duration, try func() bool) bool {
	deadline := c.Now().Add(timeout)
	for {
		if try() {
			return true
		}
		if !c.Now().Before(deadline) {
			return false
		}
		c.Sleep(pollInterval)
	}
}
