// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package busarb

import (
	"testing"
	"time"

	"github.com/bureau-foundation/hwmon/lib/clock"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMutexBoundedWait(t *testing.T) {
	fake := clock.Fake(epoch)
	mutex := NewMutex(fake)

	if !mutex.Acquire(DefaultTimeout) {
		t.Fatal("Acquire on free mutex failed")
	}

	start := fake.Now()
	if mutex.Acquire(DefaultTimeout) {
		t.Fatal("second Acquire succeeded while held")
	}
	if waited := fake.Now().Sub(start); waited < DefaultTimeout {
		t.Errorf("gave up after %v, want at least %v", waited, DefaultTimeout)
	}

	mutex.Release()
	if !mutex.Acquire(0) {
		t.Fatal("zero-timeout Acquire on free mutex failed")
	}
	mutex.Release()
}

func TestMutexUnpairedReleasePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Release of unheld mutex did not panic")
		}
	}()
	NewMutex(clock.Fake(epoch)).Release()
}

func TestMutexSerializesGoroutines(t *testing.T) {
	mutex := NewMutex(nil)
	const workers = 8
	counter := 0
	done := make(chan struct{})
	for range workers {
		go func() {
			defer func() { done <- struct{}{} }()
			for !mutex.Acquire(time.Second) {
			}
			counter++
			mutex.Release()
		}()
	}
	for range workers {
		<-done
	}
	if counter != workers {
		t.Errorf("counter = %d, want %d", counter, workers)
	}
}
