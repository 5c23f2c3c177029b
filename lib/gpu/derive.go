// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gpu

import "time"

// MinRateInterval is the shortest interval a RateCounter turns into a
// rate. Closer samples would divide by a near-zero duration.
const MinRateInterval = 10 * time.Millisecond

// WrapDelta32 returns curr - prev modulo 2^32, the distance a 32-bit
// counter advanced even if it rolled over in between.
func WrapDelta32(prev, curr uint32) uint32 {
	return curr - prev
}

// WrapDelta64 is WrapDelta32 for 64-bit counters.
func WrapDelta64(prev, curr uint64) uint64 {
	return curr - prev
}

// BytesToMiB converts a byte count to MiB.
func BytesToMiB(bytes uint64) float64 {
	return float64(bytes) / 1024 / 1024
}

// RateCounter turns successive samples of a wrapping 32-bit counter
// into a rate: Scale * delta / seconds.
type RateCounter struct {
	Scale float64

	// MinInterval overrides MinRateInterval when positive.
	MinInterval time.Duration

	previous uint32
	at       time.Time
	value    float64
	primed   bool
}

// Reset sets the baseline sample without producing a value.
func (r *RateCounter) Reset(counter uint32, now time.Time) {
	r.previous = counter
	r.at = now
	r.primed = true
}

// Update feeds one sample. advanced is false when the sample was
// ignored: the first sample after construction (it only sets the
// baseline), or one arriving within the minimum interval. An ignored
// sample leaves both the value and the baseline unchanged.
func (r *RateCounter) Update(counter uint32, now time.Time) (value float64, advanced bool) {
	if !r.primed {
		r.Reset(counter, now)
		return r.value, false
	}
	minimum := r.MinInterval
	if minimum <= 0 {
		minimum = MinRateInterval
	}
	elapsed := now.Sub(r.at)
	if elapsed < minimum {
		return r.value, false
	}
	r.value = r.Scale * float64(WrapDelta32(r.previous, counter)) / elapsed.Seconds()
	r.previous = counter
	r.at = now
	return r.value, true
}

// Value returns the last computed rate.
func (r *RateCounter) Value() float64 { return r.value }

// Baseline returns the retained sample and its time.
func (r *RateCounter) Baseline() (uint32, time.Time) { return r.previous, r.at }
