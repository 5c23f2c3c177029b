// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for the
// detection engine and the polling loop.
//
// Hardware access code waits for register settle times, computes
// rates over polling intervals, and drives a periodic update ticker.
// All of it takes a Clock instead of calling the time package
// directly. Production code uses Real(); tests use Fake(), whose time
// moves only when the test (or a Sleep) moves it.
//
// # Settle delays
//
// Detection sleeps for a millisecond between the two reads of an
// address-verification pair. FakeClock.Sleep advances the fake time
// by the requested duration and returns at once, so a detection pass
// runs synchronously inside a test while still observing the delay:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	c.Sleep(time.Millisecond) // returns immediately, c.Now() moved 1ms
//
// # Tickers
//
// Tickers fire on Advance. Use WaitForTickers to block until the
// goroutine under test has registered its ticker before advancing.
package clock
