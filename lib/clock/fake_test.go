// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeSleepAdvancesTime(t *testing.T) {
	c := Fake(epoch)
	c.Sleep(time.Millisecond)
	c.Sleep(2 * time.Millisecond)

	if got := c.Now().Sub(epoch); got != 3*time.Millisecond {
		t.Errorf("Now advanced by %v, want 3ms", got)
	}
	if got := c.Slept(); got != 3*time.Millisecond {
		t.Errorf("Slept() = %v, want 3ms", got)
	}
}

func TestFakeSleepNonPositive(t *testing.T) {
	c := Fake(epoch)
	c.Sleep(0)
	c.Sleep(-time.Second)
	if !c.Now().Equal(epoch) {
		t.Errorf("Now moved to %v on non-positive sleep", c.Now())
	}
}

func TestFakeTickerFiresOnAdvance(t *testing.T) {
	c := Fake(epoch)
	ticker := c.NewTicker(time.Second)
	defer ticker.Stop()

	c.Advance(500 * time.Millisecond)
	select {
	case <-ticker.C:
		t.Fatal("ticker fired before its interval elapsed")
	default:
	}

	c.Advance(500 * time.Millisecond)
	select {
	case tick := <-ticker.C:
		if !tick.Equal(epoch.Add(time.Second)) {
			t.Errorf("tick time = %v, want %v", tick, epoch.Add(time.Second))
		}
	default:
		t.Fatal("ticker did not fire after one interval")
	}
}

func TestFakeTickerDropsOverflow(t *testing.T) {
	c := Fake(epoch)
	ticker := c.NewTicker(time.Second)

	c.Advance(5 * time.Second)
	<-ticker.C
	select {
	case <-ticker.C:
		t.Fatal("buffered more than one tick")
	default:
	}
}

func TestFakeTickerStop(t *testing.T) {
	c := Fake(epoch)
	ticker := c.NewTicker(time.Second)
	ticker.Stop()
	c.Advance(2 * time.Second)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker fired")
	default:
	}
}

func TestWaitForTickers(t *testing.T) {
	c := Fake(epoch)
	done := make(chan struct{})
	go func() {
		c.NewTicker(time.Second)
		close(done)
	}()
	c.WaitForTickers(1)
	<-done
}

func TestNewTickerPanicsOnNonPositive(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewTicker(0) did not panic")
		}
	}()
	Fake(epoch).NewTicker(0)
}
