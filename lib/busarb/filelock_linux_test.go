// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package busarb

import (
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/hwmon/lib/clock"
)

func TestFileLockExcludesOtherHolders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lock", "isabus.lock")
	fake := clock.Fake(epoch)

	first, err := OpenFileLock(path, fake, nil)
	if err != nil {
		t.Fatalf("OpenFileLock: %v", err)
	}
	defer first.Close()
	second, err := OpenFileLock(path, fake, nil)
	if err != nil {
		t.Fatalf("OpenFileLock: %v", err)
	}
	defer second.Close()

	if !first.Acquire(DefaultTimeout) {
		t.Fatal("first Acquire failed")
	}
	if second.Acquire(DefaultTimeout) {
		t.Fatal("second holder acquired a held lock")
	}

	first.Release()
	if !second.Acquire(DefaultTimeout) {
		t.Fatal("second Acquire failed after release")
	}
	second.Release()
}

func TestFileLockReleasesInnerOnTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isabus.lock")
	fake := clock.Fake(epoch)

	holder, err := OpenFileLock(path, fake, nil)
	if err != nil {
		t.Fatalf("OpenFileLock: %v", err)
	}
	defer holder.Close()
	contender, err := OpenFileLock(path, fake, nil)
	if err != nil {
		t.Fatalf("OpenFileLock: %v", err)
	}
	defer contender.Close()

	if !holder.Acquire(DefaultTimeout) {
		t.Fatal("holder Acquire failed")
	}
	if contender.Acquire(DefaultTimeout) {
		t.Fatal("contender acquired a held lock")
	}
	// The contender's in-process mutex must be free again, or the
	// next attempt would wait on itself.
	if !contender.inner.Acquire(0) {
		t.Fatal("inner mutex left held after timeout")
	}
	contender.inner.Release()
}
