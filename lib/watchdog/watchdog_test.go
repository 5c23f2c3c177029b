// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.json")
	state := State{
		Component: "superio",
		Target:    "0x2E/0x2F",
		Stage:     "ite",
		Timestamp: epoch,
	}

	if err := Write(path, state); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Component != state.Component || got.Target != state.Target || got.Stage != state.Stage {
		t.Errorf("Read = %+v, want %+v", got, state)
	}
	if !got.Timestamp.Equal(state.Timestamp) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, state.Timestamp)
	}
}

func TestWriteFilePermissionsAndNoTemporary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.json")
	if err := Write(path, State{Target: "0x4E/0x4F", Timestamp: epoch}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if permissions := info.Mode().Perm(); permissions != 0600 {
		t.Errorf("permissions = %04o, want 0600", permissions)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file still exists after Write")
	}
}

func TestWriteParentDirectoryMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "probe.json")
	if err := Write(path, State{Timestamp: epoch}); err == nil {
		t.Fatal("Write to missing directory should fail")
	}
}

func TestReadNonexistent(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Read error = %v, want ErrNotExist", err)
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		written   time.Time
		now       time.Time
		wantFound bool
	}{
		{"recent", epoch, epoch.Add(time.Minute), true},
		{"exactly max age", epoch, epoch.Add(time.Hour), true},
		{"stale", epoch, epoch.Add(time.Hour + time.Second), false},
		{"clock stepped back", epoch, epoch.Add(-time.Hour), true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "probe.json")
			if err := Write(path, State{Target: "0x2E/0x2F", Timestamp: test.written}); err != nil {
				t.Fatalf("Write: %v", err)
			}
			state, found, err := Check(path, time.Hour, test.now)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if found != test.wantFound {
				t.Fatalf("found = %v, want %v", found, test.wantFound)
			}
			if found && state.Target != "0x2E/0x2F" {
				t.Errorf("Target = %q", state.Target)
			}
		})
	}
}

func TestCheckNonexistentAndCorrupt(t *testing.T) {
	directory := t.TempDir()

	_, found, err := Check(filepath.Join(directory, "absent.json"), time.Hour, epoch)
	if err != nil || found {
		t.Errorf("Check(absent) = %v, %v; want false, nil", found, err)
	}

	corrupt := filepath.Join(directory, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Check(corrupt, time.Hour, epoch); err == nil {
		t.Error("Check(corrupt) should return an error")
	}
}

func TestClearIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.json")
	if err := Write(path, State{Timestamp: epoch}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	for range 2 {
		if err := Clear(path); err != nil {
			t.Fatalf("Clear: %v", err)
		}
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file still exists after Clear")
	}
}
