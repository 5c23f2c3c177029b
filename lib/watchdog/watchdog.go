// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// State records a probe in progress.
type State struct {
	// Component names the prober (e.g., "superio"). Used for logging.
	Component string `json:"component"`

	// Target identifies what was being probed, such as the port pair
	// "0x2E/0x2F".
	Target string `json:"target"`

	// Stage is the protocol stage that was running when the state was
	// last written (e.g., "winbond", "ite", "smsc"). Informational.
	Stage string `json:"stage,omitempty"`

	// Timestamp is when the probe started. Used by Check to discard
	// stale files.
	Timestamp time.Time `json:"timestamp"`
}

// Write atomically writes a state file. The file is written to a
// temporary location in the same directory, fsynced, and renamed into
// place. The parent directory must already exist. Mode is 0600.
func Write(path string, state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling probe state: %w", err)
	}
	data = append(data, '\n')

	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary probe state file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary probe state file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary probe state file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary probe state file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming probe state file into place: %w", err)
	}

	// A probe that locks up the machine gives the kernel no chance to
	// flush directory metadata, so the rename has to hit the disk now.
	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}

	return nil
}

// Read reads and parses a state file. When the file does not exist,
// the returned error wraps os.ErrNotExist.
func Read(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("parsing probe state file %s: %w", path, err)
	}
	return state, nil
}

// Check reads a state file and reports whether it is recent relative
// to now. Returns a zero State and false when the file does not exist
// or its Timestamp is more than maxAge before now. A Timestamp in the
// future (clock stepped backwards) counts as recent.
//
// Other errors (permission denied, corrupt JSON) are returned so the
// caller can distinguish "no marker" from "marker exists but is
// unreadable".
func Check(path string, maxAge time.Duration, now time.Time) (State, bool, error) {
	state, err := Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, false, nil
		}
		return State{}, false, err
	}

	if now.Sub(state.Timestamp) > maxAge {
		return State{}, false, nil
	}

	return state, true, nil
}

// Clear removes a state file. Returns nil when the file does not exist.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing probe state file: %w", err)
	}
	return nil
}
