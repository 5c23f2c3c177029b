// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package busarb

import (
	"log/slog"

	"github.com/bureau-foundation/hwmon/lib/clock"
)

// DefaultLockPath is unused off Linux.
const DefaultLockPath = ""

// FileLock degrades to an in-process Mutex where flock is unavailable.
type FileLock struct {
	*Mutex
}

// OpenFileLock returns an in-process lock; path is ignored.
func OpenFileLock(path string, c clock.Clock, logger *slog.Logger) (*FileLock, error) {
	return &FileLock{Mutex: NewMutex(c)}, nil
}

func (l *FileLock) Close() error { return nil }
