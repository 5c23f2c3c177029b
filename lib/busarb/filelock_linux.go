// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package busarb

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/hwmon/lib/clock"
)

// DefaultLockPath is the lock file shared by every bureau-hwmon
// process on a host.
const DefaultLockPath = "/run/lock/bureau-hwmon-isabus.lock"

// FileLock is an Arbiter that also excludes other processes. It holds
// an flock(2) exclusive lock on a well-known file for the duration of
// each acquisition. Goroutines of one process serialize on an inner
// Mutex first, because flock on a single open file description does
// not exclude its own holders.
type FileLock struct {
	file   *os.File
	inner  *Mutex
	clock  clock.Clock
	logger *slog.Logger
}

// OpenFileLock opens (creating if needed) the lock file at path. The
// lock is not taken until Acquire.
func OpenFileLock(path string, c clock.Clock, logger *slog.Logger) (*FileLock, error) {
	if path == "" {
		path = DefaultLockPath
	}
	if c == nil {
		c = clock.Real()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating lock directory for %s: %w", path, err)
	}
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening bus lock %s: %w", path, err)
	}
	return &FileLock{
		file:   file,
		inner:  NewMutex(c),
		clock:  c,
		logger: logger,
	}, nil
}

func (l *FileLock) Acquire(timeout time.Duration) bool {
	deadline := l.clock.Now().Add(timeout)
	if !l.inner.Acquire(timeout) {
		return false
	}
	remaining := deadline.Sub(l.clock.Now())
	if remaining < 0 {
		remaining = 0
	}
	if poll(l.clock, remaining, l.tryFlock) {
		return true
	}
	l.inner.Release()
	return false
}

func (l *FileLock) tryFlock() bool {
	err := unix.Flock(int(l.file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == nil {
		return true
	}
	if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
		l.logger.Debug("bus lock flock failed", "path", l.file.Name(), "error", err)
	}
	return false
}

func (l *FileLock) Release() {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		l.logger.Debug("bus lock unlock failed", "path", l.file.Name(), "error", err)
	}
	l.inner.Release()
}

// Close releases the lock file descriptor. Any held lock is dropped
// by the kernel.
func (l *FileLock) Close() error {
	return l.file.Close()
}
