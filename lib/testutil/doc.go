// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for hwmon packages.
//
// [RequireReceive] encapsulates the timeout safety valve pattern
// (select with time.After fallback) for tests that wait on a goroutine
// driven by lib/clock's fake clock. It is the only place in the test
// suite where a real wall-clock timeout is used.
//
// [WriteFile] lays out synthetic sysfs, procfs and config trees under
// a test's temporary directory.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no hwmon-internal dependencies.
package testutil
