// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the bureau-hwmon entrypoint helpers: fatal
// error reporting before the structured logger exists, and mapping a
// run error to the process exit code.
package process
