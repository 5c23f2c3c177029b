// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package watchdog records risky hardware probes in a durable state
// file so that a probe which hangs or crashes the machine is not
// repeated blindly on the next start.
//
// Before touching a Super-I/O configuration port pair, the detector
// calls [ProbeGuard.Begin], which atomically writes a [State] naming the
// pair. When the probe returns, [ProbeGuard.End] removes the file. If
// the process dies in between, the state file survives; the next
// [OpenProbeGuard] reads it, and [ProbeGuard.Interrupted] reports the
// pair so the detector can skip it for one pass and say so in its
// report.
//
// The state file is written atomically (write to temporary file,
// fsync, rename into place, fsync parent directory) so readers never
// see a partial state. [Check] ignores files older than a maximum age
// so a marker from a machine that has been powered off for a week does
// not suppress detection forever.
package watchdog
