// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package monitor owns a hardware tree and polls it.
//
// A [Monitor] builds the tree once through its Build function, then
// on every tick runs [hardware.UpdateVisitor] over it and hands a
// [Snapshot] of the active sensors to its [Sink]. Exactly one
// goroutine (the one inside Run) touches the tree; other goroutines
// interact through [Monitor.Rebuild] and [Monitor.Latest].
//
// Snapshots are plain data with json tags so that lib/output can
// encode them as text, JSON lines or CBOR without knowing anything
// about hardware nodes.
package monitor
