// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package output encodes snapshots and reports for the CLI.
//
// A [Writer] emits one record per snapshot in the configured format:
// an indented sensor tree for text, one JSON document per line, or a
// CBOR sequence (RFC 8742) through lib/codec. The whole stream may be
// framed with zstd or lz4; the frame is flushed after every record so
// a long-running poll can be followed with zstdcat or lz4cat.
//
// Text output is styled with lipgloss only when it goes straight to a
// terminal, and its lines are then cut to the terminal width.
// Compressed and redirected output is always plain and never truncated.
package output
