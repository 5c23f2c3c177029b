// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens the SQLite databases bureau-hwmon keeps on
// disk. It wraps zombiezen.com/go/sqlite's sqlitex.Pool with the
// pragmas every connection gets and a schema applied as each
// connection is prepared.
//
// Callers [Pool.Take] a connection and [Pool.Put] it back, or use
// [Pool.Do] for both. A connection is not safe for concurrent use.
//
// # Pragmas
//
//   - journal_mode=WAL: readers do not block the writer.
//   - synchronous=NORMAL: commits survive a process crash. A power
//     loss can drop the last commits, which for display-name
//     overrides is acceptable.
//   - busy_timeout=5000: a second process writing the same file waits
//     up to five seconds instead of failing with SQLITE_BUSY.
//   - temp_store=MEMORY.
package sqlitepool
