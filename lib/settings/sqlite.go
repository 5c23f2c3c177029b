// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/hwmon/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
) WITHOUT ROWID;
`

// operationTimeout bounds each store operation. hardware.Settings has
// no context, and a locked database must not stall a polling tick.
const operationTimeout = 5 * time.Second

// SQLite is a persistent store in one SQLite file.
type SQLite struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the store at path. A nil
// logger discards.
func OpenSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   path,
		Schema: schema,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening settings store: %w", err)
	}
	return &SQLite{pool: pool, logger: logger}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.pool.Close()
}

func (s *SQLite) do(fn func(conn *sqlite.Conn) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	return s.pool.Do(ctx, fn)
}

// Value returns the stored value, or def when the key is absent or
// the read fails.
func (s *SQLite) Value(key, def string) string {
	value, found := def, false
	err := s.do(func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT value FROM settings WHERE key = ?", &sqlitex.ExecOptions{
			Args: []any{key},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				value, found = stmt.ColumnText(0), true
				return nil
			},
		})
	})
	if err != nil {
		s.logger.Warn("reading setting failed", "key", key, "error", err)
		return def
	}
	if !found {
		return def
	}
	return value
}

func (s *SQLite) SetValue(key, value string) {
	err := s.do(func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			&sqlitex.ExecOptions{Args: []any{key, value}})
	})
	if err != nil {
		s.logger.Warn("writing setting failed", "key", key, "error", err)
	}
}

func (s *SQLite) Remove(key string) {
	err := s.do(func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "DELETE FROM settings WHERE key = ?",
			&sqlitex.ExecOptions{Args: []any{key}})
	})
	if err != nil {
		s.logger.Warn("removing setting failed", "key", key, "error", err)
	}
}

// All returns every stored entry.
func (s *SQLite) All(ctx context.Context) (map[string]string, error) {
	entries := make(map[string]string)
	err := s.pool.Do(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT key, value FROM settings", &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				entries[stmt.ColumnText(0)] = stmt.ColumnText(1)
				return nil
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}
	return entries, nil
}
