// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads bureau-hwmon configuration.
//
// Configuration comes from a single file named by the --config flag
// or the BUREAU_HWMON_CONFIG environment variable. There is no search
// path and no per-field environment override: without a file the
// built-in [Default] applies unchanged.
//
// Files are YAML. Files ending in .json or .jsonc are accepted too;
// comments and trailing commas are stripped first and the result is
// decoded with the same YAML decoder, so both spellings share one set
// of field names.
//
// Path fields expand ${HOME} and ${VAR:-default} after loading.
//
// Key exports:
//
//   - [Config] -- the full configuration
//   - [Default] -- built-in values
//   - [Resolve], [Load], and [LoadFile] -- entry points
//   - [LoadBoards] -- a standalone embedded-controller board table
package config
