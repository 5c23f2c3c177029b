// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sysfs reads single-value kernel attribute files and PCI
// device metadata. Every reader takes a full path so callers can point
// at a synthetic tree under a test root. Missing or malformed files
// yield zero values, never errors: on real machines most attributes
// are optional.
package sysfs

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadString reads a single-line attribute file and returns its
// trimmed content. Returns "" on any error.
func ReadString(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ReadInt reads a decimal integer. Returns 0 on error.
func ReadInt(path string) int {
	result, err := strconv.Atoi(ReadString(path))
	if err != nil {
		return 0
	}
	return result
}

// ReadUint64 reads an unsigned decimal or 0x-prefixed hex value.
// Returns 0 on error.
func ReadUint64(path string) uint64 {
	result, err := strconv.ParseUint(ReadString(path), 0, 64)
	if err != nil {
		return 0
	}
	return result
}

// Join is filepath.Join for attribute paths under a root. A root of ""
// resolves against "/".
func Join(root string, elements ...string) string {
	if root == "" {
		root = "/"
	}
	return filepath.Join(append([]string{root}, elements...)...)
}
