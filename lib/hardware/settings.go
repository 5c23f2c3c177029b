// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hardware

// Settings persists per-identifier configuration such as user display
// names. Keys are Identifier.Key strings. Writes are fire-and-forget:
// implementations log failures instead of returning them.
type Settings interface {
	// Value returns the stored value for key, or def when absent.
	Value(key, def string) string

	// SetValue stores value under key.
	SetValue(key, value string)

	// Remove deletes key. Removing an absent key is a no-op.
	Remove(key string)
}

type discardSettings struct{}

func (discardSettings) Value(key, def string) string { return def }
func (discardSettings) SetValue(key, value string)   {}
func (discardSettings) Remove(key string)            {}

func orDiscard(settings Settings) Settings {
	if settings == nil {
		return discardSettings{}
	}
	return settings
}
