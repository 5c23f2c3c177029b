// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hardware

import "strings"

// Identifier is a slash-separated path naming a node, sensor, or
// parameter, e.g. "motherboard/nct6779d/0/temperature/2". Identifiers
// are unique within one tree and double as settings keys.
type Identifier struct {
	path string
}

// NewIdentifier joins parts into an Identifier. Slashes and spaces
// inside a part are replaced so each part stays one path segment.
func NewIdentifier(parts ...string) Identifier {
	return Identifier{}.Child(parts...)
}

// Child returns a new Identifier extending id by parts.
func (id Identifier) Child(parts ...string) Identifier {
	segments := make([]string, 0, len(parts)+1)
	if id.path != "" {
		segments = append(segments, id.path)
	}
	for _, part := range parts {
		segments = append(segments, sanitizeSegment(part))
	}
	return Identifier{path: strings.Join(segments, "/")}
}

func sanitizeSegment(part string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/':
			return '_'
		case ' ':
			return -1
		}
		return r
	}, part)
}

// String returns the path.
func (id Identifier) String() string { return id.path }

// IsZero reports whether id is the empty identifier.
func (id Identifier) IsZero() bool { return id.path == "" }

// Less orders identifiers lexically by path.
func (id Identifier) Less(other Identifier) bool { return id.path < other.path }

// Key returns the settings key for a named attribute of id, e.g.
// "motherboard/name".
func (id Identifier) Key(attribute string) string {
	return id.Child(attribute).path
}
