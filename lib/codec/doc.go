// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds bureau-hwmon's CBOR encoding configuration.
//
// Sensor snapshots leave the process in one of three formats: text for
// people, JSON lines for scripts, and CBOR for collectors that store
// many samples. This package configures the CBOR side once so every
// writer encodes identically. The encoder uses Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer and
// float encodings, no indefinite-length items. The same snapshot
// always produces the same bytes.
//
// For buffers:
//
//	data, err := codec.Marshal(snapshot)
//	err = codec.Unmarshal(data, &snapshot)
//
// For streams of snapshots (one CBOR item each, an RFC 8742 sequence):
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
//
// # Struct tags
//
// Types that are written both as JSON and as CBOR carry only `json`
// tags; fxamacker/cbor falls back to them when `cbor` tags are absent,
// so one tag controls field naming for both formats. Types that are
// only ever CBOR use `cbor` tags. A field never carries both.
//
// time.Time values encode as RFC 3339 text with nanoseconds, the same
// spelling encoding/json uses.
package codec
