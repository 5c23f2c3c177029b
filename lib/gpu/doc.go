// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gpu builds hardware nodes for integrated graphics and holds
// the counter arithmetic their sensors are derived from.
//
// Derived sensors follow two numeric rules. Rates come from counters
// that wrap: the difference between two samples is taken with unsigned
// overflow, and a sample taken less than [MinRateInterval] after the
// previous one is ignored without moving the baseline. Byte counters
// are reported in MiB with floating-point division.
//
// Memory and engine statistics come from a [DeviceInfoSource]. On
// Linux, [FdinfoSource] aggregates the DRM client statistics the
// kernel publishes under /proc/<pid>/fdinfo. GPU package power comes
// from the RAPL PP1 energy counter read through a [MSRReader].
package gpu
