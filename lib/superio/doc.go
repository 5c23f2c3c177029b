// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package superio identifies the Super-I/O chips on the LPC bus and
// hands out register-level handles to their hardware monitors.
//
// A [Detector] walks the fixed configuration port pairs (0x2E/0x2F,
// then 0x4E/0x4F) under the bus arbiter. On each pair it tries the
// Winbond/Nuvoton/Fintek key, then the ITE key, then the SMSC key,
// and stops at the first family that yields a verified chip. Each
// probe enters configuration mode, reads the chip ID, decodes it
// through a static table, selects the hardware-monitor logical device,
// reads the base address twice with a settle delay in between, and
// exits configuration mode before anything is reported.
//
// Nothing in a probe is an error in the Go sense. A floating bus
// (0x00, 0xFF, 0xFFFF) is silent; an ID that decodes to nothing, an
// address that changes between reads, a misaligned address, or a
// wrong vendor ID is appended to the detection [Report] and the scan
// moves on.
//
// Verified chips become [Device] values. Each family binds the base
// address to its own register window: flat index/data at base+5/+6
// (ITE, Fintek), banked through register 0x4E (Winbond, most Nuvoton),
// or the paged EC space at base+4/+5/+6 (NCT6683D, NCT6686D,
// NCT6687D).
//
// On Gigabyte boards the secondary ITE chip at 0x4E fronts an
// embedded controller; the detector resolves it while the chip is
// still in configuration mode and attaches it to the device (see
// [ControllerResolver]).
package superio
