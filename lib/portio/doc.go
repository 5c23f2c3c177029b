// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package portio provides raw access to legacy I/O ports, model-specific
// registers, and physical memory windows, plus the index/data register
// channel used to talk to Super-I/O configuration space.
//
// # Driver boundary
//
// [Driver] is the narrow contract the rest of the engine consumes:
// read a port, write a port, read an MSR. On Linux, [OpenDevPort]
// implements it over /dev/port and /dev/cpu/N/msr (requires root and
// the msr kernel module for MSR reads). Installing or loading kernel
// drivers is outside this package.
//
// # Channels
//
// A [Channel] binds a Driver to one (register port, value port) pair
// such as 0x2E/0x2F. Reads and writes go through the index register:
// write the register number to the register port, then read or write
// the value port. Vendor-specific configuration-mode entry and exit
// sequences live on Channel as well.
//
// Every Channel operation touches shared machine I/O space. Callers
// must hold the ISA bus arbiter (lib/busarb) across an entire
// enter, probe, exit span.
//
// # Simulator
//
// [Simulator] is an in-memory Driver that models Super-I/O chips,
// hardware-monitor I/O spaces, an ACPI embedded controller, and MSRs.
// Tests across the module use it instead of real hardware.
package portio
