// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ec talks to motherboard embedded controllers.
//
// Two kinds of access exist. [Port] is the ACPI EC command protocol on
// ports 0x66 (command/status) and 0x62 (data), used by the
// [EmbeddedController] sensor node and by the ECIO fallback
// controller. [SMFIController] drives an EC whose RAM is exposed to the
// host through an ITE Super-I/O shared-memory window; the window
// address is resolved by the Super-I/O detector.
//
// A [Controller] is the auxiliary handle attached to an ITE Super-I/O
// device: it can hand fan control between the EC firmware and the
// host, and restore the firmware's original setting on exit.
package ec
