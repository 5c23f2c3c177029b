// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package superio

import (
	"fmt"
	"strings"

	"github.com/bureau-foundation/hwmon/lib/portio"
)

// Report accumulates detection anomalies for operators. Entries are
// appended during one pass and never read back by the detector.
type Report struct {
	builder strings.Builder
}

// String returns the report headed by "LpcIO", or "" when nothing was
// recorded.
func (r *Report) String() string {
	if r.builder.Len() == 0 {
		return ""
	}
	return "LpcIO\n\n" + r.builder.String()
}

// Empty reports whether no entry has been appended.
func (r *Report) Empty() bool { return r.builder.Len() == 0 }

func (r *Report) unknownChip(pair portio.PortPair, family Family, id uint16) {
	fmt.Fprintf(&r.builder, "Chip ID: Unknown %s with ID 0x%X at 0x%X/0x%X\n\n",
		family, id, pair.Register, pair.Value)
}

func (r *Report) chipHeader(chip Chip) {
	fmt.Fprintf(&r.builder, "Chip ID: 0x%04X\n", uint16(chip))
}

func (r *Report) revision(revision byte) {
	fmt.Fprintf(&r.builder, "Chip revision: 0x%X\n", revision)
}

func (r *Report) addressVerificationFailed(chip Chip, revision byte) {
	r.chipHeader(chip)
	r.revision(revision)
	r.builder.WriteString("Error: Address verification failed\n\n")
}

func (r *Report) invalidAddress(chip Chip, revision byte, address uint16) {
	r.chipHeader(chip)
	r.revision(revision)
	fmt.Fprintf(&r.builder, "Error: Invalid address 0x%X\n\n", address)
}

func (r *Report) invalidVendorID(chip Chip, revision byte, vendorID uint16) {
	r.chipHeader(chip)
	r.revision(revision)
	fmt.Fprintf(&r.builder, "Error: Invalid vendor ID 0x%X\n\n", vendorID)
}

// ITE entries carry no revision line: the version register is not a
// revision in the Winbond sense.
func (r *Report) invalidITEAddress(chip Chip, address uint16) {
	r.chipHeader(chip)
	fmt.Fprintf(&r.builder, "Error: Invalid address 0x%X\n\n", address)
}

func (r *Report) invalidGPIOAddress(chip Chip, address uint16) {
	r.chipHeader(chip)
	fmt.Fprintf(&r.builder, "Error: Invalid GPIO address 0x%X\n\n", address)
}

func (r *Report) skipped(pair portio.PortPair) {
	fmt.Fprintf(&r.builder, "Skipped 0x%X/0x%X: previous probe did not complete\n\n",
		pair.Register, pair.Value)
}
