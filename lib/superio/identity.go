// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package superio

import (
	"fmt"

	"github.com/bureau-foundation/hwmon/lib/portio"
)

// Family is the configuration-mode protocol a chip answered to.
type Family int

const (
	FamilyWinbondNuvotonFintek Family = iota
	FamilyITE
	FamilySMSC
)

func (f Family) String() string {
	switch f {
	case FamilyWinbondNuvotonFintek:
		return "Winbond / Nuvoton / Fintek"
	case FamilyITE:
		return "ITE"
	case FamilySMSC:
		return "SMSC"
	default:
		return fmt.Sprintf("Family(%d)", int(f))
	}
}

// token is the short lower-case name used in probe watchdog stages.
func (f Family) token() string {
	switch f {
	case FamilyWinbondNuvotonFintek:
		return "winbond"
	case FamilyITE:
		return "ite"
	default:
		return "smsc"
	}
}

// Identity is what detection learned about one physical chip. It is
// fixed once the address has been verified.
type Identity struct {
	Family Family
	Chip   Chip

	// Revision is the revision byte for Winbond/Nuvoton/Fintek chips
	// and the low nibble of the version register for ITE chips.
	Revision byte

	// Address is the verified hardware-monitor base address.
	Address uint16

	// GPIOAddress is the verified GPIO base, ITE only. Zero otherwise.
	GPIOAddress uint16

	// Pair is the configuration port pair the chip answered on.
	Pair portio.PortPair
}

// String renders "Nuvoton NCT6779D (0xC560) rev 0x61 at 0x290 via 0x2E/0x2F".
func (i Identity) String() string {
	text := fmt.Sprintf("%s (0x%04X) rev 0x%X at 0x%X", i.Chip.Name(), uint16(i.Chip), i.Revision, i.Address)
	if i.GPIOAddress != 0 {
		text += fmt.Sprintf(" gpio 0x%X", i.GPIOAddress)
	}
	return text + " via " + i.Pair.String()
}
