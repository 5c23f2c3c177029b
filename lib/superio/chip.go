// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package superio

import (
	"fmt"
	"strings"
)

// Chip identifies a Super-I/O part. Winbond, Nuvoton and Fintek values
// are the chip ID byte followed by the revision (or its family
// nibble); ITE values are the chip ID word with the IT8792E and
// IT87952E exceptions the silicon reports.
type Chip uint16

const (
	ChipUnknown Chip = 0

	ChipF71808E  Chip = 0x0901
	ChipF71811   Chip = 0x1118
	ChipF71858   Chip = 0x0507
	ChipF71862   Chip = 0x0601
	ChipF71869   Chip = 0x0814
	ChipF71869A  Chip = 0x1007
	ChipF71878AD Chip = 0x1106
	ChipF71882   Chip = 0x0541
	ChipF71889AD Chip = 0x1005
	ChipF71889ED Chip = 0x0909
	ChipF71889F  Chip = 0x0723

	ChipIT8613E  Chip = 0x8613
	ChipIT8620E  Chip = 0x8620
	ChipIT8625E  Chip = 0x8625
	ChipIT8628E  Chip = 0x8628
	ChipIT8631E  Chip = 0x8631
	ChipIT8655E  Chip = 0x8655
	ChipIT8665E  Chip = 0x8665
	ChipIT8686E  Chip = 0x8686
	ChipIT8688E  Chip = 0x8688
	ChipIT8689E  Chip = 0x8689
	ChipIT8696E  Chip = 0x8696
	ChipIT8705F  Chip = 0x8705
	ChipIT8712F  Chip = 0x8712
	ChipIT8716F  Chip = 0x8716
	ChipIT8718F  Chip = 0x8718
	ChipIT8720F  Chip = 0x8720
	ChipIT8721F  Chip = 0x8721
	ChipIT8726F  Chip = 0x8726
	ChipIT8728F  Chip = 0x8728
	ChipIT8771E  Chip = 0x8771
	ChipIT8772E  Chip = 0x8772
	ChipIT8790E  Chip = 0x8790
	ChipIT8792E  Chip = 0x8733
	ChipIT87952E Chip = 0x8695

	ChipNCT610XD  Chip = 0xC452
	ChipNCT6771F  Chip = 0xB470
	ChipNCT6776F  Chip = 0xC330
	ChipNCT6779D  Chip = 0xC560
	ChipNCT6791D  Chip = 0xC803
	ChipNCT6792D  Chip = 0xC911
	ChipNCT6792DA Chip = 0xC913
	ChipNCT6793D  Chip = 0xD121
	ChipNCT6795D  Chip = 0xD352
	ChipNCT6796D  Chip = 0xD423
	ChipNCT6796DR Chip = 0xD42A
	ChipNCT6797D  Chip = 0xD451
	ChipNCT6798D  Chip = 0xD42B
	ChipNCT6686D  Chip = 0xD440
	ChipNCT6687D  Chip = 0xD592
	ChipNCT6687DR Chip = 0xD593
	ChipNCT6683D  Chip = 0xC732
	ChipNCT6799D  Chip = 0xD802
	ChipNCT6701D  Chip = 0xD806

	ChipW83627DHG  Chip = 0xA020
	ChipW83627DHGP Chip = 0xB070
	ChipW83627EHF  Chip = 0x8800
	ChipW83627HF   Chip = 0x5200
	ChipW83627THF  Chip = 0x8280
	ChipW83667HG   Chip = 0xA510
	ChipW83667HGB  Chip = 0xB350
	ChipW83687THF  Chip = 0x8541
)

// Kind is the register-access implementation a chip is driven by.
type Kind int

const (
	KindNone Kind = iota
	KindW836xx
	KindNCT677x
	KindF718xx
	KindIT87xx
)

func (k Kind) String() string {
	switch k {
	case KindW836xx:
		return "W836xx"
	case KindNCT677x:
		return "NCT677x"
	case KindF718xx:
		return "F718xx"
	case KindIT87xx:
		return "IT87xx"
	default:
		return "none"
	}
}

type chipInfo struct {
	name string
	kind Kind
}

var chips = map[Chip]chipInfo{
	ChipF71808E:  {"Fintek F71808E", KindF718xx},
	ChipF71811:   {"Fintek F71811", KindF718xx},
	ChipF71858:   {"Fintek F71858", KindF718xx},
	ChipF71862:   {"Fintek F71862", KindF718xx},
	ChipF71869:   {"Fintek F71869", KindF718xx},
	ChipF71869A:  {"Fintek F71869A", KindF718xx},
	ChipF71878AD: {"Fintek F71878AD", KindF718xx},
	ChipF71882:   {"Fintek F71882", KindF718xx},
	ChipF71889AD: {"Fintek F71889AD", KindF718xx},
	ChipF71889ED: {"Fintek F71889ED", KindF718xx},
	ChipF71889F:  {"Fintek F71889F", KindF718xx},

	ChipIT8613E:  {"ITE IT8613E", KindIT87xx},
	ChipIT8620E:  {"ITE IT8620E", KindIT87xx},
	ChipIT8625E:  {"ITE IT8625E", KindIT87xx},
	ChipIT8628E:  {"ITE IT8628E", KindIT87xx},
	ChipIT8631E:  {"ITE IT8631E", KindIT87xx},
	ChipIT8655E:  {"ITE IT8655E", KindIT87xx},
	ChipIT8665E:  {"ITE IT8665E", KindIT87xx},
	ChipIT8686E:  {"ITE IT8686E", KindIT87xx},
	ChipIT8688E:  {"ITE IT8688E", KindIT87xx},
	ChipIT8689E:  {"ITE IT8689E", KindIT87xx},
	ChipIT8696E:  {"ITE IT8696E", KindIT87xx},
	ChipIT8705F:  {"ITE IT8705F", KindIT87xx},
	ChipIT8712F:  {"ITE IT8712F", KindIT87xx},
	ChipIT8716F:  {"ITE IT8716F", KindIT87xx},
	ChipIT8718F:  {"ITE IT8718F", KindIT87xx},
	ChipIT8720F:  {"ITE IT8720F", KindIT87xx},
	ChipIT8721F:  {"ITE IT8721F", KindIT87xx},
	ChipIT8726F:  {"ITE IT8726F", KindIT87xx},
	ChipIT8728F:  {"ITE IT8728F", KindIT87xx},
	ChipIT8771E:  {"ITE IT8771E", KindIT87xx},
	ChipIT8772E:  {"ITE IT8772E", KindIT87xx},
	ChipIT8790E:  {"ITE IT8790E", KindIT87xx},
	ChipIT8792E:  {"ITE IT8792E", KindIT87xx},
	ChipIT87952E: {"ITE IT87952E", KindIT87xx},

	ChipNCT610XD:  {"Nuvoton NCT610XD", KindNCT677x},
	ChipNCT6771F:  {"Nuvoton NCT6771F", KindNCT677x},
	ChipNCT6776F:  {"Nuvoton NCT6776F", KindNCT677x},
	ChipNCT6779D:  {"Nuvoton NCT6779D", KindNCT677x},
	ChipNCT6791D:  {"Nuvoton NCT6791D", KindNCT677x},
	ChipNCT6792D:  {"Nuvoton NCT6792D", KindNCT677x},
	ChipNCT6792DA: {"Nuvoton NCT6792D-A", KindNCT677x},
	ChipNCT6793D:  {"Nuvoton NCT6793D", KindNCT677x},
	ChipNCT6795D:  {"Nuvoton NCT6795D", KindNCT677x},
	ChipNCT6796D:  {"Nuvoton NCT6796D", KindNCT677x},
	ChipNCT6796DR: {"Nuvoton NCT6796D-R", KindNCT677x},
	ChipNCT6797D:  {"Nuvoton NCT6797D", KindNCT677x},
	ChipNCT6798D:  {"Nuvoton NCT6798D", KindNCT677x},
	ChipNCT6686D:  {"Nuvoton NCT6686D", KindNCT677x},
	ChipNCT6687D:  {"Nuvoton NCT6687D", KindNCT677x},
	ChipNCT6687DR: {"Nuvoton NCT6687D-R", KindNCT677x},
	ChipNCT6683D:  {"Nuvoton NCT6683D", KindNCT677x},
	ChipNCT6799D:  {"Nuvoton NCT6799D", KindNCT677x},
	ChipNCT6701D:  {"Nuvoton NCT6701D", KindNCT677x},

	ChipW83627DHG:  {"Winbond W83627DHG", KindW836xx},
	ChipW83627DHGP: {"Winbond W83627DHG-P", KindW836xx},
	ChipW83627EHF:  {"Winbond W83627EHF", KindW836xx},
	ChipW83627HF:   {"Winbond W83627HF", KindW836xx},
	ChipW83627THF:  {"Winbond W83627THF", KindW836xx},
	ChipW83667HG:   {"Winbond W83667HG", KindW836xx},
	ChipW83667HGB:  {"Winbond W83667HG-B", KindW836xx},
	ChipW83687THF:  {"Winbond W83687THF", KindW836xx},
}

// Name returns the marketing name, e.g. "Nuvoton NCT6779D".
func (c Chip) Name() string {
	if info, ok := chips[c]; ok {
		return info.name
	}
	return "Unknown"
}

// String returns the part number without the vendor, e.g. "NCT6779D",
// or the hex code for an unlisted value.
func (c Chip) String() string {
	info, ok := chips[c]
	if !ok {
		return fmt.Sprintf("Chip(0x%04X)", uint16(c))
	}
	_, part, _ := strings.Cut(info.name, " ")
	return strings.ReplaceAll(part, "-", "")
}

// Kind returns the implementation family for the chip.
func (c Chip) Kind() Kind {
	return chips[c].kind
}

// Known reports whether the chip is in the table.
func (c Chip) Known() bool {
	_, ok := chips[c]
	return ok
}

// unlocksIOSpace reports whether the chip has the hardware-monitor I/O
// space lock that must be cleared after the BIOS sets it.
func (c Chip) unlocksIOSpace() bool {
	switch c {
	case ChipNCT6791D, ChipNCT6792D, ChipNCT6792DA, ChipNCT6793D, ChipNCT6795D,
		ChipNCT6796D, ChipNCT6796DR, ChipNCT6797D, ChipNCT6798D, ChipNCT6799D, ChipNCT6701D:
		return true
	}
	return false
}

// usesECSpace reports whether the chip's monitor lives in the paged
// EC register space rather than the banked Winbond layout.
func (c Chip) usesECSpace() bool {
	switch c {
	case ChipNCT6683D, ChipNCT6686D, ChipNCT6687D, ChipNCT6687DR:
		return true
	}
	return false
}
