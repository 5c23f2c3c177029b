// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package superio

import "github.com/bureau-foundation/hwmon/lib/smbios"

// Logical device numbers selected before reading a base address.
const (
	ldnFintekHardwareMonitor         byte = 0x04
	ldnF71858HardwareMonitor         byte = 0x02
	ldnWinbondNuvotonHardwareMonitor byte = 0x0B
	ldnITEEnvironmentController      byte = 0x04
	ldnIT8705GPIO                    byte = 0x05
	ldnITEGPIO                       byte = 0x07
	ldnITESharedMemory               byte = 0x0F
)

// revisionMatch selects a chip from the revision byte. A zero mask
// compares the whole byte.
type revisionMatch struct {
	mask      byte
	revisions []byte
	chip      Chip
}

var winbondFintekTable = map[byte][]revisionMatch{
	0x05: {{revisions: []byte{0x07}, chip: ChipF71858}, {revisions: []byte{0x41}, chip: ChipF71882}},
	0x06: {{revisions: []byte{0x01}, chip: ChipF71862}},
	0x07: {{revisions: []byte{0x23}, chip: ChipF71889F}},
	0x08: {{revisions: []byte{0x14}, chip: ChipF71869}},
	0x09: {{revisions: []byte{0x01}, chip: ChipF71808E}, {revisions: []byte{0x09}, chip: ChipF71889ED}},
	0x10: {{revisions: []byte{0x05}, chip: ChipF71889AD}, {revisions: []byte{0x07}, chip: ChipF71869A}},
	0x11: {{revisions: []byte{0x06}, chip: ChipF71878AD}, {revisions: []byte{0x18}, chip: ChipF71811}},
	0x52: {{revisions: []byte{0x17, 0x3A, 0x41}, chip: ChipW83627HF}},
	0x82: {{mask: 0xF0, revisions: []byte{0x80}, chip: ChipW83627THF}},
	0x85: {{revisions: []byte{0x41}, chip: ChipW83687THF}},
	0x88: {{mask: 0xF0, revisions: []byte{0x50, 0x60}, chip: ChipW83627EHF}},
	0xA0: {{mask: 0xF0, revisions: []byte{0x20}, chip: ChipW83627DHG}},
	0xA5: {{mask: 0xF0, revisions: []byte{0x10}, chip: ChipW83667HG}},
	0xB0: {{mask: 0xF0, revisions: []byte{0x70}, chip: ChipW83627DHGP}},
	0xB3: {{mask: 0xF0, revisions: []byte{0x50}, chip: ChipW83667HGB}},
	0xB4: {{mask: 0xF0, revisions: []byte{0x70}, chip: ChipNCT6771F}},
	0xC3: {{mask: 0xF0, revisions: []byte{0x30}, chip: ChipNCT6776F}},
	0xC4: {{mask: 0xF0, revisions: []byte{0x50}, chip: ChipNCT610XD}},
	0xC5: {{mask: 0xF0, revisions: []byte{0x60}, chip: ChipNCT6779D}},
	0xC7: {{revisions: []byte{0x32}, chip: ChipNCT6683D}},
	0xC8: {{revisions: []byte{0x03}, chip: ChipNCT6791D}},
	0xC9: {{revisions: []byte{0x11}, chip: ChipNCT6792D}, {revisions: []byte{0x13}, chip: ChipNCT6792DA}},
	0xD1: {{revisions: []byte{0x21}, chip: ChipNCT6793D}},
	0xD3: {{revisions: []byte{0x52}, chip: ChipNCT6795D}},
	0xD4: {
		{revisions: []byte{0x23}, chip: ChipNCT6796D},
		{revisions: []byte{0x2A}, chip: ChipNCT6796DR},
		{revisions: []byte{0x51}, chip: ChipNCT6797D},
		{revisions: []byte{0x2B}, chip: ChipNCT6798D},
		{revisions: []byte{0x40, 0x41}, chip: ChipNCT6686D},
	},
	0xD5: {{revisions: []byte{0x92}, chip: ChipNCT6687D}},
	0xD8: {{revisions: []byte{0x02}, chip: ChipNCT6799D}, {revisions: []byte{0x06}, chip: ChipNCT6701D}},
}

// nct6687drBoards are MSI AM5 and LGA1851 boards whose NCT6687D
// reports the same ID as the original part but needs the R register
// layout.
var nct6687drBoards = map[smbios.Model]bool{
	"B840P_PRO_WIFI":         true,
	"B850_GAMING_PLUS_WIFI":  true,
	"B850P_PRO_WIFI":         true,
	"B850M_MORTAR_WIFI":      true,
	"B850_TOMAHAWK_MAX_WIFI": true,
	"B850_EDGE_TI_WIFI":      true,
	"X870_GAMING_PLUS_WIFI":  true,
	"X870_TOMAHAWK_WIFI":     true,
	"X870P_PRO_WIFI":         true,
	"X870E_TOMAHAWK_WIFI":    true,
	"X870E_CARBON_WIFI":      true,
	"X870E_EDGE_TI_WIFI":     true,
	"X870E_GODLIKE":          true,
	"Z890_ACE":               true,
	"Z890_CARBON_WIFI":       true,
	"Z890_TOMAHAWK_WIFI":     true,
	"Z890_EDGE_TI_WIFI":      true,
	"Z890P_PRO_WIFI":         true,
	"Z890A_PRO_WIFI":         true,
}

// DecodeWinbondFintek maps a chip ID and revision read after the
// Winbond/Nuvoton/Fintek key to a chip and the logical device holding
// its hardware monitor. It returns ChipUnknown and 0 for IDs not in
// the table. The board model only matters for the NCT6687D, which MSI
// ships in a register-incompatible variant under the same ID.
func DecodeWinbondFintek(id, revision byte, model smbios.Model) (Chip, byte) {
	chip := ChipUnknown
	for _, match := range winbondFintekTable[id] {
		value := revision
		if match.mask != 0 {
			value &= match.mask
		}
		for _, candidate := range match.revisions {
			if value == candidate {
				chip = match.chip
				break
			}
		}
		if chip != ChipUnknown {
			break
		}
	}

	switch {
	case chip == ChipUnknown:
		return ChipUnknown, 0
	case chip == ChipNCT6687D && nct6687drBoards[model]:
		chip = ChipNCT6687DR
	}

	switch chip.Kind() {
	case KindF718xx:
		if chip == ChipF71858 {
			return chip, ldnF71858HardwareMonitor
		}
		return chip, ldnFintekHardwareMonitor
	default:
		return chip, ldnWinbondNuvotonHardwareMonitor
	}
}

var iteTable = map[uint16]Chip{
	0x8613: ChipIT8613E,
	0x8620: ChipIT8620E,
	0x8625: ChipIT8625E,
	0x8628: ChipIT8628E,
	0x8631: ChipIT8631E,
	0x8665: ChipIT8665E,
	0x8655: ChipIT8655E,
	0x8686: ChipIT8686E,
	0x8688: ChipIT8688E,
	0x8689: ChipIT8689E,
	0x8696: ChipIT8696E,
	0x8705: ChipIT8705F,
	0x8712: ChipIT8712F,
	0x8716: ChipIT8716F,
	0x8718: ChipIT8718F,
	0x8720: ChipIT8720F,
	0x8721: ChipIT8721F,
	0x8726: ChipIT8726F,
	0x8728: ChipIT8728F,
	0x8771: ChipIT8771E,
	0x8772: ChipIT8772E,
	0x8790: ChipIT8790E,
	0x8733: ChipIT8792E,
	0x8695: ChipIT87952E,
}

// DecodeITE maps the chip ID word read after the ITE key.
func DecodeITE(id uint16) Chip {
	return iteTable[id]
}

// isSentinel8 reports a floating or unpopulated ID byte.
func isSentinel8(id byte) bool { return id == 0x00 || id == 0xFF }

// isSentinel16 reports a floating or unpopulated ID word.
func isSentinel16(id uint16) bool { return id == 0x0000 || id == 0xFFFF }
