// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package superio

import (
	"testing"

	"github.com/bureau-foundation/hwmon/lib/smbios"
)

func TestDecodeWinbondFintek(t *testing.T) {
	tests := []struct {
		name     string
		id       byte
		revision byte
		model    smbios.Model
		wantChip Chip
		wantLDN  byte
	}{
		{"NCT6779D masked revision", 0xC5, 0x61, "", ChipNCT6779D, 0x0B},
		{"NCT6779D other stepping", 0xC5, 0x6F, "", ChipNCT6779D, 0x0B},
		{"NCT6779D wrong family nibble", 0xC5, 0x71, "", ChipUnknown, 0},
		{"F71858 own LDN", 0x05, 0x07, "", ChipF71858, 0x02},
		{"F71882", 0x05, 0x41, "", ChipF71882, 0x04},
		{"F71811", 0x11, 0x18, "", ChipF71811, 0x04},
		{"W83627HF any listed revision", 0x52, 0x3A, "", ChipW83627HF, 0x0B},
		{"W83627HF unlisted revision", 0x52, 0x3B, "", ChipUnknown, 0},
		{"W83627EHF second nibble", 0x88, 0x6A, "", ChipW83627EHF, 0x0B},
		{"NCT6796D-R exact revision", 0xD4, 0x2A, "", ChipNCT6796DR, 0x0B},
		{"NCT6686D either revision", 0xD4, 0x41, "", ChipNCT6686D, 0x0B},
		{"NCT6687D generic board", 0xD5, 0x92, "X670E_AORUS_MASTER", ChipNCT6687D, 0x0B},
		{"NCT6687D-R on MSI X870E", 0xD5, 0x92, "X870E_CARBON_WIFI", ChipNCT6687DR, 0x0B},
		{"NCT6701D", 0xD8, 0x06, "", ChipNCT6701D, 0x0B},
		{"unknown ID", 0x12, 0x34, "", ChipUnknown, 0},
		{"floating bus", 0xFF, 0xFF, "", ChipUnknown, 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			chip, ldn := DecodeWinbondFintek(test.id, test.revision, test.model)
			if chip != test.wantChip || ldn != test.wantLDN {
				t.Errorf("DecodeWinbondFintek(0x%02X, 0x%02X) = %v, 0x%02X; want %v, 0x%02X",
					test.id, test.revision, chip, ldn, test.wantChip, test.wantLDN)
			}
		})
	}
}

func TestDecodeWinbondFintekIsPure(t *testing.T) {
	type decoded struct {
		chip Chip
		ldn  byte
	}
	first := make(map[[2]byte]decoded)
	for id := 0; id < 256; id++ {
		for revision := 0; revision < 256; revision++ {
			chip, ldn := DecodeWinbondFintek(byte(id), byte(revision), "")
			first[[2]byte{byte(id), byte(revision)}] = decoded{chip, ldn}
		}
	}
	// Second pass in reverse order must agree.
	for id := 255; id >= 0; id-- {
		for revision := 255; revision >= 0; revision-- {
			chip, ldn := DecodeWinbondFintek(byte(id), byte(revision), "")
			if got, want := (decoded{chip, ldn}), first[[2]byte{byte(id), byte(revision)}]; got != want {
				t.Fatalf("decode of 0x%02X/0x%02X changed between passes: %v then %v", id, revision, want, got)
			}
		}
	}
}

func TestDecodeWinbondFintekChipCodes(t *testing.T) {
	// Every decoded chip is a known table entry with a family kind.
	for id, matches := range winbondFintekTable {
		for _, match := range matches {
			for _, revision := range match.revisions {
				chip, _ := DecodeWinbondFintek(id, revision, "")
				if !chip.Known() {
					t.Errorf("0x%02X/0x%02X decoded to unlisted chip %v", id, revision, chip)
				}
				if kind := chip.Kind(); kind != KindW836xx && kind != KindNCT677x && kind != KindF718xx {
					t.Errorf("%v has kind %v", chip, kind)
				}
			}
		}
	}
}

func TestDecodeITE(t *testing.T) {
	tests := []struct {
		id   uint16
		want Chip
	}{
		{0x8728, ChipIT8728F},
		{0x8705, ChipIT8705F},
		{0x8733, ChipIT8792E},
		{0x8695, ChipIT87952E},
		{0x8792, ChipUnknown},
		{0x8883, ChipUnknown},
		{0xFFFF, ChipUnknown},
	}
	for _, test := range tests {
		if got := DecodeITE(test.id); got != test.want {
			t.Errorf("DecodeITE(0x%04X) = %v, want %v", test.id, got, test.want)
		}
	}
}

func TestChipNames(t *testing.T) {
	tests := []struct {
		chip       Chip
		wantString string
		wantName   string
	}{
		{ChipNCT6779D, "NCT6779D", "Nuvoton NCT6779D"},
		{ChipNCT6796DR, "NCT6796DR", "Nuvoton NCT6796D-R"},
		{ChipIT8792E, "IT8792E", "ITE IT8792E"},
		{Chip(0x1234), "Chip(0x1234)", "Unknown"},
	}
	for _, test := range tests {
		if got := test.chip.String(); got != test.wantString {
			t.Errorf("String() = %q, want %q", got, test.wantString)
		}
		if got := test.chip.Name(); got != test.wantName {
			t.Errorf("Name() = %q, want %q", got, test.wantName)
		}
	}
}
