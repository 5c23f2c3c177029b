// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sysfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/hwmon/lib/testutil"
)

func TestReaders(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "string", "  Gigabyte Technology Co., Ltd.\n")
	testutil.WriteFile(t, root, "int", "42\n")
	testutil.WriteFile(t, root, "hex", "0x1934\n")
	testutil.WriteFile(t, root, "garbage", "n/a\n")

	if got := ReadString(filepath.Join(root, "string")); got != "Gigabyte Technology Co., Ltd." {
		t.Errorf("ReadString = %q", got)
	}
	if got := ReadInt(filepath.Join(root, "int")); got != 42 {
		t.Errorf("ReadInt = %d, want 42", got)
	}
	if got := ReadUint64(filepath.Join(root, "hex")); got != 0x1934 {
		t.Errorf("ReadUint64 = 0x%X, want 0x1934", got)
	}
	if got := ReadInt(filepath.Join(root, "garbage")); got != 0 {
		t.Errorf("ReadInt(garbage) = %d, want 0", got)
	}
	if got := ReadString(filepath.Join(root, "missing")); got != "" {
		t.Errorf("ReadString(missing) = %q, want empty", got)
	}
}

func TestIsCardDevice(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"card0", true},
		{"card12", true},
		{"card", false},
		{"card0-DP-1", false},
		{"renderD128", false},
	}
	for _, test := range tests {
		if got := IsCardDevice(test.name); got != test.want {
			t.Errorf("IsCardDevice(%q) = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestDRMCards(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "class/drm/card1/device/uevent",
		"DRIVER=amdgpu\nPCI_ID=1002:744C\nPCI_SLOT_NAME=0000:03:00.0\n")
	testutil.WriteFile(t, root, "class/drm/card0/device/uevent",
		"DRIVER=i915\nPCI_ID=8086:A780\nPCI_SLOT_NAME=0000:00:02.0\n")
	testutil.WriteFile(t, root, "class/drm/card0-DP-1/status", "disconnected\n")
	if err := os.MkdirAll(filepath.Join(root, "class/drm/renderD128"), 0755); err != nil {
		t.Fatal(err)
	}

	cards := DRMCards(root)
	if len(cards) != 2 {
		t.Fatalf("DRMCards returned %d cards, want 2", len(cards))
	}
	first := cards[0]
	if first.Name != "card0" {
		t.Errorf("cards[0].Name = %q, want card0", first.Name)
	}
	want := PCIDevice{VendorID: "8086", DeviceID: "a780", Slot: "0000:00:02.0", Driver: "i915"}
	if first.Device != want {
		t.Errorf("cards[0].Device = %+v, want %+v", first.Device, want)
	}
	if first.Device.VendorName() != "Intel" {
		t.Errorf("VendorName = %q, want Intel", first.Device.VendorName())
	}
	if cards[1].Device.VendorName() != "AMD" {
		t.Errorf("cards[1] vendor = %q, want AMD", cards[1].Device.VendorName())
	}
}

func TestDRMCardsMissingRoot(t *testing.T) {
	if cards := DRMCards(filepath.Join(t.TempDir(), "absent")); cards != nil {
		t.Errorf("DRMCards on missing root = %v, want nil", cards)
	}
}
