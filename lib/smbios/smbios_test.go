// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package smbios

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/hwmon/lib/testutil"
)

func TestReadFromSyntheticFS(t *testing.T) {
	root := t.TempDir()
	sysRoot := filepath.Join(root, "sys")
	procRoot := filepath.Join(root, "proc")

	testutil.WriteFile(t, root, "sys/class/dmi/id/board_vendor", "Gigabyte Technology Co., Ltd.\n")
	testutil.WriteFile(t, root, "sys/class/dmi/id/board_name", "X570 AORUS MASTER\n")
	testutil.WriteFile(t, root, "sys/class/dmi/id/board_version", "x.x\n")
	testutil.WriteFile(t, root, "sys/class/dmi/id/bios_vendor", "American Megatrends International, LLC.\n")
	testutil.WriteFile(t, root, "sys/class/dmi/id/bios_version", "F37d\n")
	testutil.WriteFile(t, root, "sys/class/dmi/id/bios_date", "07/27/2023\n")

	// Two sockets, two logical CPUs each.
	var cpuinfo strings.Builder
	for cpu, physical := range []string{"0", "0", "1", "1"} {
		cpuinfo.WriteString("processor\t: " + string(rune('0'+cpu)) + "\n")
		cpuinfo.WriteString("vendor_id\t: AuthenticAMD\n")
		cpuinfo.WriteString("model name\t: AMD Ryzen 9 5950X 16-Core Processor\n")
		cpuinfo.WriteString("physical id\t: " + physical + "\n\n")
	}
	testutil.WriteFile(t, root, "proc/cpuinfo", cpuinfo.String())

	info := ReadFrom(sysRoot, procRoot)
	if info.Board == nil {
		t.Fatal("Board is nil")
	}
	if info.Board.Manufacturer() != ManufacturerGigabyte {
		t.Errorf("Manufacturer = %v, want Gigabyte", info.Board.Manufacturer())
	}
	if info.Board.Model() != "X570_AORUS_MASTER" {
		t.Errorf("Model = %q, want X570_AORUS_MASTER", info.Board.Model())
	}
	if len(info.Processors) != 2 {
		t.Fatalf("got %d processors, want 2", len(info.Processors))
	}
	if info.Processors[0].ManufacturerName != "Advanced Micro Devices, Inc." {
		t.Errorf("processor manufacturer = %q", info.Processors[0].ManufacturerName)
	}
	if info.CPUVendor() != CPUVendorAMD {
		t.Errorf("CPUVendor = %v, want AMD", info.CPUVendor())
	}

	report := info.Report()
	for _, want := range []string{
		"BIOS Version: F37d\n",
		"Mainboard Manufacturer: Gigabyte Technology Co., Ltd.\n",
		"Mainboard Name: X570 AORUS MASTER\n",
		"Processor Version: AMD Ryzen 9 5950X 16-Core Processor\n",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestReadFromEmptyFS(t *testing.T) {
	root := t.TempDir()
	info := ReadFrom(filepath.Join(root, "sys"), filepath.Join(root, "proc"))
	if info.Board != nil {
		t.Errorf("Board = %+v, want nil", info.Board)
	}
	if info.Board.Manufacturer() != ManufacturerUnknown {
		t.Errorf("nil board manufacturer = %v", info.Board.Manufacturer())
	}
	if len(info.Processors) != 0 {
		t.Errorf("Processors = %v, want none", info.Processors)
	}
	if info.Report() != "" {
		t.Errorf("Report() = %q, want empty", info.Report())
	}
}

func TestClassifyCPUVendor(t *testing.T) {
	tests := []struct {
		name string
		want CPUVendor
	}{
		{"Intel(R) Corporation", CPUVendorIntel},
		{"GenuineIntel", CPUVendorIntel},
		{"Advanced Micro Devices, Inc.", CPUVendorAMD},
		{"AMD", CPUVendorAMD},
		{"amd ryzen", CPUVendorAMD},
		{"AuthenticAMD", CPUVendorUnknown},
		{"", CPUVendorUnknown},
	}
	for _, test := range tests {
		if got := ClassifyCPUVendor(test.name); got != test.want {
			t.Errorf("ClassifyCPUVendor(%q) = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestIdentifyManufacturer(t *testing.T) {
	tests := []struct {
		name string
		want Manufacturer
	}{
		{"ASUSTeK COMPUTER INC.", ManufacturerASUS},
		{"Gigabyte Technology Co., Ltd.", ManufacturerGigabyte},
		{"Micro-Star International Co., Ltd.", ManufacturerMSI},
		{"ASRock", ManufacturerASRock},
		{"HP", ManufacturerHP},
		{"Hewlett-Packard", ManufacturerHP},
		{"Elitegroup Computer Systems", ManufacturerECS},
		{"System specs pending", ManufacturerUnknown},
		{"To Be Filled By O.E.M.", ManufacturerUnknown},
	}
	for _, test := range tests {
		if got := IdentifyManufacturer(test.name); got != test.want {
			t.Errorf("IdentifyManufacturer(%q) = %v, want %v", test.name, got, test.want)
		}
	}
	if ManufacturerGigabyte.String() != "Gigabyte" {
		t.Errorf("String() = %q", ManufacturerGigabyte.String())
	}
}

func TestIdentifyModel(t *testing.T) {
	tests := []struct {
		product string
		want    Model
	}{
		{"MAG B850 TOMAHAWK MAX WIFI (MS-7E62)", "B850_TOMAHAWK_MAX_WIFI"},
		{"PRO B840-P WIFI (MS-7E57)", "B840P_PRO_WIFI"},
		{"PRO Z890-A WIFI (MS-7E32)", "Z890A_PRO_WIFI"},
		{"MEG X870E GODLIKE (MS-7E48)", "X870E_GODLIKE"},
		{"X570 AORUS MASTER", "X570_AORUS_MASTER"},
		{"Default string", ModelUnknown},
		{"", ModelUnknown},
	}
	for _, test := range tests {
		if got := IdentifyModel(test.product); got != test.want {
			t.Errorf("IdentifyModel(%q) = %q, want %q", test.product, got, test.want)
		}
	}
}
