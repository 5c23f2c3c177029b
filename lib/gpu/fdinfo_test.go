// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gpu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/hwmon/lib/clock"
	"github.com/bureau-foundation/hwmon/lib/testutil"
)

const meminfo = "MemTotal:       16000000 kB\nMemFree:         8000000 kB\n"

func i915Client(clientID, pdev string, render string) string {
	return "pos:\t0\nflags:\t02100002\n" +
		"drm-driver:\ti915\n" +
		"drm-client-id:\t" + clientID + "\n" +
		"drm-pdev:\t" + pdev + "\n" +
		"drm-total-system0:\t2048 KiB\n" +
		"drm-resident-system0:\t2048 KiB\n" +
		"drm-engine-render:\t" + render + " ns\n" +
		"drm-engine-copy:\t0 ns\n" +
		"drm-engine-video:\t4000 ns\n" +
		"drm-engine-capacity-video:\t2\n"
}

func TestFdinfoSourceAggregatesClients(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "meminfo", meminfo)
	// Two descriptors of one client count once.
	testutil.WriteFile(t, root, "100/fdinfo/4", i915Client("7", "0000:00:02.0", "1000000"))
	testutil.WriteFile(t, root, "100/fdinfo/5", i915Client("7", "0000:00:02.0", "1000000"))
	testutil.WriteFile(t, root, "200/fdinfo/3", i915Client("9", "0000:00:02.0", "500000"))
	// Another device, a plain file, and a non-process directory.
	testutil.WriteFile(t, root, "300/fdinfo/6", i915Client("2", "0000:03:00.0", "99999999"))
	testutil.WriteFile(t, root, "300/fdinfo/1", "pos:\t0\nflags:\t0100000\n")
	testutil.WriteFile(t, root, "self/fdinfo/8", i915Client("11", "0000:00:02.0", "123"))

	source := NewFdinfoSource(root, clock.Fake(epoch), nil)
	info, ok := source.DeviceInfo("0000:00:02.0")
	if !ok {
		t.Fatal("DeviceInfo not ok")
	}

	if info.SharedLimit != 16000000*1024/2 {
		t.Errorf("SharedLimit = %d", info.SharedLimit)
	}
	if info.SharedUsed != 2*2048*1024 {
		t.Errorf("SharedUsed = %d, want two clients of 2 MiB", info.SharedUsed)
	}
	if info.DedicatedLimit != 0 || info.DedicatedUsed != 0 {
		t.Errorf("dedicated = %d/%d", info.DedicatedUsed, info.DedicatedLimit)
	}

	want := []NodeInfo{
		{ID: 0, Name: "copy", RunningTime: 0},
		{ID: 1, Name: "render", RunningTime: 1500000 / 100},
		// Video has two instances; busy time is per instance.
		{ID: 2, Name: "video", RunningTime: 4000 / 100},
	}
	if len(info.Nodes) != len(want) {
		t.Fatalf("nodes = %+v", info.Nodes)
	}
	for i, node := range info.Nodes {
		if node.ID != want[i].ID || node.Name != want[i].Name || node.RunningTime != want[i].RunningTime {
			t.Errorf("node %d = %+v, want %+v", i, node, want[i])
		}
		if !node.QueryTime.Equal(epoch) {
			t.Errorf("node %d query time = %v", i, node.QueryTime)
		}
	}
}

func TestFdinfoSourceKeepsEngineSet(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, root, "meminfo", meminfo)
	testutil.WriteFile(t, root, "100/fdinfo/4", i915Client("7", "0000:00:02.0", "1000000"))

	source := NewFdinfoSource(root, clock.Fake(epoch), nil)
	first, _ := source.DeviceInfo("0000:00:02.0")

	if err := os.RemoveAll(filepath.Join(root, "100")); err != nil {
		t.Fatal(err)
	}
	second, ok := source.DeviceInfo("0000:00:02.0")
	if !ok {
		t.Fatal("DeviceInfo not ok after clients exited")
	}
	if len(second.Nodes) != len(first.Nodes) {
		t.Fatalf("engine count changed from %d to %d", len(first.Nodes), len(second.Nodes))
	}
	for _, node := range second.Nodes {
		if node.RunningTime != 0 {
			t.Errorf("engine %s busy %d with no clients", node.Name, node.RunningTime)
		}
	}
	if second.SharedUsed != 0 {
		t.Errorf("SharedUsed = %d with no clients", second.SharedUsed)
	}
}

func TestFdinfoSourceWithoutMeminfo(t *testing.T) {
	source := NewFdinfoSource(t.TempDir(), clock.Fake(epoch), nil)
	if _, ok := source.DeviceInfo("0000:00:02.0"); ok {
		t.Error("DeviceInfo ok without /proc/meminfo")
	}
}

func TestParseQuantity(t *testing.T) {
	tests := map[string]uint64{
		"42":        42,
		"2 KiB":     2048,
		"3 MiB":     3 << 20,
		"1 GiB":     1 << 30,
		"100 ns":    100,
		"":          0,
		"lots":      0,
		"  7 KiB  ": 7 << 10,
	}
	for input, want := range tests {
		if got := parseQuantity(input); got != want {
			t.Errorf("parseQuantity(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestProbe(t *testing.T) {
	sysRoot := t.TempDir()
	testutil.WriteFile(t, sysRoot, "class/drm/card0/device/uevent",
		"DRIVER=i915\nPCI_ID=8086:A780\nPCI_SLOT_NAME=0000:00:02.0\n")
	testutil.WriteFile(t, sysRoot, "class/drm/card1/device/uevent",
		"DRIVER=nvidia\nPCI_ID=10DE:2684\nPCI_SLOT_NAME=0000:01:00.0\n")
	testutil.WriteFile(t, sysRoot, "class/drm/card2/device/uevent",
		"DRIVER=xe\nPCI_ID=8086:E20B\nPCI_SLOT_NAME=0000:03:00.0\n")

	source := &fakeSource{info: DeviceInfo{SharedLimit: gib}, ok: true}
	gpus := Probe(ProbeConfig{SysRoot: sysRoot, Source: source, Clock: clock.Fake(epoch)})

	if len(gpus) != 1 {
		t.Fatalf("Probe found %d GPUs, want 1", len(gpus))
	}
	if gpus[0].DeviceID() != "0000:00:02.0" {
		t.Errorf("DeviceID = %q", gpus[0].DeviceID())
	}

	source.ok = false
	if gpus := Probe(ProbeConfig{SysRoot: sysRoot, Source: source, Clock: clock.Fake(epoch)}); len(gpus) != 0 {
		t.Errorf("Probe built %d GPUs without statistics", len(gpus))
	}
}
