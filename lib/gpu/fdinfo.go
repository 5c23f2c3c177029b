// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gpu

import (
	"bufio"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bureau-foundation/hwmon/lib/clock"
	"github.com/bureau-foundation/hwmon/lib/sysfs"
)

// FdinfoSource samples DRM client statistics from procfs. Each open
// DRM file description publishes its client's per-engine busy time and
// memory footprint in /proc/<pid>/fdinfo/<fd>; the source sums every
// distinct client bound to the requested PCI slot.
//
// The shared-memory limit of an integrated GPU is half of system
// memory, the share the kernel drivers allow graphics allocations.
//
// FdinfoSource is safe for concurrent use.
type FdinfoSource struct {
	procRoot string
	clock    clock.Clock
	logger   *slog.Logger

	mu sync.Mutex
	// engines remembers every engine name seen per device, so a
	// device whose clients all exit keeps reporting the same node set.
	engines map[string]map[string]bool
}

// NewFdinfoSource reads from procRoot ("/proc" in production). A nil
// logger discards.
func NewFdinfoSource(procRoot string, clk clock.Clock, logger *slog.Logger) *FdinfoSource {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FdinfoSource{
		procRoot: procRoot,
		clock:    clk,
		logger:   logger,
		engines:  make(map[string]map[string]bool),
	}
}

// drmClient is one parsed fdinfo entry.
type drmClient struct {
	id        string
	pdev      string
	engines   map[string]uint64 // nanoseconds
	capacity  map[string]uint64
	system    uint64
	dedicated uint64
}

// DeviceInfo implements DeviceInfoSource. deviceID is the PCI slot,
// e.g. "0000:00:02.0". ok is false when system memory size cannot be
// read.
func (s *FdinfoSource) DeviceInfo(deviceID string) (DeviceInfo, bool) {
	memTotal := readMemTotal(sysfs.Join(s.procRoot, "meminfo"))
	if memTotal == 0 {
		return DeviceInfo{}, false
	}
	now := s.clock.Now()

	info := DeviceInfo{SharedLimit: memTotal / 2}
	busy := make(map[string]uint64)
	for _, client := range s.clients(deviceID) {
		info.SharedUsed += client.system
		info.DedicatedUsed += client.dedicated
		for name, nanoseconds := range client.engines {
			if capacity := client.capacity[name]; capacity > 1 {
				nanoseconds /= capacity
			}
			busy[name] += nanoseconds
		}
	}

	s.mu.Lock()
	known := s.engines[deviceID]
	if known == nil {
		known = make(map[string]bool)
		s.engines[deviceID] = known
	}
	for name := range busy {
		known[name] = true
	}
	names := make([]string, 0, len(known))
	for name := range known {
		names = append(names, name)
	}
	s.mu.Unlock()

	sort.Strings(names)
	for id, name := range names {
		info.Nodes = append(info.Nodes, NodeInfo{
			ID:          id,
			Name:        name,
			RunningTime: busy[name] / uint64(TickDuration),
			QueryTime:   now,
		})
	}
	return info, true
}

// clients returns the distinct DRM clients bound to slot. Several
// descriptors can share one client; the first one read wins.
func (s *FdinfoSource) clients(slot string) []drmClient {
	processes, err := os.ReadDir(s.procRoot)
	if err != nil {
		s.logger.Debug("listing processes failed", "proc_root", s.procRoot, "error", err)
		return nil
	}

	seen := make(map[string]bool)
	var clients []drmClient
	for _, process := range processes {
		if _, err := strconv.Atoi(process.Name()); err != nil {
			continue
		}
		fdinfoDir := filepath.Join(s.procRoot, process.Name(), "fdinfo")
		entries, err := os.ReadDir(fdinfoDir)
		if err != nil {
			// Other users' processes are unreadable without privilege.
			continue
		}
		for _, entry := range entries {
			client, ok := parseFdinfo(filepath.Join(fdinfoDir, entry.Name()))
			if !ok || client.pdev != slot {
				continue
			}
			key := client.id
			if key == "" {
				key = process.Name() + "/" + entry.Name()
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			clients = append(clients, client)
		}
	}
	return clients
}

// parseFdinfo parses the drm-* keys of one fdinfo file. ok is false
// for descriptors that are not DRM clients.
func parseFdinfo(path string) (drmClient, bool) {
	file, err := os.Open(path)
	if err != nil {
		return drmClient{}, false
	}
	defer file.Close()

	client := drmClient{
		engines:  make(map[string]uint64),
		capacity: make(map[string]uint64),
	}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if !found || !strings.HasPrefix(key, "drm-") {
			continue
		}
		value = strings.TrimSpace(value)
		switch {
		case key == "drm-pdev":
			client.pdev = value
		case key == "drm-client-id":
			client.id = value
		case strings.HasPrefix(key, "drm-engine-capacity-"):
			client.capacity[strings.TrimPrefix(key, "drm-engine-capacity-")] = parseQuantity(value)
		case strings.HasPrefix(key, "drm-engine-"):
			client.engines[strings.TrimPrefix(key, "drm-engine-")] = parseQuantity(strings.TrimSuffix(value, " ns"))
		case strings.HasPrefix(key, "drm-total-system"), key == "drm-total-gtt":
			client.system += parseQuantity(value)
		case strings.HasPrefix(key, "drm-total-vram"), strings.HasPrefix(key, "drm-total-local"):
			client.dedicated += parseQuantity(value)
		}
	}
	return client, client.pdev != ""
}

// parseQuantity parses "<n>", "<n> KiB" or "<n> MiB" into a plain
// count, scaling the binary suffixes to bytes. Malformed values are 0.
func parseQuantity(value string) uint64 {
	number, unit, _ := strings.Cut(strings.TrimSpace(value), " ")
	parsed, err := strconv.ParseUint(number, 10, 64)
	if err != nil {
		return 0
	}
	switch unit {
	case "KiB":
		return parsed << 10
	case "MiB":
		return parsed << 20
	case "GiB":
		return parsed << 30
	}
	return parsed
}

// readMemTotal returns MemTotal from a meminfo file in bytes, or 0.
func readMemTotal(path string) uint64 {
	file, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[0] != "MemTotal:" {
			continue
		}
		kilobytes, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return kilobytes * 1024
	}
	return 0
}
