// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package smbios

import "strings"

// CPUVendor is the coarse processor vendor classification used by
// vendor-conditional probing.
type CPUVendor int

const (
	CPUVendorUnknown CPUVendor = iota
	CPUVendorIntel
	CPUVendorAMD
)

func (v CPUVendor) String() string {
	switch v {
	case CPUVendorIntel:
		return "Intel"
	case CPUVendorAMD:
		return "AMD"
	default:
		return "Unknown"
	}
}

// ClassifyCPUVendor matches a processor manufacturer name
// case-insensitively: "Intel" anywhere, or "Advanced Micro Devices"
// anywhere or "AMD" as a prefix.
func ClassifyCPUVendor(manufacturerName string) CPUVendor {
	lower := strings.ToLower(manufacturerName)
	switch {
	case strings.Contains(lower, "intel"):
		return CPUVendorIntel
	case strings.Contains(lower, "advanced micro devices"), strings.HasPrefix(lower, "amd"):
		return CPUVendorAMD
	default:
		return CPUVendorUnknown
	}
}

// CPUVendor classifies the first processor. Unknown when there are no
// processor records.
func (i Info) CPUVendor() CPUVendor {
	if len(i.Processors) == 0 {
		return CPUVendorUnknown
	}
	return ClassifyCPUVendor(i.Processors[0].ManufacturerName)
}
