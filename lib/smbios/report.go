// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package smbios

import (
	"fmt"
	"strings"
)

// Report renders the identity as the text block included in the
// motherboard diagnostic report.
func (i Info) Report() string {
	var builder strings.Builder

	if i.BIOS != (BIOS{}) {
		fmt.Fprintf(&builder, "BIOS Vendor: %s\n", i.BIOS.Vendor)
		fmt.Fprintf(&builder, "BIOS Version: %s\n", i.BIOS.Version)
		if i.BIOS.Date != "" {
			fmt.Fprintf(&builder, "BIOS Date: %s\n", i.BIOS.Date)
		}
		builder.WriteString("\n")
	}

	if i.Board != nil {
		fmt.Fprintf(&builder, "Mainboard Manufacturer: %s\n", i.Board.ManufacturerName)
		fmt.Fprintf(&builder, "Mainboard Name: %s\n", i.Board.ProductName)
		fmt.Fprintf(&builder, "Mainboard Version: %s\n", i.Board.Version)
		if i.Board.SerialNumber != "" {
			fmt.Fprintf(&builder, "Mainboard Serial: %s\n", i.Board.SerialNumber)
		}
		builder.WriteString("\n")
	}

	for _, processor := range i.Processors {
		fmt.Fprintf(&builder, "Processor Manufacturer: %s\n", processor.ManufacturerName)
		fmt.Fprintf(&builder, "Processor Version: %s\n", processor.Version)
		builder.WriteString("\n")
	}

	return builder.String()
}
