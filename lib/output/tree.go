// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/bureau-foundation/hwmon/lib/hardware"
	"github.com/bureau-foundation/hwmon/lib/monitor"
)

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// TerminalWidth returns the column count of w, or 0 when w is not a
// terminal.
func TerminalWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return 0
	}
	width, _, err := term.GetSize(int(file.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// TreeRenderer draws snapshots as an indented hardware tree.
type TreeRenderer struct {
	hardware   lipgloss.Style
	identifier lipgloss.Style
	sensor     lipgloss.Style
	value      lipgloss.Style
	extremes   lipgloss.Style
	missing    lipgloss.Style

	width int
}

// NewTreeRenderer returns a renderer for w. Unstyled output carries
// no escape sequences regardless of the environment.
func NewTreeRenderer(w io.Writer, styled bool) *TreeRenderer {
	renderer := lipgloss.NewRenderer(w)
	if styled {
		renderer.SetColorProfile(termenv.ANSI256)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return &TreeRenderer{
		hardware:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		identifier: renderer.NewStyle().Foreground(lipgloss.Color("245")),
		sensor:     renderer.NewStyle(),
		value:      renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		extremes:   renderer.NewStyle().Foreground(lipgloss.Color("245")),
		missing:    renderer.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// SetWidth truncates rendered lines to width visible columns. Zero
// disables truncation.
func (r *TreeRenderer) SetWidth(width int) {
	r.width = max(width, 0)
}

// RenderTree draws the active sensors of a tree without a timestamp.
func (r *TreeRenderer) RenderTree(computer *hardware.Computer) string {
	return r.RenderSnapshot(monitor.Capture(computer, time.Time{}))
}

// RenderSnapshot draws a snapshot. A zero snapshot time omits the
// header line.
func (r *TreeRenderer) RenderSnapshot(snapshot monitor.Snapshot) string {
	var builder strings.Builder
	line := func(text string) {
		if r.width > 0 {
			text = ansi.Truncate(text, r.width, "…")
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	if !snapshot.Time.IsZero() {
		line(r.identifier.Render(snapshot.Time.Format(time.RFC3339)))
	}
	for _, entry := range snapshot.Hardware {
		indent := strings.Repeat("  ", entry.Depth)
		line(indent + r.hardware.Render(entry.Name) + "  " + r.identifier.Render(entry.Identifier))

		nameWidth := 0
		for _, sensor := range entry.Sensors {
			nameWidth = max(nameWidth, lipgloss.Width(sensor.Name))
		}
		for _, sensor := range entry.Sensors {
			padding := strings.Repeat(" ", nameWidth-lipgloss.Width(sensor.Name)+2)
			line(indent + "  " + r.sensor.Render(sensor.Name) + padding + r.reading(sensor))
		}
	}
	return builder.String()
}

func (r *TreeRenderer) reading(sensor monitor.SensorSnapshot) string {
	if sensor.Value == nil {
		return r.missing.Render("-")
	}
	text := r.value.Render(formatQuantity(*sensor.Value, sensor.Unit))
	if sensor.Min != nil && sensor.Max != nil {
		text += "  " + r.extremes.Render("["+formatQuantity(*sensor.Min, "")+" .. "+formatQuantity(*sensor.Max, "")+"]")
	}
	return text
}

func formatQuantity(value float64, unit string) string {
	text := strconv.FormatFloat(value, 'f', 1, 64)
	if unit == "" {
		return text
	}
	return text + " " + unit
}
