// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/bureau-foundation/hwmon/lib/codec"
	"github.com/bureau-foundation/hwmon/lib/monitor"
)

// Record formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

// Stream compressions.
const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
	CompressionLZ4  = "lz4"
)

// Report is a diagnostic report as a record.
type Report struct {
	Time     time.Time `json:"time"`
	Topology string    `json:"topology,omitempty"`
	Text     string    `json:"text"`
}

// frame is a compressing stream: Flush ends the current block so
// everything written so far is decodable.
type frame interface {
	io.WriteCloser
	Flush() error
}

// Writer encodes records onto an underlying stream. It is not safe
// for concurrent use.
type Writer struct {
	format string
	out    io.Writer
	frame  frame

	json *json.Encoder
	cbor *codec.Encoder
	tree *TreeRenderer
}

// NewWriter returns a Writer emitting format records, optionally
// compressed. An empty compression means none. Close must be called
// to finish a compressed stream; it never closes w.
func NewWriter(w io.Writer, format, compression string) (*Writer, error) {
	writer := &Writer{format: format, out: w}

	switch compression {
	case "", CompressionNone:
	case CompressionZstd:
		encoder, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("creating zstd stream: %w", err)
		}
		writer.frame = encoder
	case CompressionLZ4:
		writer.frame = lz4.NewWriter(w)
	default:
		return nil, fmt.Errorf("unknown compression %q (want none, zstd, or lz4)", compression)
	}
	if writer.frame != nil {
		writer.out = writer.frame
	}

	switch format {
	case FormatText:
		styled := writer.frame == nil && IsTerminal(w)
		writer.tree = NewTreeRenderer(writer.out, styled)
		if styled {
			writer.tree.SetWidth(TerminalWidth(w))
		}
	case FormatJSON:
		writer.json = json.NewEncoder(writer.out)
	case FormatCBOR:
		writer.cbor = codec.NewEncoder(writer.out)
	default:
		if writer.frame != nil {
			writer.frame.Close()
		}
		return nil, fmt.Errorf("unknown format %q (want text, json, or cbor)", format)
	}
	return writer, nil
}

// WriteSnapshot emits one snapshot record. It satisfies monitor.Sink.
func (w *Writer) WriteSnapshot(snapshot monitor.Snapshot) error {
	var err error
	switch {
	case w.tree != nil:
		_, err = io.WriteString(w.out, w.tree.RenderSnapshot(snapshot)+"\n")
	case w.json != nil:
		err = w.json.Encode(snapshot)
	default:
		err = w.cbor.Encode(snapshot)
	}
	if err != nil {
		return fmt.Errorf("encoding %s snapshot: %w", w.format, err)
	}
	return w.flush()
}

// WriteReport emits a report. Text output writes the report verbatim.
func (w *Writer) WriteReport(report Report) error {
	var err error
	switch {
	case w.tree != nil:
		text := report.Text
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		_, err = io.WriteString(w.out, text)
	case w.json != nil:
		err = w.json.Encode(report)
	default:
		err = w.cbor.Encode(report)
	}
	if err != nil {
		return fmt.Errorf("encoding %s report: %w", w.format, err)
	}
	return w.flush()
}

func (w *Writer) flush() error {
	if w.frame == nil {
		return nil
	}
	if err := w.frame.Flush(); err != nil {
		return fmt.Errorf("flushing compressed stream: %w", err)
	}
	return nil
}

// Close finishes the compressed frame, if any. The underlying writer
// stays open.
func (w *Writer) Close() error {
	if w.frame == nil {
		return nil
	}
	frame := w.frame
	w.frame = nil
	if err := frame.Close(); err != nil {
		return fmt.Errorf("finishing compressed stream: %w", err)
	}
	return nil
}
