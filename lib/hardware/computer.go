// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hardware

import (
	"log/slog"
	"strings"
)

// Computer is the root of a hardware tree.
type Computer struct {
	hardware []Node
	logger   *slog.Logger
}

// NewComputer returns an empty root. A nil logger discards.
func NewComputer(logger *slog.Logger) *Computer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Computer{logger: logger}
}

// Add appends a top-level node. Nil nodes are ignored so callers can
// pass optional builders' results directly.
func (c *Computer) Add(node Node) {
	if node == nil {
		return
	}
	c.hardware = append(c.hardware, node)
}

// Hardware returns the top-level nodes.
func (c *Computer) Hardware() []Node { return c.hardware }

func (c *Computer) Accept(visitor Visitor) error {
	if visitor == nil {
		return ErrNilVisitor
	}
	visitor.VisitComputer(c)
	return nil
}

func (c *Computer) Traverse(visitor Visitor) error {
	if visitor == nil {
		return ErrNilVisitor
	}
	for _, node := range c.hardware {
		if err := node.Accept(visitor); err != nil {
			return err
		}
	}
	return nil
}

// Update runs one polling pass over the whole tree.
func (c *Computer) Update() {
	c.Accept(UpdateVisitor{})
}

// Report concatenates every node's report, depth-first.
func (c *Computer) Report() string {
	var builder strings.Builder
	var walk func(Node)
	walk = func(node Node) {
		if report := node.Report(); report != "" {
			builder.WriteString(report)
			if !strings.HasSuffix(report, "\n") {
				builder.WriteString("\n")
			}
			builder.WriteString("\n")
		}
		for _, child := range node.SubHardware() {
			walk(child)
		}
	}
	for _, node := range c.hardware {
		walk(node)
	}
	return builder.String()
}

// Walk calls fn for every node, parents before children.
func (c *Computer) Walk(fn func(node Node, depth int)) {
	var walk func(Node, int)
	walk = func(node Node, depth int) {
		fn(node, depth)
		for _, child := range node.SubHardware() {
			walk(child, depth+1)
		}
	}
	for _, node := range c.hardware {
		walk(node, 0)
	}
}

// Close releases the whole tree. The Computer is empty afterwards and
// a second Close is a no-op.
func (c *Computer) Close() {
	for _, node := range c.hardware {
		CloseTree(node, c.logger)
	}
	c.hardware = nil
}
