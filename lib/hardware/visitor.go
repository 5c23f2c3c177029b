// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hardware

import (
	"errors"
	"log/slog"
)

// ErrNilVisitor is returned by Accept and Traverse when passed a nil
// visitor.
var ErrNilVisitor = errors.New("hardware: nil visitor")

// Visitor receives one callback per element kind. Implementations
// choose whether to descend by calling Traverse on the element.
type Visitor interface {
	VisitComputer(computer *Computer)
	VisitHardware(node Node)
	VisitSensor(sensor *Sensor)
	VisitParameter(parameter *Parameter)
}

// UpdateVisitor is the polling pass: depth-first, each node's Update
// runs before its subhardware is visited. Sensors and parameters are
// left alone.
type UpdateVisitor struct{}

func (v UpdateVisitor) VisitComputer(computer *Computer) {
	computer.Traverse(v)
}

func (v UpdateVisitor) VisitHardware(node Node) {
	node.Update()
	for _, child := range node.SubHardware() {
		child.Accept(v)
	}
}

func (UpdateVisitor) VisitSensor(*Sensor)       {}
func (UpdateVisitor) VisitParameter(*Parameter) {}

// SensorVisitor calls a function for every sensor in the tree,
// including sensors of subhardware.
type SensorVisitor func(sensor *Sensor)

func (f SensorVisitor) VisitComputer(computer *Computer) {
	computer.Traverse(f)
}

func (f SensorVisitor) VisitHardware(node Node) {
	node.Traverse(f)
}

func (f SensorVisitor) VisitSensor(sensor *Sensor) {
	f(sensor)
}

func (SensorVisitor) VisitParameter(*Parameter) {}

// CloseTree closes node and every node beneath it, children before
// parents, each exactly once. A panicking Close is recovered and
// logged so the rest of the tree is still released. A nil logger
// discards.
func CloseTree(node Node, logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	closeTree(node, make(map[Node]bool), logger)
}

func closeTree(node Node, closed map[Node]bool, logger *slog.Logger) {
	if node == nil || closed[node] {
		return
	}
	closed[node] = true
	for _, child := range node.SubHardware() {
		closeTree(child, closed, logger)
	}
	closeOne(node, logger)
}

func closeOne(node Node, logger *slog.Logger) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Debug("hardware close failed",
				"hardware", node.Identifier().String(),
				"panic", recovered)
		}
	}()
	node.Close()
}
