// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package hardware defines the monitored hardware tree: a [Computer]
// root holding [Node]s, each owning child nodes and [Sensor]s.
//
// Nodes are built once from detection results and never mutated in
// shape afterwards. Rebuilding (after resume, after a configuration
// change) means closing the whole tree with [CloseTree] and building a
// new one.
//
// Traversal is double dispatch: Accept calls back the [Visitor] hook
// for the receiver's kind, and Traverse calls Accept on the receiver's
// children. [UpdateVisitor] is the polling pass: it calls each node's
// Update before descending into its subhardware. Sensor values are
// written by the owning node's Update, never by a visitor.
//
// A sensor is hidden until its owner activates it after a first valid
// read. Activation is one-way: a later failed read leaves the sensor
// visible with its last value.
package hardware
