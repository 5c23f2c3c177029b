// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hardware

import (
	"sort"

	"github.com/zeebo/blake3"
)

// fingerprintKey is the BLAKE3 key for topology digests: the ASCII
// domain name zero-padded to 32 bytes.
var fingerprintKey = [32]byte{
	'b', 'u', 'r', 'e', 'a', 'u', '.', 'h', 'w', 'm', 'o', 'n', '.',
	't', 'o', 'p', 'o', 'l', 'o', 'g', 'y',
}

// Fingerprint digests the shape of a tree: every node identifier and
// hardware type, and every sensor identifier whether active or not.
// Two trees built from the same detection results have equal
// fingerprints; values and names do not contribute.
func Fingerprint(computer *Computer) [32]byte {
	var entries []string
	computer.Walk(func(node Node, depth int) {
		entries = append(entries, "h "+node.Identifier().String()+" "+node.HardwareType().String())
		for _, sensor := range allSensors(node) {
			entries = append(entries, "s "+sensor.Identifier().String())
		}
	})
	sort.Strings(entries)

	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("hardware: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	for _, entry := range entries {
		hasher.Write([]byte(entry))
		hasher.Write([]byte{0})
	}
	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// allSensors returns inactive sensors too when the node embeds Base.
func allSensors(node Node) []*Sensor {
	if lister, ok := node.(interface{ AllSensors() []*Sensor }); ok {
		return lister.AllSensors()
	}
	return node.Sensors()
}
