// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// bureau-hwmon detects motherboard Super-I/O chips, embedded
// controllers and Intel integrated graphics, and reports or streams
// their sensor readings.
package main

import (
	"os"

	"github.com/bureau-foundation/hwmon/lib/process"
)

func main() {
	app := &application{
		stdout: os.Stdout,
		stderr: os.Stderr,
		open:   openEnvironment,
	}
	if err := app.root().Execute(os.Args[1:]); err != nil {
		process.Fatal(err)
	}
}
