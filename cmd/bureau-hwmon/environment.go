// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bureau-foundation/hwmon/lib/busarb"
	"github.com/bureau-foundation/hwmon/lib/clock"
	"github.com/bureau-foundation/hwmon/lib/config"
	"github.com/bureau-foundation/hwmon/lib/ec"
	"github.com/bureau-foundation/hwmon/lib/gpu"
	"github.com/bureau-foundation/hwmon/lib/hardware"
	"github.com/bureau-foundation/hwmon/lib/motherboard"
	"github.com/bureau-foundation/hwmon/lib/portio"
	"github.com/bureau-foundation/hwmon/lib/settings"
	"github.com/bureau-foundation/hwmon/lib/smbios"
	"github.com/bureau-foundation/hwmon/lib/superio"
	"github.com/bureau-foundation/hwmon/lib/watchdog"
)

// environment holds the host resources every command builds its
// hardware tree from.
type environment struct {
	config *config.Config
	logger *slog.Logger
	clock  clock.Clock

	// driver is nil when port I/O is unavailable; the board node is
	// still built, without Super-I/O or EC children.
	driver   portio.Driver
	mapper   portio.MemoryMapper
	arbiter  busarb.Arbiter
	guard    superio.Guard
	settings hardware.Settings

	closers []func() error
}

// detection records what one build pass found, for the detect
// command.
type detection struct {
	board   smbios.Info
	superio superio.Result
}

// openEnvironment resolves the config and opens the host devices. A
// missing port device or lock file degrades to fewer sensors; only an
// invalid config or an unopenable settings database is fatal.
func openEnvironment(configPath string, logger *slog.Logger) (*environment, error) {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return nil, err
	}

	env := &environment{
		config: cfg,
		logger: logger,
		clock:  clock.Real(),
		mapper: portio.DevMem{Path: cfg.MemoryDevice},
	}

	port, err := portio.OpenDevPort(portio.DevPortConfig{
		PortDevice:       cfg.PortDevice,
		MSRDevicePattern: cfg.MSRDevicePattern,
		Logger:           logger,
	})
	if err != nil {
		logger.Warn("port I/O unavailable, Super-I/O and embedded controller sensors disabled", "error", err)
	} else {
		env.driver = port
		env.closers = append(env.closers, port.Close)
	}

	lock, err := busarb.OpenFileLock(cfg.BusLockPath, env.clock, logger)
	if err != nil {
		logger.Warn("bus lock file unavailable, serializing within this process only",
			"path", cfg.BusLockPath, "error", err)
		env.arbiter = busarb.NewMutex(env.clock)
	} else {
		env.arbiter = lock
		env.closers = append(env.closers, lock.Close)
	}

	if cfg.WatchdogPath != "" {
		env.guard = openGuard(cfg, env.clock, logger)
	}

	if cfg.SettingsPath == "" {
		env.settings = settings.NewMemory()
	} else {
		store, err := settings.OpenSQLite(cfg.SettingsPath, logger)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("opening settings: %w", err)
		}
		env.settings = store
		env.closers = append(env.closers, store.Close)
	}
	return env, nil
}

func openGuard(cfg *config.Config, c clock.Clock, logger *slog.Logger) superio.Guard {
	if err := os.MkdirAll(filepath.Dir(cfg.WatchdogPath), 0o700); err != nil {
		logger.Warn("probe watchdog disabled", "path", cfg.WatchdogPath, "error", err)
		return nil
	}
	guard, err := watchdog.OpenProbeGuard(watchdog.GuardConfig{
		Path:       cfg.WatchdogPath,
		Component:  "superio",
		StaleAfter: cfg.WatchdogStaleAfter.Std(),
		Clock:      c,
		Logger:     logger,
	})
	if err != nil {
		logger.Warn("probe watchdog disabled", "path", cfg.WatchdogPath, "error", err)
		return nil
	}
	return guard
}

// Close releases the host devices in reverse open order.
func (e *environment) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i]())
	}
	e.closers = nil
	return errors.Join(errs...)
}

// build runs one detection pass and assembles the tree. A detection
// deadline is not an error: the chips found before it are kept.
func (e *environment) build(ctx context.Context) (*hardware.Computer, detection, error) {
	cfg := e.config
	found := detection{board: smbios.ReadFrom(cfg.SysfsRoot, cfg.ProcfsRoot)}
	computer := hardware.NewComputer(e.logger)

	if cfg.Enable.Motherboard {
		var boards ec.BoardSensors
		if cfg.Enable.EmbeddedController {
			var err error
			if boards, err = cfg.Boards(); err != nil {
				return nil, found, err
			}
		}

		if e.driver != nil {
			result, err := e.detectSuperIO(ctx, found.board)
			if err != nil {
				return nil, found, err
			}
			found.superio = result
		}

		computer.Add(motherboard.New(motherboard.Config{
			Board:              found.board,
			Devices:            found.superio.Devices,
			DetectionReport:    found.superio.Report,
			Arbiter:            e.arbiter,
			LockTimeout:        cfg.BusLockTimeout.Std(),
			EmbeddedController: e.embeddedController(found.board, boards),
			Settings:           e.settings,
			Logger:             e.logger,
		}))
	}

	if cfg.Enable.GPU {
		probe := gpu.ProbeConfig{
			SysRoot:  cfg.SysfsRoot,
			Source:   gpu.NewFdinfoSource(cfg.ProcfsRoot, e.clock, e.logger),
			Clock:    e.clock,
			Settings: e.settings,
			Logger:   e.logger,
		}
		if e.driver != nil {
			probe.MSR = e.driver
		}
		for _, integrated := range gpu.Probe(probe) {
			computer.Add(integrated)
		}
	}

	return computer, found, nil
}

func (e *environment) detectSuperIO(ctx context.Context, board smbios.Info) (superio.Result, error) {
	detector, err := superio.New(superio.Config{
		Driver:      e.driver,
		Arbiter:     e.arbiter,
		LockTimeout: e.config.BusLockTimeout.Std(),
		Clock:       e.clock,
		Board:       board,
		Mapper:      e.mapper,
		Guard:       e.guard,
		Logger:      e.logger,
	})
	if err != nil {
		return superio.Result{}, err
	}
	result, err := detector.Detect(ctx)
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			for _, device := range result.Devices {
				device.Close()
			}
			return superio.Result{}, err
		}
		e.logger.Warn("Super-I/O detection cut short, keeping the chips found so far",
			"devices", len(result.Devices), "error", err)
	}
	return result, nil
}

// embeddedController returns the motherboard's EC factory, or nil
// when the EC is disabled or unreachable.
func (e *environment) embeddedController(board smbios.Info, boards ec.BoardSensors) func(hardware.Node) hardware.Node {
	if boards == nil || e.driver == nil {
		return nil
	}
	return func(parent hardware.Node) hardware.Node {
		controller := ec.Create(ec.Config{
			Model:       board.Board.Model(),
			Boards:      boards,
			Port:        ec.NewPort(e.driver, e.clock),
			Arbiter:     e.arbiter,
			LockTimeout: e.config.BusLockTimeout.Std(),
			Parent:      parent,
			Settings:    e.settings,
			Logger:      e.logger,
		})
		if controller == nil {
			return nil
		}
		return controller
	}
}
