// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/hwmon/lib/config"
	"github.com/bureau-foundation/hwmon/lib/hardware"
	"github.com/bureau-foundation/hwmon/lib/monitor"
	"github.com/bureau-foundation/hwmon/lib/output"
	"github.com/bureau-foundation/hwmon/lib/process"
	"github.com/bureau-foundation/hwmon/lib/version"
)

const binaryName = "bureau-hwmon"

// application carries the process streams and the environment
// constructor so commands can run against a simulated machine.
type application struct {
	stdout io.Writer
	stderr io.Writer
	open   func(configPath string, logger *slog.Logger) (*environment, error)
}

// commonOptions are accepted by every hardware command.
type commonOptions struct {
	configPath string
	verbose    bool
}

func (o *commonOptions) register(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.configPath, "config", "c", "",
		"config file (YAML or JSONC); defaults to $"+config.EnvironmentVariable)
	flagSet.BoolVarP(&o.verbose, "verbose", "v", false, "log at debug level")
}

// outputOptions select the record encoding. Empty values fall back to
// the config file.
type outputOptions struct {
	format      string
	compression string
	path        string
}

func (o *outputOptions) register(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&o.format, "format", "f", "", "output format: text, json, or cbor")
	flagSet.StringVar(&o.compression, "compression", "", "stream compression: none, zstd, or lz4")
	flagSet.StringVarP(&o.path, "output", "o", "", "write to a file instead of stdout")
}

func (a *application) root() *Command {
	return &Command{
		Name:    binaryName,
		Summary: "Motherboard and integrated GPU sensor monitor",
		Description: "bureau-hwmon probes the Super-I/O configuration ports, the ACPI embedded\n" +
			"controller and Intel integrated graphics, and reports their sensors.\n" +
			"Port access requires root or CAP_SYS_RAWIO.",
		Subcommands: []*Command{
			a.detectCommand(),
			a.reportCommand(),
			a.sensorsCommand(),
			a.pollCommand(),
			a.nameCommand(),
			a.versionCommand(),
		},
		help: a.stderr,
	}
}

// session is an open environment plus the logger built for one
// command invocation.
type session struct {
	env    *environment
	logger *slog.Logger
}

func (a *application) start(options commonOptions, command string) (*session, error) {
	logger := newLogger(a.stderr, options.verbose).With("command", command)
	env, err := a.open(options.configPath, logger)
	if err != nil {
		return nil, err
	}
	return &session{env: env, logger: logger}, nil
}

func (s *session) close() {
	if err := s.env.Close(); err != nil {
		s.logger.Warn("releasing host devices", "error", err)
	}
}

// buildOnce runs a detection pass bounded by the configured timeout.
func (s *session) buildOnce(ctx context.Context) (*hardware.Computer, detection, error) {
	ctx, cancel := context.WithTimeout(ctx, s.env.config.DetectionTimeout.Std())
	defer cancel()
	return s.env.build(ctx)
}

// openWriter opens the record writer. The returned close function
// finishes the stream and closes the output file, if any.
func (a *application) openWriter(options outputOptions, cfg *config.Config) (*output.Writer, func() error, error) {
	format := options.format
	if format == "" {
		format = cfg.Output.Format
	}
	compression := options.compression
	if compression == "" {
		compression = cfg.Output.Compression
	}

	destination := a.stdout
	var file *os.File
	if options.path != "" {
		var err error
		if file, err = os.Create(options.path); err != nil {
			return nil, nil, fmt.Errorf("creating output file: %w", err)
		}
		destination = file
	}

	writer, err := output.NewWriter(destination, format, compression)
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, nil, process.Usagef("%v", err)
	}
	closeAll := func() error {
		err := writer.Close()
		if file != nil {
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
		}
		return err
	}
	return writer, closeAll, nil
}

func noArguments(args []string) error {
	if len(args) > 0 {
		return process.Usagef("unexpected argument %q", args[0])
	}
	return nil
}

func (a *application) detectCommand() *Command {
	var options commonOptions
	return &Command{
		Name:    "detect",
		Summary: "Run one detection pass and print what was found",
		Description: "Run one Super-I/O detection pass and print the board identity, each\n" +
			"verified chip, and the detection report (unknown chip IDs, rejected\n" +
			"base addresses).",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("detect", pflag.ContinueOnError)
			options.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			s, err := a.start(options, "detect")
			if err != nil {
				return err
			}
			defer s.close()

			computer, found, err := s.buildOnce(context.Background())
			if err != nil {
				return err
			}
			defer computer.Close()

			var builder strings.Builder
			builder.WriteString(found.board.Report())
			builder.WriteString("\nSuper I/O chips:\n")
			identities := found.superio.Identities()
			if len(identities) == 0 {
				builder.WriteString("  none\n")
			}
			for _, identity := range identities {
				fmt.Fprintf(&builder, "  %s\n", identity)
			}
			if found.superio.Report != "" {
				builder.WriteString("\n")
				builder.WriteString(found.superio.Report)
			}
			builder.WriteString("\nHardware:\n")
			computer.Walk(func(node hardware.Node, depth int) {
				fmt.Fprintf(&builder, "%s  %s (%s)\n", strings.Repeat("  ", depth), node.Name(), node.Identifier())
			})
			_, err = io.WriteString(a.stdout, builder.String())
			return err
		},
	}
}

func (a *application) reportCommand() *Command {
	var (
		options commonOptions
		out     outputOptions
	)
	return &Command{
		Name:    "report",
		Summary: "Write the full diagnostic report",
		Description: "Detect hardware, run one update pass, and write the diagnostic report\n" +
			"of every node: board identity, chip registers, skipped updates.",
		Examples: []Example{
			{Description: "Attach a compressed report to a bug", Command: "bureau-hwmon report --compression zstd -o report.txt.zst"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("report", pflag.ContinueOnError)
			options.register(flagSet)
			out.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			s, err := a.start(options, "report")
			if err != nil {
				return err
			}
			defer s.close()

			writer, closeWriter, err := a.openWriter(out, s.env.config)
			if err != nil {
				return err
			}
			computer, _, err := s.buildOnce(context.Background())
			if err != nil {
				closeWriter()
				return err
			}
			defer computer.Close()
			computer.Update()

			header := fmt.Sprintf("%s %s\n\n", binaryName, version.Info())
			err = writer.WriteReport(output.Report{
				Time:     s.env.clock.Now().UTC(),
				Topology: monitor.FormatTopology(hardware.Fingerprint(computer)),
				Text:     header + computer.Report(),
			})
			if closeErr := closeWriter(); err == nil {
				err = closeErr
			}
			return err
		},
	}
}

func (a *application) sensorsCommand() *Command {
	var (
		options commonOptions
		out     outputOptions
		passes  int
	)
	return &Command{
		Name:    "sensors",
		Summary: "Print current sensor readings",
		Description: "Detect hardware and print the active sensors after a few update passes.\n" +
			"Rate-derived sensors (GPU power and engine load) need two passes.",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("sensors", pflag.ContinueOnError)
			options.register(flagSet)
			out.register(flagSet)
			flagSet.IntVarP(&passes, "passes", "n", 2, "update passes, one poll interval apart")
			return flagSet
		},
		Run: func(args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			if passes < 1 {
				return process.Usagef("--passes must be at least 1, got %d", passes)
			}
			s, err := a.start(options, "sensors")
			if err != nil {
				return err
			}
			defer s.close()

			writer, closeWriter, err := a.openWriter(out, s.env.config)
			if err != nil {
				return err
			}
			computer, _, err := s.buildOnce(context.Background())
			if err != nil {
				closeWriter()
				return err
			}
			defer computer.Close()

			for pass := range passes {
				if pass > 0 {
					s.env.clock.Sleep(s.env.config.PollInterval.Std())
				}
				computer.Update()
			}
			snapshot := monitor.Capture(computer, s.env.clock.Now().UTC())
			snapshot.Topology = monitor.FormatTopology(hardware.Fingerprint(computer))
			err = writer.WriteSnapshot(snapshot)
			if closeErr := closeWriter(); err == nil {
				err = closeErr
			}
			return err
		},
	}
}

// countingSink stops the poll after a fixed number of snapshots.
type countingSink struct {
	sink      monitor.Sink
	remaining int
	stop      context.CancelFunc
}

func (c *countingSink) WriteSnapshot(snapshot monitor.Snapshot) error {
	if c.remaining == 0 {
		return nil
	}
	if err := c.sink.WriteSnapshot(snapshot); err != nil {
		return err
	}
	c.remaining--
	if c.remaining == 0 {
		c.stop()
	}
	return nil
}

func (a *application) pollCommand() *Command {
	var (
		options  commonOptions
		out      outputOptions
		interval time.Duration
		count    int
	)
	return &Command{
		Name:    "poll",
		Summary: "Stream snapshots until interrupted",
		Description: "Detect hardware once, then update and emit a snapshot every poll\n" +
			"interval. SIGHUP re-runs detection (after suspend, for example);\n" +
			"SIGINT and SIGTERM stop cleanly.",
		Examples: []Example{
			{Description: "Record an hour of JSON lines", Command: "bureau-hwmon poll -f json --count 3600 -o sensors.jsonl"},
			{Description: "Stream compressed CBOR to a collector", Command: "bureau-hwmon poll -f cbor --compression zstd | nc collector 9000"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("poll", pflag.ContinueOnError)
			options.register(flagSet)
			out.register(flagSet)
			flagSet.DurationVarP(&interval, "interval", "i", 0, "poll interval (default from config)")
			flagSet.IntVar(&count, "count", 0, "stop after this many snapshots (0 runs until interrupted)")
			return flagSet
		},
		Run: func(args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			if count < 0 {
				return process.Usagef("--count must not be negative, got %d", count)
			}
			s, err := a.start(options, "poll")
			if err != nil {
				return err
			}
			defer s.close()

			if interval <= 0 {
				interval = s.env.config.PollInterval.Std()
			}
			writer, closeWriter, err := a.openWriter(out, s.env.config)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var sink monitor.Sink = writer
			if count > 0 {
				sink = &countingSink{sink: writer, remaining: count, stop: stop}
			}

			poller, err := monitor.New(monitor.Config{
				Build: func(ctx context.Context) (*hardware.Computer, error) {
					computer, _, err := s.env.build(ctx)
					return computer, err
				},
				Sink:             sink,
				Interval:         interval,
				DetectionTimeout: s.env.config.DetectionTimeout.Std(),
				Clock:            s.env.clock,
				Logger:           s.logger,
			})
			if err != nil {
				closeWriter()
				return err
			}

			hangup := make(chan os.Signal, 1)
			signal.Notify(hangup, syscall.SIGHUP)
			defer signal.Stop(hangup)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-hangup:
						s.logger.Info("rebuilding hardware tree on SIGHUP")
						if err := poller.Rebuild(ctx); err != nil && ctx.Err() == nil {
							s.logger.Warn("hardware rebuild failed", "error", err)
						}
					}
				}
			}()

			err = poller.Run(ctx)
			if closeErr := closeWriter(); err == nil {
				err = closeErr
			}
			return err
		},
	}
}

// renamable is a hardware node or sensor.
type renamable interface {
	Name() string
	SetName(name string)
}

// findRenamable looks up a node or sensor by identifier, including
// inactive sensors.
func findRenamable(computer *hardware.Computer, identifier string) renamable {
	var found renamable
	computer.Walk(func(node hardware.Node, depth int) {
		if found != nil {
			return
		}
		if node.Identifier().String() == identifier {
			found = node
			return
		}
		sensors := node.Sensors()
		if lister, ok := node.(interface{ AllSensors() []*hardware.Sensor }); ok {
			sensors = lister.AllSensors()
		}
		for _, sensor := range sensors {
			if sensor.Identifier().String() == identifier {
				found = sensor
				return
			}
		}
	})
	return found
}

func (a *application) nameCommand() *Command {
	var (
		options commonOptions
		reset   bool
	)
	return &Command{
		Name:    "name",
		Summary: "Show or change a display name",
		Usage:   "bureau-hwmon name <identifier> [new-name] [flags]",
		Description: "Show the display name of a hardware node or sensor, or store a new one\n" +
			"in the settings database. Identifiers are listed by 'detect' and in\n" +
			"JSON snapshots.",
		Examples: []Example{
			{Description: "Label a fan header", Command: "bureau-hwmon name motherboard/nct6779d/0/fan/1 \"Rear Exhaust\""},
			{Description: "Restore the default name", Command: "bureau-hwmon name --reset motherboard/nct6779d/0/fan/1"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("name", pflag.ContinueOnError)
			options.register(flagSet)
			flagSet.BoolVar(&reset, "reset", false, "remove the stored name")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 || len(args) > 2 {
				return process.Usagef("expected an identifier and an optional new name")
			}
			if reset && len(args) == 2 {
				return process.Usagef("--reset does not take a new name")
			}
			s, err := a.start(options, "name")
			if err != nil {
				return err
			}
			defer s.close()

			changing := reset || len(args) == 2
			if changing && s.env.config.SettingsPath == "" {
				return fmt.Errorf("settings_path is not configured, so a new name would not persist")
			}

			computer, _, err := s.buildOnce(context.Background())
			if err != nil {
				return err
			}
			defer computer.Close()

			target := findRenamable(computer, args[0])
			if target == nil {
				return fmt.Errorf("no hardware or sensor with identifier %q", args[0])
			}
			switch {
			case reset:
				target.SetName("")
				s.logger.Info("display name reset", "identifier", args[0])
			case len(args) == 2:
				target.SetName(args[1])
				s.logger.Info("display name changed", "identifier", args[0])
			}
			_, err = fmt.Fprintln(a.stdout, target.Name())
			return err
		},
	}
}

func (a *application) versionCommand() *Command {
	return &Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			if err := noArguments(args); err != nil {
				return err
			}
			return version.Print(a.stdout, binaryName)
		},
	}
}
