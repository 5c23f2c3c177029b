// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/hwmon/lib/ec"
	"github.com/bureau-foundation/hwmon/lib/smbios"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "BUREAU_HWMON_CONFIG"

// ErrNoConfig is returned by Load when EnvironmentVariable is unset.
var ErrNoConfig = errors.New("config: " + EnvironmentVariable + " not set")

// Output formats and compressions accepted by Validate.
var (
	Formats      = []string{"text", "json", "cbor"}
	Compressions = []string{"none", "zstd", "lz4"}
)

// Config is the bureau-hwmon configuration.
type Config struct {
	// PollInterval is the time between update passes in poll mode.
	PollInterval Duration `yaml:"poll_interval"`

	// DetectionTimeout bounds one Super-I/O detection pass.
	DetectionTimeout Duration `yaml:"detection_timeout"`

	// BusLockTimeout bounds each wait for the ISA bus lock.
	BusLockTimeout Duration `yaml:"bus_lock_timeout"`

	// BusLockPath is the lock file shared with other processes that
	// probe the same ports.
	BusLockPath string `yaml:"bus_lock_path"`

	PortDevice string `yaml:"port_device"`

	// MSRDevicePattern is formatted with the CPU number.
	MSRDevicePattern string `yaml:"msr_device_pattern"`

	MemoryDevice string `yaml:"memory_device"`
	SysfsRoot    string `yaml:"sysfs_root"`
	ProcfsRoot   string `yaml:"procfs_root"`

	// SettingsPath is the SQLite settings database. Empty keeps
	// settings in memory for the life of the process.
	SettingsPath string `yaml:"settings_path"`

	// WatchdogPath records the probe in progress so a probe that hung
	// the machine is skipped on the next run. Empty disables it.
	WatchdogPath       string   `yaml:"watchdog_path"`
	WatchdogStaleAfter Duration `yaml:"watchdog_stale_after"`

	Enable EnableConfig `yaml:"enable"`

	// EmbeddedControllerBoards adds or replaces EC register layouts,
	// keyed by board product name.
	EmbeddedControllerBoards map[string][]ec.SensorSource `yaml:"embedded_controller_boards"`

	// EmbeddedControllerBoardsFile is a YAML or JSONC file holding
	// more layouts in the same shape. Its entries win over
	// EmbeddedControllerBoards.
	EmbeddedControllerBoardsFile string `yaml:"embedded_controller_boards_file"`

	Output OutputConfig `yaml:"output"`
}

// EnableConfig switches hardware groups on and off.
type EnableConfig struct {
	Motherboard        bool `yaml:"motherboard"`
	GPU                bool `yaml:"gpu"`
	EmbeddedController bool `yaml:"embedded_controller"`
}

// OutputConfig selects how snapshots and reports are written.
type OutputConfig struct {
	// Format is one of Formats.
	Format string `yaml:"format"`

	// Compression is one of Compressions.
	Compression string `yaml:"compression"`
}

// Duration is a time.Duration written as a Go duration string
// ("250ms", "1m").
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err != nil {
		return fmt.Errorf("line %d: duration must be a string: %w", node.Line, err)
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration string.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		PollInterval:       Duration(time.Second),
		DetectionTimeout:   Duration(5 * time.Second),
		BusLockTimeout:     Duration(100 * time.Millisecond),
		BusLockPath:        "/run/lock/bureau-hwmon-isabus.lock",
		PortDevice:         "/dev/port",
		MSRDevicePattern:   "/dev/cpu/%d/msr",
		MemoryDevice:       "/dev/mem",
		SysfsRoot:          "/sys",
		ProcfsRoot:         "/proc",
		WatchdogPath:       "/run/bureau-hwmon/probe.json",
		WatchdogStaleAfter: Duration(10 * time.Minute),
		Enable: EnableConfig{
			Motherboard:        true,
			GPU:                true,
			EmbeddedController: true,
		},
		Output: OutputConfig{
			Format:      "text",
			Compression: "none",
		},
	}
}

// Resolve loads path, or the file named by EnvironmentVariable when
// path is empty. With neither, it returns Default.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	config, err := Load()
	if errors.Is(err, ErrNoConfig) {
		return Default(), nil
	}
	return config, err
}

// Load loads the file named by EnvironmentVariable.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, ErrNoConfig
	}
	return LoadFile(path)
}

// LoadFile loads path over Default, expands path variables, and
// validates the result.
func LoadFile(path string) (*Config, error) {
	config := Default()
	if err := decodeFile(path, config); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	config.expandVariables()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return config, nil
}

// decodeFile decodes a YAML, JSON, or JSONC file into target.
func decodeFile(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	// An empty file decodes as io.EOF and leaves target unchanged.
	if err := decoder.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadBoards reads a standalone EC board table file: a mapping from
// board product name to sensor sources.
func LoadBoards(path string) (ec.BoardSensors, error) {
	raw := make(map[string][]ec.SensorSource)
	if err := decodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("loading EC board table %s: %w", path, err)
	}
	boards := normalizeBoards(raw)
	if err := validateBoards(boards); err != nil {
		return nil, fmt.Errorf("EC board table %s: %w", path, err)
	}
	return boards, nil
}

// Boards returns the built-in EC board table merged with the inline
// and file-based additions.
func (c *Config) Boards() (ec.BoardSensors, error) {
	boards := ec.DefaultBoards.Merge(normalizeBoards(c.EmbeddedControllerBoards))
	if c.EmbeddedControllerBoardsFile == "" {
		return boards, nil
	}
	extra, err := LoadBoards(c.EmbeddedControllerBoardsFile)
	if err != nil {
		return nil, err
	}
	return boards.Merge(extra), nil
}

func normalizeBoards(raw map[string][]ec.SensorSource) ec.BoardSensors {
	boards := make(ec.BoardSensors, len(raw))
	for product, sources := range raw {
		boards[smbios.IdentifyModel(product)] = sources
	}
	return boards
}

func validateBoards(boards ec.BoardSensors) error {
	var errs []error
	for model, sources := range boards {
		if model == smbios.ModelUnknown {
			errs = append(errs, fmt.Errorf("EC board entry has no usable product name"))
			continue
		}
		for _, source := range sources {
			if err := source.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("board %s: %w", model, err))
			}
		}
	}
	return errors.Join(errs...)
}

// expandVariables expands ${VAR} and ${VAR:-default} in path fields.
func (c *Config) expandVariables() {
	for _, field := range []*string{
		&c.BusLockPath,
		&c.PortDevice,
		&c.MSRDevicePattern,
		&c.MemoryDevice,
		&c.SysfsRoot,
		&c.ProcfsRoot,
		&c.SettingsPath,
		&c.WatchdogPath,
		&c.EmbeddedControllerBoardsFile,
	} {
		*field = expandVars(*field)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	positive := []struct {
		name  string
		value Duration
	}{
		{"poll_interval", c.PollInterval},
		{"detection_timeout", c.DetectionTimeout},
		{"bus_lock_timeout", c.BusLockTimeout},
		{"watchdog_stale_after", c.WatchdogStaleAfter},
	}
	for _, field := range positive {
		if field.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", field.name, field.value))
		}
	}

	required := []struct {
		name  string
		value string
	}{
		{"bus_lock_path", c.BusLockPath},
		{"port_device", c.PortDevice},
		{"sysfs_root", c.SysfsRoot},
		{"procfs_root", c.ProcfsRoot},
	}
	for _, field := range required {
		if field.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", field.name))
		}
	}

	if strings.Count(c.MSRDevicePattern, "%d") != 1 {
		errs = append(errs, fmt.Errorf("msr_device_pattern must contain exactly one %%d, got %q", c.MSRDevicePattern))
	}
	if !slices.Contains(Formats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format must be one of %v, got %q", Formats, c.Output.Format))
	}
	if !slices.Contains(Compressions, c.Output.Compression) {
		errs = append(errs, fmt.Errorf("output.compression must be one of %v, got %q", Compressions, c.Output.Compression))
	}
	if err := validateBoards(normalizeBoards(c.EmbeddedControllerBoards)); err != nil {
		errs = append(errs, fmt.Errorf("embedded_controller_boards: %w", err))
	}

	return errors.Join(errs...)
}

// MSRDevice returns the MSR device path for cpu.
func (c *Config) MSRDevice(cpu int) string {
	return fmt.Sprintf(c.MSRDevicePattern, cpu)
}
