// Package config loads YAML configuration for the i2cbus tools.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ardnew/softi2c/bus"
	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/bus/hal/sim"
	"github.com/ardnew/softi2c/pkg"
)

// DefaultBusPath is the adapter opened when none is configured.
const DefaultBusPath = "/dev/i2c-1"

// Config is the top-level configuration.
type Config struct {
	Bus   BusConfig   `yaml:"bus"`
	Log   LogConfig   `yaml:"log"`
	Trace TraceConfig `yaml:"trace"`
	Sim   SimConfig   `yaml:"sim"`
}

// BusConfig selects the adapter and the channel settings applied after
// opening it. Unset optional fields leave the adapter defaults alone.
type BusConfig struct {
	Path    string  `yaml:"path"`
	Address *uint16 `yaml:"address"`
	TenBit  bool    `yaml:"ten_bit"`
	Force   bool    `yaml:"force"`
	Retries *int    `yaml:"retries"`
	Timeout string  `yaml:"timeout"` // Go duration, e.g. "50ms"
	PEC     bool    `yaml:"pec"`
}

// LogConfig controls pkg logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// TraceConfig controls transaction tracing.
type TraceConfig struct {
	File string `yaml:"file"` // CBOR trace file, empty to disable
}

// SimConfig describes a simulated adapter used in place of a device node.
type SimConfig struct {
	Enabled       bool        `yaml:"enabled"`
	Functionality []string    `yaml:"functionality"` // I2C_FUNC_* names without the prefix
	Targets       []SimTarget `yaml:"targets"`
}

// SimTarget is a memory target attached to the simulated adapter.
type SimTarget struct {
	Address uint16  `yaml:"address"`
	Size    int     `yaml:"size"`
	Data    []uint8 `yaml:"data"` // Initial contents from offset 0
	RecvLen int     `yaml:"recv_len"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Bus: BusConfig{
			Path: DefaultBusPath,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads a YAML configuration file and fills unset fields from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and fills unset fields from Default.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	d := Default()
	if c.Bus.Path == "" {
		c.Bus.Path = d.Bus.Path
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	for i := range c.Sim.Targets {
		if c.Sim.Targets[i].Size == 0 {
			c.Sim.Targets[i].Size = 256
		}
	}
}

// Validate checks field values that YAML decoding cannot.
func (c *Config) Validate() error {
	var errs []error
	if _, ok := pkg.ParseLogLevel(c.Log.Level); !ok {
		errs = append(errs, fmt.Errorf("log.level %q: %w", c.Log.Level, pkg.ErrInvalidParameter))
	}
	if _, ok := pkg.ParseLogFormat(c.Log.Format); !ok {
		errs = append(errs, fmt.Errorf("log.format %q: %w", c.Log.Format, pkg.ErrInvalidParameter))
	}
	if _, _, err := c.Bus.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if c.Bus.Retries != nil && *c.Bus.Retries < 0 {
		errs = append(errs, fmt.Errorf("bus.retries %d: %w", *c.Bus.Retries, pkg.ErrInvalidParameter))
	}
	if c.Bus.Address != nil && *c.Bus.Address > 0x3FF {
		errs = append(errs, fmt.Errorf("bus.address 0x%X: %w", *c.Bus.Address, pkg.ErrInvalidAddress))
	}
	if _, err := c.Sim.FunctionalityBits(); err != nil {
		errs = append(errs, err)
	}
	for _, t := range c.Sim.Targets {
		if t.Address > 0x3FF {
			errs = append(errs, fmt.Errorf("sim target 0x%X: %w", t.Address, pkg.ErrInvalidAddress))
		}
		if t.Size < 1 || t.Size > 256 || len(t.Data) > t.Size {
			errs = append(errs, fmt.Errorf("sim target 0x%X size %d: %w", t.Address, t.Size, pkg.ErrInvalidParameter))
		}
	}
	return errors.Join(errs...)
}

// ApplyLogging configures pkg logging from the log section.
func (c *Config) ApplyLogging() {
	if level, ok := pkg.ParseLogLevel(c.Log.Level); ok {
		pkg.SetLogLevel(level)
	}
	if format, ok := pkg.ParseLogFormat(c.Log.Format); ok {
		pkg.SetLogFormat(format)
	}
}

// =============================================================================
// Bus Settings
// =============================================================================

// TimeoutDuration parses Timeout. The second result is false when no
// timeout is configured.
func (b BusConfig) TimeoutDuration() (time.Duration, bool, error) {
	if b.Timeout == "" {
		return 0, false, nil
	}
	d, err := time.ParseDuration(b.Timeout)
	if err != nil || d < 0 {
		return 0, false, fmt.Errorf("bus.timeout %q: %w", b.Timeout, pkg.ErrInvalidParameter)
	}
	return d, true, nil
}

// Configure applies the channel settings to an open Bus: retries, timeout
// and PEC first, then the slave address if one is set.
func (b BusConfig) Configure(dev *bus.Bus) error {
	if b.Retries != nil {
		if err := dev.SetRetries(*b.Retries); err != nil {
			return fmt.Errorf("set retries: %w", err)
		}
	}
	if d, ok, err := b.TimeoutDuration(); err != nil {
		return err
	} else if ok {
		if err := dev.SetTimeout(d); err != nil {
			return fmt.Errorf("set timeout: %w", err)
		}
	}
	if b.PEC {
		if err := dev.SetPEC(true); err != nil {
			return fmt.Errorf("set pec: %w", err)
		}
	}
	if b.Address == nil {
		return nil
	}

	set := dev.SetSlaveAddress
	if b.Force {
		set = dev.ForceSlaveAddress
	}
	if err := set(*b.Address, b.TenBit); err != nil {
		return fmt.Errorf("set slave address 0x%02X: %w", *b.Address, err)
	}
	return nil
}

// =============================================================================
// Simulator Settings
// =============================================================================

// FunctionalityBits converts the functionality names to a bitset. An empty
// list selects sim.DefaultFunctionality.
func (s SimConfig) FunctionalityBits() (hal.Functionality, error) {
	if len(s.Functionality) == 0 {
		return sim.DefaultFunctionality, nil
	}
	f, unknown := hal.ParseFunctionality(s.Functionality)
	if len(unknown) > 0 {
		return 0, fmt.Errorf("sim.functionality %v: %w", unknown, pkg.ErrInvalidParameter)
	}
	return f, nil
}

// Controller builds the simulated adapter.
func (s SimConfig) Controller() (*sim.Controller, error) {
	f, err := s.FunctionalityBits()
	if err != nil {
		return nil, err
	}

	opts := []sim.Option{sim.WithFunctionality(f)}
	for _, t := range s.Targets {
		mem := sim.NewMemory(t.Size)
		mem.Load(0, t.Data)
		mem.SetRecvLen(t.RecvLen)
		opts = append(opts, sim.WithTarget(t.Address, mem))
	}
	return sim.New(opts...), nil
}
