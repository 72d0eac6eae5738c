// Package commands implements the i2cbus CLI commands.
package commands

import (
	"errors"
	"fmt"

	"github.com/ardnew/softi2c/bus"
	"github.com/ardnew/softi2c/pkg/config"
	"github.com/ardnew/softi2c/pkg/trace"
)

// BusOptions are the flags shared by commands that open a bus. Empty
// fields keep the value from the configuration file.
type BusOptions struct {
	ConfigPath string
	Path       string
	Address    string
	TenBit     bool
	Force      bool
	Sim        bool
	TracePath  string
	LogLevel   string
}

// LoadConfig reads the configuration file, if any, and applies the
// command-line overrides.
func LoadConfig(opts BusOptions) (*config.Config, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(opts.ConfigPath); err != nil {
			return nil, err
		}
	}

	if opts.Path != "" {
		cfg.Bus.Path = opts.Path
	}
	if opts.Address != "" {
		addr, err := ParseAddress(opts.Address)
		if err != nil {
			return nil, err
		}
		cfg.Bus.Address = &addr
	}
	if opts.TenBit {
		cfg.Bus.TenBit = true
	}
	if opts.Force {
		cfg.Bus.Force = true
	}
	if opts.Sim {
		cfg.Sim.Enabled = true
	}
	if opts.TracePath != "" {
		cfg.Trace.File = opts.TracePath
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ApplyLogging()
	return cfg, nil
}

// OpenBus opens the configured adapter, or the simulator when enabled, and
// applies the channel settings. The returned function closes the bus and
// the trace file.
func OpenBus(cfg *config.Config) (*bus.Bus, func() error, error) {
	var opts []bus.Option
	var rec *trace.FileRecorder
	if cfg.Trace.File != "" {
		var err error
		if rec, err = trace.NewFileRecorder(cfg.Trace.File); err != nil {
			return nil, nil, err
		}
		opts = append(opts, bus.WithTracer(rec))
	}

	b, err := openBus(cfg, opts)
	if err != nil {
		if rec != nil {
			rec.Close()
		}
		return nil, nil, err
	}

	closeAll := func() error {
		err := b.Close()
		if rec != nil {
			err = errors.Join(err, rec.Close())
		}
		return err
	}

	if err := cfg.Bus.Configure(b); err != nil {
		closeAll()
		return nil, nil, err
	}
	return b, closeAll, nil
}

func openBus(cfg *config.Config, opts []bus.Option) (*bus.Bus, error) {
	if !cfg.Sim.Enabled {
		return bus.Open(cfg.Bus.Path, opts...)
	}
	ctrl, err := cfg.Sim.Controller()
	if err != nil {
		return nil, fmt.Errorf("simulator: %w", err)
	}
	return bus.New(ctrl, append([]bus.Option{bus.WithName("sim")}, opts...)...), nil
}
