// Command i2cbus inspects and drives Linux I2C adapters through i2c-dev.
//
// Usage:
//
//	i2cbus <command> [flags] [args]
//
// Commands:
//
//	list         List I2C adapters
//	funcs        Show adapter functionality
//	transfer     Run a combined transfer
//	read-block   Read a register block
//	write-block  Write a register block
//	dump         Dump registers of a slave
//	scan         Probe for slaves like i2cdetect
//	watch        Watch adapters being added and removed
//	shell        Interactive console
//	trace        Print a recorded trace file
//
// Examples:
//
//	# Read 8 bytes from register 0x10 of an EEPROM at 0x50 on i2c-1
//	i2cbus transfer -bus /dev/i2c-1 w1@0x50 0x10 r8
//
//	# Same, using block emulation when SMBus block reads are missing
//	i2cbus read-block -bus /dev/i2c-1 -addr 0x50 0x10 8
//
//	# Record a trace and print only failures
//	i2cbus dump -addr 0x50 -trace bus.trace
//	i2cbus trace -errors bus.trace
//
//	# Try commands against the simulator configured in i2cbus.yaml
//	i2cbus shell -config i2cbus.yaml -sim
//
//	# Profile a dump (binary built with -tags profile)
//	i2cbus dump -addr 0x50 -cpuprofile cpu.prof
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/ardnew/softi2c/bus"
	"github.com/ardnew/softi2c/cmd/i2cbus/commands"
	"github.com/ardnew/softi2c/pkg/i2cid"
	"github.com/ardnew/softi2c/pkg/prof"
)

const usage = `i2cbus - Linux I2C/SMBus tool

Usage:
  i2cbus <command> [flags] [args]

Commands:
  list         List I2C adapters
  funcs        Show adapter functionality
  transfer     Run a combined transfer
  read-block   Read a register block
  write-block  Write a register block
  dump         Dump registers of a slave
  scan         Probe for slaves like i2cdetect
  watch        Watch adapters being added and removed
  shell        Interactive console
  trace        Print a recorded trace file

Use "i2cbus <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "list":
		runList(args)
	case "funcs":
		runFuncs(args)
	case "transfer":
		runTransfer(args)
	case "read-block":
		runReadBlock(args)
	case "write-block":
		runWriteBlock(args)
	case "dump":
		runDump(args)
	case "scan":
		runScan(args)
	case "watch":
		runWatch(args)
	case "shell":
		runShell(args)
	case "trace":
		runTrace(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// =============================================================================
// Helpers
// =============================================================================

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func newFlagSet(name, synopsis, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "i2cbus %s - %s\n\nUsage:\n  i2cbus %s [flags] %s\n\nFlags:\n",
			name, synopsis, name, args)
		fs.PrintDefaults()
	}
	return fs
}

func addBusFlags(fs *flag.FlagSet) *commands.BusOptions {
	opts := &commands.BusOptions{}
	fs.StringVar(&opts.ConfigPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.Path, "bus", "", "Adapter device node (default /dev/i2c-1)")
	fs.StringVar(&opts.Address, "addr", "", "Slave address to select")
	fs.BoolVar(&opts.TenBit, "10bit", false, "Use 10-bit addressing")
	fs.BoolVar(&opts.Force, "force", false, "Select the address even if a driver owns it")
	fs.BoolVar(&opts.Sim, "sim", false, "Use the simulated adapter from the configuration")
	fs.StringVar(&opts.TracePath, "trace", "", "Record transactions to a CBOR trace file")
	fs.StringVar(&opts.LogLevel, "log", "", "Log level (debug, info, warn, error)")
	addProfileFlags(fs)
	return opts
}

// profile is filled by addProfileFlags; one command runs per process.
var profile prof.Options

func addProfileFlags(fs *flag.FlagSet) {
	fs.StringVar(&profile.CPUPath, "cpuprofile", "", "Write a CPU profile to `file`")
	fs.StringVar(&profile.HeapPath, "memprofile", "", "Write a heap profile to `file`")
	fs.StringVar(&profile.BlockPath, "blockprofile", "", "Write a block profile to `file`")
	fs.StringVar(&profile.HTTPAddr, "pprof", "", "Serve /debug/pprof/ on `addr`")
}

func parseOrExit(fs *flag.FlagSet, args []string, minArgs int) {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < minArgs {
		fs.Usage()
		os.Exit(1)
	}
}

// withBus opens the bus from the parsed flags, runs fn under the requested
// profiles and closes it.
func withBus(opts *commands.BusOptions, fn func(b *bus.Bus) error) {
	cfg, err := commands.LoadConfig(*opts)
	if err != nil {
		fatal(err)
	}
	session, err := prof.Start(profile)
	if err != nil {
		fatal(err)
	}
	b, closeBus, err := commands.OpenBus(cfg)
	if err != nil {
		session.Stop()
		fatal(err)
	}
	err = fn(b)
	if cerr := closeBus(); err == nil {
		err = cerr
	}
	if perr := session.Stop(); err == nil {
		err = perr
	}
	if err != nil {
		fatal(err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// =============================================================================
// Commands
// =============================================================================

func runList(args []string) {
	fs := newFlagSet("list", "List I2C adapters", "")
	parseOrExit(fs, args, 0)

	devices, err := bus.Enumerate()
	if err != nil {
		fatal(err)
	}
	if err := commands.RunList(os.Stdout, devices); err != nil {
		fatal(err)
	}
}

func runFuncs(args []string) {
	fs := newFlagSet("funcs", "Show adapter functionality", "")
	opts := addBusFlags(fs)
	parseOrExit(fs, args, 0)

	withBus(opts, func(b *bus.Bus) error {
		return commands.RunFuncs(os.Stdout, b)
	})
}

func runTransfer(args []string) {
	fs := newFlagSet("transfer", "Run a combined transfer",
		"{r|w}LEN[@ADDR][:FLAGS] [DATA...] ...")
	opts := addBusFlags(fs)
	parseOrExit(fs, args, 1)

	msgs, err := commands.ParseTransfer(fs.Args())
	if err != nil {
		fatal(err)
	}
	withBus(opts, func(b *bus.Bus) error {
		return commands.RunTransfer(os.Stdout, b, msgs)
	})
}

func runReadBlock(args []string) {
	fs := newFlagSet("read-block", "Read a register block", "<command> <length>")
	opts := addBusFlags(fs)
	parseOrExit(fs, args, 2)

	cmd, err := commands.ParseByte(fs.Arg(0))
	if err != nil {
		fatal(err)
	}
	n, err := strconv.ParseUint(fs.Arg(1), 0, 16)
	if err != nil {
		fatal(fmt.Errorf("length %q: %w", fs.Arg(1), err))
	}
	withBus(opts, func(b *bus.Bus) error {
		return commands.RunReadBlock(os.Stdout, b, cmd, int(n))
	})
}

func runWriteBlock(args []string) {
	fs := newFlagSet("write-block", "Write a register block", "<command> <byte>...")
	opts := addBusFlags(fs)
	parseOrExit(fs, args, 2)

	v, err := commands.ParseBytes(fs.Args())
	if err != nil {
		fatal(err)
	}
	withBus(opts, func(b *bus.Bus) error {
		return commands.RunWriteBlock(b, v[0], v[1:])
	})
}

func runDump(args []string) {
	fs := newFlagSet("dump", "Dump registers of a slave", "[first] [last]")
	opts := addBusFlags(fs)
	parseOrExit(fs, args, 0)

	first, last := uint8(0x00), uint8(0xFF)
	v, err := commands.ParseBytes(fs.Args())
	if err != nil {
		fatal(err)
	}
	if len(v) > 0 {
		first = v[0]
	}
	if len(v) > 1 {
		last = v[1]
	}
	withBus(opts, func(b *bus.Bus) error {
		return commands.RunDump(os.Stdout, b, first, last)
	})
}

func runScan(args []string) {
	fs := newFlagSet("scan", "Probe for slaves like i2cdetect (writes to the bus)", "[first] [last]")
	opts := addBusFlags(fs)
	mode := fs.String("mode", "auto", "Probe with auto, quick or read")
	ids := fs.String("ids", "", "Address database file (default: system or built-in)")
	parseOrExit(fs, args, 0)

	m, err := commands.ParseScanMode(*mode)
	if err != nil {
		fatal(err)
	}
	first, last := uint16(0x08), uint16(0x77)
	v, err := commands.ParseBytes(fs.Args())
	if err != nil {
		fatal(err)
	}
	if len(v) > 0 {
		first = uint16(v[0])
	}
	if len(v) > 1 {
		last = uint16(v[1])
	}

	db := i2cid.New()
	if *ids != "" {
		db = i2cid.NewWithPaths([]string{*ids})
	}
	db.Load()

	withBus(opts, func(b *bus.Bus) error {
		return commands.RunScan(os.Stdout, b, first, last, m, db)
	})
}

func runWatch(args []string) {
	fs := newFlagSet("watch", "Watch adapters being added and removed", "")
	probe := fs.Bool("probe", false, "Print the functionality of added adapters")
	level := fs.String("log", "", "Log level (debug, info, warn, error)")
	parseOrExit(fs, args, 0)

	if _, err := commands.LoadConfig(commands.BusOptions{LogLevel: *level}); err != nil {
		fatal(err)
	}

	ctx, cancel := signalContext()
	defer cancel()
	if err := commands.RunWatch(ctx, os.Stdout, *probe); err != nil {
		fatal(err)
	}
}

func runShell(args []string) {
	fs := newFlagSet("shell", "Interactive console", "")
	opts := addBusFlags(fs)
	parseOrExit(fs, args, 0)

	ctx, cancel := signalContext()
	defer cancel()
	withBus(opts, func(b *bus.Bus) error {
		return commands.NewShell(b, os.Stdout).Run(ctx)
	})
}

func runTrace(args []string) {
	fs := newFlagSet("trace", "Print a recorded trace file", "<file>")
	var opts commands.TraceOptions
	fs.StringVar(&opts.Session, "session", "", "Filter by session ID")
	fs.StringVar(&opts.Bus, "name", "", "Filter by bus name")
	fs.StringVar(&opts.Kind, "kind", "", "Filter by kind (transfer, smbus, probe, block)")
	fs.StringVar(&opts.Address, "addr", "", "Filter by slave address")
	fs.BoolVar(&opts.ErrorsOnly, "errors", false, "Show failed transactions only")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	parseOrExit(fs, args, 1)

	if err := commands.RunTrace(os.Stdout, fs.Arg(0), opts); err != nil {
		fatal(err)
	}
}
