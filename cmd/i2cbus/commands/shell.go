package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/ardnew/softi2c/bus"
	"github.com/ardnew/softi2c/pkg"
	"github.com/ardnew/softi2c/pkg/i2cid"
)

const shellHelp = `
I2C Shell Commands:
  Channel:
    addr <a> [10bit] [force]   - Select slave address
    funcs                      - Show adapter functionality
    pec on|off                 - Toggle packet error checking
    retries <n>                - Set adapter retry count
    timeout <duration>         - Set adapter timeout (e.g. 100ms)

  Transfers:
    t <msg> [data...] ...      - Combined transfer (r4@0x50 w1@0x50 0x10)
    rb <cmd> <len>             - Read block from register
    wb <cmd> <byte>...         - Write block to register
    dump [first] [last]        - Dump registers
    scan [auto|quick|read]     - Probe 0x08-0x77 (writes to the bus)

  SMBus:
    recv                       - Receive byte
    send <byte>                - Send byte
    get <reg>                  - Read byte data
    set <reg> <byte>           - Write byte data
    getw <reg>                 - Read word data
    setw <reg> <word>          - Write word data

  Other:
    help                       - Show this help
    quit                       - Exit
`

// Shell is an interactive console on one bus.
type Shell struct {
	b   *bus.Bus
	out io.Writer
	ids *i2cid.Database
}

// NewShell creates a shell writing to out.
func NewShell(b *bus.Bus, out io.Writer) *Shell {
	return &Shell{b: b, out: out, ids: i2cid.New()}
}

// Run reads commands until EOF, "quit" or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    shellCompleter,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	s.out = rl.Stdout()
	fmt.Fprint(s.out, shellHelp)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			return nil
		}

		quit, err := s.Exec(line)
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
		if quit {
			return nil
		}
		rl.SetPrompt(s.prompt())
	}
}

var shellCompleter = readline.NewPrefixCompleter(
	readline.PcItem("addr"),
	readline.PcItem("funcs"),
	readline.PcItem("pec", readline.PcItem("on"), readline.PcItem("off")),
	readline.PcItem("retries"),
	readline.PcItem("timeout"),
	readline.PcItem("t"),
	readline.PcItem("rb"),
	readline.PcItem("wb"),
	readline.PcItem("dump"),
	readline.PcItem("scan", readline.PcItem("auto"), readline.PcItem("quick"), readline.PcItem("read")),
	readline.PcItem("recv"),
	readline.PcItem("send"),
	readline.PcItem("get"),
	readline.PcItem("set"),
	readline.PcItem("getw"),
	readline.PcItem("setw"),
	readline.PcItem("help"),
	readline.PcItem("quit"),
)

func (s *Shell) prompt() string {
	if addr, ok := s.b.SlaveAddress(); ok {
		return fmt.Sprintf("%s@0x%02x> ", s.b.Name(), addr)
	}
	return s.b.Name() + "> "
}

// Exec runs one command line. quit reports that the shell should exit.
func (s *Shell) Exec(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "help", "?":
		fmt.Fprint(s.out, shellHelp)
	case "quit", "exit", "q":
		return true, nil
	case "addr":
		err = s.cmdAddr(args)
	case "funcs":
		err = RunFuncs(s.out, s.b)
	case "pec":
		err = s.cmdPEC(args)
	case "retries":
		err = s.cmdRetries(args)
	case "timeout":
		err = s.cmdTimeout(args)
	case "t", "transfer":
		var msgs []bus.Message
		if msgs, err = ParseTransfer(args); err == nil {
			err = RunTransfer(s.out, s.b, msgs)
		}
	case "rb":
		err = s.cmdReadBlock(args)
	case "wb":
		err = s.cmdWriteBlock(args)
	case "dump":
		err = s.cmdDump(args)
	case "scan":
		err = s.cmdScan(args)
	case "recv":
		var v uint8
		if v, err = s.b.SMBusReadByte(); err == nil {
			fmt.Fprintf(s.out, "0x%02x\n", v)
		}
	case "send":
		err = s.withByte(args, 1, func(v []uint8) error { return s.b.SMBusWriteByte(v[0]) })
	case "get":
		err = s.withByte(args, 1, func(v []uint8) error {
			got, err := s.b.SMBusReadByteData(v[0])
			if err == nil {
				fmt.Fprintf(s.out, "0x%02x\n", got)
			}
			return err
		})
	case "set":
		err = s.withByte(args, 2, func(v []uint8) error { return s.b.SMBusWriteByteData(v[0], v[1]) })
	case "getw":
		err = s.withByte(args, 1, func(v []uint8) error {
			got, err := s.b.SMBusReadWordData(v[0])
			if err == nil {
				fmt.Fprintf(s.out, "0x%04x\n", got)
			}
			return err
		})
	case "setw":
		err = s.cmdSetWord(args)
	default:
		err = fmt.Errorf("unknown command %q (type 'help' for commands)", cmd)
	}
	return false, err
}

func usageError(usage string) error {
	return fmt.Errorf("usage: %s: %w", usage, pkg.ErrInvalidParameter)
}

// withByte parses exactly n byte arguments and calls fn with them.
func (s *Shell) withByte(args []string, n int, fn func([]uint8) error) error {
	if len(args) != n {
		return usageError(fmt.Sprintf("expected %d byte arguments", n))
	}
	v, err := ParseBytes(args)
	if err != nil {
		return err
	}
	return fn(v)
}

func (s *Shell) cmdAddr(args []string) error {
	if len(args) == 0 {
		if addr, ok := s.b.SlaveAddress(); ok {
			fmt.Fprintf(s.out, "0x%02x (10-bit: %t)\n", addr, s.b.TenBit())
			return nil
		}
		fmt.Fprintln(s.out, "no slave address selected")
		return nil
	}

	addr, err := ParseAddress(args[0])
	if err != nil {
		return err
	}
	var tenBit, force bool
	for _, opt := range args[1:] {
		switch strings.ToLower(opt) {
		case "10bit", "tenbit":
			tenBit = true
		case "force":
			force = true
		default:
			return usageError("addr <a> [10bit] [force]")
		}
	}
	if force {
		return s.b.ForceSlaveAddress(addr, tenBit)
	}
	return s.b.SetSlaveAddress(addr, tenBit)
}

func (s *Shell) cmdPEC(args []string) error {
	if len(args) != 1 {
		return usageError("pec on|off")
	}
	switch strings.ToLower(args[0]) {
	case "on", "1", "true":
		return s.b.SetPEC(true)
	case "off", "0", "false":
		return s.b.SetPEC(false)
	}
	return usageError("pec on|off")
}

func (s *Shell) cmdRetries(args []string) error {
	if len(args) != 1 {
		return usageError("retries <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return usageError("retries <n>")
	}
	return s.b.SetRetries(n)
}

func (s *Shell) cmdTimeout(args []string) error {
	if len(args) != 1 {
		return usageError("timeout <duration>")
	}
	d, err := time.ParseDuration(args[0])
	if err != nil {
		return usageError("timeout <duration>")
	}
	return s.b.SetTimeout(d)
}

func (s *Shell) cmdReadBlock(args []string) error {
	if len(args) != 2 {
		return usageError("rb <cmd> <len>")
	}
	cmd, err := ParseByte(args[0])
	if err != nil {
		return err
	}
	n, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		return usageError("rb <cmd> <len>")
	}
	return RunReadBlock(s.out, s.b, cmd, int(n))
}

func (s *Shell) cmdWriteBlock(args []string) error {
	if len(args) < 2 {
		return usageError("wb <cmd> <byte>...")
	}
	v, err := ParseBytes(args)
	if err != nil {
		return err
	}
	return RunWriteBlock(s.b, v[0], v[1:])
}

func (s *Shell) cmdDump(args []string) error {
	first, last := uint8(0x00), uint8(0xFF)
	if len(args) > 2 {
		return usageError("dump [first] [last]")
	}
	v, err := ParseBytes(args)
	if err != nil {
		return err
	}
	if len(v) > 0 {
		first = v[0]
	}
	if len(v) > 1 {
		last = v[1]
	}
	return RunDump(s.out, s.b, first, last)
}

func (s *Shell) cmdScan(args []string) error {
	if len(args) > 1 {
		return usageError("scan [auto|quick|read]")
	}
	var arg string
	if len(args) == 1 {
		arg = args[0]
	}
	mode, err := ParseScanMode(arg)
	if err != nil {
		return err
	}
	s.ids.Load()
	return RunScan(s.out, s.b, 0x08, 0x77, mode, s.ids)
}

func (s *Shell) cmdSetWord(args []string) error {
	if len(args) != 2 {
		return usageError("setw <reg> <value>")
	}
	reg, err := ParseByte(args[0])
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(args[1], 0, 16)
	if err != nil {
		return usageError("setw <reg> <value>")
	}
	return s.b.SMBusWriteWordData(reg, uint16(v))
}
