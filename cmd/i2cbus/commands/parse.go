package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ardnew/softi2c/bus"
	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg"
)

// ParseAddress parses a 7- or 10-bit slave address in any Go integer
// base ("0x50", "80", "0b1010000").
func ParseAddress(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil || v > 0x3FF {
		return 0, fmt.Errorf("address %q: %w", s, pkg.ErrInvalidAddress)
	}
	return uint16(v), nil
}

// ParseByte parses one byte value in any Go integer base.
func ParseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("byte %q: %w", s, pkg.ErrInvalidParameter)
	}
	return uint8(v), nil
}

// ParseBytes parses a list of byte values.
func ParseBytes(args []string) ([]byte, error) {
	out := make([]byte, 0, len(args))
	for _, a := range args {
		v, err := ParseByte(a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseTransfer parses an i2ctransfer-style message list:
//
//	{r|w}LENGTH[@ADDRESS][:FLAG,FLAG...] [DATA...]
//
// A write is followed by LENGTH data bytes. A data byte with a "+", "-" or
// "=" suffix fills the rest of the message, incrementing, decrementing or
// repeating the value. The address of the previous message is used when
// none is given; the first message must name one.
func ParseTransfer(args []string) ([]bus.Message, error) {
	var msgs []bus.Message
	var addr uint16
	haveAddr := false

	for i := 0; i < len(args); {
		desc := args[i]
		i++

		head, flagList, _ := strings.Cut(desc, ":")
		lenStr, addrStr, hasAt := strings.Cut(head, "@")
		if len(lenStr) < 2 || (lenStr[0] != 'r' && lenStr[0] != 'w') {
			return nil, fmt.Errorf("message %q: expected r<len> or w<len>: %w", desc, pkg.ErrInvalidParameter)
		}
		n, err := strconv.ParseUint(lenStr[1:], 0, 16)
		if err != nil {
			return nil, fmt.Errorf("message %q: length: %w", desc, pkg.ErrInvalidParameter)
		}
		if hasAt {
			if addr, err = ParseAddress(addrStr); err != nil {
				return nil, err
			}
			haveAddr = true
		}
		if !haveAddr {
			return nil, fmt.Errorf("message %q: no address: %w", desc, pkg.ErrInvalidParameter)
		}
		var names []string
		if flagList != "" {
			names = strings.Split(flagList, ",")
		}

		if lenStr[0] == 'r' {
			flags, unknown := bus.ParseReadFlags(names)
			if len(unknown) > 0 {
				return nil, fmt.Errorf("message %q: read flags %v: %w", desc, unknown, pkg.ErrInvalidParameter)
			}
			msgs = append(msgs, &bus.Read{Addr: addr, Data: make([]byte, n), Flags: flags})
			continue
		}

		flags, unknown := bus.ParseWriteFlags(names)
		if len(unknown) > 0 {
			return nil, fmt.Errorf("message %q: write flags %v: %w", desc, unknown, pkg.ErrInvalidParameter)
		}
		data, used, err := parseWriteData(args[i:], int(n))
		if err != nil {
			return nil, fmt.Errorf("message %q: %w", desc, err)
		}
		i += used
		msgs = append(msgs, &bus.Write{Addr: addr, Data: data, Flags: flags})
	}

	if len(msgs) > hal.MaxMessages {
		return nil, fmt.Errorf("%d messages: %w", len(msgs), pkg.ErrTooManyMessages)
	}
	return msgs, nil
}

// parseWriteData consumes data bytes for an n-byte write and returns the
// number of arguments used.
func parseWriteData(args []string, n int) ([]byte, int, error) {
	data := make([]byte, 0, n)
	used := 0
	for len(data) < n {
		if used >= len(args) {
			return nil, used, fmt.Errorf("%d of %d data bytes: %w", len(data), n, pkg.ErrInvalidParameter)
		}
		a := args[used]
		used++
		if a == "" {
			return nil, used, fmt.Errorf("empty data byte: %w", pkg.ErrInvalidParameter)
		}

		mode := a[len(a)-1]
		switch mode {
		case '+', '-', '=':
			a = a[:len(a)-1]
		default:
			mode = 0
		}
		v, err := ParseByte(a)
		if err != nil {
			return nil, used, err
		}
		if mode == 0 {
			data = append(data, v)
			continue
		}
		for len(data) < n {
			data = append(data, v)
			switch mode {
			case '+':
				v++
			case '-':
				v--
			}
		}
	}
	return data, used, nil
}
