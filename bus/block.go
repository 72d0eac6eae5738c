package bus

import (
	"time"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg"
	"github.com/ardnew/softi2c/pkg/trace"
)

// ReadBlock reads len(buf) bytes from register command of the selected
// slave and returns the number of bytes received.
//
// The SMBus I2C-block primitive is used when the adapter supports it and
// buf fits in one SMBus block. Otherwise, when the adapter supports plain
// I2C and a slave address is set, the read is issued as a combined
// transfer of a command write followed by a read. As a last resort the
// SMBus primitive is tried anyway with buf clamped to 32 bytes.
func (b *Bus) ReadBlock(command uint8, buf []byte) (int, error) {
	f, err := b.Functionality()
	if err != nil {
		return 0, err
	}

	start := time.Now()

	if f.Has(hal.FuncSMBusReadI2CBlock) && len(buf) <= hal.SMBusBlockMax {
		n, err := b.SMBusReadI2CBlockData(command, buf)
		b.traceBlock(trace.PathNative, command, start, err)
		return n, err
	}

	if f.Has(hal.FuncI2C) && b.addrKnown {
		cmd := [1]byte{command}
		w := Write{Addr: b.addr, Data: cmd[:]}
		r := Read{Addr: b.addr, Data: buf}
		if b.tenBit {
			w.Flags |= WriteTenBitAddr
			r.Flags |= ReadTenBitAddr
		}
		pkg.LogDebug(pkg.ComponentEmulation, "emulating block read",
			"bus", b.name, "command", command, "len", len(buf))

		err := b.Transfer(&w, &r)
		b.traceBlock(trace.PathEmulatedRead, command, start, err)
		if err != nil {
			return 0, err
		}
		return len(r.Data), nil
	}

	pkg.LogDebug(pkg.ComponentEmulation, "block read falling back to smbus",
		"bus", b.name, "command", command, "len", len(buf), "addrKnown", b.addrKnown)
	n, err := b.SMBusReadI2CBlockData(command, buf)
	b.traceBlock(trace.PathFallback, command, start, err)
	return n, err
}

// WriteBlock writes data to register command of the selected slave.
//
// The SMBus I2C-block primitive is used when the adapter supports it and
// data fits in one SMBus block. Otherwise, when the adapter supports plain
// I2C and a slave address is set, the write is issued as a combined
// transfer: the command byte followed by a NO_START data message if the
// adapter supports it, or a single message carrying both. As a last resort
// the SMBus primitive is tried anyway and the driver decides.
func (b *Bus) WriteBlock(command uint8, data []byte) error {
	f, err := b.Functionality()
	if err != nil {
		return err
	}

	start := time.Now()

	if f.Has(hal.FuncSMBusWriteI2CBlock) && len(data) <= hal.SMBusBlockMax {
		err := b.writeI2CBlockUnchecked(command, data)
		b.traceBlock(trace.PathNative, command, start, err)
		return err
	}

	if f.Has(hal.FuncI2C) && b.addrKnown {
		var flags WriteFlags
		if b.tenBit {
			flags |= WriteTenBitAddr
		}

		if f.Has(hal.FuncNoStart) {
			pkg.LogDebug(pkg.ComponentEmulation, "emulating block write with NO_START",
				"bus", b.name, "command", command, "len", len(data))
			cmd := [1]byte{command}
			err := b.Transfer(
				&Write{Addr: b.addr, Data: cmd[:], Flags: flags},
				&Write{Addr: b.addr, Data: data, Flags: flags | WriteNoStart},
			)
			b.traceBlock(trace.PathEmulatedSplit, command, start, err)
			return err
		}

		pkg.LogDebug(pkg.ComponentEmulation, "emulating block write as one message",
			"bus", b.name, "command", command, "len", len(data))
		buf := make([]byte, 0, 1+len(data))
		buf = append(buf, command)
		buf = append(buf, data...)
		err := b.Transfer(&Write{Addr: b.addr, Data: buf, Flags: flags})
		b.traceBlock(trace.PathEmulatedConcat, command, start, err)
		return err
	}

	pkg.LogDebug(pkg.ComponentEmulation, "block write falling back to smbus",
		"bus", b.name, "command", command, "len", len(data), "addrKnown", b.addrKnown)
	err = b.writeI2CBlockUnchecked(command, data)
	b.traceBlock(trace.PathFallback, command, start, err)
	return err
}

// traceBlock records which strategy a block operation used.
func (b *Bus) traceBlock(path trace.Path, command uint8, start time.Time, err error) {
	if b.tracer == nil {
		return
	}
	ev := trace.Event{Kind: trace.KindBlock, Path: path, Command: command}
	if b.addrKnown {
		ev.Messages = []trace.Message{{Addr: b.addr}}
	}
	b.record(ev, start, err)
}
