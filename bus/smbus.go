package bus

import (
	"time"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg"
	"github.com/ardnew/softi2c/pkg/trace"
)

// smbus issues one SMBus transaction on the selected slave.
func (b *Bus) smbus(rw hal.ReadWrite, command uint8, size hal.SMBusSize, data *hal.SMBusData) error {
	start := time.Now()
	err := b.ctrl.SMBus(rw, command, size, data)
	if b.tracer != nil {
		ev := trace.Event{Kind: trace.KindSMBus, Command: command, Size: rw.String() + " " + size.String()}
		if b.addrKnown {
			m := trace.Message{Addr: b.addr, Read: rw == hal.SMBusRead}
			if data != nil {
				m.Data = trace.CaptureData(data[:])
			}
			ev.Messages = []trace.Message{m}
		}
		b.record(ev, start, err)
	}
	if err != nil {
		pkg.LogDebug(pkg.ComponentSMBus, "smbus transaction failed",
			"bus", b.name, "rw", rw, "size", size, "command", command, "error", err)
	}
	return err
}

// SMBusWriteQuick sends a single bit in place of the R/W address bit.
func (b *Bus) SMBusWriteQuick(rw hal.ReadWrite) error {
	return b.smbus(rw, 0, hal.SMBusQuick, nil)
}

// SMBusReadByte reads one byte without selecting a register.
func (b *Bus) SMBusReadByte() (uint8, error) {
	var data hal.SMBusData
	if err := b.smbus(hal.SMBusRead, 0, hal.SMBusByte, &data); err != nil {
		return 0, err
	}
	return data.Byte(), nil
}

// SMBusWriteByte sends one byte without selecting a register.
func (b *Bus) SMBusWriteByte(value uint8) error {
	return b.smbus(hal.SMBusWrite, value, hal.SMBusByte, nil)
}

// SMBusReadByteData reads one byte from register command.
func (b *Bus) SMBusReadByteData(command uint8) (uint8, error) {
	var data hal.SMBusData
	if err := b.smbus(hal.SMBusRead, command, hal.SMBusByteData, &data); err != nil {
		return 0, err
	}
	return data.Byte(), nil
}

// SMBusWriteByteData writes one byte to register command.
func (b *Bus) SMBusWriteByteData(command, value uint8) error {
	var data hal.SMBusData
	data.SetByte(value)
	return b.smbus(hal.SMBusWrite, command, hal.SMBusByteData, &data)
}

// SMBusReadWordData reads a 16-bit word from register command.
func (b *Bus) SMBusReadWordData(command uint8) (uint16, error) {
	var data hal.SMBusData
	if err := b.smbus(hal.SMBusRead, command, hal.SMBusWordData, &data); err != nil {
		return 0, err
	}
	return data.Word(), nil
}

// SMBusWriteWordData writes a 16-bit word to register command.
func (b *Bus) SMBusWriteWordData(command uint8, value uint16) error {
	var data hal.SMBusData
	data.SetWord(value)
	return b.smbus(hal.SMBusWrite, command, hal.SMBusWordData, &data)
}

// SMBusProcessCall writes a word to register command and reads a word back.
func (b *Bus) SMBusProcessCall(command uint8, value uint16) (uint16, error) {
	var data hal.SMBusData
	data.SetWord(value)
	if err := b.smbus(hal.SMBusWrite, command, hal.SMBusProcCall, &data); err != nil {
		return 0, err
	}
	return data.Word(), nil
}

// SMBusReadBlockData reads a length-prefixed block of up to 32 bytes from
// register command into buf and returns the number of bytes copied.
func (b *Bus) SMBusReadBlockData(command uint8, buf []byte) (int, error) {
	var data hal.SMBusData
	if err := b.smbus(hal.SMBusRead, command, hal.SMBusBlockData, &data); err != nil {
		return 0, err
	}
	return copy(buf, data.Block()), nil
}

// SMBusWriteBlockData writes a length-prefixed block of up to 32 bytes to
// register command.
func (b *Bus) SMBusWriteBlockData(command uint8, p []byte) error {
	var data hal.SMBusData
	if !data.SetBlock(p) {
		return pkg.ErrBlockTooLong
	}
	return b.smbus(hal.SMBusWrite, command, hal.SMBusBlockData, &data)
}

// SMBusBlockProcessCall writes a block to register command and reads a
// block back into buf, returning the number of bytes copied.
func (b *Bus) SMBusBlockProcessCall(command uint8, p, buf []byte) (int, error) {
	var data hal.SMBusData
	if !data.SetBlock(p) {
		return 0, pkg.ErrBlockTooLong
	}
	if err := b.smbus(hal.SMBusWrite, command, hal.SMBusBlockProcCall, &data); err != nil {
		return 0, err
	}
	return copy(buf, data.Block()), nil
}

// SMBusReadI2CBlockData reads up to 32 bytes from register command without
// a length prefix. Longer buffers are only partially filled.
func (b *Bus) SMBusReadI2CBlockData(command uint8, buf []byte) (int, error) {
	var data hal.SMBusData
	data[0] = uint8(min(len(buf), hal.SMBusBlockMax))
	if err := b.smbus(hal.SMBusRead, command, hal.SMBusI2CBlockData, &data); err != nil {
		return 0, err
	}
	return copy(buf, data.Block()), nil
}

// SMBusWriteI2CBlockData writes up to 32 bytes to register command without
// a length prefix.
func (b *Bus) SMBusWriteI2CBlockData(command uint8, p []byte) error {
	if len(p) > hal.SMBusBlockMax {
		return pkg.ErrBlockTooLong
	}
	return b.writeI2CBlockUnchecked(command, p)
}

// writeI2CBlockUnchecked issues an I2C-block write without enforcing the
// block limit. The length byte carries the full request, saturated at 255,
// and the payload is cut at the union size, so the driver rejects what it
// cannot carry.
func (b *Bus) writeI2CBlockUnchecked(command uint8, p []byte) error {
	var data hal.SMBusData
	data[0] = uint8(min(len(p), 0xFF))
	copy(data[1:], p)
	return b.smbus(hal.SMBusWrite, command, hal.SMBusI2CBlockData, &data)
}
