package bus

import (
	"fmt"

	"github.com/ardnew/softi2c/bus/hal"
)

// Message is one part of a combined I2C transaction. It is implemented
// only by *Read and *Write.
type Message interface {
	// Address returns the slave address.
	Address() uint16

	// Len returns the length of the data buffer.
	Len() int

	encode() hal.Msg
}

// Read reads into Data from the slave at Addr.
//
// After a successful Transfer, Data is resliced to the number of bytes
// actually received, which can be shorter than requested (for example with
// ReadReceiveLen). It is never grown.
type Read struct {
	Addr  uint16
	Data  []byte
	Flags ReadFlags
}

// Write writes Data to the slave at Addr.
type Write struct {
	Addr  uint16
	Data  []byte
	Flags WriteFlags
}

// Compile-time interface checks.
var (
	_ Message = (*Read)(nil)
	_ Message = (*Write)(nil)
)

// Address implements Message.
func (r *Read) Address() uint16 { return r.Addr }

// Len implements Message.
func (r *Read) Len() int { return len(r.Data) }

func (r *Read) encode() hal.Msg {
	return hal.Msg{
		Addr:  r.Addr,
		Flags: r.Flags.Native() | hal.FlagRD,
		Len:   uint16(len(r.Data)),
		Buf:   r.Data,
	}
}

// truncate reslices Data to n bytes when n is shorter.
func (r *Read) truncate(n uint16) {
	if int(n) < len(r.Data) {
		r.Data = r.Data[:n]
	}
}

// String returns a short description such as "R[0x50]{16} STOP".
func (r *Read) String() string {
	return describe('R', r.Addr, len(r.Data), r.Flags.String())
}

// Address implements Message.
func (w *Write) Address() uint16 { return w.Addr }

// Len implements Message.
func (w *Write) Len() int { return len(w.Data) }

func (w *Write) encode() hal.Msg {
	return hal.Msg{
		Addr:  w.Addr,
		Flags: w.Flags.Native(),
		Len:   uint16(len(w.Data)),
		Buf:   w.Data,
	}
}

// String returns a short description such as "W[0x50]{2}".
func (w *Write) String() string {
	return describe('W', w.Addr, len(w.Data), w.Flags.String())
}

func describe(dir byte, addr uint16, n int, flags string) string {
	s := fmt.Sprintf("%c[0x%02X]{%d}", dir, addr, n)
	if flags != "0" {
		s += " " + flags
	}
	return s
}
