package bus

import (
	"strings"

	"github.com/ardnew/softi2c/bus/hal"
)

// ReadFlags modify a Read message to work around device quirks.
type ReadFlags uint16

// Read message flags.
const (
	// ReadTenBitAddr marks a 10-bit slave address.
	ReadTenBitAddr ReadFlags = 1 << iota
	// ReadReceiveLen takes the remaining length from the first byte received.
	ReadReceiveLen
	// ReadNACK generates a NACK for this read.
	ReadNACK
	// ReadReverseRW flips the meaning of the R/W address bit.
	ReadReverseRW
	// ReadNoStart suppresses the START condition and address byte. A START
	// is still generated for the first message.
	ReadNoStart
	// ReadStop forces a STOP condition after this message.
	ReadStop
)

// WriteFlags modify a Write message to work around device quirks.
type WriteFlags uint16

// Write message flags.
const (
	// WriteTenBitAddr marks a 10-bit slave address.
	WriteTenBitAddr WriteFlags = 1 << iota
	// WriteIgnoreNACK treats a NACK as an ACK so it cannot abort the transfer.
	WriteIgnoreNACK
	// WriteReverseRW flips the meaning of the R/W address bit.
	WriteReverseRW
	// WriteNoStart suppresses the START condition and address byte. A START
	// is still generated for the first message.
	WriteNoStart
	// WriteStop forces a STOP condition after this message.
	WriteStop
)

var readFlagTable = [...]struct {
	flag   ReadFlags
	native hal.Flags
	name   string
}{
	{ReadTenBitAddr, hal.FlagTen, "TENBIT_ADDR"},
	{ReadReceiveLen, hal.FlagRecvLen, "RECEIVE_LEN"},
	{ReadNACK, hal.FlagNoRdAck, "NACK"},
	{ReadReverseRW, hal.FlagRevDirAddr, "REVERSE_RW"},
	{ReadNoStart, hal.FlagNoStart, "NO_START"},
	{ReadStop, hal.FlagStop, "STOP"},
}

var writeFlagTable = [...]struct {
	flag   WriteFlags
	native hal.Flags
	name   string
}{
	{WriteTenBitAddr, hal.FlagTen, "TENBIT_ADDR"},
	{WriteIgnoreNACK, hal.FlagIgnoreNak, "IGNORE_NACK"},
	{WriteReverseRW, hal.FlagRevDirAddr, "REVERSE_RW"},
	{WriteNoStart, hal.FlagNoStart, "NO_START"},
	{WriteStop, hal.FlagStop, "STOP"},
}

// =============================================================================
// Read Flags
// =============================================================================

// Has returns true if all bits of mask are set.
func (f ReadFlags) Has(mask ReadFlags) bool {
	return f&mask == mask
}

// Native translates f to the kernel message flag word. Unknown bits are
// dropped. The RD bit is not included.
func (f ReadFlags) Native() hal.Flags {
	var n hal.Flags
	for _, e := range readFlagTable {
		if f&e.flag != 0 {
			n |= e.native
		}
	}
	return n
}

// ReadFlagsFromNative translates a kernel message flag word. Bits with no
// read-side meaning are dropped.
func ReadFlagsFromNative(n hal.Flags) ReadFlags {
	var f ReadFlags
	for _, e := range readFlagTable {
		if n&e.native != 0 {
			f |= e.flag
		}
	}
	return f
}

// String returns the set flag names joined by "|", or "0".
func (f ReadFlags) String() string {
	var names []string
	for _, e := range readFlagTable {
		if f&e.flag != 0 {
			names = append(names, e.name)
		}
	}
	return joinFlagNames(names)
}

// =============================================================================
// Write Flags
// =============================================================================

// Has returns true if all bits of mask are set.
func (f WriteFlags) Has(mask WriteFlags) bool {
	return f&mask == mask
}

// Native translates f to the kernel message flag word. Unknown bits are
// dropped.
func (f WriteFlags) Native() hal.Flags {
	var n hal.Flags
	for _, e := range writeFlagTable {
		if f&e.flag != 0 {
			n |= e.native
		}
	}
	return n
}

// WriteFlagsFromNative translates a kernel message flag word. Bits with no
// write-side meaning are dropped.
func WriteFlagsFromNative(n hal.Flags) WriteFlags {
	var f WriteFlags
	for _, e := range writeFlagTable {
		if n&e.native != 0 {
			f |= e.flag
		}
	}
	return f
}

// String returns the set flag names joined by "|", or "0".
func (f WriteFlags) String() string {
	var names []string
	for _, e := range writeFlagTable {
		if f&e.flag != 0 {
			names = append(names, e.name)
		}
	}
	return joinFlagNames(names)
}

func joinFlagNames(names []string) string {
	if len(names) == 0 {
		return "0"
	}
	return strings.Join(names, "|")
}

// ParseReadFlags converts names as produced by ReadFlags.String.
// Unknown names are returned in the second result.
func ParseReadFlags(names []string) (ReadFlags, []string) {
	var f ReadFlags
	var unknown []string
outer:
	for _, n := range names {
		for _, e := range readFlagTable {
			if strings.EqualFold(n, e.name) {
				f |= e.flag
				continue outer
			}
		}
		unknown = append(unknown, n)
	}
	return f, unknown
}

// ParseWriteFlags converts names as produced by WriteFlags.String.
// Unknown names are returned in the second result.
func ParseWriteFlags(names []string) (WriteFlags, []string) {
	var f WriteFlags
	var unknown []string
outer:
	for _, n := range names {
		for _, e := range writeFlagTable {
			if strings.EqualFold(n, e.name) {
				f |= e.flag
				continue outer
			}
		}
		unknown = append(unknown, n)
	}
	return f, unknown
}
