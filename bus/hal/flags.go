package hal

import "strings"

// Flags is the native per-message flag word of struct i2c_msg.
type Flags uint16

// Native message flags (I2C_M_*).
const (
	FlagRD         Flags = 0x0001 // Read from slave
	FlagTen        Flags = 0x0010 // 10-bit chip address
	FlagDMASafe    Flags = 0x0200 // Buffer is DMA safe (kernel internal)
	FlagRecvLen    Flags = 0x0400 // First received byte is the length
	FlagNoRdAck    Flags = 0x0800 // Skip the read ACK
	FlagIgnoreNak  Flags = 0x1000 // Treat NACK as ACK
	FlagRevDirAddr Flags = 0x2000 // Invert the R/W address bit
	FlagNoStart    Flags = 0x4000 // No START or address byte
	FlagStop       Flags = 0x8000 // Force STOP after this message
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagRD, "RD"},
	{FlagTen, "TEN"},
	{FlagDMASafe, "DMA_SAFE"},
	{FlagRecvLen, "RECV_LEN"},
	{FlagNoRdAck, "NO_RD_ACK"},
	{FlagIgnoreNak, "IGNORE_NAK"},
	{FlagRevDirAddr, "REV_DIR_ADDR"},
	{FlagNoStart, "NOSTART"},
	{FlagStop, "STOP"},
}

// Has returns true if all bits of mask are set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// String returns the set flag names joined by "|", or "0".
func (f Flags) String() string {
	if f == 0 {
		return "0"
	}
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "0"
	}
	return strings.Join(names, "|")
}
