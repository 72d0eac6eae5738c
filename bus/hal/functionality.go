package hal

import "strings"

// Functionality is the adapter feature bitset reported by I2C_FUNCS.
type Functionality uint32

// Adapter functionality bits (I2C_FUNC_*).
const (
	FuncI2C                 Functionality = 0x00000001
	Func10BitAddr           Functionality = 0x00000002
	FuncProtocolMangling    Functionality = 0x00000004
	FuncSMBusPEC            Functionality = 0x00000008
	FuncNoStart             Functionality = 0x00000010
	FuncSlave               Functionality = 0x00000020
	FuncSMBusBlockProcCall  Functionality = 0x00008000
	FuncSMBusQuick          Functionality = 0x00010000
	FuncSMBusReadByte       Functionality = 0x00020000
	FuncSMBusWriteByte      Functionality = 0x00040000
	FuncSMBusReadByteData   Functionality = 0x00080000
	FuncSMBusWriteByteData  Functionality = 0x00100000
	FuncSMBusReadWordData   Functionality = 0x00200000
	FuncSMBusWriteWordData  Functionality = 0x00400000
	FuncSMBusProcCall       Functionality = 0x00800000
	FuncSMBusReadBlockData  Functionality = 0x01000000
	FuncSMBusWriteBlockData Functionality = 0x02000000
	FuncSMBusReadI2CBlock   Functionality = 0x04000000
	FuncSMBusWriteI2CBlock  Functionality = 0x08000000
	FuncSMBusHostNotify     Functionality = 0x10000000
)

// Convenience groupings matching the kernel's I2C_FUNC_SMBUS_* composites.
const (
	FuncSMBusByte      = FuncSMBusReadByte | FuncSMBusWriteByte
	FuncSMBusByteData  = FuncSMBusReadByteData | FuncSMBusWriteByteData
	FuncSMBusWordData  = FuncSMBusReadWordData | FuncSMBusWriteWordData
	FuncSMBusBlockData = FuncSMBusReadBlockData | FuncSMBusWriteBlockData
	FuncSMBusI2CBlock  = FuncSMBusReadI2CBlock | FuncSMBusWriteI2CBlock

	FuncSMBusEmul = FuncSMBusQuick | FuncSMBusByte | FuncSMBusByteData |
		FuncSMBusWordData | FuncSMBusProcCall | FuncSMBusWriteBlockData |
		FuncSMBusI2CBlock | FuncSMBusPEC
)

var funcNames = []struct {
	bit  Functionality
	name string
}{
	{FuncI2C, "I2C"},
	{Func10BitAddr, "10BIT_ADDR"},
	{FuncProtocolMangling, "PROTOCOL_MANGLING"},
	{FuncSMBusPEC, "SMBUS_PEC"},
	{FuncNoStart, "NOSTART"},
	{FuncSlave, "SLAVE"},
	{FuncSMBusBlockProcCall, "SMBUS_BLOCK_PROC_CALL"},
	{FuncSMBusQuick, "SMBUS_QUICK"},
	{FuncSMBusReadByte, "SMBUS_READ_BYTE"},
	{FuncSMBusWriteByte, "SMBUS_WRITE_BYTE"},
	{FuncSMBusReadByteData, "SMBUS_READ_BYTE_DATA"},
	{FuncSMBusWriteByteData, "SMBUS_WRITE_BYTE_DATA"},
	{FuncSMBusReadWordData, "SMBUS_READ_WORD_DATA"},
	{FuncSMBusWriteWordData, "SMBUS_WRITE_WORD_DATA"},
	{FuncSMBusProcCall, "SMBUS_PROC_CALL"},
	{FuncSMBusReadBlockData, "SMBUS_READ_BLOCK_DATA"},
	{FuncSMBusWriteBlockData, "SMBUS_WRITE_BLOCK_DATA"},
	{FuncSMBusReadI2CBlock, "SMBUS_READ_I2C_BLOCK"},
	{FuncSMBusWriteI2CBlock, "SMBUS_WRITE_I2C_BLOCK"},
	{FuncSMBusHostNotify, "SMBUS_HOST_NOTIFY"},
}

// Has returns true if every bit of mask is supported.
func (f Functionality) Has(mask Functionality) bool {
	return f&mask == mask
}

// Names returns the names of all set bits in ascending bit order.
func (f Functionality) Names() []string {
	var names []string
	for _, fn := range funcNames {
		if f&fn.bit != 0 {
			names = append(names, fn.name)
		}
	}
	return names
}

// String returns the set bit names joined by "|", or "0".
func (f Functionality) String() string {
	names := f.Names()
	if len(names) == 0 {
		return "0"
	}
	return strings.Join(names, "|")
}

// ParseFunctionality converts bit names, as produced by Names, back to a
// bitset. Unknown names are returned in the second result.
func ParseFunctionality(names []string) (Functionality, []string) {
	var f Functionality
	var unknown []string
	for _, n := range names {
		found := false
		for _, fn := range funcNames {
			if strings.EqualFold(n, fn.name) {
				f |= fn.bit
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, n)
		}
	}
	return f, unknown
}
