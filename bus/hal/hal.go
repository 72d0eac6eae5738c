package hal

// MaxMessages is the maximum number of messages in one combined transaction
// (I2C_RDWR_IOCTL_MAX_MSGS).
const MaxMessages = 42

// MaxMessageLen is the largest buffer a single message can describe; the
// kernel length field is 16 bits wide.
const MaxMessageLen = 0xFFFF

// SMBusBlockMax is the largest payload of an SMBus block transfer.
const SMBusBlockMax = 32

// Msg is one segment of a combined transaction as handed to a controller.
//
// Len is the requested length on input. Controllers update it in place with
// the number of bytes actually transferred, which can be smaller for reads
// flagged FlagRecvLen. Buf is borrowed for the duration of one Transfer call
// and must not be retained by the controller.
type Msg struct {
	Addr  uint16 // Slave address
	Flags Flags  // Native message flags
	Len   uint16 // Buffer length (in/out)
	Buf   []byte // Data buffer
}

// IsRead returns true if the message reads from the slave.
func (m *Msg) IsRead() bool {
	return m.Flags&FlagRD != 0
}

// ReadWrite selects the direction of an SMBus transaction.
type ReadWrite uint8

// SMBus direction markers (I2C_SMBUS_READ / I2C_SMBUS_WRITE).
const (
	SMBusWrite ReadWrite = 0
	SMBusRead  ReadWrite = 1
)

// String returns "read" or "write".
func (rw ReadWrite) String() string {
	if rw == SMBusRead {
		return "read"
	}
	return "write"
}

// SMBusSize selects the SMBus transaction type.
type SMBusSize uint32

// SMBus transaction types (I2C_SMBUS_*).
const (
	SMBusQuick          SMBusSize = 0
	SMBusByte           SMBusSize = 1
	SMBusByteData       SMBusSize = 2
	SMBusWordData       SMBusSize = 3
	SMBusProcCall       SMBusSize = 4
	SMBusBlockData      SMBusSize = 5
	SMBusI2CBlockBroken SMBusSize = 6
	SMBusBlockProcCall  SMBusSize = 7
	SMBusI2CBlockData   SMBusSize = 8
)

// String returns the transaction type name.
func (s SMBusSize) String() string {
	switch s {
	case SMBusQuick:
		return "quick"
	case SMBusByte:
		return "byte"
	case SMBusByteData:
		return "byte-data"
	case SMBusWordData:
		return "word-data"
	case SMBusProcCall:
		return "proc-call"
	case SMBusBlockData:
		return "block-data"
	case SMBusI2CBlockBroken:
		return "i2c-block-broken"
	case SMBusBlockProcCall:
		return "block-proc-call"
	case SMBusI2CBlockData:
		return "i2c-block-data"
	default:
		return "unknown"
	}
}

// SMBusData mirrors union i2c_smbus_data. Byte values use index 0, words
// are little-endian in indices 0-1, and blocks store the length at index 0
// followed by up to SMBusBlockMax data bytes.
type SMBusData [SMBusBlockMax + 2]byte

// Byte returns the byte value.
func (d *SMBusData) Byte() uint8 {
	return d[0]
}

// SetByte stores a byte value.
func (d *SMBusData) SetByte(v uint8) {
	d[0] = v
}

// Word returns the little-endian word value.
func (d *SMBusData) Word() uint16 {
	return uint16(d[0]) | uint16(d[1])<<8
}

// SetWord stores a little-endian word value.
func (d *SMBusData) SetWord(v uint16) {
	d[0] = byte(v)
	d[1] = byte(v >> 8)
}

// Block returns the block payload, clamped to SMBusBlockMax.
func (d *SMBusData) Block() []byte {
	n := int(d[0])
	if n > SMBusBlockMax {
		n = SMBusBlockMax
	}
	return d[1 : 1+n]
}

// SetBlock stores a block payload and its length byte.
// Returns false if p exceeds SMBusBlockMax.
func (d *SMBusData) SetBlock(p []byte) bool {
	if len(p) > SMBusBlockMax {
		return false
	}
	d[0] = uint8(len(p))
	copy(d[1:], p)
	return true
}

// Controller defines the Hardware Abstraction Layer interface for an I2C bus
// controller channel.
//
// A Controller wraps exactly one open channel to one adapter. The bus core
// implements message encoding, capability caching and block emulation on top
// of it, leaving the Controller to issue the primitive requests.
//
// Controllers are not required to be safe for concurrent use.
type Controller interface {
	// Functionality returns the adapter's supported feature bitset.
	Functionality() (Functionality, error)

	// Transfer executes msgs as a single combined transaction, separated by
	// repeated START conditions. On success each Msg.Len holds the number of
	// bytes actually transferred.
	Transfer(msgs []Msg) error

	// SMBus executes one SMBus transaction against the current slave address.
	// data may be nil for SMBusQuick and for SMBusByte writes.
	SMBus(rw ReadWrite, command uint8, size SMBusSize, data *SMBusData) error

	// SetSlaveAddress selects the slave for SMBus, Read and Write. When force
	// is true the address is claimed even if a kernel driver owns it.
	SetSlaveAddress(addr uint16, force bool) error

	// SetTenBit selects 10-bit slave addressing.
	SetTenBit(enable bool) error

	// SetPEC enables SMBus packet error checking.
	SetPEC(enable bool) error

	// SetRetries sets how many times the adapter retries a transaction.
	SetRetries(n int) error

	// SetTimeoutMillis sets the adapter transaction timeout.
	SetTimeoutMillis(ms uint) error

	// Read reads len(p) bytes from the current slave address.
	Read(p []byte) (int, error)

	// Write writes p to the current slave address.
	Write(p []byte) (int, error)

	// Close releases the channel.
	Close() error
}
