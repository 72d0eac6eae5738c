package trace

import (
	"time"

	"github.com/google/uuid"
)

// MaxDataCapture is the number of payload bytes kept per message.
const MaxDataCapture = 64

// Event is one recorded bus transaction.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the transaction completed (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Session groups the events of one process run (UUID).
	Session string `cbor:"2,keyasint"`

	// Bus names the channel, usually its device path.
	Bus string `cbor:"3,keyasint"`

	// Kind classifies the transaction.
	Kind Kind `cbor:"4,keyasint"`

	// Path is the strategy a block operation took.
	Path Path `cbor:"5,keyasint,omitempty"`

	// Messages of a transfer, in order.
	Messages []Message `cbor:"6,keyasint,omitempty"`

	// Command byte of SMBus and block operations.
	Command uint8 `cbor:"7,keyasint,omitempty"`

	// Size is the SMBus transaction type name.
	Size string `cbor:"8,keyasint,omitempty"`

	// Functionality is the probed bitset for probe events.
	Functionality uint32 `cbor:"9,keyasint,omitempty"`

	// Duration of the transaction.
	Duration time.Duration `cbor:"10,keyasint,omitempty"`

	// Error text when the transaction failed.
	Error string `cbor:"11,keyasint,omitempty"`
}

// Message describes one message of a recorded transfer.
type Message struct {
	Addr      uint16 `cbor:"1,keyasint"`
	Read      bool   `cbor:"2,keyasint,omitempty"`
	Flags     uint16 `cbor:"3,keyasint,omitempty"` // Native flags
	Requested uint16 `cbor:"4,keyasint"`
	Actual    uint16 `cbor:"5,keyasint"`
	Data      []byte `cbor:"6,keyasint,omitempty"` // First MaxDataCapture bytes
}

// CaptureData copies at most MaxDataCapture bytes of p.
func CaptureData(p []byte) []byte {
	if len(p) == 0 {
		return nil
	}
	if len(p) > MaxDataCapture {
		p = p[:MaxDataCapture]
	}
	return append([]byte(nil), p...)
}

// Kind classifies a recorded transaction.
type Kind uint8

const (
	KindTransfer Kind = iota + 1
	KindSMBus
	KindProbe
	KindBlock
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindTransfer:
		return "transfer"
	case KindSMBus:
		return "smbus"
	case KindProbe:
		return "probe"
	case KindBlock:
		return "block"
	default:
		return "unknown"
	}
}

// ParseKind converts a name produced by Kind.String.
func ParseKind(s string) (Kind, bool) {
	for k := KindTransfer; k <= KindBlock; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Path identifies how a block operation was carried out.
type Path uint8

const (
	PathNative         Path = iota + 1 // SMBus I2C-block primitive
	PathEmulatedRead                   // Command write then read
	PathEmulatedSplit                  // Command write then NOSTART data write
	PathEmulatedConcat                 // Single write of command and data
	PathFallback                       // SMBus primitive without validation
)

// String returns the path name.
func (p Path) String() string {
	switch p {
	case PathNative:
		return "native"
	case PathEmulatedRead:
		return "emulated-read"
	case PathEmulatedSplit:
		return "emulated-split"
	case PathEmulatedConcat:
		return "emulated-concat"
	case PathFallback:
		return "fallback"
	default:
		return ""
	}
}

// NewSession returns a fresh session identifier.
func NewSession() string {
	return uuid.New().String()
}
