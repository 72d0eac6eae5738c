package pkg

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Bus stack errors.
var (
	// ErrNotFound indicates a device path or device node could not be resolved.
	ErrNotFound = errors.New("device not found")

	// ErrTooManyMessages indicates a batch exceeds the per-transaction message limit.
	ErrTooManyMessages = errors.New("too many messages in transaction")

	// ErrMessageTooLong indicates a message buffer exceeds the 16-bit length field.
	ErrMessageTooLong = errors.New("message too long")

	// ErrBlockTooLong indicates an SMBus block exceeds the 32-byte protocol limit.
	ErrBlockTooLong = errors.New("block too long")

	// ErrNoSlaveAddress indicates an operation required a slave address that was never set.
	ErrNoSlaveAddress = errors.New("slave address not set")

	// ErrNotSupported indicates an unsupported operation or feature.
	ErrNotSupported = errors.New("not supported")

	// ErrClosed indicates the channel has been closed.
	ErrClosed = errors.New("channel closed")

	// ErrInvalidAddress indicates a slave address outside the 7-bit or 10-bit range.
	ErrInvalidAddress = errors.New("invalid slave address")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrShortRead indicates fewer bytes were received than requested.
	ErrShortRead = errors.New("short read")
)

// Fault classifies an error reported by a bus controller driver, following
// the kernel's I2C fault code conventions.
type Fault int

// Fault values.
const (
	FaultNone        Fault = iota // No error
	FaultOther                    // Unclassified error
	FaultNoAck                    // Address or data byte not acknowledged
	FaultTimeout                  // Bus or transfer timeout
	FaultArbitration              // Arbitration lost to another master
	FaultProtocol                 // Invalid protocol sequence or length byte
	FaultPEC                      // Packet error checking mismatch
	FaultUnsupported              // Adapter does not implement the request
	FaultSize                     // Message or block size rejected
	FaultNoDevice                 // Adapter gone or unusable
	FaultBusy                     // Bus held by another master
)

// String returns a string representation of the fault.
func (f Fault) String() string {
	switch f {
	case FaultNone:
		return "none"
	case FaultNoAck:
		return "no-ack"
	case FaultTimeout:
		return "timeout"
	case FaultArbitration:
		return "arbitration"
	case FaultProtocol:
		return "protocol"
	case FaultPEC:
		return "pec"
	case FaultUnsupported:
		return "unsupported"
	case FaultSize:
		return "size"
	case FaultNoDevice:
		return "no-device"
	case FaultBusy:
		return "busy"
	default:
		return "other"
	}
}

// FaultOf classifies err. The error itself is never altered; this is a
// diagnostic aid for logs and tools.
func FaultOf(err error) Fault {
	if err == nil {
		return FaultNone
	}
	if errors.Is(err, ErrNotSupported) {
		return FaultUnsupported
	}
	if errors.Is(err, ErrMessageTooLong) || errors.Is(err, ErrBlockTooLong) {
		return FaultSize
	}
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return FaultOther
	}
	switch errno {
	case unix.ENXIO, unix.EREMOTEIO:
		return FaultNoAck
	case unix.ETIMEDOUT:
		return FaultTimeout
	case unix.EAGAIN:
		return FaultArbitration
	case unix.EPROTO:
		return FaultProtocol
	case unix.EBADMSG:
		return FaultPEC
	case unix.EOPNOTSUPP:
		return FaultUnsupported
	case unix.EMSGSIZE, unix.EOVERFLOW:
		return FaultSize
	case unix.ENODEV, unix.ESHUTDOWN:
		return FaultNoDevice
	case unix.EBUSY:
		return FaultBusy
	default:
		return FaultOther
	}
}
