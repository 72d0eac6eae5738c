package pkg

import (
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sys/unix"
)

func TestFault_String(t *testing.T) {
	tests := []struct {
		fault Fault
		want  string
	}{
		{FaultNone, "none"},
		{FaultOther, "other"},
		{FaultNoAck, "no-ack"},
		{FaultTimeout, "timeout"},
		{FaultArbitration, "arbitration"},
		{FaultProtocol, "protocol"},
		{FaultPEC, "pec"},
		{FaultUnsupported, "unsupported"},
		{FaultSize, "size"},
		{FaultNoDevice, "no-device"},
		{FaultBusy, "busy"},
		{Fault(99), "other"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.fault.String(); got != tt.want {
				t.Errorf("Fault.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFaultOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Fault
	}{
		{"nil", nil, FaultNone},
		{"plain", errors.New("boom"), FaultOther},
		{"enxio", unix.ENXIO, FaultNoAck},
		{"eremoteio wrapped", fmt.Errorf("transfer: %w", unix.EREMOTEIO), FaultNoAck},
		{"etimedout", unix.ETIMEDOUT, FaultTimeout},
		{"eagain", unix.EAGAIN, FaultArbitration},
		{"eproto", unix.EPROTO, FaultProtocol},
		{"ebadmsg", unix.EBADMSG, FaultPEC},
		{"eopnotsupp", unix.EOPNOTSUPP, FaultUnsupported},
		{"not supported sentinel", fmt.Errorf("x: %w", ErrNotSupported), FaultUnsupported},
		{"emsgsize", unix.EMSGSIZE, FaultSize},
		{"block too long", ErrBlockTooLong, FaultSize},
		{"enodev", unix.ENODEV, FaultNoDevice},
		{"ebusy", unix.EBUSY, FaultBusy},
		{"einval", unix.EINVAL, FaultOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FaultOf(tt.err); got != tt.want {
				t.Errorf("FaultOf(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestSentinelErrors_Distinct(t *testing.T) {
	all := []error{
		ErrNotFound, ErrTooManyMessages, ErrMessageTooLong, ErrBlockTooLong,
		ErrNoSlaveAddress, ErrNotSupported, ErrClosed, ErrInvalidAddress,
		ErrInvalidParameter, ErrShortRead,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v unexpectedly matches %v", a, b)
			}
		}
	}
}
