package bus

import (
	"fmt"
	"time"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg"
	"github.com/ardnew/softi2c/pkg/trace"
)

// Transfer executes msgs as one combined transaction, each message
// separated by a repeated START unless it carries a NO_START flag.
//
// On success every *Read has its Data resliced to the length the adapter
// reported. On failure the controller error is returned unchanged and the
// buffers are in an undefined state.
//
// Transfer panics if more than hal.MaxMessages messages are given or if
// any message is nil; both are programming errors and are detected before
// any I/O. Transfer is not reentrant on the same Bus.
func (b *Bus) Transfer(msgs ...Message) error {
	if len(msgs) > hal.MaxMessages {
		panic(fmt.Errorf("%w: %d messages, limit %d",
			pkg.ErrTooManyMessages, len(msgs), hal.MaxMessages))
	}

	descs := b.scratch[:len(msgs)]
	defer clear(descs)

	for i, m := range msgs {
		if isNilMessage(m) {
			panic(fmt.Sprintf("bus: nil message at index %d", i))
		}
		if m.Len() > hal.MaxMessageLen {
			return fmt.Errorf("message %d: %d bytes: %w", i, m.Len(), pkg.ErrMessageTooLong)
		}
		descs[i] = m.encode()
	}

	start := time.Now()
	err := b.ctrl.Transfer(descs)
	if b.tracer != nil {
		b.record(trace.Event{Kind: trace.KindTransfer, Messages: traceMessages(descs, err)}, start, err)
	}
	if err != nil {
		pkg.LogDebug(pkg.ComponentTransfer, "transfer failed",
			"bus", b.name, "messages", len(msgs), "error", err)
		return err
	}

	for i, m := range msgs {
		if r, ok := m.(*Read); ok {
			r.truncate(descs[i].Len)
		}
	}

	pkg.LogDebug(pkg.ComponentTransfer, "transfer complete",
		"bus", b.name, "messages", len(msgs))
	return nil
}

// traceMessages summarizes descriptors after a transfer. Requested lengths
// come from the buffers since the controller rewrites Len.
func traceMessages(descs []hal.Msg, err error) []trace.Message {
	out := make([]trace.Message, len(descs))
	for i, d := range descs {
		m := trace.Message{
			Addr:      d.Addr,
			Read:      d.IsRead(),
			Flags:     uint16(d.Flags),
			Requested: uint16(len(d.Buf)),
		}
		if err == nil {
			m.Actual = d.Len
			n := min(int(d.Len), len(d.Buf))
			m.Data = trace.CaptureData(d.Buf[:n])
		} else if !m.Read {
			m.Data = trace.CaptureData(d.Buf)
		}
		out[i] = m
	}
	return out
}

// isNilMessage reports whether m is nil or wraps a nil *Read or *Write.
func isNilMessage(m Message) bool {
	switch m := m.(type) {
	case nil:
		return true
	case *Read:
		return m == nil
	case *Write:
		return m == nil
	}
	return false
}
