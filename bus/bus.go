package bus

import (
	"time"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg"
	"github.com/ardnew/softi2c/pkg/trace"
)

// Bus is one open channel to an I2C adapter.
//
// A Bus remembers the selected slave address and caches the adapter
// functionality after the first successful probe. It is not safe for
// concurrent use; callers sharing a Bus must serialize access themselves.
type Bus struct {
	ctrl hal.Controller
	name string

	// Selected slave
	addr      uint16
	addrKnown bool
	tenBit    bool

	// Cached functionality
	funcs      hal.Functionality
	funcsKnown bool

	// Descriptor scratch space for Transfer
	scratch [hal.MaxMessages]hal.Msg

	// Tracing
	tracer  trace.Recorder
	session string

	closed bool
}

// Option configures a Bus.
type Option func(*Bus)

// WithName sets the name used in logs and traces.
func WithName(name string) Option {
	return func(b *Bus) { b.name = name }
}

// WithTracer records every transaction to r.
func WithTracer(r trace.Recorder) Option {
	return func(b *Bus) { b.tracer = r }
}

// WithSession sets the trace session identifier. By default each Bus with
// a tracer gets a fresh one.
func WithSession(id string) Option {
	return func(b *Bus) { b.session = id }
}

// New creates a Bus on an open controller. The Bus takes ownership of ctrl.
func New(ctrl hal.Controller, opts ...Option) *Bus {
	b := &Bus{ctrl: ctrl}
	for _, opt := range opts {
		opt(b)
	}
	if b.tracer != nil && b.session == "" {
		b.session = trace.NewSession()
	}
	pkg.LogDebug(pkg.ComponentBus, "bus created", "bus", b.name)
	return b
}

// Close releases the controller. Closing twice is a no-op.
func (b *Bus) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	pkg.LogDebug(pkg.ComponentBus, "bus closed", "bus", b.name)
	return b.ctrl.Close()
}

// Controller returns the underlying controller.
func (b *Bus) Controller() hal.Controller {
	return b.ctrl
}

// Name returns the bus name.
func (b *Bus) Name() string {
	return b.name
}

// Session returns the trace session identifier, empty without a tracer.
func (b *Bus) Session() string {
	return b.session
}

// SlaveAddress returns the selected slave address and whether one has been
// set successfully.
func (b *Bus) SlaveAddress() (uint16, bool) {
	return b.addr, b.addrKnown
}

// TenBit reports whether the selected slave uses 10-bit addressing.
func (b *Bus) TenBit() bool {
	return b.tenBit
}

// =============================================================================
// Channel Configuration
// =============================================================================

// SetSlaveAddress selects the slave used by SMBus transactions, Read and
// Write, and by emulated block transfers.
//
// I2C_TENBIT is issued when the adapter reports 10-bit support or when
// tenBit is requested. A failed functionality probe does not fail the
// call; it is treated as an adapter without 10-bit support. The address is
// remembered only if the controller accepts it.
//
// On an adapter without 10-bit support, selecting a 7-bit address after a
// 10-bit one leaves the controller's I2C_TENBIT setting as it was. Reopen
// the adapter to clear it.
func (b *Bus) SetSlaveAddress(addr uint16, tenBit bool) error {
	return b.setSlaveAddress(addr, tenBit, false)
}

// ForceSlaveAddress is SetSlaveAddress using I2C_SLAVE_FORCE, which claims
// the address even when a kernel driver is bound to it.
func (b *Bus) ForceSlaveAddress(addr uint16, tenBit bool) error {
	return b.setSlaveAddress(addr, tenBit, true)
}

func (b *Bus) setSlaveAddress(addr uint16, tenBit, force bool) error {
	f, _ := b.Functionality() // zero on probe failure
	if f.Has(hal.Func10BitAddr) || tenBit {
		if err := b.ctrl.SetTenBit(tenBit); err != nil {
			return err
		}
	}

	if err := b.ctrl.SetSlaveAddress(addr, force); err != nil {
		pkg.LogDebug(pkg.ComponentBus, "slave address rejected",
			"bus", b.name, "addr", addr, "error", err)
		return err
	}

	b.addr = addr
	b.addrKnown = true
	b.tenBit = tenBit
	pkg.LogDebug(pkg.ComponentBus, "slave address set",
		"bus", b.name, "addr", addr, "tenBit", tenBit, "force", force)
	return nil
}

// SetRetries sets how many times the adapter retries a transaction. The
// Bus itself never retries.
func (b *Bus) SetRetries(n int) error {
	if n < 0 {
		return pkg.ErrInvalidParameter
	}
	return b.ctrl.SetRetries(n)
}

// SetTimeout sets the adapter transaction timeout, truncated to whole
// milliseconds.
func (b *Bus) SetTimeout(d time.Duration) error {
	if d < 0 {
		return pkg.ErrInvalidParameter
	}
	return b.ctrl.SetTimeoutMillis(uint(d / time.Millisecond))
}

// SetPEC enables or disables SMBus packet error checking.
func (b *Bus) SetPEC(enable bool) error {
	return b.ctrl.SetPEC(enable)
}

// =============================================================================
// Tracing
// =============================================================================

// record completes and emits a trace event when a tracer is configured.
func (b *Bus) record(ev trace.Event, start time.Time, err error) {
	if b.tracer == nil {
		return
	}
	now := time.Now()
	ev.Timestamp = now
	ev.Duration = now.Sub(start)
	ev.Session = b.session
	ev.Bus = b.name
	if err != nil {
		ev.Error = err.Error()
	}
	b.tracer.Record(ev)
}
