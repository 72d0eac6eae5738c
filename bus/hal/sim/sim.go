package sim

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg"
)

// DefaultFunctionality is reported when no WithFunctionality option is
// given: plain I2C with 10-bit addressing, NOSTART, protocol mangling and
// the full SMBus emulation set.
const DefaultFunctionality = hal.FuncI2C | hal.Func10BitAddr | hal.FuncNoStart |
	hal.FuncProtocolMangling | hal.FuncSMBusEmul | hal.FuncSMBusBlockData |
	hal.FuncSMBusBlockProcCall

// Compile-time interface check.
var _ hal.Controller = (*Controller)(nil)

// MsgRecord is one message of a recorded transfer. Data holds the bytes
// written, or for reads the bytes returned.
type MsgRecord struct {
	Addr  uint16
	Flags hal.Flags
	Len   uint16 // Requested length
	Data  []byte
}

// SMBusCall is one recorded SMBus transaction. Data holds the union after
// the transaction completed.
type SMBusCall struct {
	Addr    uint16
	RW      hal.ReadWrite
	Command uint8
	Size    hal.SMBusSize
	Data    hal.SMBusData
}

// Option configures a Controller.
type Option func(*Controller)

// WithFunctionality sets the reported adapter functionality.
func WithFunctionality(f hal.Functionality) Option {
	return func(c *Controller) { c.funcs = f }
}

// WithTarget attaches t at addr.
func WithTarget(addr uint16, t Target) Option {
	return func(c *Controller) { c.targets[addr] = t }
}

// WithProbeFailures makes the first n Functionality calls fail with err.
func WithProbeFailures(n int, err error) Option {
	return func(c *Controller) {
		c.probeFailures = n
		c.probeErr = err
	}
}

// WithTransferError makes every Transfer fail with err before touching any
// target.
func WithTransferError(err error) Option {
	return func(c *Controller) { c.transferErr = err }
}

// WithBusyAddress makes SetSlaveAddress fail with EBUSY for addr unless
// force is requested, as when a kernel driver has bound the address.
func WithBusyAddress(addr uint16) Option {
	return func(c *Controller) { c.busy[addr] = true }
}

// =============================================================================
// Controller
// =============================================================================

// Controller is a simulated hal.Controller. It is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	funcs         hal.Functionality
	targets       map[uint16]Target
	busy          map[uint16]bool
	probeFailures int
	probeErr      error
	transferErr   error

	// Channel state
	addr    uint16
	addrSet bool
	tenBit  bool
	pec     bool
	retries int
	timeout uint
	closed  bool

	// Recorded activity
	probes    int
	transfers [][]MsgRecord
	smbus     []SMBusCall
}

// New creates a simulated controller.
func New(opts ...Option) *Controller {
	c := &Controller{
		funcs:   DefaultFunctionality,
		targets: make(map[uint16]Target),
		busy:    make(map[uint16]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attach adds or replaces the target at addr.
func (c *Controller) Attach(addr uint16, t Target) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targets[addr] = t
}

// Detach removes the target at addr.
func (c *Controller) Detach(addr uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.targets, addr)
}

// SetFunctionality changes the reported functionality.
func (c *Controller) SetFunctionality(f hal.Functionality) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.funcs = f
}

// SetTransferError changes the injected transfer error; nil clears it.
func (c *Controller) SetTransferError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transferErr = err
}

// =============================================================================
// Recorded Activity
// =============================================================================

// Probes returns the number of Functionality calls, including failures.
func (c *Controller) Probes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.probes
}

// Transfers returns the recorded transfers that reached the targets.
func (c *Controller) Transfers() [][]MsgRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]MsgRecord(nil), c.transfers...)
}

// SMBusCalls returns the recorded SMBus transactions.
func (c *Controller) SMBusCalls() []SMBusCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]SMBusCall(nil), c.smbus...)
}

// Reset clears the recorded activity.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes = 0
	c.transfers = nil
	c.smbus = nil
}

// State reports the channel settings applied through the Controller.
func (c *Controller) State() (addr uint16, addrSet, tenBit, pec bool, retries int, timeoutMs uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.addr, c.addrSet, c.tenBit, c.pec, c.retries, c.timeout
}

// Closed reports whether Close was called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// =============================================================================
// hal.Controller Implementation
// =============================================================================

// Functionality implements hal.Controller.
func (c *Controller) Functionality() (hal.Functionality, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, pkg.ErrClosed
	}
	c.probes++
	if c.probeFailures > 0 {
		c.probeFailures--
		return 0, c.probeErr
	}
	return c.funcs, nil
}

// Transfer implements hal.Controller.
func (c *Controller) Transfer(msgs []hal.Msg) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return pkg.ErrClosed
	}
	if c.transferErr != nil {
		return c.transferErr
	}
	if !c.funcs.Has(hal.FuncI2C) {
		return fmt.Errorf("sim: I2C_RDWR: %w", unix.EOPNOTSUPP)
	}
	if len(msgs) > hal.MaxMessages {
		return fmt.Errorf("sim: I2C_RDWR: %w", unix.EINVAL)
	}
	for i := range msgs {
		if err := c.checkMsg(&msgs[i]); err != nil {
			return err
		}
	}

	record := make([]MsgRecord, 0, len(msgs))
	for i := range msgs {
		m := &msgs[i]
		t := c.targets[m.Addr]
		if t == nil {
			return fmt.Errorf("sim: no target at 0x%02X: %w", m.Addr, unix.ENXIO)
		}

		rec := MsgRecord{Addr: m.Addr, Flags: m.Flags, Len: m.Len}
		buf := m.Buf[:m.Len]
		if m.IsRead() {
			n, err := t.Read(buf, m.Flags.Has(hal.FlagRecvLen))
			if err != nil {
				return err
			}
			m.Len = uint16(n)
			rec.Data = append([]byte(nil), buf[:n]...)
		} else {
			continued := i > 0 && m.Flags.Has(hal.FlagNoStart) &&
				!msgs[i-1].IsRead() && msgs[i-1].Addr == m.Addr
			if err := t.Write(buf, continued); err != nil {
				return err
			}
			rec.Data = append([]byte(nil), buf...)
		}
		record = append(record, rec)
	}

	c.transfers = append(c.transfers, record)
	return nil
}

// checkMsg applies the adapter checks i2c-core performs before a transfer.
func (c *Controller) checkMsg(m *hal.Msg) error {
	if int(m.Len) > len(m.Buf) {
		return fmt.Errorf("sim: message length %d exceeds buffer %d: %w", m.Len, len(m.Buf), unix.EFAULT)
	}
	mangling := hal.FlagIgnoreNak | hal.FlagRevDirAddr | hal.FlagNoRdAck | hal.FlagStop
	switch {
	case m.Flags&hal.FlagNoStart != 0 && !c.funcs.Has(hal.FuncNoStart):
		return fmt.Errorf("sim: NOSTART: %w", unix.EOPNOTSUPP)
	case m.Flags&mangling != 0 && !c.funcs.Has(hal.FuncProtocolMangling):
		return fmt.Errorf("sim: %v: %w", m.Flags&mangling, unix.EOPNOTSUPP)
	case m.Flags&hal.FlagTen != 0 && !c.funcs.Has(hal.Func10BitAddr):
		return fmt.Errorf("sim: TEN: %w", unix.EOPNOTSUPP)
	case m.Flags&hal.FlagRecvLen != 0 && m.Len == 0:
		return fmt.Errorf("sim: RECV_LEN on empty buffer: %w", unix.EINVAL)
	}
	return nil
}

// SetSlaveAddress implements hal.Controller.
func (c *Controller) SetSlaveAddress(addr uint16, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return pkg.ErrClosed
	}
	if addr > 0x3FF || (!c.tenBit && addr > 0x7F) {
		return fmt.Errorf("sim: I2C_SLAVE 0x%X: %w", addr, unix.EINVAL)
	}
	if c.busy[addr] && !force {
		return fmt.Errorf("sim: I2C_SLAVE 0x%X: %w", addr, unix.EBUSY)
	}
	c.addr = addr
	c.addrSet = true
	return nil
}

// SetTenBit implements hal.Controller.
func (c *Controller) SetTenBit(enable bool) error {
	return c.set(func() { c.tenBit = enable })
}

// SetPEC implements hal.Controller.
func (c *Controller) SetPEC(enable bool) error {
	return c.set(func() { c.pec = enable })
}

// SetRetries implements hal.Controller.
func (c *Controller) SetRetries(n int) error {
	if n < 0 {
		return pkg.ErrInvalidParameter
	}
	return c.set(func() { c.retries = n })
}

// SetTimeoutMillis implements hal.Controller.
func (c *Controller) SetTimeoutMillis(ms uint) error {
	return c.set(func() { c.timeout = ms })
}

func (c *Controller) set(apply func()) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return pkg.ErrClosed
	}
	apply()
	return nil
}

// Read implements hal.Controller.
func (c *Controller) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.current()
	if err != nil {
		return 0, err
	}
	return t.Read(p, false)
}

// Write implements hal.Controller.
func (c *Controller) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.current()
	if err != nil {
		return 0, err
	}
	if err := t.Write(p, false); err != nil {
		return 0, err
	}
	return len(p), nil
}

// current returns the target at the selected slave address.
func (c *Controller) current() (Target, error) {
	if c.closed {
		return nil, pkg.ErrClosed
	}
	if !c.addrSet {
		return nil, pkg.ErrNoSlaveAddress
	}
	t := c.targets[c.addr]
	if t == nil {
		return nil, fmt.Errorf("sim: no target at 0x%02X: %w", c.addr, unix.ENXIO)
	}
	return t, nil
}

// Close implements hal.Controller.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
