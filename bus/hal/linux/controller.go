//go:build linux

package linux

import (
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg"
)

// Compile-time interface check.
var _ hal.Controller = (*Controller)(nil)

// =============================================================================
// Controller Implementation
// =============================================================================

// Controller implements hal.Controller for one open i2c-dev node.
//
// A Controller is not safe for concurrent use, except that Close may be
// called from any goroutine. The descriptor stays open until any ioctl or
// read/write in flight has returned.
type Controller struct {
	path string

	mu sync.Mutex // Held across every syscall on fd
	fd int

	// Pre-allocated I2C_RDWR descriptor array
	descs [hal.MaxMessages]i2cMsg
}

// Open opens the i2c-dev node at path (e.g. "/dev/i2c-1").
//
// A missing node yields an error matching both pkg.ErrNotFound and
// fs.ErrNotExist.
func Open(path string) (*Controller, error) {
	fd, err := openDevice(path)
	if err != nil {
		perr := &fs.PathError{Op: "open", Path: path, Err: err}
		if errors.Is(err, unix.ENOENT) || errors.Is(err, unix.ENODEV) || errors.Is(err, unix.ENXIO) {
			return nil, fmt.Errorf("%w: %w", pkg.ErrNotFound, perr)
		}
		return nil, perr
	}

	pkg.LogDebug(pkg.ComponentHAL, "opened i2c-dev node", "path", path, "fd", fd)
	return &Controller{path: path, fd: fd}, nil
}

// Path returns the device node path.
func (c *Controller) Path() string {
	return c.path
}

// FD returns the underlying file descriptor, or -1 after Close.
func (c *Controller) FD() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fd
}

// withFD runs fn on the open descriptor, holding mu so that Close cannot
// release the descriptor while fn runs. It returns pkg.ErrClosed after Close.
func (c *Controller) withFD(fn func(fd int) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fd < 0 {
		return pkg.ErrClosed
	}
	return fn(c.fd)
}

// Close releases the file descriptor. Closing twice is a no-op.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fd < 0 {
		return nil
	}
	err := closeDevice(c.fd)
	c.fd = -1

	pkg.LogDebug(pkg.ComponentHAL, "closed i2c-dev node", "path", c.path)
	return err
}

// =============================================================================
// Capability and Transaction Methods
// =============================================================================

// Functionality reads the adapter functionality with I2C_FUNCS.
func (c *Controller) Functionality() (hal.Functionality, error) {
	var f hal.Functionality
	err := c.withFD(func(fd int) (err error) {
		f, err = doFuncs(fd)
		return err
	})
	if err != nil {
		if errors.Is(err, pkg.ErrClosed) {
			return 0, err
		}
		return 0, fmt.Errorf("I2C_FUNCS: %w", err)
	}
	return f, nil
}

// Transfer issues msgs as one I2C_RDWR combined transaction.
func (c *Controller) Transfer(msgs []hal.Msg) error {
	if len(msgs) > hal.MaxMessages {
		return pkg.ErrTooManyMessages
	}
	return c.withFD(func(fd int) error {
		if err := doRdwr(fd, c.descs[:len(msgs)], msgs); err != nil {
			return fmt.Errorf("I2C_RDWR: %w", err)
		}
		return nil
	})
}

// SMBus issues one I2C_SMBUS transaction.
func (c *Controller) SMBus(rw hal.ReadWrite, command uint8, size hal.SMBusSize, data *hal.SMBusData) error {
	return c.withFD(func(fd int) error {
		if err := doSMBus(fd, rw, command, size, data); err != nil {
			return fmt.Errorf("I2C_SMBUS %s %s: %w", rw, size, err)
		}
		return nil
	})
}

// =============================================================================
// Configuration Methods
// =============================================================================

// SetSlaveAddress issues I2C_SLAVE, or I2C_SLAVE_FORCE when force is set.
func (c *Controller) SetSlaveAddress(addr uint16, force bool) error {
	if addr > MaxAddr10 {
		return pkg.ErrInvalidAddress
	}
	req := uint(ioctlI2CSlave)
	name := "I2C_SLAVE"
	if force {
		req = ioctlI2CSlaveForce
		name = "I2C_SLAVE_FORCE"
	}
	return c.setValue(name, req, int(addr))
}

// SetTenBit issues I2C_TENBIT.
func (c *Controller) SetTenBit(enable bool) error {
	return c.setValue("I2C_TENBIT", ioctlI2CTenBit, boolToInt(enable))
}

// SetPEC issues I2C_PEC.
func (c *Controller) SetPEC(enable bool) error {
	return c.setValue("I2C_PEC", ioctlI2CPEC, boolToInt(enable))
}

// SetRetries issues I2C_RETRIES.
func (c *Controller) SetRetries(n int) error {
	if n < 0 {
		return pkg.ErrInvalidParameter
	}
	return c.setValue("I2C_RETRIES", ioctlI2CRetries, n)
}

// SetTimeoutMillis issues I2C_TIMEOUT. The kernel counts in units of 10 ms,
// so ms is rounded up to the next unit.
func (c *Controller) SetTimeoutMillis(ms uint) error {
	units := (ms + TimeoutUnit - 1) / TimeoutUnit
	return c.setValue("I2C_TIMEOUT", ioctlI2CTimeout, int(units))
}

func (c *Controller) setValue(name string, req uint, value int) error {
	return c.withFD(func(fd int) error {
		if err := ioctlValue(fd, req, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	})
}

// =============================================================================
// Plain I/O
// =============================================================================

// Read reads from the current slave address.
func (c *Controller) Read(p []byte) (int, error) {
	var n int
	err := c.withFD(func(fd int) (err error) {
		n, err = unix.Read(fd, p)
		return err
	})
	if n < 0 {
		n = 0
	}
	return n, err
}

// Write writes to the current slave address.
func (c *Controller) Write(p []byte) (int, error) {
	var n int
	err := c.withFD(func(fd int) (err error) {
		n, err = unix.Write(fd, p)
		return err
	})
	if n < 0 {
		n = 0
	}
	return n, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
