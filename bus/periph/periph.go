// Package periph exposes a bus.Bus as a periph.io I2C bus, so drivers
// written against periph.io/x/conn can run on top of it.
package periph

import (
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"

	"github.com/ardnew/softi2c/bus"
	"github.com/ardnew/softi2c/pkg"
)

// Adapter implements i2c.BusCloser on a bus.Bus. It serializes access, so
// one Adapter may be shared by several periph devices.
type Adapter struct {
	mu   sync.Mutex
	b    *bus.Bus
	name string
}

// Compile-time interface check.
var _ i2c.BusCloser = (*Adapter)(nil)

// New wraps b. The Adapter takes ownership of b.
func New(b *bus.Bus, name string) *Adapter {
	if name == "" {
		name = b.Name()
	}
	return &Adapter{b: b, name: name}
}

// String implements i2c.Bus.
func (a *Adapter) String() string {
	return a.name
}

// Tx implements i2c.Bus. The write and read halves are issued as one
// combined transfer with a repeated START between them. Addresses above
// 0x7F use 10-bit addressing. An empty Tx sends a zero-length write, which
// probes for an acknowledge.
func (a *Adapter) Tx(addr uint16, w, r []byte) error {
	var wf bus.WriteFlags
	var rf bus.ReadFlags
	if addr > 0x7F {
		wf |= bus.WriteTenBitAddr
		rf |= bus.ReadTenBitAddr
	}

	msgs := make([]bus.Message, 0, 2)
	if len(w) > 0 || len(r) == 0 {
		msgs = append(msgs, &bus.Write{Addr: addr, Data: w, Flags: wf})
	}
	var rd *bus.Read
	if len(r) > 0 {
		rd = &bus.Read{Addr: addr, Data: r, Flags: rf}
		msgs = append(msgs, rd)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.b.Transfer(msgs...); err != nil {
		return err
	}
	if rd != nil && len(rd.Data) < len(r) {
		return fmt.Errorf("%s: read %d of %d bytes from 0x%02X: %w",
			a.name, len(rd.Data), len(r), addr, pkg.ErrShortRead)
	}
	return nil
}

// SetSpeed implements i2c.Bus. The i2c-dev interface has no clock control.
func (a *Adapter) SetSpeed(f physic.Frequency) error {
	return fmt.Errorf("%s: set speed %s: %w", a.name, f, pkg.ErrNotSupported)
}

// Close implements io.Closer.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.b.Close()
}

// Bus returns the wrapped bus.
func (a *Adapter) Bus() *bus.Bus {
	return a.b
}

// =============================================================================
// Registry
// =============================================================================

// Register makes the adapter at path available to i2creg.Open under name
// and number. The node is opened on each i2creg.Open.
func Register(name string, number int, path string) error {
	return RegisterOpener(name, nil, number, func() (*bus.Bus, error) {
		return bus.Open(path)
	})
}

// RegisterOpener registers a custom bus opener with i2creg.
func RegisterOpener(name string, aliases []string, number int, open func() (*bus.Bus, error)) error {
	err := i2creg.Register(name, aliases, number, func() (i2c.BusCloser, error) {
		b, err := open()
		if err != nil {
			return nil, err
		}
		return New(b, name), nil
	})
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	pkg.LogDebug(pkg.ComponentBus, "registered periph bus", "name", name, "number", number)
	return nil
}

// RegisterAll registers every enumerated adapter that has a device node,
// named after the node and aliased "I2C<n>". It returns the number of
// adapters registered.
func RegisterAll() (int, error) {
	devices, err := bus.Enumerate()
	if err != nil {
		return 0, err
	}

	count := 0
	for _, d := range devices {
		if d.DevPath == "" {
			continue
		}
		path := d.DevPath
		alias := fmt.Sprintf("I2C%d", d.Number)
		err := RegisterOpener(path, []string{alias}, d.Number, func() (*bus.Bus, error) {
			return bus.Open(path)
		})
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
