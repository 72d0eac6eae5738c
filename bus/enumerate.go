package bus

import (
	"fmt"

	"github.com/ardnew/softi2c/pkg"
)

// Device describes an I2C adapter discovered on the host.
type Device struct {
	Number    int    // Adapter number N of /dev/i2c-N
	Name      string // Adapter name reported by the driver
	SysfsPath string // sysfs node
	DevPath   string // Device node, empty when it does not exist
	Major     uint32
	Minor     uint32
}

// Open opens a Bus on the device node. A device without a node yields
// pkg.ErrNotFound.
func (d Device) Open(opts ...Option) (*Bus, error) {
	if d.DevPath == "" {
		return nil, fmt.Errorf("i2c-%d has no device node: %w", d.Number, pkg.ErrNotFound)
	}
	return Open(d.DevPath, opts...)
}

// String returns "i2c-N (name)".
func (d Device) String() string {
	if d.Name == "" {
		return fmt.Sprintf("i2c-%d", d.Number)
	}
	return fmt.Sprintf("i2c-%d (%s)", d.Number, d.Name)
}
