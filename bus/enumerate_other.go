//go:build !linux

package bus

import "github.com/ardnew/softi2c/pkg"

// Enumerate is only available on Linux.
func Enumerate() ([]Device, error) {
	return nil, pkg.ErrNotSupported
}
