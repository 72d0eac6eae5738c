//go:build linux

package bus

import "github.com/ardnew/softi2c/bus/hal/linux"

// Open opens the i2c-dev node at path (e.g. "/dev/i2c-1") for reading and
// writing. The Bus is named after path unless WithName is given.
//
// A missing node yields an error matching both pkg.ErrNotFound and
// fs.ErrNotExist.
func Open(path string, opts ...Option) (*Bus, error) {
	ctrl, err := linux.Open(path)
	if err != nil {
		return nil, err
	}
	return New(ctrl, append([]Option{WithName(path)}, opts...)...), nil
}
