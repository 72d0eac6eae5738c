//go:build !linux

package bus

import (
	"fmt"

	"github.com/ardnew/softi2c/pkg"
)

// Open is only available on Linux.
func Open(path string, opts ...Option) (*Bus, error) {
	return nil, fmt.Errorf("open %s: %w", path, pkg.ErrNotSupported)
}
