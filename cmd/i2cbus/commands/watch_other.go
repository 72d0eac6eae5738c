//go:build !linux

package commands

import (
	"context"
	"io"

	"github.com/ardnew/softi2c/pkg"
)

// RunWatch is only available on Linux.
func RunWatch(context.Context, io.Writer, bool) error {
	return pkg.ErrNotSupported
}
