//go:build !profile

package prof

import "github.com/ardnew/softi2c/pkg"

// Session is an inert profiling session.
type Session struct{}

// Enabled reports whether profiling support is compiled in.
func Enabled() bool { return false }

// Start returns an inert Session. Requested profiles are not recorded.
func Start(opts Options) (*Session, error) {
	if !opts.Empty() {
		pkg.LogWarn(pkg.ComponentProfile, "profiling requested but not compiled in; rebuild with -tags profile")
	}
	return &Session{}, nil
}

// Addr returns "".
func (*Session) Addr() string { return "" }

// Stop is a no-op.
func (*Session) Stop() error { return nil }
