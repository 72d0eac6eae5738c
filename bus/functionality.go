package bus

import (
	"time"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg"
	"github.com/ardnew/softi2c/pkg/trace"
)

// Functionality returns the adapter's feature bitset.
//
// The first successful probe is cached for the lifetime of the Bus. A
// failed probe is returned to the caller and not cached, so the next call
// probes again.
func (b *Bus) Functionality() (hal.Functionality, error) {
	if b.funcsKnown {
		return b.funcs, nil
	}

	start := time.Now()
	f, err := b.ctrl.Functionality()
	b.record(trace.Event{Kind: trace.KindProbe, Functionality: uint32(f)}, start, err)
	if err != nil {
		pkg.LogWarn(pkg.ComponentProbe, "functionality probe failed",
			"bus", b.name, "error", err)
		return 0, err
	}

	b.funcs = f
	b.funcsKnown = true
	pkg.LogDebug(pkg.ComponentProbe, "functionality probed",
		"bus", b.name, "funcs", f)
	return f, nil
}

// TransferFlags returns the message flags the adapter can honor. The
// result is advisory: Transfer passes any flags through to the controller.
func (b *Bus) TransferFlags() (ReadFlags, WriteFlags, error) {
	f, err := b.Functionality()
	if err != nil {
		return 0, 0, err
	}
	r, w := SupportedFlags(f)
	return r, w, nil
}

// SupportedFlags derives the usable message flags from a functionality
// bitset.
func SupportedFlags(f hal.Functionality) (ReadFlags, WriteFlags) {
	var r ReadFlags
	var w WriteFlags
	if f.Has(hal.FuncProtocolMangling) {
		r |= ReadNACK | ReadReverseRW | ReadStop
		w |= WriteIgnoreNACK | WriteReverseRW | WriteStop
	}
	if f.Has(hal.FuncNoStart) {
		r |= ReadNoStart
		w |= WriteNoStart
	}
	if f.Has(hal.Func10BitAddr) {
		r |= ReadTenBitAddr
		w |= WriteTenBitAddr
	}
	return r, w
}
