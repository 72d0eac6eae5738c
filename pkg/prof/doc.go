// Package prof records pprof profiles around an i2cbus run.
//
// Profiling is compiled in only with the "profile" build tag:
//
//	go build -tags profile ./cmd/i2cbus
//
// Without the tag Start returns an inert Session, so callers can keep the
// profiling hooks in place at no cost. A warning is logged when profiles
// were requested but cannot be recorded.
//
// A Session can record a CPU profile for its whole lifetime, write heap
// and block snapshots when it stops, and serve /debug/pprof/ over HTTP
// while it runs:
//
//	s, err := prof.Start(prof.Options{CPUPath: "cpu.prof", HeapPath: "heap.prof"})
//	if err != nil {
//	    return err
//	}
//	defer s.Stop()
//
// Only one Session may be active at a time.
package prof

// Options selects what a Session records. Empty fields are skipped.
type Options struct {
	CPUPath   string // CPU profile covering the session
	HeapPath  string // Heap snapshot written by Stop
	BlockPath string // Block profile written by Stop; enables block sampling
	HTTPAddr  string // Serve /debug/pprof/ on this address while active
}

// Empty reports whether no profile is requested.
func (o Options) Empty() bool {
	return o == Options{}
}
