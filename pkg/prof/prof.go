//go:build profile

package prof

import (
	"errors"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	rpprof "runtime/pprof"
	"sync"

	"github.com/ardnew/softi2c/pkg"
)

// ErrActive is returned by Start while another Session is running.
var ErrActive = errors.New("profiling session already active")

var (
	mu     sync.Mutex
	active bool
)

// Session is a running profiling session.
type Session struct {
	opts    Options
	cpuFile *os.File
	srv     *http.Server
	addr    string
	stopped bool
}

// Enabled reports whether profiling support is compiled in.
func Enabled() bool { return true }

// Start begins a profiling session.
func Start(opts Options) (*Session, error) {
	mu.Lock()
	defer mu.Unlock()

	if active {
		return nil, ErrActive
	}

	s := &Session{opts: opts}
	if opts.CPUPath != "" {
		f, err := os.Create(opts.CPUPath)
		if err != nil {
			return nil, err
		}
		if err := rpprof.StartCPUProfile(f); err != nil {
			f.Close()
			return nil, err
		}
		s.cpuFile = f
	}
	if opts.BlockPath != "" {
		runtime.SetBlockProfileRate(1)
	}
	if opts.HTTPAddr != "" {
		if err := s.serve(opts.HTTPAddr); err != nil {
			s.stopCPU()
			return nil, err
		}
	}

	active = true
	pkg.LogDebug(pkg.ComponentProfile, "profiling started",
		"cpu", opts.CPUPath, "heap", opts.HeapPath, "http", s.addr)
	return s, nil
}

func (s *Session) serve(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	s.srv = &http.Server{Handler: mux}
	s.addr = ln.Addr().String()
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			pkg.LogWarn(pkg.ComponentProfile, "pprof server stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the HTTP listen address, or "" without a server.
func (s *Session) Addr() string {
	return s.addr
}

func (s *Session) stopCPU() {
	if s.cpuFile == nil {
		return
	}
	rpprof.StopCPUProfile()
	s.cpuFile.Close()
	s.cpuFile = nil
}

// Stop ends the session and writes the snapshot profiles. Calling Stop
// more than once is a no-op.
func (s *Session) Stop() error {
	mu.Lock()
	defer mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true
	active = false

	s.stopCPU()
	var errs []error
	if s.srv != nil {
		errs = append(errs, s.srv.Close())
	}
	if s.opts.HeapPath != "" {
		runtime.GC()
		errs = append(errs, writeProfile("heap", s.opts.HeapPath))
	}
	if s.opts.BlockPath != "" {
		errs = append(errs, writeProfile("block", s.opts.BlockPath))
		runtime.SetBlockProfileRate(0)
	}
	return errors.Join(errs...)
}

func writeProfile(name, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := rpprof.Lookup(name).WriteTo(f, 0); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
