//go:build profile

package prof

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSession_WritesProfiles(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		CPUPath:   filepath.Join(dir, "cpu.prof"),
		HeapPath:  filepath.Join(dir, "heap.prof"),
		BlockPath: filepath.Join(dir, "block.prof"),
	}

	s, err := Start(opts)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("second Stop() error = %v, want nil", err)
	}

	for _, p := range []string{opts.CPUPath, opts.HeapPath, opts.BlockPath} {
		info, err := os.Stat(p)
		if err != nil {
			t.Errorf("Stat(%s) error = %v", filepath.Base(p), err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", filepath.Base(p))
		}
	}
}

func TestStart_Active(t *testing.T) {
	s, err := Start(Options{})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if _, err := Start(Options{}); !errors.Is(err, ErrActive) {
		t.Errorf("Start() error = %v, want %v", err, ErrActive)
	}
}

func TestStart_InvalidPath(t *testing.T) {
	_, err := Start(Options{CPUPath: filepath.Join(t.TempDir(), "missing", "cpu.prof")})
	if err == nil {
		t.Fatal("Start() error = nil, want error for invalid path")
	}

	// A failed start leaves no session active.
	s, err := Start(Options{})
	if err != nil {
		t.Fatalf("Start() after failure error = %v", err)
	}
	s.Stop()
}

func TestSession_HTTP(t *testing.T) {
	s, err := Start(Options{HTTPAddr: "127.0.0.1:0"})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.Addr() == "" {
		t.Error("Addr() = \"\", want listen address")
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}
