//go:build linux

package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ardnew/softi2c/bus/hal/linux"
)

// RunWatch prints adapters as they are added and removed until ctx is
// cancelled. With probe set, newly added adapters are opened and their
// functionality printed.
func RunWatch(ctx context.Context, w io.Writer, probe bool) error {
	events, err := linux.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	fmt.Fprintln(w, "Watching for I2C adapters (Ctrl+C to stop)")
	for ev := range events {
		ts := time.Now().Format("15:04:05.000")
		switch ev.Kind {
		case linux.EventAdd:
			fmt.Fprintf(w, "%s + %s %d:%d %s\n", ts, ev.DevPath, ev.Major, ev.Minor, ev.Adapter)
			if probe {
				probeAdapter(w, ev.DevPath)
			}
		case linux.EventRemove:
			fmt.Fprintf(w, "%s - %s\n", ts, ev.DevPath)
		}
	}
	return nil
}

// probeAdapter prints the functionality of a newly added adapter. udev may
// not have created the node yet, so a missing node is retried briefly.
func probeAdapter(w io.Writer, path string) {
	var ctrl *linux.Controller
	var err error
	for i := 0; i < 10; i++ {
		if ctrl, err = linux.Open(path); err == nil {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if err != nil {
		fmt.Fprintf(w, "  open: %v\n", err)
		return
	}
	defer ctrl.Close()

	f, err := ctrl.Functionality()
	if err != nil {
		fmt.Fprintf(w, "  functionality: %v\n", err)
		return
	}
	fmt.Fprintf(w, "  %s\n", f)
}
