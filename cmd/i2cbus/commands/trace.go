package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg/trace"
)

// TraceOptions select the events printed by RunTrace.
type TraceOptions struct {
	Session    string
	Bus        string
	Kind       string
	Address    string
	ErrorsOnly bool
	TimeStart  string // RFC3339
	TimeEnd    string // RFC3339
}

// Filter converts the options to a trace.Filter.
func (o TraceOptions) Filter() (trace.Filter, error) {
	f := trace.Filter{
		Session:    o.Session,
		Bus:        o.Bus,
		ErrorsOnly: o.ErrorsOnly,
	}
	if o.Kind != "" {
		k, ok := trace.ParseKind(o.Kind)
		if !ok {
			return f, fmt.Errorf("unknown kind %q (transfer, smbus, probe, block)", o.Kind)
		}
		f.Kind = &k
	}
	if o.Address != "" {
		addr, err := ParseAddress(o.Address)
		if err != nil {
			return f, err
		}
		f.Addr = &addr
	}
	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return f, fmt.Errorf("time-start: %w", err)
		}
		f.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return f, fmt.Errorf("time-end: %w", err)
		}
		f.TimeEnd = &t
	}
	return f, nil
}

// RunTrace prints the events of a trace file that match opts.
func RunTrace(w io.Writer, path string, opts TraceOptions) error {
	filter, err := opts.Filter()
	if err != nil {
		return err
	}

	r, err := trace.NewFilteredReader(path, filter)
	if err != nil {
		return err
	}
	defer r.Close()

	count := 0
	for {
		ev, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("event %d: %w", count+1, err)
		}
		FormatEvent(w, ev)
		count++
	}

	fmt.Fprintf(w, "%d events\n", count)
	return nil
}

// FormatEvent writes a human-readable representation of ev.
func FormatEvent(w io.Writer, ev trace.Event) {
	ts := ev.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	session := ev.Session
	if len(session) > 8 {
		session = session[:8]
	}

	header := fmt.Sprintf("%s [%s] %s %s", ts, session, ev.Bus, ev.Kind)
	switch ev.Kind {
	case trace.KindSMBus:
		header += fmt.Sprintf(" %s cmd=0x%02X", ev.Size, ev.Command)
	case trace.KindBlock:
		header += fmt.Sprintf(" %s cmd=0x%02X", ev.Path, ev.Command)
	case trace.KindProbe:
		header += " " + hal.Functionality(ev.Functionality).String()
	}
	fmt.Fprintf(w, "%s (%s)\n", header, ev.Duration)

	for _, m := range ev.Messages {
		dir := "W"
		if m.Read {
			dir = "R"
		}
		line := fmt.Sprintf("  %s[0x%02X]", dir, m.Addr)
		if ev.Kind == trace.KindTransfer {
			line += fmt.Sprintf(" %d/%d", m.Actual, m.Requested)
			if m.Flags != 0 {
				line += " " + hal.Flags(m.Flags).String()
			}
		}
		if len(m.Data) > 0 {
			line += " " + formatBytes(m.Data)
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	if ev.Error != "" {
		fmt.Fprintf(w, "  error: %s\n", ev.Error)
	}
}
