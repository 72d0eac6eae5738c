package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/ardnew/softi2c/bus"
	"github.com/ardnew/softi2c/pkg/i2cid"
)

// ParseScanMode parses "auto", "quick" or "read".
func ParseScanMode(s string) (bus.ScanMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return bus.ScanAuto, nil
	case "quick", "q":
		return bus.ScanQuick, nil
	case "read", "r":
		return bus.ScanRead, nil
	}
	return 0, fmt.Errorf("scan mode %q: want auto, quick or read", s)
}

// RunScan probes addresses first..last and prints an i2cdetect-style map,
// followed by device hints from db for each responding address. db may be
// nil.
func RunScan(w io.Writer, b *bus.Bus, first, last uint16, mode bus.ScanMode, db *i2cid.Database) error {
	res, err := b.Scan(first, last, mode)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	writeScanMap(w, first, last, res)

	if db == nil || len(res.Present) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	for _, addr := range res.Present {
		hint := db.Describe(addr)
		if hint == "" {
			hint = "unknown"
		}
		fmt.Fprintf(w, "0x%02x  %s\n", addr, hint)
	}
	return nil
}

func writeScanMap(w io.Writer, first, last uint16, res bus.ScanResult) {
	cells := make(map[uint16]string, len(res.Present)+len(res.Busy))
	for _, a := range res.Present {
		cells[a] = fmt.Sprintf("%02x", a)
	}
	for _, a := range res.Busy {
		cells[a] = "UU"
	}

	fmt.Fprint(w, "   ")
	for col := 0; col < 16; col++ {
		fmt.Fprintf(w, "  %x", col)
	}
	fmt.Fprintln(w)

	for row := uint16(0); row < 0x80; row += 16 {
		if row+15 < first || row > last {
			continue
		}
		fmt.Fprintf(w, "%02x:", row)
		for a := row; a < row+16; a++ {
			cell, ok := cells[a]
			switch {
			case a < first || a > last:
				cell = "  "
			case !ok:
				cell = "--"
			}
			fmt.Fprint(w, " "+cell)
		}
		fmt.Fprintln(w)
	}
}
