package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ardnew/softi2c/bus"
	"github.com/ardnew/softi2c/bus/hal"
)

// RunList prints the enumerated adapters.
func RunList(w io.Writer, devices []bus.Device) error {
	if len(devices) == 0 {
		fmt.Fprintln(w, "No I2C adapters found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUS\tDEVICE\tDEV\tNAME")
	for _, d := range devices {
		node := d.DevPath
		if node == "" {
			node = "-"
		}
		fmt.Fprintf(tw, "i2c-%d\t%s\t%d:%d\t%s\n", d.Number, node, d.Major, d.Minor, d.Name)
	}
	return tw.Flush()
}

// RunFuncs prints the adapter functionality in the style of i2cdetect -F,
// followed by the message flags it can honor.
func RunFuncs(w io.Writer, b *bus.Bus) error {
	f, err := b.Functionality()
	if err != nil {
		return fmt.Errorf("functionality: %w", err)
	}
	writeFuncs(w, b.Name(), f)
	return nil
}

func writeFuncs(w io.Writer, name string, f hal.Functionality) {
	fmt.Fprintf(w, "Functionalities implemented by %s (0x%08X):\n", name, uint32(f))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for bit := hal.Functionality(1); bit != 0; bit <<= 1 {
		names := bit.Names()
		if len(names) == 0 {
			continue
		}
		state := "no"
		if f.Has(bit) {
			state = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\n", names[0], state)
	}
	tw.Flush()

	r, wf := bus.SupportedFlags(f)
	fmt.Fprintf(w, "Read flags:  %s\n", r)
	fmt.Fprintf(w, "Write flags: %s\n", wf)
}
