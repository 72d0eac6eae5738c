package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/ardnew/softi2c/bus"
)

// RunTransfer executes msgs as one combined transfer and prints the data
// received by each read, one line per read.
func RunTransfer(w io.Writer, b *bus.Bus, msgs []bus.Message) error {
	if err := b.Transfer(msgs...); err != nil {
		return fmt.Errorf("transfer: %w", err)
	}
	for _, m := range msgs {
		if r, ok := m.(*bus.Read); ok {
			fmt.Fprintln(w, formatBytes(r.Data))
		}
	}
	return nil
}

// RunReadBlock reads n bytes from register command and prints them.
func RunReadBlock(w io.Writer, b *bus.Bus, command uint8, n int) error {
	buf := make([]byte, n)
	got, err := b.ReadBlock(command, buf)
	if err != nil {
		return fmt.Errorf("read block 0x%02X: %w", command, err)
	}
	fmt.Fprintln(w, formatBytes(buf[:got]))
	return nil
}

// RunWriteBlock writes data to register command.
func RunWriteBlock(b *bus.Bus, command uint8, data []byte) error {
	if err := b.WriteBlock(command, data); err != nil {
		return fmt.Errorf("write block 0x%02X: %w", command, err)
	}
	return nil
}

// dumpChunk is the block size used by RunDump. It fits the SMBus block
// limit so the native primitive is used when available.
const dumpChunk = 16

// RunDump prints registers [first, last] of the selected slave as an
// i2cdump-style table.
func RunDump(w io.Writer, b *bus.Bus, first, last uint8) error {
	if last < first {
		first, last = last, first
	}

	fmt.Fprintln(w, "     0  1  2  3  4  5  6  7  8  9  a  b  c  d  e  f    0123456789abcdef")

	for row := int(first) &^ 0xF; row <= int(last); row += dumpChunk {
		buf := make([]byte, dumpChunk)
		n, err := b.ReadBlock(uint8(row), buf)
		if err != nil {
			return fmt.Errorf("read 0x%02X: %w", row, err)
		}

		var hex, ascii strings.Builder
		for i := 0; i < dumpChunk; i++ {
			reg := row + i
			if reg < int(first) || reg > int(last) || i >= n {
				hex.WriteString("   ")
				ascii.WriteByte(' ')
				continue
			}
			fmt.Fprintf(&hex, "%02x ", buf[i])
			ascii.WriteByte(printable(buf[i]))
		}
		fmt.Fprintf(w, "%02x: %s   %s\n", row, hex.String(), ascii.String())
	}
	return nil
}

func printable(c byte) byte {
	if c < 0x20 || c > 0x7E {
		return '.'
	}
	return c
}

// formatBytes renders p as space-separated 0x-prefixed bytes.
func formatBytes(p []byte) string {
	var sb strings.Builder
	for i, c := range p {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "0x%02x", c)
	}
	return sb.String()
}
