package bus

import (
	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/pkg"
)

// ScanMode selects the SMBus transaction Scan uses to detect a slave.
type ScanMode int

// Scan modes.
const (
	// ScanAuto uses a receive byte in the EEPROM and 0x30-0x37 ranges and a
	// quick write elsewhere, falling back to receive byte when the adapter
	// lacks quick commands.
	ScanAuto ScanMode = iota
	ScanQuick // SMBus quick write
	ScanRead  // SMBus receive byte
)

func (m ScanMode) String() string {
	switch m {
	case ScanAuto:
		return "auto"
	case ScanQuick:
		return "quick"
	case ScanRead:
		return "read"
	}
	return "unknown"
}

// ScanResult lists the addresses found by Scan in ascending order.
type ScanResult struct {
	Present []uint16 // slaves that acknowledged
	Busy    []uint16 // addresses claimed by a kernel driver
}

// Scan probes the 7-bit addresses first through last. Probing writes to
// the bus and can upset some devices.
//
// The slave selected before the scan is selected again afterwards; if none
// was selected, none is remembered.
func (b *Bus) Scan(first, last uint16, mode ScanMode) (ScanResult, error) {
	if first > last || last > 0x7F {
		return ScanResult{}, pkg.ErrInvalidAddress
	}

	f, err := b.Functionality()
	if err != nil {
		return ScanResult{}, err
	}
	canQuick := f.Has(hal.FuncSMBusQuick)
	canRead := f.Has(hal.FuncSMBusReadByte)
	switch {
	case mode == ScanQuick && !canQuick,
		mode == ScanRead && !canRead,
		mode == ScanAuto && !canQuick && !canRead:
		return ScanResult{}, pkg.ErrNotSupported
	}

	prevAddr, prevKnown, prevTenBit := b.addr, b.addrKnown, b.tenBit

	res := ScanResult{Present: []uint16{}}
	for addr := first; addr <= last; addr++ {
		if err := b.SetSlaveAddress(addr, false); err != nil {
			if pkg.FaultOf(err) == pkg.FaultBusy {
				res.Busy = append(res.Busy, addr)
			}
			continue
		}

		useRead := mode == ScanRead
		if mode == ScanAuto {
			useRead = !canQuick ||
				(canRead && ((addr >= 0x30 && addr <= 0x37) || (addr >= 0x50 && addr <= 0x5F)))
		}

		if useRead {
			_, err = b.SMBusReadByte()
		} else {
			err = b.SMBusWriteQuick(hal.SMBusWrite)
		}
		if err == nil {
			res.Present = append(res.Present, addr)
		}
	}

	pkg.LogDebug(pkg.ComponentScan, "scan complete",
		"bus", b.name, "mode", mode, "present", len(res.Present), "busy", len(res.Busy))

	if prevKnown {
		return res, b.SetSlaveAddress(prevAddr, prevTenBit)
	}
	b.addr, b.addrKnown, b.tenBit = 0, false, false
	return res, nil
}
