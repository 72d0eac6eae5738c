//go:build linux

package linux

import (
	"testing"
	"unsafe"
)

// =============================================================================
// Structure Layout Tests
// =============================================================================

func TestI2CMsg_Layout(t *testing.T) {
	var m i2cMsg
	ptr := unsafe.Sizeof(uintptr(0))

	if off := unsafe.Offsetof(m.flags); off != 2 {
		t.Errorf("offsetof(flags) = %d, want 2", off)
	}
	if off := unsafe.Offsetof(m.len); off != 4 {
		t.Errorf("offsetof(len) = %d, want 4", off)
	}
	if off := unsafe.Offsetof(m.buf); off != 8 {
		t.Errorf("offsetof(buf) = %d, want 8", off)
	}
	if size := unsafe.Sizeof(m); size != 8+ptr {
		t.Errorf("sizeof(i2cMsg) = %d, want %d", size, 8+ptr)
	}
}

func TestRdwrIoctlData_Layout(t *testing.T) {
	var d rdwrIoctlData
	ptr := unsafe.Sizeof(uintptr(0))

	if off := unsafe.Offsetof(d.nmsgs); off != ptr {
		t.Errorf("offsetof(nmsgs) = %d, want %d", off, ptr)
	}
	if size := unsafe.Sizeof(d); size != 2*ptr {
		t.Errorf("sizeof(rdwrIoctlData) = %d, want %d", size, 2*ptr)
	}
}

func TestSMBusIoctlData_Layout(t *testing.T) {
	var d smbusIoctlData

	if off := unsafe.Offsetof(d.command); off != 1 {
		t.Errorf("offsetof(command) = %d, want 1", off)
	}
	if off := unsafe.Offsetof(d.size); off != 4 {
		t.Errorf("offsetof(size) = %d, want 4", off)
	}
	if off := unsafe.Offsetof(d.data); off != 8 {
		t.Errorf("offsetof(data) = %d, want 8", off)
	}
}
