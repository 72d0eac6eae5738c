//go:build linux

package linux

import (
	"runtime"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ardnew/softi2c/bus/hal"
)

// =============================================================================
// i2c-dev Structures
// =============================================================================

// i2cMsg matches the kernel's struct i2c_msg layout. Go inserts the same
// padding before buf that the C compiler does on both 32- and 64-bit.
type i2cMsg struct {
	addr  uint16  // Slave address
	flags uint16  // I2C_M_* flags
	len   uint16  // Buffer length
	buf   uintptr // Pointer to data buffer
}

// rdwrIoctlData matches the kernel's struct i2c_rdwr_ioctl_data layout.
type rdwrIoctlData struct {
	msgs  uintptr // Pointer to i2cMsg array
	nmsgs uint32  // Number of messages
}

// smbusIoctlData matches the kernel's struct i2c_smbus_ioctl_data layout.
type smbusIoctlData struct {
	readWrite uint8   // I2C_SMBUS_READ or I2C_SMBUS_WRITE
	command   uint8   // Register or command byte
	size      uint32  // I2C_SMBUS_* transaction type
	data      uintptr // Pointer to union i2c_smbus_data
}

// =============================================================================
// Raw Syscall Wrappers
// =============================================================================

// openDevice opens an i2c-dev node for read/write access.
func openDevice(path string) (int, error) {
	return unix.Open(path, unix.O_RDWR|unix.O_CLOEXEC, 0)
}

// closeDevice closes a device file descriptor.
func closeDevice(fd int) error {
	return unix.Close(fd)
}

// ioctlPtr performs an ioctl whose argument is a pointer.
func ioctlPtr(fd int, req uint, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uintptr(req), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// ioctlValue performs an ioctl whose argument is passed by value.
func ioctlValue(fd int, req uint, value int) error {
	return unix.IoctlSetInt(fd, req, value)
}

// =============================================================================
// i2c-dev Operations
// =============================================================================

// doFuncs reads the adapter functionality word. The kernel writes an
// unsigned long.
func doFuncs(fd int) (hal.Functionality, error) {
	var funcs uint
	if err := ioctlPtr(fd, ioctlI2CFuncs, unsafe.Pointer(&funcs)); err != nil {
		return 0, err
	}
	return hal.Functionality(funcs), nil
}

// doRdwr encodes msgs into descs and issues one I2C_RDWR ioctl. On success
// the kernel-updated lengths are copied back into msgs.
func doRdwr(fd int, descs []i2cMsg, msgs []hal.Msg) error {
	for i := range msgs {
		m := &msgs[i]
		descs[i] = i2cMsg{
			addr:  m.Addr,
			flags: uint16(m.Flags),
			len:   m.Len,
		}
		if len(m.Buf) > 0 {
			descs[i].buf = uintptr(unsafe.Pointer(&m.Buf[0]))
		}
	}

	data := rdwrIoctlData{nmsgs: uint32(len(msgs))}
	if len(msgs) > 0 {
		data.msgs = uintptr(unsafe.Pointer(&descs[0]))
	}

	err := ioctlPtr(fd, ioctlI2CRdwr, unsafe.Pointer(&data))
	runtime.KeepAlive(msgs)
	runtime.KeepAlive(descs)

	if err == nil {
		for i := range msgs {
			msgs[i].Len = descs[i].len
		}
	}

	// Drop buffer references held in the descriptor array.
	for i := range msgs {
		descs[i] = i2cMsg{}
	}
	return err
}

// doSMBus issues one I2C_SMBUS ioctl.
func doSMBus(fd int, rw hal.ReadWrite, command uint8, size hal.SMBusSize, data *hal.SMBusData) error {
	args := smbusIoctlData{
		readWrite: uint8(rw),
		command:   command,
		size:      uint32(size),
	}
	if data != nil {
		args.data = uintptr(unsafe.Pointer(data))
	}
	err := ioctlPtr(fd, ioctlI2CSMBus, unsafe.Pointer(&args))
	runtime.KeepAlive(data)
	return err
}
