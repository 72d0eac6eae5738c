// Package linux provides an I2C controller HAL for Linux using i2c-dev.
//
// This HAL uses the i2c-dev character devices (/dev/i2c-N) for bus access,
// sysfs (/sys/class/i2c-dev/) for adapter discovery, and netlink for hotplug
// event monitoring. It is pure Go with no cgo dependencies; system calls go
// through golang.org/x/sys/unix.
//
// # Requirements
//
// The i2c-dev kernel module must be loaded (modprobe i2c-dev), and the user
// running the application needs read/write access to the device nodes. This
// typically requires either:
//   - Running as root
//   - Membership in the group owning /dev/i2c-* (often "i2c")
//
// # Architecture
//
// Each [Controller] wraps one open file descriptor:
//   - Combined transactions are issued with a single I2C_RDWR ioctl
//   - SMBus transactions use I2C_SMBUS
//   - Adapter functionality is read with I2C_FUNCS
//
// Descriptor storage for I2C_RDWR is pre-allocated per Controller, so the
// transfer path performs no allocation.
//
// [Watch] multiplexes a NETLINK_KOBJECT_UEVENT socket with an eventfd
// through epoll, so cancelling its context stops the monitor promptly.
package linux
