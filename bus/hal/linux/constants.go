package linux

// =============================================================================
// i2c-dev ioctl Requests
// =============================================================================

// Request numbers from <linux/i2c-dev.h>. These are plain constants rather
// than _IOC encodings, so they are identical on every architecture.
const (
	ioctlI2CRetries    = 0x0701 // I2C_RETRIES: number of retries
	ioctlI2CTimeout    = 0x0702 // I2C_TIMEOUT: timeout in units of 10 ms
	ioctlI2CSlave      = 0x0703 // I2C_SLAVE: set slave address
	ioctlI2CTenBit     = 0x0704 // I2C_TENBIT: 0 for 7-bit, != 0 for 10-bit
	ioctlI2CFuncs      = 0x0705 // I2C_FUNCS: get adapter functionality
	ioctlI2CSlaveForce = 0x0706 // I2C_SLAVE_FORCE: set slave address even if busy
	ioctlI2CRdwr       = 0x0707 // I2C_RDWR: combined transaction
	ioctlI2CPEC        = 0x0708 // I2C_PEC: != 0 to use PEC with SMBus
	ioctlI2CSMBus      = 0x0720 // I2C_SMBUS: SMBus transfer
)

// TimeoutUnit is the granularity of the I2C_TIMEOUT ioctl in milliseconds.
const TimeoutUnit = 10

// =============================================================================
// Address Limits
// =============================================================================

// Largest valid slave addresses for each addressing mode.
const (
	MaxAddr7  = 0x7F
	MaxAddr10 = 0x3FF
)

// =============================================================================
// Path Length Limits
// =============================================================================

// SysfsPathMaxLen is the maximum length of a sysfs path.
const SysfsPathMaxLen = 256

// DevfsPathMaxLen is the maximum length of a devfs path.
const DevfsPathMaxLen = 64

// =============================================================================
// System Paths
// =============================================================================

// SysfsI2CDevPath is the sysfs class directory for i2c-dev nodes.
const SysfsI2CDevPath = "/sys/class/i2c-dev"

// DevfsPath is the directory holding i2c-dev device nodes.
const DevfsPath = "/dev"

// DeviceNamePrefix prefixes every i2c-dev node name ("i2c-1").
const DeviceNamePrefix = "i2c-"

// SubsystemI2CDev is the uevent SUBSYSTEM value for i2c-dev nodes.
const SubsystemI2CDev = "i2c-dev"

// =============================================================================
// Netlink Constants
// =============================================================================

// NetlinkKObjectUEvent is the netlink protocol for udev events.
const NetlinkKObjectUEvent = 15 // NETLINK_KOBJECT_UEVENT

// NetlinkKernelGroup is the multicast group of kernel-originated uevents.
const NetlinkKernelGroup = 1

// UEventBufferSize is the buffer size for netlink messages.
const UEventBufferSize = 4096

// EventQueueSize is the capacity of the channel returned by Watch.
const EventQueueSize = 16

// =============================================================================
// Polling Constants
// =============================================================================

// MaxEpollEvents is the maximum events to retrieve per epoll_wait call.
const MaxEpollEvents = 8
