// Package i2cid names the devices commonly found at I2C slave addresses.
//
// The database maps a 7-bit address to a device class and a list of parts
// known to answer there, so that scan results can carry a hint such as
// "0x50 EEPROM (24c02, 24c256, ee1004)". Addresses are not unique to one
// part; the hints are suggestions, not identification.
//
// # Usage
//
//	db := i2cid.New()
//	db.Load()
//	fmt.Println(db.Describe(0x68))
//
// # Database Format
//
// The file format follows usb.ids: an address line holds two hex digits,
// whitespace and the class name; each following line that starts with a
// tab names one part and an optional description.
//
//	# comment
//	68  Real-time clock / IMU
//		ds3231  DS3231 real-time clock
//		mpu6050  MPU-6050 6-axis IMU
//
// # Database Locations
//
// Load reads the first file found in DefaultPaths. When none exists the
// built-in table is used, so lookups always have an answer for the common
// addresses.
//
// All methods are safe for concurrent use.
package i2cid
