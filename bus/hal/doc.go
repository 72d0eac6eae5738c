// Package hal defines the Hardware Abstraction Layer interface for I2C bus
// controllers.
//
// The HAL provides a platform-agnostic interface between the bus core and
// an underlying adapter driver. The core implements all message encoding,
// capability caching and block-transfer emulation, leaving the HAL to issue
// only primitive requests.
//
// # Vocabulary
//
// The package also owns the native vocabularies shared by every controller:
//   - [Flags]: per-message flag word of a combined transaction (I2C_M_*)
//   - [Functionality]: adapter feature bitset (I2C_FUNC_*)
//   - [SMBusData], [SMBusSize], [ReadWrite]: SMBus transaction encoding
//
// # Interface Overview
//
// The [Controller] interface covers one open channel:
//   - Capability query ([Controller.Functionality])
//   - Combined multi-message transactions ([Controller.Transfer])
//   - SMBus transactions ([Controller.SMBus])
//   - Slave address, 10-bit mode, PEC, retry and timeout knobs
//   - Plain read/write at the current slave address
//
// # Implementing a HAL
//
// To implement a HAL for a new platform:
//  1. Create a type that implements all [Controller] methods
//  2. Encode [Msg] values into the platform's descriptor layout in Transfer
//  3. Write the transferred length back into each Msg.Len
//  4. Never retain Msg.Buf past the Transfer call
//
// The Linux i2c-dev HAL lives in [github.com/ardnew/softi2c/bus/hal/linux].
// An in-memory HAL for testing is available in
// [github.com/ardnew/softi2c/bus/hal/sim].
package hal
