// Package sim provides an in-memory simulated I2C controller HAL.
//
// The simulator implements hal.Controller without hardware. Slave devices
// are modeled by [Target] values attached at fixed addresses; [Memory] is a
// register-addressed target with an auto-incrementing pointer, similar to a
// small EEPROM or a typical sensor register file.
//
// # Usage
//
// Build a controller with the features the code under test expects:
//
//	mem := sim.NewMemory(256)
//	ctrl := sim.New(
//	    sim.WithFunctionality(hal.FuncI2C|hal.FuncSMBusByteData),
//	    sim.WithTarget(0x50, mem),
//	)
//	b := bus.New(ctrl)
//
// Faults can be injected with [WithProbeFailures] and [WithTransferError].
// Every probe, transfer and SMBus transaction is recorded for assertions.
//
// # Kernel Semantics
//
// The simulator follows i2c-dev behavior where it matters to callers:
//   - Messages addressed to an empty slot fail with ENXIO
//   - Flags the functionality does not cover fail with EOPNOTSUPP
//   - FlagRecvLen reads report the length byte plus payload in Msg.Len
//   - A FlagNoStart write continues the preceding write to the same target
package sim
