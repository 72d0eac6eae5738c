// Package bus provides a safe interface to the Linux I2C and SMBus
// userspace subsystem.
//
// A [Bus] owns one open channel to an adapter, through a hal.Controller.
// On Linux, [Open] wraps an i2c-dev node; tests and tools can use the
// simulated controller from package sim via [New].
//
// # Combined Transactions
//
// [Bus.Transfer] packs up to hal.MaxMessages [Read] and [Write] messages
// into one atomic transaction. Per-message quirk flags ([ReadFlags],
// [WriteFlags]) are translated to the kernel's flag word, and read buffers
// are resliced to the length actually received:
//
//	buf := make([]byte, 16)
//	r := &bus.Read{Addr: 0x50, Data: buf}
//	err := b.Transfer(&bus.Write{Addr: 0x50, Data: []byte{0x10}}, r)
//
// # Block Transfers
//
// [Bus.ReadBlock] and [Bus.WriteBlock] access a register block without a
// length prefix. They use the SMBus I2C-block primitive when the adapter
// supports it and the block fits in 32 bytes, and otherwise synthesize an
// equivalent combined transaction. The adapter's functionality is probed
// once and cached.
//
// # SMBus
//
// The SMBus* methods issue single SMBus transactions against the slave
// selected with [Bus.SetSlaveAddress].
//
// # Concurrency
//
// A Bus is not safe for concurrent use. The kernel serializes access to
// the adapter between processes, but callers sharing one Bus must provide
// their own locking.
package bus
