// Package trace records I2C bus transactions to CBOR-encoded trace files.
//
// Every transaction a bus issues can be captured as an [Event]: combined
// transfers, SMBus transactions, capability probes and block operations,
// including which emulation path a block operation took. Events use
// integer CBOR keys for compactness and are appended to a file by
// [FileRecorder]. A [Reader] streams them back, optionally through a
// [Filter].
//
// Recording is best-effort: encoding failures never disrupt bus traffic.
package trace
