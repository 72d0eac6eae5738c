package bus

import "io"

// Compile-time interface check.
var _ io.ReadWriteCloser = (*Bus)(nil)

// Read reads len(p) bytes from the selected slave in a single message.
func (b *Bus) Read(p []byte) (int, error) {
	return b.ctrl.Read(p)
}

// Write writes p to the selected slave in a single message.
func (b *Bus) Write(p []byte) (int, error) {
	return b.ctrl.Write(p)
}
