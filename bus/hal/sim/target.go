package sim

import (
	"sync"

	"github.com/ardnew/softi2c/bus/hal"
)

// Target is a simulated slave device.
type Target interface {
	// Read fills p with data from the device and returns the number of bytes
	// produced. When recvLen is set the first byte produced is the count of
	// payload bytes that follow it.
	Read(p []byte, recvLen bool) (int, error)

	// Write delivers p to the device. continued reports that p extends the
	// previous write without a new START condition.
	Write(p []byte, continued bool) error
}

// =============================================================================
// Memory Target
// =============================================================================

// Memory is a register-addressed target. The first byte of every write
// that begins with a START sets the register pointer; remaining bytes are
// stored at the pointer, which auto-increments and wraps.
type Memory struct {
	mu      sync.Mutex
	data    []byte
	ptr     int
	recvLen int // Count reported for FlagRecvLen reads, 0 for automatic
}

// Compile-time interface check.
var _ Target = (*Memory)(nil)

// NewMemory creates a zero-filled memory of size bytes (1 to 256).
func NewMemory(size int) *Memory {
	if size <= 0 || size > 256 {
		size = 256
	}
	return &Memory{data: make([]byte, size)}
}

// Load copies p into memory starting at offset, wrapping at the end.
func (m *Memory) Load(offset int, p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range p {
		m.data[(offset+i)%len(m.data)] = b
	}
}

// Bytes returns a copy of the memory contents.
func (m *Memory) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// Pointer returns the current register pointer.
func (m *Memory) Pointer() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ptr
}

// SetRecvLen sets the payload count reported by length-prefixed reads.
// Zero reports as many bytes as fit, up to hal.SMBusBlockMax.
func (m *Memory) SetRecvLen(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recvLen = n
}

// Write implements Target.
func (m *Memory) Write(p []byte, continued bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !continued {
		if len(p) == 0 {
			return nil
		}
		m.ptr = int(p[0]) % len(m.data)
		p = p[1:]
	}
	for _, b := range p {
		m.data[m.ptr] = b
		m.ptr = (m.ptr + 1) % len(m.data)
	}
	return nil
}

// Read implements Target.
func (m *Memory) Read(p []byte, recvLen bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !recvLen {
		m.fill(p)
		return len(p), nil
	}

	if len(p) == 0 {
		return 0, nil
	}
	n := m.recvLen
	if n == 0 {
		n = min(len(p)-1, hal.SMBusBlockMax)
	}
	n = min(n, len(p)-1)
	p[0] = byte(n)
	m.fill(p[1 : 1+n])
	return 1 + n, nil
}

func (m *Memory) fill(p []byte) {
	for i := range p {
		p[i] = m.data[m.ptr]
		m.ptr = (m.ptr + 1) % len(m.data)
	}
}
