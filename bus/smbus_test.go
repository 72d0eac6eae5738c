package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/bus/hal/sim"
	"github.com/ardnew/softi2c/pkg"
	"github.com/ardnew/softi2c/pkg/trace"
)

func TestSMBus_ByteAndWord(t *testing.T) {
	b, _, mem := newSimBus(t, sim.DefaultFunctionality)

	require.NoError(t, b.SMBusWriteByteData(0x04, 0x5A))
	v, err := b.SMBusReadByteData(0x04)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x5A), v)

	require.NoError(t, b.SMBusWriteWordData(0x10, 0xBEEF))
	assert.Equal(t, []byte{0xEF, 0xBE}, mem.Bytes()[0x10:0x12])
	w, err := b.SMBusReadWordData(0x10)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), w)
}

func TestSMBus_ReceiveSendByte(t *testing.T) {
	b, _, mem := newSimBus(t, sim.DefaultFunctionality)
	mem.Load(0x30, []byte{0x11, 0x22})

	// Send byte sets the register pointer on a memory target.
	require.NoError(t, b.SMBusWriteByte(0x30))
	v, err := b.SMBusReadByte()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x11), v)
	v, err = b.SMBusReadByte()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x22), v)
}

func TestSMBus_Quick(t *testing.T) {
	b, ctrl, _ := newSimBus(t, sim.DefaultFunctionality)

	require.NoError(t, b.SMBusWriteQuick(hal.SMBusWrite))
	calls := ctrl.SMBusCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, hal.SMBusQuick, calls[0].Size)
}

func TestSMBus_ProcessCall(t *testing.T) {
	b, _, mem := newSimBus(t, sim.DefaultFunctionality)
	mem.Load(0x42, []byte{0x34, 0x12})

	// The target stores the written word at 0x40 and returns the next two
	// bytes.
	got, err := b.SMBusProcessCall(0x40, 0xFFFF)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), got)
}

func TestSMBus_BlockData(t *testing.T) {
	b, _, mem := newSimBus(t, sim.DefaultFunctionality)

	require.NoError(t, b.SMBusWriteBlockData(0x08, []byte{1, 2, 3}))
	// Length byte is written through to the target.
	assert.Equal(t, []byte{3, 1, 2, 3}, mem.Bytes()[0x08:0x0C])

	mem.SetRecvLen(4)
	buf := make([]byte, 32)
	n, err := b.SMBusReadBlockData(0x08, buf)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte{3, 1, 2, 3}, buf[:n])
}

func TestSMBus_BlockTooLong(t *testing.T) {
	ctrl := &mockController{}
	b := New(ctrl)

	long := make([]byte, hal.SMBusBlockMax+1)
	assert.ErrorIs(t, b.SMBusWriteBlockData(0, long), pkg.ErrBlockTooLong)
	assert.ErrorIs(t, b.SMBusWriteI2CBlockData(0, long), pkg.ErrBlockTooLong)
	_, err := b.SMBusBlockProcessCall(0, long, nil)
	assert.ErrorIs(t, err, pkg.ErrBlockTooLong)
	ctrl.AssertNotCalled(t, "SMBus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSMBus_I2CBlockLengthByte(t *testing.T) {
	ctrl := &mockController{}
	ctrl.On("SMBus", hal.SMBusRead, uint8(0x10), hal.SMBusI2CBlockData,
		mock.MatchedBy(func(d *hal.SMBusData) bool { return d[0] == hal.SMBusBlockMax })).
		Return(nil).
		Run(func(args mock.Arguments) {
			d := args.Get(3).(*hal.SMBusData)
			for i := 1; i <= hal.SMBusBlockMax; i++ {
				d[i] = byte(i)
			}
		})
	b := New(ctrl)

	buf := make([]byte, 48)
	n, err := b.SMBusReadI2CBlockData(0x10, buf)
	require.NoError(t, err)
	assert.Equal(t, hal.SMBusBlockMax, n)
	assert.Equal(t, byte(1), buf[0])
	assert.Equal(t, byte(0), buf[hal.SMBusBlockMax])
	ctrl.AssertExpectations(t)
}

func TestSMBus_Unsupported(t *testing.T) {
	b, _, _ := newSimBus(t, hal.FuncI2C)

	_, err := b.SMBusReadByteData(0x00)
	assert.ErrorIs(t, err, unix.EOPNOTSUPP)
	assert.Equal(t, pkg.FaultUnsupported, pkg.FaultOf(err))
}

func TestSMBus_Traced(t *testing.T) {
	rec := &trace.MemoryRecorder{}
	ctrl := sim.New(sim.WithTarget(0x50, sim.NewMemory(256)))
	b := New(ctrl, WithTracer(rec))
	require.NoError(t, b.SetSlaveAddress(0x50, false))

	require.NoError(t, b.SMBusWriteByteData(0x01, 0x02))

	var ev trace.Event
	for _, e := range rec.Events() {
		if e.Kind == trace.KindSMBus {
			ev = e
		}
	}
	assert.Equal(t, trace.KindSMBus, ev.Kind)
	assert.Equal(t, uint8(0x01), ev.Command)
	assert.Equal(t, "write byte-data", ev.Size)
	require.Len(t, ev.Messages, 1)
	assert.Equal(t, uint16(0x50), ev.Messages[0].Addr)
}
