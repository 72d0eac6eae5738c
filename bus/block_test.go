package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/bus/hal/sim"
	"github.com/ardnew/softi2c/pkg"
	"github.com/ardnew/softi2c/pkg/trace"
)

// newSimBus returns a Bus on a simulated adapter with a memory target at
// 0x50 already selected.
func newSimBus(t *testing.T, funcs hal.Functionality) (*Bus, *sim.Controller, *sim.Memory) {
	t.Helper()
	mem := sim.NewMemory(256)
	ctrl := sim.New(sim.WithFunctionality(funcs), sim.WithTarget(0x50, mem))
	b := New(ctrl)
	require.NoError(t, b.SetSlaveAddress(0x50, false))
	return b, ctrl, mem
}

// =============================================================================
// ReadBlock Tests
// =============================================================================

func TestReadBlock_Native(t *testing.T) {
	b, ctrl, mem := newSimBus(t, sim.DefaultFunctionality)
	mem.Load(0x10, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	buf := make([]byte, 8)
	n, err := b.ReadBlock(0x10, buf)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, buf)

	calls := ctrl.SMBusCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, hal.SMBusI2CBlockData, calls[0].Size)
	assert.Equal(t, uint8(0x10), calls[0].Command)
	assert.Empty(t, ctrl.Transfers())
}

func TestReadBlock_Emulated(t *testing.T) {
	b, ctrl, mem := newSimBus(t, hal.FuncI2C)
	want := make([]byte, 16)
	for i := range want {
		want[i] = byte(0xA0 + i)
	}
	mem.Load(0x10, want)

	buf := make([]byte, 16)
	n, err := b.ReadBlock(0x10, buf)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, want, buf)

	xfers := ctrl.Transfers()
	require.Len(t, xfers, 1)
	require.Len(t, xfers[0], 2)
	assert.Equal(t, sim.MsgRecord{Addr: 0x50, Flags: 0, Len: 1, Data: []byte{0x10}}, xfers[0][0])
	assert.Equal(t, uint16(0x50), xfers[0][1].Addr)
	assert.Equal(t, hal.FlagRD, xfers[0][1].Flags)
	assert.Equal(t, uint16(16), xfers[0][1].Len)
	assert.Empty(t, ctrl.SMBusCalls())
}

func TestReadBlock_OversizedEmulated(t *testing.T) {
	b, ctrl, _ := newSimBus(t, sim.DefaultFunctionality)

	n, err := b.ReadBlock(0x00, make([]byte, 40))
	require.NoError(t, err)
	assert.Equal(t, 40, n)
	assert.Len(t, ctrl.Transfers(), 1)
	assert.Empty(t, ctrl.SMBusCalls())
}

func TestReadBlock_FallbackClamps(t *testing.T) {
	b, ctrl, _ := newSimBus(t, hal.FuncSMBusI2CBlock)

	buf := make([]byte, 64)
	n, err := b.ReadBlock(0x00, buf)
	require.NoError(t, err)
	assert.Equal(t, hal.SMBusBlockMax, n)

	calls := ctrl.SMBusCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, uint8(hal.SMBusBlockMax), calls[0].Data[0])
}

func TestReadBlock_NoSlaveAddress(t *testing.T) {
	ctrl := sim.New(
		sim.WithFunctionality(hal.FuncI2C|hal.FuncSMBusI2CBlock),
		sim.WithTarget(0x50, sim.NewMemory(256)),
	)
	b := New(ctrl)

	_, err := b.ReadBlock(0x00, make([]byte, 64))
	assert.ErrorIs(t, err, pkg.ErrNoSlaveAddress)
	assert.Empty(t, ctrl.Transfers())
}

func TestReadBlock_TenBit(t *testing.T) {
	ctrl := sim.New(
		sim.WithFunctionality(hal.FuncI2C|hal.Func10BitAddr),
		sim.WithTarget(0x150, sim.NewMemory(256)),
	)
	b := New(ctrl)
	require.NoError(t, b.SetSlaveAddress(0x150, true))

	_, err := b.ReadBlock(0x00, make([]byte, 4))
	require.NoError(t, err)

	xfers := ctrl.Transfers()
	require.Len(t, xfers, 1)
	assert.Equal(t, hal.FlagTen, xfers[0][0].Flags)
	assert.Equal(t, hal.FlagTen|hal.FlagRD, xfers[0][1].Flags)
}

func TestReadBlock_ProbeError(t *testing.T) {
	ctrl := sim.New(sim.WithProbeFailures(1, unix.EIO), sim.WithTarget(0x50, sim.NewMemory(256)))
	b := New(ctrl)

	_, err := b.ReadBlock(0x00, make([]byte, 4))
	assert.ErrorIs(t, err, unix.EIO)
	assert.Empty(t, ctrl.SMBusCalls())
	assert.Empty(t, ctrl.Transfers())
}

// =============================================================================
// WriteBlock Tests
// =============================================================================

func TestWriteBlock_Native(t *testing.T) {
	b, ctrl, mem := newSimBus(t, sim.DefaultFunctionality)

	require.NoError(t, b.WriteBlock(0x20, []byte{0xAA, 0xBB}))
	assert.Equal(t, []byte{0xAA, 0xBB}, mem.Bytes()[0x20:0x22])

	calls := ctrl.SMBusCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, hal.SMBusWrite, calls[0].RW)
	assert.Equal(t, uint8(2), calls[0].Data[0])
}

func TestWriteBlock_EmulatedConcat(t *testing.T) {
	b, ctrl, mem := newSimBus(t, hal.FuncI2C)

	require.NoError(t, b.WriteBlock(0x20, []byte{0xAA, 0xBB}))
	assert.Equal(t, []byte{0xAA, 0xBB}, mem.Bytes()[0x20:0x22])

	xfers := ctrl.Transfers()
	require.Len(t, xfers, 1)
	require.Len(t, xfers[0], 1)
	assert.Equal(t, []byte{0x20, 0xAA, 0xBB}, xfers[0][0].Data)
	assert.Equal(t, hal.Flags(0), xfers[0][0].Flags)
}

func TestWriteBlock_EmulatedSplit(t *testing.T) {
	b, ctrl, mem := newSimBus(t, hal.FuncI2C|hal.FuncNoStart)

	require.NoError(t, b.WriteBlock(0x20, []byte{0xAA, 0xBB}))
	assert.Equal(t, []byte{0xAA, 0xBB}, mem.Bytes()[0x20:0x22])

	xfers := ctrl.Transfers()
	require.Len(t, xfers, 1)
	require.Len(t, xfers[0], 2)
	assert.Equal(t, []byte{0x20}, xfers[0][0].Data)
	assert.Equal(t, hal.Flags(0), xfers[0][0].Flags)
	assert.Equal(t, []byte{0xAA, 0xBB}, xfers[0][1].Data)
	assert.Equal(t, hal.FlagNoStart, xfers[0][1].Flags)
}

func TestWriteBlock_OversizedEmulated(t *testing.T) {
	b, ctrl, mem := newSimBus(t, sim.DefaultFunctionality)

	data := make([]byte, 48)
	for i := range data {
		data[i] = byte(i + 1)
	}
	require.NoError(t, b.WriteBlock(0x00, data))
	assert.Equal(t, data, mem.Bytes()[:48])
	assert.Empty(t, ctrl.SMBusCalls())
}

func TestWriteBlock_FallbackDriverRejects(t *testing.T) {
	b, ctrl, _ := newSimBus(t, hal.FuncSMBusI2CBlock)

	err := b.WriteBlock(0x00, make([]byte, 40))
	assert.ErrorIs(t, err, unix.EINVAL)
	assert.Empty(t, ctrl.SMBusCalls())
}

func TestWriteBlock_FallbackWithoutAddress(t *testing.T) {
	ctrl := sim.New(sim.WithFunctionality(hal.FuncI2C | hal.FuncSMBusI2CBlock))
	b := New(ctrl)

	err := b.WriteBlock(0x00, make([]byte, 40))
	assert.ErrorIs(t, err, pkg.ErrNoSlaveAddress)
	assert.Empty(t, ctrl.Transfers())
}

func TestWriteBlock_ProbeError(t *testing.T) {
	ctrl := sim.New(sim.WithProbeFailures(1, unix.EIO))
	b := New(ctrl)

	assert.ErrorIs(t, b.WriteBlock(0x00, []byte{1}), unix.EIO)
}

// =============================================================================
// Tracing
// =============================================================================

func TestBlock_TracePath(t *testing.T) {
	tests := []struct {
		name  string
		funcs hal.Functionality
		write bool
		size  int
		want  trace.Path
	}{
		{"native read", sim.DefaultFunctionality, false, 2, trace.PathNative},
		{"emulated read", hal.FuncI2C, false, 2, trace.PathEmulatedRead},
		{"split write", hal.FuncI2C | hal.FuncNoStart, true, 2, trace.PathEmulatedSplit},
		{"concat write", hal.FuncI2C, true, 2, trace.PathEmulatedConcat},
		{"fallback read", hal.FuncSMBusI2CBlock, false, 40, trace.PathFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &trace.MemoryRecorder{}
			ctrl := sim.New(sim.WithFunctionality(tt.funcs), sim.WithTarget(0x50, sim.NewMemory(256)))
			b := New(ctrl, WithTracer(rec), WithName("sim"))
			require.NoError(t, b.SetSlaveAddress(0x50, false))

			var err error
			if tt.write {
				err = b.WriteBlock(0x00, make([]byte, tt.size))
			} else {
				_, err = b.ReadBlock(0x00, make([]byte, tt.size))
			}
			require.NoError(t, err)

			var blocks []trace.Event
			for _, ev := range rec.Events() {
				if ev.Kind == trace.KindBlock {
					blocks = append(blocks, ev)
				}
			}
			require.Len(t, blocks, 1)
			assert.Equal(t, tt.want, blocks[0].Path)
			assert.Equal(t, "sim", blocks[0].Bus)
			assert.Equal(t, b.Session(), blocks[0].Session)
		})
	}
}
