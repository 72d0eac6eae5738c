package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/bus/hal/sim"
	"github.com/ardnew/softi2c/pkg/trace"
)

func TestFunctionality_Cached(t *testing.T) {
	ctrl := &mockController{}
	ctrl.On("Functionality").Return(hal.FuncI2C|hal.FuncNoStart, nil).Once()
	b := New(ctrl)

	for i := 0; i < 3; i++ {
		f, err := b.Functionality()
		require.NoError(t, err)
		assert.Equal(t, hal.FuncI2C|hal.FuncNoStart, f)
	}
	ctrl.AssertNumberOfCalls(t, "Functionality", 1)
}

func TestFunctionality_FailureNotCached(t *testing.T) {
	ctrl := sim.New(sim.WithFunctionality(hal.FuncI2C), sim.WithProbeFailures(2, unix.EIO))
	b := New(ctrl)

	_, err := b.Functionality()
	assert.ErrorIs(t, err, unix.EIO)
	_, err = b.Functionality()
	assert.ErrorIs(t, err, unix.EIO)

	f, err := b.Functionality()
	require.NoError(t, err)
	assert.Equal(t, hal.FuncI2C, f)

	_, err = b.Functionality()
	require.NoError(t, err)
	assert.Equal(t, 3, ctrl.Probes())
}

func TestFunctionality_Traced(t *testing.T) {
	rec := &trace.MemoryRecorder{}
	b := New(sim.New(sim.WithFunctionality(hal.FuncI2C)), WithTracer(rec))

	_, err := b.Functionality()
	require.NoError(t, err)
	_, err = b.Functionality()
	require.NoError(t, err)

	events := rec.Events()
	require.Len(t, events, 1)
	assert.Equal(t, trace.KindProbe, events[0].Kind)
	assert.Equal(t, uint32(hal.FuncI2C), events[0].Functionality)
	assert.NotEmpty(t, events[0].Session)
}

func TestTransferFlags(t *testing.T) {
	b := New(sim.New(sim.WithFunctionality(hal.FuncI2C | hal.FuncNoStart)))

	r, w, err := b.TransferFlags()
	require.NoError(t, err)
	assert.Equal(t, ReadNoStart, r)
	assert.Equal(t, WriteNoStart, w)
}

func TestTransferFlags_ProbeError(t *testing.T) {
	b := New(sim.New(sim.WithProbeFailures(1, unix.EIO)))

	_, _, err := b.TransferFlags()
	assert.ErrorIs(t, err, unix.EIO)
}
