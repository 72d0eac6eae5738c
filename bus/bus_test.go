package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/bus/hal/sim"
	"github.com/ardnew/softi2c/pkg"
)

// =============================================================================
// Slave Address Tests
// =============================================================================

func TestSetSlaveAddress_TenBitSelection(t *testing.T) {
	probeErr := errors.New("probe failed")

	tests := []struct {
		name      string
		funcs     hal.Functionality
		probeErr  error
		tenBit    bool
		wantIoctl bool
	}{
		{"7-bit adapter, 7-bit slave", hal.FuncI2C, nil, false, false},
		{"10-bit adapter, 7-bit slave", hal.FuncI2C | hal.Func10BitAddr, nil, false, true},
		{"7-bit adapter, 10-bit slave", hal.FuncI2C, nil, true, true},
		{"10-bit adapter, 10-bit slave", hal.FuncI2C | hal.Func10BitAddr, nil, true, true},
		{"probe failure, 7-bit slave", 0, probeErr, false, false},
		{"probe failure, 10-bit slave", 0, probeErr, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &mockController{}
			ctrl.On("Functionality").Return(tt.funcs, tt.probeErr)
			ctrl.On("SetTenBit", tt.tenBit).Return(nil)
			ctrl.On("SetSlaveAddress", uint16(0x50), false).Return(nil)
			b := New(ctrl)

			require.NoError(t, b.SetSlaveAddress(0x50, tt.tenBit))

			if tt.wantIoctl {
				ctrl.AssertCalled(t, "SetTenBit", tt.tenBit)
			} else {
				ctrl.AssertNotCalled(t, "SetTenBit", mock.Anything)
			}
			addr, ok := b.SlaveAddress()
			assert.True(t, ok)
			assert.Equal(t, uint16(0x50), addr)
			assert.Equal(t, tt.tenBit, b.TenBit())
		})
	}
}

func TestSetSlaveAddress_Rejected(t *testing.T) {
	ctrl := &mockController{}
	ctrl.On("Functionality").Return(hal.FuncI2C, nil)
	ctrl.On("SetSlaveAddress", uint16(0x50), false).Return(nil).Once()
	ctrl.On("SetSlaveAddress", uint16(0x60), false).Return(unix.EBUSY).Once()
	b := New(ctrl)

	require.NoError(t, b.SetSlaveAddress(0x50, false))
	assert.ErrorIs(t, b.SetSlaveAddress(0x60, false), unix.EBUSY)

	addr, ok := b.SlaveAddress()
	assert.True(t, ok)
	assert.Equal(t, uint16(0x50), addr, "failed selection must not replace the address")
}

func TestSetSlaveAddress_TenBitError(t *testing.T) {
	ctrl := &mockController{}
	ctrl.On("Functionality").Return(hal.FuncI2C, nil)
	ctrl.On("SetTenBit", true).Return(unix.EINVAL)
	b := New(ctrl)

	assert.ErrorIs(t, b.SetSlaveAddress(0x150, true), unix.EINVAL)
	ctrl.AssertNotCalled(t, "SetSlaveAddress", mock.Anything, mock.Anything)
	_, ok := b.SlaveAddress()
	assert.False(t, ok)
}

func TestSetSlaveAddress_TenBitLeftSet(t *testing.T) {
	ctrl := sim.New(sim.WithFunctionality(hal.FuncI2C))
	b := New(ctrl)

	require.NoError(t, b.SetSlaveAddress(0x150, true))
	require.NoError(t, b.SetSlaveAddress(0x50, false))

	_, _, tenBit, _, _, _ := ctrl.State()
	assert.True(t, tenBit, "I2C_TENBIT is not cleared on an adapter without 10-bit support")
	assert.False(t, b.TenBit())
}

func TestForceSlaveAddress(t *testing.T) {
	ctrl := sim.New(sim.WithBusyAddress(0x50), sim.WithTarget(0x50, sim.NewMemory(256)))
	b := New(ctrl)

	assert.ErrorIs(t, b.SetSlaveAddress(0x50, false), unix.EBUSY)
	require.NoError(t, b.ForceSlaveAddress(0x50, false))

	addr, set, _, _, _, _ := ctrl.State()
	assert.True(t, set)
	assert.Equal(t, uint16(0x50), addr)
}

// =============================================================================
// Channel Configuration Tests
// =============================================================================

func TestSetTimeout(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want uint
	}{
		{0, 0},
		{25 * time.Millisecond, 25},
		{1500 * time.Microsecond, 1},
		{2 * time.Second, 2000},
	}

	for _, tt := range tests {
		ctrl := &mockController{}
		ctrl.On("SetTimeoutMillis", tt.want).Return(nil).Once()
		b := New(ctrl)

		require.NoError(t, b.SetTimeout(tt.d), "SetTimeout(%v)", tt.d)
		ctrl.AssertExpectations(t)
	}
}

func TestSetTimeout_Negative(t *testing.T) {
	ctrl := &mockController{}
	b := New(ctrl)

	assert.ErrorIs(t, b.SetTimeout(-time.Millisecond), pkg.ErrInvalidParameter)
	ctrl.AssertNotCalled(t, "SetTimeoutMillis", mock.Anything)
}

func TestSetRetriesAndPEC(t *testing.T) {
	ctrl := sim.New()
	b := New(ctrl)

	assert.ErrorIs(t, b.SetRetries(-1), pkg.ErrInvalidParameter)
	require.NoError(t, b.SetRetries(3))
	require.NoError(t, b.SetPEC(true))

	_, _, _, pec, retries, _ := ctrl.State()
	assert.True(t, pec)
	assert.Equal(t, 3, retries)
}

// =============================================================================
// Lifecycle and Raw I/O Tests
// =============================================================================

func TestClose_Idempotent(t *testing.T) {
	ctrl := &mockController{}
	ctrl.On("Close").Return(nil).Once()
	b := New(ctrl)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	ctrl.AssertNumberOfCalls(t, "Close", 1)
}

func TestReadWrite(t *testing.T) {
	b, _, mem := newSimBus(t, hal.FuncI2C)

	n, err := b.Write([]byte{0x08, 0xDE, 0xAD})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []byte{0xDE, 0xAD}, mem.Bytes()[0x08:0x0A])

	_, err = b.Write([]byte{0x08})
	require.NoError(t, err)
	buf := make([]byte, 2)
	n, err = b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0xDE, 0xAD}, buf)
}

func TestReadWrite_NoSlaveAddress(t *testing.T) {
	b := New(sim.New())

	_, err := b.Read(make([]byte, 1))
	assert.ErrorIs(t, err, pkg.ErrNoSlaveAddress)
}

func TestNew_Options(t *testing.T) {
	b := New(sim.New(), WithName("i2c-sim"), WithSession("fixed"))
	assert.Equal(t, "i2c-sim", b.Name())
	assert.Equal(t, "fixed", b.Session())

	assert.Empty(t, New(sim.New()).Session(), "no session without a tracer")
}
