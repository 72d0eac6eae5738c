package bus

import (
	"github.com/stretchr/testify/mock"

	"github.com/ardnew/softi2c/bus/hal"
)

// mockController is a testify mock of hal.Controller.
type mockController struct {
	mock.Mock
}

var _ hal.Controller = (*mockController)(nil)

func (m *mockController) Functionality() (hal.Functionality, error) {
	args := m.Called()
	return args.Get(0).(hal.Functionality), args.Error(1)
}

func (m *mockController) Transfer(msgs []hal.Msg) error {
	return m.Called(msgs).Error(0)
}

func (m *mockController) SMBus(rw hal.ReadWrite, command uint8, size hal.SMBusSize, data *hal.SMBusData) error {
	return m.Called(rw, command, size, data).Error(0)
}

func (m *mockController) SetSlaveAddress(addr uint16, force bool) error {
	return m.Called(addr, force).Error(0)
}

func (m *mockController) SetTenBit(enable bool) error {
	return m.Called(enable).Error(0)
}

func (m *mockController) SetPEC(enable bool) error {
	return m.Called(enable).Error(0)
}

func (m *mockController) SetRetries(n int) error {
	return m.Called(n).Error(0)
}

func (m *mockController) SetTimeoutMillis(ms uint) error {
	return m.Called(ms).Error(0)
}

func (m *mockController) Read(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *mockController) Write(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *mockController) Close() error {
	return m.Called().Error(0)
}

// reportLen returns a Run function that overwrites the reported length of
// message i, as a controller does after a short read.
func reportLen(i int, n uint16) func(mock.Arguments) {
	return func(args mock.Arguments) {
		args.Get(0).([]hal.Msg)[i].Len = n
	}
}
