package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/softi2c/bus"
	"github.com/ardnew/softi2c/bus/hal"
	"github.com/ardnew/softi2c/bus/hal/sim"
	"github.com/ardnew/softi2c/pkg"
)

const sample = `
bus:
  path: /dev/i2c-3
  address: 0x50
  retries: 2
  timeout: 50ms
  pec: true
log:
  level: debug
  format: json
trace:
  file: /tmp/i2c.trace
sim:
  enabled: true
  functionality: [I2C, NOSTART, SMBUS_READ_I2C_BLOCK]
  targets:
    - address: 0x50
      data: [0xDE, 0xAD]
    - address: 0x68
      size: 16
      recv_len: 4
`

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, DefaultBusPath, c.Bus.Path)
	assert.Nil(t, c.Bus.Address)
	assert.Equal(t, "warn", c.Log.Level)
	assert.NoError(t, c.Validate())
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "/dev/i2c-3", c.Bus.Path)
	require.NotNil(t, c.Bus.Address)
	assert.Equal(t, uint16(0x50), *c.Bus.Address)
	require.NotNil(t, c.Bus.Retries)
	assert.Equal(t, 2, *c.Bus.Retries)
	assert.True(t, c.Bus.PEC)
	assert.Equal(t, "json", c.Log.Format)
	assert.Equal(t, "/tmp/i2c.trace", c.Trace.File)

	d, ok, err := c.Bus.TimeoutDuration()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 50*time.Millisecond, d)

	require.Len(t, c.Sim.Targets, 2)
	assert.Equal(t, 256, c.Sim.Targets[0].Size, "size defaults to 256")
	assert.Equal(t, []uint8{0xDE, 0xAD}, c.Sim.Targets[0].Data)
	assert.Equal(t, 16, c.Sim.Targets[1].Size)

	f, err := c.Sim.FunctionalityBits()
	require.NoError(t, err)
	assert.Equal(t, hal.FuncI2C|hal.FuncNoStart|hal.FuncSMBusReadI2CBlock, f)
}

func TestParse_Defaults(t *testing.T) {
	c, err := Parse([]byte("trace:\n  file: out.cbor\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBusPath, c.Bus.Path)
	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)

	f, err := c.Sim.FunctionalityBits()
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultFunctionality, f)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"log level", "log:\n  level: loud\n"},
		{"log format", "log:\n  format: xml\n"},
		{"timeout", "bus:\n  timeout: soon\n"},
		{"negative timeout", "bus:\n  timeout: -1s\n"},
		{"retries", "bus:\n  retries: -1\n"},
		{"functionality", "sim:\n  functionality: [WARP_DRIVE]\n"},
		{"target size", "sim:\n  targets:\n    - address: 0x50\n      size: 512\n"},
		{"target data", "sim:\n  targets:\n    - address: 0x50\n      size: 1\n      data: [1, 2]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, pkg.ErrInvalidParameter)
		})
	}

	_, err := Parse([]byte("bus:\n  address: 0x400\n"))
	assert.ErrorIs(t, err, pkg.ErrInvalidAddress)

	_, err = Parse([]byte("bus: [unclosed"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "i2cbus.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/dev/i2c-3", c.Bus.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigure(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)

	ctrl, err := c.Sim.Controller()
	require.NoError(t, err)
	b := bus.New(ctrl)
	require.NoError(t, c.Bus.Configure(b))

	addr, set, _, pec, retries, timeout := ctrl.State()
	assert.True(t, set)
	assert.Equal(t, uint16(0x50), addr)
	assert.True(t, pec)
	assert.Equal(t, 2, retries)
	assert.Equal(t, uint(50), timeout)

	buf := make([]byte, 2)
	_, err = b.ReadBlock(0x00, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD}, buf)
}

func TestConfigure_NoAddress(t *testing.T) {
	b := bus.New(sim.New())
	require.NoError(t, BusConfig{}.Configure(b))
	_, ok := b.SlaveAddress()
	assert.False(t, ok)
}
