package sim

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/ardnew/softi2c/bus/hal"
)

// smbusFunc returns the functionality bit required for a transaction.
func smbusFunc(rw hal.ReadWrite, size hal.SMBusSize) hal.Functionality {
	read := rw == hal.SMBusRead
	switch size {
	case hal.SMBusQuick:
		return hal.FuncSMBusQuick
	case hal.SMBusByte:
		if read {
			return hal.FuncSMBusReadByte
		}
		return hal.FuncSMBusWriteByte
	case hal.SMBusByteData:
		if read {
			return hal.FuncSMBusReadByteData
		}
		return hal.FuncSMBusWriteByteData
	case hal.SMBusWordData:
		if read {
			return hal.FuncSMBusReadWordData
		}
		return hal.FuncSMBusWriteWordData
	case hal.SMBusProcCall:
		return hal.FuncSMBusProcCall
	case hal.SMBusBlockData:
		if read {
			return hal.FuncSMBusReadBlockData
		}
		return hal.FuncSMBusWriteBlockData
	case hal.SMBusBlockProcCall:
		return hal.FuncSMBusBlockProcCall
	case hal.SMBusI2CBlockData, hal.SMBusI2CBlockBroken:
		if read {
			return hal.FuncSMBusReadI2CBlock
		}
		return hal.FuncSMBusWriteI2CBlock
	}
	return 0
}

// SMBus implements hal.Controller by mapping each transaction onto target
// reads and writes the way an SMBus-emulating adapter would.
func (c *Controller) SMBus(rw hal.ReadWrite, command uint8, size hal.SMBusSize, data *hal.SMBusData) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	need := smbusFunc(rw, size)
	if need == 0 {
		return fmt.Errorf("sim: I2C_SMBUS size %d: %w", size, unix.EINVAL)
	}
	if !c.funcs.Has(need) {
		return fmt.Errorf("sim: I2C_SMBUS %s %s: %w", rw, size, unix.EOPNOTSUPP)
	}

	t, err := c.current()
	if err != nil {
		return err
	}

	needsData := size != hal.SMBusQuick && !(size == hal.SMBusByte && rw == hal.SMBusWrite)
	if needsData && data == nil {
		return fmt.Errorf("sim: I2C_SMBUS %s %s: %w", rw, size, unix.EFAULT)
	}

	if err := smbusXfer(t, rw, command, size, data); err != nil {
		return err
	}

	call := SMBusCall{Addr: c.addr, RW: rw, Command: command, Size: size}
	if data != nil {
		call.Data = *data
	}
	c.smbus = append(c.smbus, call)
	return nil
}

func smbusXfer(t Target, rw hal.ReadWrite, command uint8, size hal.SMBusSize, data *hal.SMBusData) error {
	read := rw == hal.SMBusRead

	switch size {
	case hal.SMBusQuick:
		return nil

	case hal.SMBusByte:
		if read {
			_, err := t.Read(data[:1], false)
			return err
		}
		return t.Write([]byte{command}, false)

	case hal.SMBusByteData:
		if read {
			return writeThenRead(t, command, data[:1])
		}
		return t.Write([]byte{command, data[0]}, false)

	case hal.SMBusWordData:
		if read {
			return writeThenRead(t, command, data[:2])
		}
		return t.Write([]byte{command, data[0], data[1]}, false)

	case hal.SMBusProcCall:
		if err := t.Write([]byte{command, data[0], data[1]}, false); err != nil {
			return err
		}
		_, err := t.Read(data[:2], false)
		return err

	case hal.SMBusBlockData:
		if read {
			if err := t.Write([]byte{command}, false); err != nil {
				return err
			}
			_, err := t.Read(data[:], true)
			return err
		}
		return t.Write(append([]byte{command, data[0]}, data.Block()...), false)

	case hal.SMBusBlockProcCall:
		if err := t.Write(append([]byte{command, data[0]}, data.Block()...), false); err != nil {
			return err
		}
		_, err := t.Read(data[:], true)
		return err

	case hal.SMBusI2CBlockData, hal.SMBusI2CBlockBroken:
		n := int(data[0])
		if n == 0 || n > hal.SMBusBlockMax {
			return fmt.Errorf("sim: i2c block length %d: %w", n, unix.EINVAL)
		}
		if read {
			return writeThenRead(t, command, data[1:1+n])
		}
		return t.Write(append([]byte{command}, data[1:1+n]...), false)
	}
	return nil
}

func writeThenRead(t Target, command uint8, p []byte) error {
	if err := t.Write([]byte{command}, false); err != nil {
		return err
	}
	_, err := t.Read(p, false)
	return err
}
