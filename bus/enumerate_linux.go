//go:build linux

package bus

import (
	"github.com/ardnew/softi2c/bus/hal/linux"
	"github.com/ardnew/softi2c/pkg"
)

// Enumerate lists the i2c-dev adapters on the host, ordered by number.
// Adapters whose device node is missing are included with an empty
// DevPath.
func Enumerate() ([]Device, error) {
	return EnumerateWith(linux.Scanner{})
}

// EnumerateWith lists adapters using a custom sysfs scanner.
func EnumerateWith(s linux.Scanner) ([]Device, error) {
	infos, err := s.Scan()
	if err != nil {
		pkg.LogWarn(pkg.ComponentEnumerate, "adapter scan failed", "error", err)
		return nil, err
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, Device{
			Number:    info.Number,
			Name:      info.Name,
			SysfsPath: info.SysfsPath,
			DevPath:   info.DevPath,
			Major:     info.Major,
			Minor:     info.Minor,
		})
	}

	pkg.LogDebug(pkg.ComponentEnumerate, "adapters enumerated", "count", len(devices))
	return devices, nil
}
