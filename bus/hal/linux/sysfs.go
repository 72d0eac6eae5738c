//go:build linux

package linux

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// =============================================================================
// Adapter Information
// =============================================================================

// DeviceInfo describes one i2c-dev node discovered via sysfs.
type DeviceInfo struct {
	Number    int    // Adapter number N of i2c-N
	Name      string // Adapter name (sysfs "name" attribute)
	SysfsPath string // Path in /sys/class/i2c-dev
	DevPath   string // Device node path, empty when the node does not exist
	Major     uint32 // Device major number
	Minor     uint32 // Device minor number
}

// Scanner enumerates i2c-dev nodes. The zero value scans the standard
// system paths.
type Scanner struct {
	SysfsPath string // Defaults to SysfsI2CDevPath
	DevPath   string // Defaults to DevfsPath
}

func (s Scanner) sysfsRoot() string {
	if s.SysfsPath != "" {
		return s.SysfsPath
	}
	return SysfsI2CDevPath
}

func (s Scanner) devRoot() string {
	if s.DevPath != "" {
		return s.DevPath
	}
	return DevfsPath
}

// =============================================================================
// Sysfs Parsing
// =============================================================================

// Scan returns every i2c-dev node ordered by adapter number. Entries whose
// attributes cannot be parsed are skipped.
func (s Scanner) Scan() ([]DeviceInfo, error) {
	entries, err := os.ReadDir(s.sysfsRoot())
	if err != nil {
		return nil, err
	}

	var devices []DeviceInfo
	for _, entry := range entries {
		if _, ok := parseDeviceNumber(entry.Name()); !ok {
			continue
		}
		info, err := s.Parse(entry.Name())
		if err != nil {
			continue
		}
		devices = append(devices, info)
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].Number < devices[j].Number
	})
	return devices, nil
}

// Parse reads the sysfs attributes of the node named name ("i2c-1").
func (s Scanner) Parse(name string) (DeviceInfo, error) {
	number, ok := parseDeviceNumber(name)
	if !ok {
		return DeviceInfo{}, os.ErrInvalid
	}

	sysfsPath := filepath.Join(s.sysfsRoot(), name)
	info := DeviceInfo{
		Number:    number,
		SysfsPath: sysfsPath,
	}

	major, minor, err := readSysfsDevNumbers(filepath.Join(sysfsPath, "dev"))
	if err != nil {
		return info, err
	}
	info.Major = major
	info.Minor = minor

	// Adapter name lives on the node, and on older kernels only under device/.
	if n, err := readSysfsString(filepath.Join(sysfsPath, "name")); err == nil {
		info.Name = n
	} else if n, err := readSysfsString(filepath.Join(sysfsPath, "device", "name")); err == nil {
		info.Name = n
	}

	devPath := filepath.Join(s.devRoot(), name)
	if _, err := os.Stat(devPath); err == nil {
		info.DevPath = devPath
	}

	return info, nil
}

// =============================================================================
// Sysfs Read Helpers
// =============================================================================

// readSysfsString reads a string from a sysfs attribute file.
func readSysfsString(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// readSysfsDevNumbers parses a "MAJOR:MINOR" dev attribute.
func readSysfsDevNumbers(path string) (major, minor uint32, err error) {
	s, err := readSysfsString(path)
	if err != nil {
		return 0, 0, err
	}
	return parseDevNumbers(s)
}

// parseDevNumbers parses "MAJOR:MINOR".
func parseDevNumbers(s string) (major, minor uint32, err error) {
	hi, lo, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, os.ErrInvalid
	}
	ma, err := strconv.ParseUint(hi, 10, 32)
	if err != nil {
		return 0, 0, err
	}
	mi, err := strconv.ParseUint(lo, 10, 32)
	if err != nil {
		return 0, 0, err
	}
	return uint32(ma), uint32(mi), nil
}

// =============================================================================
// Path Helpers
// =============================================================================

// parseDeviceNumber extracts N from "i2c-N".
func parseDeviceNumber(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, DeviceNamePrefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// FormatDevPath constructs the /dev/i2c-N path for adapter number n.
func FormatDevPath(n int) string {
	var buf [DevfsPathMaxLen]byte
	b := append(buf[:0], DevfsPath...)
	b = append(b, '/')
	b = append(b, DeviceNamePrefix...)
	b = strconv.AppendInt(b, int64(n), 10)
	return string(b)
}
