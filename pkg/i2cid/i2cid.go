package i2cid

import (
	"bufio"
	_ "embed"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// DefaultPaths lists the locations searched for an address database.
var DefaultPaths = []string{
	"/etc/i2cbus/i2c.ids",
	"/usr/share/i2cbus/i2c.ids",
	"/usr/local/share/i2cbus/i2c.ids",
}

//go:embed builtin.ids
var builtin string

// Part is one device known to answer at an address.
type Part struct {
	Name        string
	Description string
}

// Database caches device hints by slave address.
type Database struct {
	classes  map[uint16]string
	parts    map[uint16][]Part
	loaded   bool
	fromFile bool
	mu       sync.RWMutex
	paths    []string
}

// New creates a database that searches DefaultPaths.
func New() *Database {
	return NewWithPaths(DefaultPaths)
}

// NewWithPaths creates a database that searches the specified paths.
func NewWithPaths(paths []string) *Database {
	return &Database{
		classes: make(map[uint16]string),
		parts:   make(map[uint16][]Part),
		paths:   paths,
	}
}

// Load reads the first database file found, or the built-in table when
// there is none. Subsequent calls, and calls after Parse, do nothing.
//
// Returns true if a database file was read.
func (db *Database) Load() bool {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.loaded {
		return db.fromFile
	}
	db.loaded = true

	for _, path := range db.paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		err = db.parse(f)
		f.Close()
		if err == nil {
			db.fromFile = true
			return true
		}
	}

	db.parse(strings.NewReader(builtin))
	return false
}

// Parse adds the entries read from r. Malformed lines are skipped.
func (db *Database) Parse(r io.Reader) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.loaded = true
	return db.parse(r)
}

func (db *Database) parse(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	var addr uint16
	valid := false

	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 || line[0] == '#' {
			continue
		}

		if line[0] == '\t' {
			if !valid {
				continue
			}
			name, desc, _ := strings.Cut(strings.TrimSpace(line), " ")
			if name == "" {
				continue
			}
			db.parts[addr] = append(db.parts[addr], Part{
				Name:        name,
				Description: strings.TrimSpace(desc),
			})
			continue
		}

		valid = false
		if len(line) < 4 || (line[2] != ' ' && line[2] != '\t') {
			continue
		}
		v, err := strconv.ParseUint(line[:2], 16, 8)
		if err != nil || v > 0x7F {
			continue
		}
		addr, valid = uint16(v), true
		db.classes[addr] = strings.TrimSpace(line[3:])
	}
	return scanner.Err()
}

// LookupClass returns the device class at addr, or "" if unknown.
func (db *Database) LookupClass(addr uint16) string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.classes[addr]
}

// LookupParts returns the parts known at addr.
func (db *Database) LookupParts(addr uint16) []Part {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return append([]Part(nil), db.parts[addr]...)
}

// Describe returns the class at addr followed by its part names, for
// example "EEPROM (24c02, 24c256)". It returns "" for unknown addresses.
func (db *Database) Describe(addr uint16) string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	class, ok := db.classes[addr]
	if !ok {
		return ""
	}
	parts := db.parts[addr]
	if len(parts) == 0 {
		return class
	}
	names := make([]string, len(parts))
	for i, p := range parts {
		names[i] = p.Name
	}
	return class + " (" + strings.Join(names, ", ") + ")"
}

// IsLoaded reports whether Load or Parse has run.
func (db *Database) IsLoaded() bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.loaded
}

// AddressCount returns the number of addresses with a class.
func (db *Database) AddressCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.classes)
}

// PartCount returns the number of part entries.
func (db *Database) PartCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	n := 0
	for _, p := range db.parts {
		n += len(p)
	}
	return n
}
