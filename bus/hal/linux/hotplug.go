//go:build linux

package linux

import (
	"bytes"
	"context"
	"errors"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/ardnew/softi2c/pkg"
)

// =============================================================================
// Event Types
// =============================================================================

// EventKind describes what happened to an i2c-dev node.
type EventKind uint8

const (
	EventAdd EventKind = iota + 1
	EventRemove
)

// String returns "add" or "remove".
func (k EventKind) String() string {
	switch k {
	case EventAdd:
		return "add"
	case EventRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event reports an i2c-dev node appearing or disappearing.
type Event struct {
	Kind      EventKind
	Name      string // Node name ("i2c-1")
	Number    int    // Adapter number
	SysfsPath string // Path in /sys/class/i2c-dev
	DevPath   string // Expected device node path
	Major     uint32
	Minor     uint32
	Adapter   string // Adapter name, when readable at add time
}

// =============================================================================
// UEvent Types
// =============================================================================

// ueventAction represents a udev action.
type ueventAction uint8

const (
	ueventUnknown ueventAction = iota
	ueventAdd
	ueventRemove
	ueventChange
	ueventBind
	ueventUnbind
)

var ueventActions = map[string]ueventAction{
	"add":    ueventAdd,
	"remove": ueventRemove,
	"change": ueventChange,
	"bind":   ueventBind,
	"unbind": ueventUnbind,
}

// uevent represents a parsed netlink uevent.
type uevent struct {
	action    ueventAction
	devpath   string // DEVPATH value
	subsystem string // SUBSYSTEM value
	devname   string // DEVNAME value
	major     string // MAJOR value
	minor     string // MINOR value
}

// =============================================================================
// UEvent Parsing
// =============================================================================

// parseUEvent parses a netlink uevent message: an "action@devpath" header
// followed by NUL-separated KEY=value pairs.
func parseUEvent(data []byte) uevent {
	evt := uevent{}

	for _, line := range bytes.Split(data, []byte{0}) {
		if len(line) == 0 {
			continue
		}
		s := string(line)

		key, value, ok := strings.Cut(s, "=")
		if !ok {
			if action, devpath, ok := strings.Cut(s, "@"); ok {
				if a, known := ueventActions[action]; known {
					evt.action = a
					evt.devpath = devpath
				}
			}
			continue
		}

		switch key {
		case "ACTION":
			evt.action = ueventActions[value]
		case "DEVPATH":
			evt.devpath = value
		case "SUBSYSTEM":
			evt.subsystem = value
		case "DEVNAME":
			evt.devname = value
		case "MAJOR":
			evt.major = value
		case "MINOR":
			evt.minor = value
		}
	}

	return evt
}

// toEvent converts an i2c-dev add or remove uevent to an Event. Other
// subsystems and actions report false.
func (s Scanner) toEvent(u uevent) (Event, bool) {
	if u.subsystem != SubsystemI2CDev {
		return Event{}, false
	}

	var kind EventKind
	switch u.action {
	case ueventAdd:
		kind = EventAdd
	case ueventRemove:
		kind = EventRemove
	default:
		return Event{}, false
	}

	name := path.Base(u.devname)
	if u.devname == "" {
		name = path.Base(u.devpath)
	}
	number, ok := parseDeviceNumber(name)
	if !ok {
		return Event{}, false
	}

	evt := Event{
		Kind:      kind,
		Name:      name,
		Number:    number,
		SysfsPath: filepath.Join(s.sysfsRoot(), name),
		DevPath:   filepath.Join(s.devRoot(), name),
	}
	if v, err := strconv.ParseUint(u.major, 10, 32); err == nil {
		evt.Major = uint32(v)
	}
	if v, err := strconv.ParseUint(u.minor, 10, 32); err == nil {
		evt.Minor = uint32(v)
	}
	if kind == EventAdd {
		if info, err := s.Parse(name); err == nil {
			evt.Adapter = info.Name
		}
	}
	return evt, true
}

// =============================================================================
// Hotplug Monitor
// =============================================================================

// hotplugMonitor reads kernel uevents from a netlink socket.
type hotplugMonitor struct {
	fd  int                    // Netlink socket file descriptor
	buf [UEventBufferSize]byte // Buffer for receiving events
}

// newHotplugMonitor opens a non-blocking netlink socket bound to the kernel
// uevent broadcast group.
func newHotplugMonitor() (*hotplugMonitor, error) {
	fd, err := unix.Socket(
		unix.AF_NETLINK,
		unix.SOCK_DGRAM|unix.SOCK_CLOEXEC|unix.SOCK_NONBLOCK,
		NetlinkKObjectUEvent,
	)
	if err != nil {
		return nil, err
	}

	addr := unix.SockaddrNetlink{
		Family: unix.AF_NETLINK,
		Groups: NetlinkKernelGroup,
	}
	if err := unix.Bind(fd, &addr); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &hotplugMonitor{fd: fd}, nil
}

// close closes the netlink socket.
func (h *hotplugMonitor) close() error {
	return unix.Close(h.fd)
}

// next reads one uevent. It returns false when no data is available.
func (h *hotplugMonitor) next() (uevent, bool, error) {
	n, err := unix.Read(h.fd, h.buf[:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return uevent{}, false, nil
		}
		return uevent{}, false, err
	}
	if n <= 0 {
		return uevent{}, false, nil
	}
	return parseUEvent(h.buf[:n]), true, nil
}

// =============================================================================
// Watch
// =============================================================================

// Watch reports i2c-dev nodes being added and removed using the standard
// system paths. See Scanner.Watch.
func Watch(ctx context.Context) (<-chan Event, error) {
	return Scanner{}.Watch(ctx)
}

// Watch monitors kernel uevents for i2c-dev nodes until ctx is cancelled,
// after which the returned channel is closed. Events are dropped when the
// receiver falls more than EventQueueSize events behind.
func (s Scanner) Watch(ctx context.Context) (<-chan Event, error) {
	p, err := newPoller()
	if err != nil {
		return nil, err
	}

	mon, err := newHotplugMonitor()
	if err != nil {
		p.close()
		return nil, err
	}

	ch := make(chan Event, EventQueueSize)

	onReadable := func(uint32) {
		for {
			u, ok, err := mon.next()
			if err != nil {
				pkg.LogWarn(pkg.ComponentHotplug, "uevent read failed", "error", err)
				return
			}
			if !ok {
				return
			}
			evt, ok := s.toEvent(u)
			if !ok {
				continue
			}
			pkg.LogDebug(pkg.ComponentHotplug, "i2c-dev event",
				"kind", evt.Kind, "name", evt.Name)
			select {
			case ch <- evt:
			default:
				pkg.LogWarn(pkg.ComponentHotplug, "event queue full, dropping event",
					"kind", evt.Kind, "name", evt.Name)
			}
		}
	}

	if err := p.addFD(mon.fd, unix.EPOLLIN, onReadable); err != nil {
		mon.close()
		p.close()
		return nil, err
	}

	go func() {
		defer close(ch)
		defer mon.close()
		defer p.close()

		stop := context.AfterFunc(ctx, p.stop)
		defer stop()

		if err := p.poll(); err != nil {
			pkg.LogError(pkg.ComponentHotplug, "poll loop failed", "error", err)
		}
	}()

	pkg.LogDebug(pkg.ComponentHotplug, "watching i2c-dev uevents")
	return ch, nil
}
