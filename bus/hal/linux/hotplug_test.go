//go:build linux

package linux

import (
	"context"
	"testing"
	"time"
)

// =============================================================================
// uevent Parsing Tests
// =============================================================================

func TestParseUEvent_Add(t *testing.T) {
	data := []byte(
		"add@/devices/platform/soc/fe804000.i2c/i2c-1/i2c-dev/i2c-1\x00" +
			"ACTION=add\x00" +
			"DEVPATH=/devices/platform/soc/fe804000.i2c/i2c-1/i2c-dev/i2c-1\x00" +
			"SUBSYSTEM=i2c-dev\x00" +
			"MAJOR=89\x00" +
			"MINOR=1\x00" +
			"DEVNAME=i2c-1\x00" +
			"SEQNUM=4321\x00",
	)

	evt := parseUEvent(data)

	if evt.action != ueventAdd {
		t.Errorf("action = %d, want ueventAdd (%d)", evt.action, ueventAdd)
	}
	if evt.devpath != "/devices/platform/soc/fe804000.i2c/i2c-1/i2c-dev/i2c-1" {
		t.Errorf("devpath = %q, unexpected value", evt.devpath)
	}
	if evt.subsystem != "i2c-dev" {
		t.Errorf("subsystem = %q, want %q", evt.subsystem, "i2c-dev")
	}
	if evt.devname != "i2c-1" {
		t.Errorf("devname = %q, want %q", evt.devname, "i2c-1")
	}
	if evt.major != "89" || evt.minor != "1" {
		t.Errorf("major:minor = %s:%s, want 89:1", evt.major, evt.minor)
	}
}

func TestParseUEvent_HeaderOnly(t *testing.T) {
	tests := []struct {
		data   string
		action ueventAction
	}{
		{"remove@/devices/i2c-3/i2c-dev/i2c-3\x00", ueventRemove},
		{"change@/devices/i2c-3\x00", ueventChange},
		{"bind@/devices/i2c-3\x00", ueventBind},
		{"unbind@/devices/i2c-3\x00", ueventUnbind},
		{"libudev\x00", ueventUnknown},
	}

	for _, tt := range tests {
		evt := parseUEvent([]byte(tt.data))
		if evt.action != tt.action {
			t.Errorf("parseUEvent(%q).action = %d, want %d", tt.data, evt.action, tt.action)
		}
	}
}

func TestParseUEvent_Empty(t *testing.T) {
	evt := parseUEvent(nil)
	if evt.action != ueventUnknown || evt.subsystem != "" {
		t.Errorf("parseUEvent(nil) = %+v, want zero", evt)
	}
}

// =============================================================================
// Event Conversion Tests
// =============================================================================

func TestToEvent(t *testing.T) {
	s := fakeSysfs(t, map[string]string{"i2c-1": "bcm2835 (i2c@7e804000)"})

	evt, ok := s.toEvent(uevent{
		action:    ueventAdd,
		devpath:   "/devices/platform/i2c-1/i2c-dev/i2c-1",
		subsystem: SubsystemI2CDev,
		devname:   "i2c-1",
		major:     "89",
		minor:     "1",
	})
	if !ok {
		t.Fatal("toEvent rejected an i2c-dev add")
	}
	if evt.Kind != EventAdd || evt.Number != 1 || evt.Name != "i2c-1" {
		t.Errorf("event = %+v", evt)
	}
	if evt.Adapter != "bcm2835 (i2c@7e804000)" {
		t.Errorf("Adapter = %q", evt.Adapter)
	}
	if evt.Major != 89 || evt.Minor != 1 {
		t.Errorf("Major:Minor = %d:%d", evt.Major, evt.Minor)
	}
}

func TestToEvent_RemoveFromDevpath(t *testing.T) {
	s := fakeSysfs(t, nil)

	evt, ok := s.toEvent(uevent{
		action:    ueventRemove,
		devpath:   "/devices/platform/i2c-5/i2c-dev/i2c-5",
		subsystem: SubsystemI2CDev,
	})
	if !ok {
		t.Fatal("toEvent rejected an i2c-dev remove")
	}
	if evt.Kind != EventRemove || evt.Number != 5 {
		t.Errorf("event = %+v", evt)
	}
	if evt.Adapter != "" {
		t.Errorf("Adapter = %q for remove, want empty", evt.Adapter)
	}
}

func TestToEvent_Filtered(t *testing.T) {
	s := fakeSysfs(t, nil)

	tests := []struct {
		name string
		u    uevent
	}{
		{"other subsystem", uevent{action: ueventAdd, subsystem: "i2c", devname: "i2c-1"}},
		{"change action", uevent{action: ueventChange, subsystem: SubsystemI2CDev, devname: "i2c-1"}},
		{"bad name", uevent{action: ueventAdd, subsystem: SubsystemI2CDev, devname: "i2c-x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := s.toEvent(tt.u); ok {
				t.Error("toEvent accepted a filtered uevent")
			}
		})
	}
}

func TestEventKind_String(t *testing.T) {
	if EventAdd.String() != "add" || EventRemove.String() != "remove" {
		t.Error("EventKind.String mismatch")
	}
	if EventKind(0).String() != "unknown" {
		t.Error("zero EventKind should be unknown")
	}
}

// =============================================================================
// Watch Tests
// =============================================================================

func TestWatch_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := Watch(ctx)
	if err != nil {
		t.Skipf("netlink unavailable: %v", err)
	}

	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}
