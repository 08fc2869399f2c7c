package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-mackie/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// DeviceEvent is emitted when a configured unit connects or disconnects
type DeviceEvent struct {
	Type DeviceEventType
	Unit *PortPair
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// UnitPorts names the ports of one configured unit
type UnitPorts struct {
	Role   UnitRole
	Name   string
	Input  string
	Output string
}

// Inbound is one message received from a unit
type Inbound struct {
	Unit int
	Msg  gomidi.Message
}

// DeviceManager keeps configured units attached to their ports as they come and go
type DeviceManager struct {
	units    []*PortPair
	ports    []UnitPorts
	mu       sync.Mutex
	events   chan DeviceEvent
	inbound  chan Inbound
	pollRate time.Duration
}

// NewDeviceManager creates one PortPair per configured unit, in desk order.
// Every unit's frames are copied into mirror when it is non-nil.
func NewDeviceManager(ports []UnitPorts, mirror *Mirror) *DeviceManager {
	dm := &DeviceManager{
		ports:    ports,
		events:   make(chan DeviceEvent, 16),
		inbound:  make(chan Inbound, 256),
		pollRate: time.Second,
	}
	for i, p := range ports {
		pp := NewPortPair(i, p.Role, p.Name, nil)
		if mirror != nil {
			pp.SetMirror(mirror.Output(i, p.Role))
		}
		dm.units = append(dm.units, pp)
	}
	return dm
}

// Units returns the port pairs in desk order
func (dm *DeviceManager) Units() []*PortPair {
	return dm.units
}

// Events returns a channel of connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Inbound returns the channel of messages received from every unit
func (dm *DeviceManager) Inbound() <-chan Inbound {
	return dm.inbound
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) receive(p *PortPair, msg gomidi.Message) {
	frame := make(gomidi.Message, len(msg))
	copy(frame, msg)
	select {
	case dm.inbound <- Inbound{Unit: p.Index, Msg: frame}:
	default:
		debug.Log("wire", "unit %d inbound queue full, dropped % X", p.Index, []byte(frame))
	}
}

func (dm *DeviceManager) scan() {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{inPorts: gomidi.GetInPorts(), outPorts: gomidi.GetOutPorts()}
	}()

	var inPorts []drivers.In
	var outPorts []drivers.Out

	select {
	case result := <-ch:
		inPorts = result.inPorts
		outPorts = result.outPorts
	case <-time.After(3 * time.Second):
		debug.Log("device", "port scan timed out")
		return
	}

	dm.mu.Lock()
	defer dm.mu.Unlock()

	for i, cfg := range dm.ports {
		unit := dm.units[i]
		in := findIn(inPorts, cfg.Input)
		out := findOut(outPorts, cfg.Output)
		present := in != nil && out != nil

		switch {
		case present && !unit.Attached():
			if err := unit.Attach(in, out, dm.receive); err != nil {
				debug.Log("device", "unit %d (%s) attach failed: %v", i, cfg.Name, err)
				unit.Detach()
				continue
			}
			debug.Logger().Info("unit connected", "unit", i, "name", cfg.Name, "role", cfg.Role)
			dm.events <- DeviceEvent{Type: DeviceConnected, Unit: unit}
		case !present && unit.Attached():
			unit.Detach()
			debug.Logger().Warn("unit disconnected", "unit", i, "name", cfg.Name)
			dm.events <- DeviceEvent{Type: DeviceDisconnected, Unit: unit}
		}
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, u := range dm.units {
		u.Detach()
	}
}

func portMatches(portName, want string) bool {
	if want == "" {
		return false
	}
	return strings.Contains(strings.ToLower(portName), strings.ToLower(want))
}

func findIn(ports []drivers.In, want string) drivers.In {
	for _, p := range ports {
		if portMatches(p.String(), want) {
			return p
		}
	}
	return nil
}

func findOut(ports []drivers.Out, want string) drivers.Out {
	for _, p := range ports {
		if portMatches(p.String(), want) {
			return p
		}
	}
	return nil
}
