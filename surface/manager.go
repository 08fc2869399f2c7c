package surface

import (
	"context"
	"sync"
	"time"

	"go-mackie/debug"
	"go-mackie/hostlink"
	"go-mackie/midi"
	"go-mackie/state"
	"go-mackie/timer"
)

// Status is a copy of the manager state for readers outside the loop.
type Status struct {
	Sessions  []string // creation order, as FocusIndex counts

	Focused   string
	ValueMode bool
	Motors    bool
	KnobMode  bool
	Timers    int
}

// Manager owns the sessions and runs the one loop every handler runs on.
//
// Inbound MIDI, host updates, timer ticks and commands from other goroutines
// are handled one at a time, each to completion. Only the focused session
// writes to the hardware; the others keep their state and are repainted
// when focused.
type Manager struct {
	desk    *Desk
	host    hostlink.Host
	devices *midi.DeviceManager
	clock   state.Clock
	cadence time.Duration

	// loop-owned
	sessions map[string]*state.Context
	order    []string
	focused  *state.Context

	commands chan func()

	mu     sync.RWMutex
	status Status

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager creates a manager for desk. host and devices may be nil.
func NewManager(desk *Desk, host hostlink.Host, devices *midi.DeviceManager, clock state.Clock, cadence time.Duration) *Manager {
	if cadence <= 0 {
		cadence = timer.DefaultCadence
	}
	m := &Manager{
		desk:       desk,
		host:       host,
		devices:    devices,
		clock:      clock,
		cadence:    cadence,
		sessions:   make(map[string]*state.Context),
		commands:   make(chan func(), 16),
		UpdateChan: make(chan struct{}, 1),
	}

	gate := func(ctx *state.Context) bool { return ctx == m.focused }
	for _, u := range desk.Units {
		u.SetGate(gate)
	}
	desk.SetSink(m.write)
	desk.SetContext(m.Focused)
	return m
}

// Focused returns the focused context, or nil. Loop only.
func (m *Manager) Focused() *state.Context { return m.focused }

// Session returns a session's context. Loop only.
func (m *Manager) Session(id string) (*state.Context, bool) {
	ctx, ok := m.sessions[id]
	return ctx, ok
}

// Status returns a snapshot taken after the last handled event.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.status
	s.Sessions = append([]string(nil), m.status.Sessions...)
	return s
}

// Do queues fn to run on the loop. It is safe to call from any goroutine.
func (m *Manager) Do(fn func()) {
	m.commands <- fn
}

// Run handles events until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	var inbound <-chan midi.Inbound
	var events <-chan midi.DeviceEvent
	if m.devices != nil {
		inbound = m.devices.Inbound()
		events = m.devices.Events()
		go m.devices.Run(ctx)
	}
	var updates <-chan hostlink.Update
	if m.host != nil {
		updates = m.host.Updates()
	}

	ticker := time.NewTicker(m.cadence)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in := <-inbound:
			m.desk.Dispatch(in.Unit, in.Msg)
		case u, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			m.Apply(u)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			m.deviceEvent(ev)
		case fn := <-m.commands:
			fn()
		case <-ticker.C:
			m.Tick()
		}
		m.notifyUpdate()
	}
}

// Apply handles one host update.
func (m *Manager) Apply(u hostlink.Update) {
	switch u.Kind {
	case hostlink.KindActivate:
		m.Activate(u.Session)
		return
	case hostlink.KindDeactivate:
		m.Deactivate(u.Session)
		return
	}

	v, ok := m.desk.Param(u.Param)
	if !ok {
		debug.Log("host", "unknown parameter %q", u.Param)
		return
	}
	ctx := m.session(u.Session)

	switch u.Kind {
	case hostlink.KindValue:
		v.Update(ctx, u.Value)
	case hostlink.KindText:
		v.SetDisplayText(ctx, u.Text, u.Units)
	case hostlink.KindTitle:
		v.SetTitle(ctx, u.Title, u.Secondary)
	case hostlink.KindColor:
		v.SetColor(ctx, u.Color, u.Active)
	}
}

// session returns the context for id, creating it if needed. The first
// session is focused.
func (m *Manager) session(id string) *state.Context {
	if ctx, ok := m.sessions[id]; ok {
		return ctx
	}
	ctx := state.NewContext(id, m.clock)
	m.sessions[id] = ctx
	m.order = append(m.order, id)
	debug.Logger().Info("session created", "session", id)
	if m.focused == nil {
		m.focus(ctx)
	}
	return ctx
}

// Activate creates or focuses a session and repaints the desk.
func (m *Manager) Activate(id string) {
	ctx := m.session(id)
	if ctx != m.focused {
		m.focus(ctx)
	}
}

func (m *Manager) focus(ctx *state.Context) {
	m.focused = ctx
	if ctx == nil {
		return
	}
	debug.Logger().Info("session focused", "session", ctx.ID())
	m.desk.Resync(ctx, -1)
}

// Deactivate ends a session: its store and timers are discarded. If it was
// focused, the oldest remaining session takes over.
func (m *Manager) Deactivate(id string) {
	ctx, ok := m.sessions[id]
	if !ok {
		return
	}
	ctx.Deactivate()
	m.desk.Timer.Reset(ctx)
	delete(m.sessions, id)
	for i, s := range m.order {
		if s == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	debug.Logger().Info("session ended", "session", id)

	if m.focused == ctx {
		var next *state.Context
		if len(m.order) > 0 {
			next = m.sessions[m.order[0]]
		}
		m.focus(next)
	}
}

// Tick runs the timers of every session whose trigger is set.
func (m *Manager) Tick() {
	for _, id := range m.order {
		ctx := m.sessions[id]
		if m.desk.Timer.Running(ctx) {
			m.desk.Timer.Tick(ctx)
		}
	}
}

// ToggleValueMode flips the strip value mode of the focused session.
func (m *Manager) ToggleValueMode() {
	if m.focused != nil && m.desk.ValueMode != nil {
		m.desk.ValueMode.Flip(m.focused)
	}
}

// ToggleMotors flips the fader motors of the focused session.
func (m *Manager) ToggleMotors() {
	if m.focused != nil && m.desk.Motors != nil {
		m.desk.Motors.Flip(m.focused)
	}
}

// FocusIndex focuses the n-th session in creation order.
func (m *Manager) FocusIndex(n int) {
	if n >= 0 && n < len(m.order) {
		m.Activate(m.order[n])
	}
}

func (m *Manager) deviceEvent(ev midi.DeviceEvent) {
	if ev.Unit == nil {
		return
	}
	if ev.Type == midi.DeviceConnected && m.focused != nil {
		debug.Log("device", "resync unit %d", ev.Unit.Index)
		m.desk.Resync(m.focused, ev.Unit.Index)
	}
}

// write sends a surface-originated value to the host.
func (m *Manager) write(ctx *state.Context, param string, value float64) {
	if m.host == nil {
		return
	}
	if err := m.host.Set(ctx.ID(), param, value); err != nil {
		debug.Log("host", "set %s: %v", param, err)
	}
}

// notifyUpdate refreshes the status snapshot and notifies the TUI
func (m *Manager) notifyUpdate() {
	s := Status{Sessions: append([]string(nil), m.order...)}
	if ctx := m.focused; ctx != nil {
		s.Focused = ctx.ID()
		s.ValueMode = m.desk.Strips.ValueMode(ctx)
		s.Motors = m.desk.Faders.MotorsEnabled(ctx)
		if m.desk.Jog != nil {
			s.KnobMode = m.desk.Jog.KnobMode(ctx)
		}
		s.Timers = m.desk.Timer.Pending(ctx)
	}

	m.mu.Lock()
	m.status = s
	m.mu.Unlock()

	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
