package state

import "time"

// Clock supplies the current time to a context.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	now time.Time
}

// NewManualClock returns a clock frozen at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

func (c *ManualClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) { c.now = t }

// Context is the handle passed into every callback of one activation session.
// It owns the session's key/value store; everything stateful in the binding
// layer keeps its state here, keyed by name.
//
// A Context is not safe for concurrent use. All handlers for one context run
// serialized on the surface event loop.
type Context struct {
	id     string
	clock  Clock
	values map[string]string
	active bool
}

// NewContext creates an active context. A nil clock means wall time.
func NewContext(id string, clock Clock) *Context {
	if clock == nil {
		clock = systemClock{}
	}
	return &Context{
		id:     id,
		clock:  clock,
		values: make(map[string]string),
		active: true,
	}
}

// ID returns the session identifier the context was created with.
func (c *Context) ID() string { return c.id }

// Now returns the context's notion of the current time.
func (c *Context) Now() time.Time { return c.clock.Now() }

// Active reports whether the session is still live.
func (c *Context) Active() bool { return c.active }

// Deactivate ends the session and discards every stored entry.
func (c *Context) Deactivate() {
	c.active = false
	c.values = make(map[string]string)
}

// Reactivate starts a fresh session on the same handle with an empty store.
func (c *Context) Reactivate() {
	c.active = true
	c.values = make(map[string]string)
}

// SetRaw stores an encoded value under name.
func (c *Context) SetRaw(name, value string) {
	c.values[name] = value
}

// GetRaw returns the encoded value stored under name.
func (c *Context) GetRaw(name string) (string, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Len returns the number of stored entries.
func (c *Context) Len() int { return len(c.values) }
