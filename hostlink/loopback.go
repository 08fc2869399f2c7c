package hostlink

import "sync"

// SetCall records one Set on a Loopback.
type SetCall struct {
	Session string
	Param   string
	Value   float64
}

// Loopback is an in-memory Host. Push feeds updates to the surface; every
// Set is recorded and, when Echo is on, fed back as a value update the way
// a host confirms a parameter change.
type Loopback struct {
	Echo bool
	// Keep bounds the recorded Sets to the most recent Keep calls. Zero keeps all.
	Keep int

	mu      sync.Mutex
	updates chan Update
	sets    []SetCall
	closed  bool
}

// NewLoopback creates a loopback host with a buffered update queue.
func NewLoopback(buffer int) *Loopback {
	return &Loopback{updates: make(chan Update, buffer)}
}

// Push queues an update for the surface. It reports false when the queue
// is full or the host is closed.
func (l *Loopback) Push(u Update) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	select {
	case l.updates <- u:
		return true
	default:
		return false
	}
}

// Updates delivers pushed updates.
func (l *Loopback) Updates() <-chan Update { return l.updates }

// Set records a surface-originated value.
func (l *Loopback) Set(session, param string, value float64) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.sets = append(l.sets, SetCall{Session: session, Param: param, Value: value})
	if l.Keep > 0 && len(l.sets) > l.Keep {
		l.sets = append(l.sets[:0], l.sets[len(l.sets)-l.Keep:]...)
	}
	echo := l.Echo
	l.mu.Unlock()

	if echo {
		l.Push(Update{Session: session, Kind: KindValue, Param: param, Value: value})
	}
	return nil
}

// Sets returns a copy of every recorded Set.
func (l *Loopback) Sets() []SetCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]SetCall, len(l.sets))
	copy(out, l.sets)
	return out
}

// Close closes Updates.
func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.updates)
	}
	return nil
}
