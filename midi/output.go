package midi

import (
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// Output accepts complete outbound wire frames.
type Output interface {
	Send(msg gomidi.Message) error
}

// SendFunc adapts a gomidi sender (as returned by gomidi.SendTo) to Output.
type SendFunc func(msg gomidi.Message) error

func (f SendFunc) Send(msg gomidi.Message) error { return f(msg) }

// Discard drops every frame.
var Discard Output = SendFunc(func(gomidi.Message) error { return nil })

// Tee sends each frame to every output in order, returning the first error.
func Tee(outs ...Output) Output {
	return SendFunc(func(msg gomidi.Message) error {
		var first error
		for _, o := range outs {
			if o == nil {
				continue
			}
			if err := o.Send(msg); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}

// Recorder captures frames in memory.
type Recorder struct {
	mu     sync.Mutex
	frames [][]byte
}

func (r *Recorder) Send(msg gomidi.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	frame := make([]byte, len(msg))
	copy(frame, msg)
	r.frames = append(r.frames, frame)
	return nil
}

// Frames returns a copy of every captured frame.
func (r *Recorder) Frames() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, len(r.frames))
	copy(out, r.frames)
	return out
}

// Len returns the number of captured frames.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Last returns the most recent frame, or nil.
func (r *Recorder) Last() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return nil
	}
	return r.frames[len(r.frames)-1]
}

// Reset forgets captured frames.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}
