package hostlink

import "errors"

// Use errors.Is() to check for these errors in calling code.
var (
	// ErrNotConnected is returned when publishing on a disconnected client.
	ErrNotConnected = errors.New("hostlink: not connected")

	// ErrConnectionFailed is returned when the initial connection attempt fails.
	ErrConnectionFailed = errors.New("hostlink: connection failed")

	// ErrPublishFailed is returned when a publish does not complete.
	ErrPublishFailed = errors.New("hostlink: publish failed")

	// ErrSubscribeFailed is returned when the host topics cannot be subscribed.
	ErrSubscribeFailed = errors.New("hostlink: subscribe failed")

	// ErrBadTopic is returned for topics outside the host layout.
	ErrBadTopic = errors.New("hostlink: unrecognized topic")

	// ErrBadPayload is returned when a payload does not decode.
	ErrBadPayload = errors.New("hostlink: bad payload")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("hostlink: closed")
)
