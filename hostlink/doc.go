// Package hostlink connects the surface to the host mixing environment.
//
// The host publishes parameter state (value, display text, title, color)
// per session and receives the values the user changes on the surface.
// Two transports are provided: Client speaks MQTT through paho, Loopback
// keeps everything in memory for tests and the virtual desk.
//
// Topic layout, with prefix from config (default "mackie"):
//
//	<prefix>/<session>/param/<id>/value   {"value":0.5}
//	<prefix>/<session>/param/<id>/text    {"text":"-6.0","units":"dB"}
//	<prefix>/<session>/param/<id>/title   {"title":"Volume","secondary":"Audio 1"}
//	<prefix>/<session>/param/<id>/color   {"r":1,"g":0,"b":0,"a":1,"active":true}
//	<prefix>/<session>/param/<id>/set     {"value":0.5}            (outbound)
//	<prefix>/<session>/activate                                     (empty payload)
//	<prefix>/<session>/deactivate
//
// Parameter ids may contain slashes, e.g. "strip/3/volume".
package hostlink
