// Package state is the per-activation key/value store every stateful part
// of the surface is built on.
//
// A Context lives for one activation session. Components declare typed
// slots once at wiring time and read or write them through the context that
// is passed into each callback, so two sessions never share state:
//
//	touched := state.Bool("fader.0.3.touched", false)
//	touched.Set(ctx, true)
//	if touched.Get(ctx) { ... }
package state
