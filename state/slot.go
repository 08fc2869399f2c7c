package state

// Slot is a named, typed entry in a context's store.
//
// A read before any write returns the slot's default. So does a read of an
// entry that fails to decode; the binding layer never surfaces store errors.
// Names must be unique per logical variable or values collide.
type Slot[T any] struct {
	name  string
	codec Codec[T]
	def   T
}

// NewSlot declares a slot with an explicit codec.
func NewSlot[T any](name string, codec Codec[T], def T) Slot[T] {
	return Slot[T]{name: name, codec: codec, def: def}
}

// Float declares a float64 slot.
func Float(name string, def float64) Slot[float64] {
	return NewSlot[float64](name, FloatCodec{}, def)
}

// Bool declares a bool slot.
func Bool(name string, def bool) Slot[bool] {
	return NewSlot[bool](name, BoolCodec{}, def)
}

// Int declares an int64 slot.
func Int(name string, def int64) Slot[int64] {
	return NewSlot[int64](name, IntCodec{}, def)
}

// String declares a string slot.
func String(name string, def string) Slot[string] {
	return NewSlot[string](name, StringCodec{}, def)
}

// Name returns the store key.
func (s Slot[T]) Name() string { return s.name }

// Get returns the stored value, or the default when absent.
func (s Slot[T]) Get(ctx *Context) T {
	raw, ok := ctx.GetRaw(s.name)
	if !ok {
		return s.def
	}
	v, err := s.codec.Decode(raw)
	if err != nil {
		return s.def
	}
	return v
}

// Set stores v.
func (s Slot[T]) Set(ctx *Context, v T) {
	ctx.SetRaw(s.name, s.codec.Encode(v))
}

// IsSet reports whether the slot has been written in this session.
func (s Slot[T]) IsSet(ctx *Context) bool {
	_, ok := ctx.GetRaw(s.name)
	return ok
}
