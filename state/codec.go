package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrDecode is returned by codecs when a stored string does not parse.
var ErrDecode = errors.New("state: decode failed")

// Codec converts a slot's typed value to and from its stored string form.
type Codec[T any] interface {
	Encode(v T) string
	Decode(s string) (T, error)
}

// FloatCodec stores float64 values with full precision.
type FloatCodec struct{}

func (FloatCodec) Encode(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func (FloatCodec) Decode(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return v, nil
}

// BoolCodec stores booleans as "1" or "0".
type BoolCodec struct{}

func (BoolCodec) Encode(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func (BoolCodec) Decode(s string) (bool, error) {
	switch s {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: bool %q", ErrDecode, s)
}

// IntCodec stores int64 values in base 10.
type IntCodec struct{}

func (IntCodec) Encode(v int64) string { return strconv.FormatInt(v, 10) }

func (IntCodec) Decode(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return v, nil
}

// StringCodec stores strings verbatim.
type StringCodec struct{}

func (StringCodec) Encode(v string) string          { return v }
func (StringCodec) Decode(s string) (string, error) { return s, nil }

// JSONCodec stores structured values as JSON.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(v T) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func (JSONCodec[T]) Decode(s string) (T, error) {
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return v, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return v, nil
}
