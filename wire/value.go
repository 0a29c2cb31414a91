// Package wire implements the frame codec and the binary encoding of
// CommandRequest/CommandResponse described by the wire schema: a
// length-prefixed, field-tag encoding matching field numbers that are
// load-bearing for wire compatibility.
package wire

// Kind tags which variant of the Value union is populated. KindNone is the
// distinguishable "absent value" variant used as the prior value of a
// missing key; it has no field number of its own on the wire (the oneof
// simply carries none of fields 1-5).
type Kind uint8

const (
	KindNone Kind = iota
	KindString
	KindBytes
	KindInt64
	KindFloat64
	KindBool
)

// Value is a tagged union of string, bytes, int64, float64 and bool, plus
// the None variant. Only the field matching Kind is meaningful.
type Value struct {
	Kind  Kind
	Str   string
	Bytes []byte
	Int   int64
	Float float64
	Bool  bool
}

// None returns the absent-value variant.
func None() Value { return Value{Kind: KindNone} }

// String builds a string-variant Value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Bytes builds a bytes-variant Value.
func Bytes(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }

// Int64 builds a signed-64-bit-integer-variant Value.
func Int64(i int64) Value { return Value{Kind: KindInt64, Int: i} }

// Float64 builds a 64-bit-float-variant Value.
func Float64(f float64) Value { return Value{Kind: KindFloat64, Float: f} }

// Bool builds a boolean-variant Value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// IsNone reports whether v is the absent-value variant.
func (v Value) IsNone() bool { return v.Kind == KindNone }

// Equal reports whether v and other carry the same variant and payload.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == other.Str
	case KindBytes:
		return string(v.Bytes) == string(other.Bytes)
	case KindInt64:
		return v.Int == other.Int
	case KindFloat64:
		return v.Float == other.Float
	case KindBool:
		return v.Bool == other.Bool
	default:
		return true
	}
}

// KvPair is a (key, value) pair. Keys are expected to be non-empty UTF-8;
// the codec does not itself enforce that - callers validate before encoding.
type KvPair struct {
	Key   string
	Value Value
}
