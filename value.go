package mmdb

import (
	"bytes"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// Kind identifies the shape of a decoded Value. The set is closed; every
// node type the data section can contain maps to exactly one Kind (both
// float widths surface as Float64, matching the promoted output model).
type Kind uint8

const (
	Invalid Kind = iota
	Map
	Slice
	String
	Bytes
	Float64
	Uint16
	Uint32
	Uint64
	Uint128
	Int32
	Bool
)

var kindNames = [...]string{
	Invalid: "invalid",
	Map:     "map",
	Slice:   "slice",
	String:  "string",
	Bytes:   "bytes",
	Float64: "float64",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Uint64:  "uint64",
	Uint128: "uint128",
	Int32:   "int32",
	Bool:    "bool",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// MapEntry is a single key/value pair of a Map value. Entries preserve
// encounter order and may repeat a key; key uniqueness is the concern of
// whatever key-unique container the caller copies them into (where the
// last entry for a key wins, see Value.MapIndex and Value.Interface).
type MapEntry struct {
	Key   string
	Value Value
}

// Value is a decoded database record: a tagged union with one case per
// Kind. The zero Value has kind Invalid. Accessors return the payload for
// the matching kind and the zero payload for any other kind.
type Value struct {
	kind Kind
	str  string
	raw  []byte
	f64  float64
	u64  uint64
	i32  int32
	big  *big.Int
	m    []MapEntry
	s    []Value
	b    bool
}

func MapValue(entries []MapEntry) Value { return Value{kind: Map, m: entries} }
func SliceValue(elems []Value) Value    { return Value{kind: Slice, s: elems} }
func StringValue(s string) Value        { return Value{kind: String, str: s} }
func BytesValue(b []byte) Value         { return Value{kind: Bytes, raw: b} }
func Float64Value(v float64) Value      { return Value{kind: Float64, f64: v} }
func Uint16Value(v uint16) Value        { return Value{kind: Uint16, u64: uint64(v)} }
func Uint32Value(v uint32) Value        { return Value{kind: Uint32, u64: uint64(v)} }
func Uint64Value(v uint64) Value        { return Value{kind: Uint64, u64: v} }
func Int32Value(v int32) Value          { return Value{kind: Int32, i32: v} }
func BoolValue(v bool) Value            { return Value{kind: Bool, b: v} }

// Uint128Value wraps a big integer in the range [0, 2^128). The integer is
// retained, not copied.
func Uint128Value(v *big.Int) Value { return Value{kind: Uint128, big: v} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsValid() bool { return v.kind != Invalid }

// Map returns the ordered entries of a Map value.
func (v Value) Map() []MapEntry { return v.m }

// MapIndex returns the value stored under key. If the map repeats the key,
// the last entry wins.
func (v Value) MapIndex(key string) (Value, bool) {
	for i := len(v.m) - 1; i >= 0; i-- {
		if v.m[i].Key == key {
			return v.m[i].Value, true
		}
	}
	return Value{}, false
}

// Slice returns the elements of a Slice value.
func (v Value) Slice() []Value { return v.s }

// String returns the payload of a String value. For any other kind it
// returns a "<kind>" placeholder rather than panicking, in the manner of
// reflect.Value.String, so that it is safe to use in format strings.
func (v Value) String() string {
	if v.kind == String {
		return v.str
	}
	return "<" + v.kind.String() + ">"
}

func (v Value) Bytes() []byte    { return v.raw }
func (v Value) Float64() float64 { return v.f64 }

// Uint64 returns the payload of a Uint16, Uint32 or Uint64 value.
func (v Value) Uint64() uint64 { return v.u64 }

// Uint128 returns the big-integer payload of a Uint128 value, nil otherwise.
func (v Value) Uint128() *big.Int {
	if v.kind != Uint128 {
		return nil
	}
	return v.big
}

func (v Value) Int32() int32 { return v.i32 }
func (v Value) Bool() bool   { return v.b }

// Len returns the number of entries of a Map or elements of a Slice.
func (v Value) Len() int {
	switch v.kind {
	case Map:
		return len(v.m)
	case Slice:
		return len(v.s)
	default:
		return 0
	}
}

// Equal reports whether two values have the same kind and payload,
// comparing containers element-wise in order.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Invalid:
		return true
	case Map:
		if len(v.m) != len(other.m) {
			return false
		}
		for i := range v.m {
			if v.m[i].Key != other.m[i].Key || !v.m[i].Value.Equal(other.m[i].Value) {
				return false
			}
		}
		return true
	case Slice:
		if len(v.s) != len(other.s) {
			return false
		}
		for i := range v.s {
			if !v.s[i].Equal(other.s[i]) {
				return false
			}
		}
		return true
	case String:
		return v.str == other.str
	case Bytes:
		return bytes.Equal(v.raw, other.raw)
	case Float64:
		return v.f64 == other.f64
	case Uint16, Uint32, Uint64:
		return v.u64 == other.u64
	case Uint128:
		return v.big.Cmp(other.big) == 0
	case Int32:
		return v.i32 == other.i32
	case Bool:
		return v.b == other.b
	default:
		return false
	}
}

// Interface renders the value as plain Go data: map[string]any (duplicate
// keys collapse, last one wins), []any, string, []byte, float64, uint64,
// *big.Int, int32 or bool. Invalid renders as nil.
func (v Value) Interface() any {
	switch v.kind {
	case Invalid:
		return nil
	case Map:
		m := make(map[string]any, len(v.m))
		for _, e := range v.m {
			m[e.Key] = e.Value.Interface()
		}
		return m
	case Slice:
		s := make([]any, len(v.s))
		for i := range v.s {
			s[i] = v.s[i].Interface()
		}
		return s
	case String:
		return v.str
	case Bytes:
		return v.raw
	case Float64:
		return v.f64
	case Uint16, Uint32, Uint64:
		return v.u64
	case Uint128:
		return v.big
	case Int32:
		return v.i32
	case Bool:
		return v.b
	default:
		panic(fmt.Errorf("mmdb: unhandled kind %v", v.kind))
	}
}

// GoString formats the value for test failure messages and debug logging.
func (v Value) GoString() string {
	var buf strings.Builder
	v.debugFormat(&buf)
	return buf.String()
}

func (v Value) debugFormat(buf *strings.Builder) {
	switch v.kind {
	case Invalid:
		buf.WriteString("invalid")
	case Map:
		buf.WriteByte('{')
		for i, e := range v.m {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(strconv.Quote(e.Key))
			buf.WriteString(": ")
			e.Value.debugFormat(buf)
		}
		buf.WriteByte('}')
	case Slice:
		buf.WriteByte('[')
		for i, e := range v.s {
			if i > 0 {
				buf.WriteString(", ")
			}
			e.debugFormat(buf)
		}
		buf.WriteByte(']')
	case String:
		buf.WriteString(strconv.Quote(v.str))
	case Bytes:
		fmt.Fprintf(buf, "0x%x", v.raw)
	case Float64:
		buf.WriteString(strconv.FormatFloat(v.f64, 'g', -1, 64))
	case Uint16, Uint32, Uint64:
		buf.WriteString(strconv.FormatUint(v.u64, 10))
	case Uint128:
		buf.WriteString(v.big.String())
	case Int32:
		buf.WriteString(strconv.FormatInt(int64(v.i32), 10))
	case Bool:
		buf.WriteString(strconv.FormatBool(v.b))
	}
}
