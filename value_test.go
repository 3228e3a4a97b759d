package mmdb

import (
	"math/big"
	"reflect"
	"testing"
)

func TestValueKinds(t *testing.T) {
	tests := []struct {
		v    Value
		kind Kind
	}{
		{Value{}, Invalid},
		{MapValue(nil), Map},
		{SliceValue(nil), Slice},
		{StringValue("x"), String},
		{BytesValue(nil), Bytes},
		{Float64Value(0), Float64},
		{Uint16Value(0), Uint16},
		{Uint32Value(0), Uint32},
		{Uint64Value(0), Uint64},
		{Uint128Value(big.NewInt(0)), Uint128},
		{Int32Value(0), Int32},
		{BoolValue(false), Bool},
	}
	for _, test := range tests {
		if test.v.Kind() != test.kind {
			t.Errorf("Kind = %v, wanted %v", test.v.Kind(), test.kind)
		}
		if test.v.IsValid() != (test.kind != Invalid) {
			t.Errorf("IsValid = %v for kind %v", test.v.IsValid(), test.kind)
		}
	}
}

func TestValueMapIndex(t *testing.T) {
	v := MapValue([]MapEntry{
		{"a", Uint16Value(1)},
		{"b", Uint16Value(2)},
		{"a", Uint16Value(3)}, // duplicate: last one wins
	})
	got, ok := v.MapIndex("a")
	if !ok || got.Uint64() != 3 {
		t.Fatalf("MapIndex(a) = %#v, %v, wanted 3, true", got, ok)
	}
	if _, ok := v.MapIndex("missing"); ok {
		t.Fatalf("MapIndex(missing) = true, wanted false")
	}
	if v.Len() != 3 {
		t.Fatalf("Len = %d, wanted 3 (entries preserve duplicates)", v.Len())
	}
}

func TestValueEqual(t *testing.T) {
	big1 := Uint128Value(new(big.Int).Lsh(big.NewInt(1), 100))
	big2 := Uint128Value(new(big.Int).Lsh(big.NewInt(1), 100))
	tests := []struct {
		a, b  Value
		equal bool
	}{
		{StringValue("x"), StringValue("x"), true},
		{StringValue("x"), StringValue("y"), false},
		{StringValue("1"), Uint16Value(1), false},
		{Uint16Value(1), Uint32Value(1), false}, // width is part of identity
		{big1, big2, true},
		{BytesValue([]byte{1}), BytesValue([]byte{1}), true},
		{
			MapValue([]MapEntry{{"k", BoolValue(true)}}),
			MapValue([]MapEntry{{"k", BoolValue(true)}}),
			true,
		},
		{
			MapValue([]MapEntry{{"k", BoolValue(true)}}),
			MapValue([]MapEntry{{"k", BoolValue(false)}}),
			false,
		},
		{SliceValue([]Value{StringValue("a")}), SliceValue([]Value{StringValue("a")}), true},
		{SliceValue([]Value{StringValue("a")}), SliceValue(nil), false},
		{Value{}, Value{}, true},
	}
	for _, test := range tests {
		if got := test.a.Equal(test.b); got != test.equal {
			t.Errorf("Equal(%#v, %#v) = %v, wanted %v", test.a, test.b, got, test.equal)
		}
	}
}

func TestValueInterface(t *testing.T) {
	v := MapValue([]MapEntry{
		{"name", StringValue("x")},
		{"tags", SliceValue([]Value{StringValue("a"), StringValue("b")})},
		{"count", Uint32Value(7)},
		{"ratio", Float64Value(0.5)},
		{"flag", BoolValue(true)},
		{"name", StringValue("y")}, // duplicate collapses, last one wins
	})
	got := v.Interface()
	expected := map[string]any{
		"name":  "y",
		"tags":  []any{"a", "b"},
		"count": uint64(7),
		"ratio": 0.5,
		"flag":  true,
	}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("Interface() = %#v, wanted %#v", got, expected)
	}

	if got := (Value{}).Interface(); got != nil {
		t.Fatalf("Interface() of invalid = %#v, wanted nil", got)
	}
}

func TestValueString(t *testing.T) {
	if got := StringValue("hello").String(); got != "hello" {
		t.Fatalf("String() = %q, wanted %q", got, "hello")
	}
	if got := Uint16Value(1).String(); got != "<uint16>" {
		t.Fatalf("String() = %q, wanted %q", got, "<uint16>")
	}
}

func TestValueGoString(t *testing.T) {
	v := MapValue([]MapEntry{
		{"list", SliceValue([]Value{Int32Value(-1), BoolValue(false)})},
		{"big", Uint128Value(big.NewInt(42))},
	})
	expected := `{"list": [-1, false], "big": 42}`
	if got := v.GoString(); got != expected {
		t.Fatalf("GoString() = %s, wanted %s", got, expected)
	}
}
