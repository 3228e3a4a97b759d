package mmdb

import "math/big"

// maxDecodeDepth bounds container nesting so that a corrupt or adversarial
// database cannot exhaust the call stack. Legitimate databases nest a
// handful of levels; 512 matches the limit the reference C library uses.
const maxDecodeDepth = 512

// maxPrealloc caps the capacity hint taken from a container's declared
// size. The declared size comes from the database and a corrupt one could
// otherwise force a huge allocation before the stream runs dry.
const maxPrealloc = 1024

// DecodeStream materializes exactly one value from s, recursively
// consuming a container's declared number of children. The stream is
// consumed one-way; on error the partially built value is discarded and
// the stream is left mid-traversal, unusable for further decoding.
func DecodeStream(s *NodeStream) (Value, error) {
	return decodeNode(s, 0)
}

func decodeNode(s *NodeStream, depth int) (Value, error) {
	if depth > maxDecodeDepth {
		return Value{}, corruptErrf(s.Pos(), 0, "nesting deeper than %d levels", maxDecodeDepth)
	}
	n, ok := s.Next()
	if !ok {
		return Value{}, corruptErrf(s.Pos(), 0, "stream ended where a node was expected")
	}
	switch n.Type {
	case TypeMap:
		return decodeMap(s, n.Size, depth+1)
	case TypeSlice:
		return decodeSlice(s, n.Size, depth+1)
	case TypeString:
		return StringValue(n.Str), nil
	case TypeBytes:
		return BytesValue(n.Raw), nil
	case TypeFloat64:
		return Float64Value(n.F64), nil
	case TypeFloat32:
		// 32-bit floats surface as float64, like every other consumer of
		// this format renders them.
		return Float64Value(float64(n.F32)), nil
	case TypeUint16:
		return Uint16Value(uint16(n.U64)), nil
	case TypeUint32:
		return Uint32Value(uint32(n.U64)), nil
	case TypeUint64:
		return Uint64Value(n.U64), nil
	case TypeUint128:
		return uint128Value(n.Hi, n.Lo), nil
	case TypeInt32:
		return Int32Value(n.I32), nil
	case TypeBool:
		return BoolValue(n.Bool), nil
	default:
		return Value{}, corruptErrf(s.Pos()-1, n.Type, "unrecognized type tag %d", n.Type)
	}
}

func decodeMap(s *NodeStream, size uint32, depth int) (Value, error) {
	entries := make([]MapEntry, 0, min(size, maxPrealloc))
	for i := uint32(0); i < size; i++ {
		k, ok := s.Next()
		if !ok {
			return Value{}, corruptErrf(s.Pos(), 0, "stream ended after %d of %d map pairs", i, size)
		}
		if k.Type != TypeString {
			return Value{}, corruptErrf(s.Pos()-1, k.Type, "map key is %v, wanted utf8_string", k.Type)
		}
		v, err := decodeNode(s, depth)
		if err != nil {
			return Value{}, err
		}
		entries = append(entries, MapEntry{Key: k.Str, Value: v})
	}
	return MapValue(entries), nil
}

func decodeSlice(s *NodeStream, size uint32, depth int) (Value, error) {
	elems := make([]Value, 0, min(size, maxPrealloc))
	for i := uint32(0); i < size; i++ {
		v, err := decodeNode(s, depth)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
	return SliceValue(elems), nil
}

// uint128Value reassembles a 128-bit unsigned integer from its big-endian
// halves with no precision loss.
func uint128Value(hi, lo uint64) Value {
	v := new(big.Int).SetUint64(hi)
	v.Lsh(v, 64)
	v.Or(v, new(big.Int).SetUint64(lo))
	return Uint128Value(v)
}
