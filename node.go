package mmdb

import "strconv"

// NodeType is the type tag of a single data-section node. The numbering
// follows the on-disk format's tag space so that search engines can pass
// tags through unchanged and corrupt-data errors report the wire value.
type NodeType uint8

const (
	// TypePointer (1) and the extended/container/marker tags never reach
	// the decoder: a conforming search engine resolves pointers while
	// flattening the entry into a node stream.
	TypeString  NodeType = 2
	TypeFloat64 NodeType = 3
	TypeBytes   NodeType = 4
	TypeUint16  NodeType = 5
	TypeUint32  NodeType = 6
	TypeMap     NodeType = 7
	TypeInt32   NodeType = 8
	TypeUint64  NodeType = 9
	TypeUint128 NodeType = 10
	TypeSlice   NodeType = 11
	TypeBool    NodeType = 14
	TypeFloat32 NodeType = 15
)

func (t NodeType) String() string {
	switch t {
	case TypeString:
		return "utf8_string"
	case TypeFloat64:
		return "double"
	case TypeBytes:
		return "bytes"
	case TypeUint16:
		return "uint16"
	case TypeUint32:
		return "uint32"
	case TypeMap:
		return "map"
	case TypeInt32:
		return "int32"
	case TypeUint64:
		return "uint64"
	case TypeUint128:
		return "uint128"
	case TypeSlice:
		return "array"
	case TypeBool:
		return "boolean"
	case TypeFloat32:
		return "float"
	default:
		return "type(" + strconv.Itoa(int(t)) + ")"
	}
}

// Node is one element of the flattened pre-order node sequence a search
// engine produces for a located entry. A container node declares the
// number of children that immediately follow it; a scalar node carries its
// payload in the field matching its type.
type Node struct {
	Type NodeType

	// Size is the declared child count: key/value pairs for TypeMap,
	// elements for TypeSlice.
	Size uint32

	Str    string  // TypeString
	Raw    []byte  // TypeBytes
	F64    float64 // TypeFloat64
	F32    float32 // TypeFloat32
	U64    uint64  // TypeUint16, TypeUint32, TypeUint64
	Hi, Lo uint64  // TypeUint128, big-endian halves
	I32    int32   // TypeInt32
	Bool   bool    // TypeBool
}

// Uint128Node builds a TypeUint128 node from a big-endian byte string of
// up to 16 bytes, for engines whose native representation is a byte array
// rather than two halves.
func Uint128Node(b []byte) Node {
	var hi, lo uint64
	for _, c := range b {
		hi = hi<<8 | lo>>56
		lo = lo<<8 | uint64(c)
	}
	return Node{Type: TypeUint128, Hi: hi, Lo: lo}
}

// NodeStream is a forward-only cursor over a node sequence. A stream is
// owned by a single decode call, advances one node at a time and never
// rewinds. Streams are single-use: once exhausted (or abandoned after a
// decode error) they cannot be reset.
type NodeStream struct {
	nodes []Node
	pos   int
}

func NewNodeStream(nodes []Node) *NodeStream {
	return &NodeStream{nodes: nodes}
}

// Next returns the current node and advances past it, or ok=false once the
// stream is exhausted.
func (s *NodeStream) Next() (*Node, bool) {
	if s.pos >= len(s.nodes) {
		return nil, false
	}
	n := &s.nodes[s.pos]
	s.pos++
	return n, true
}

// Pos is the index of the next node to be consumed, used to report where
// in the stream a structural violation was found.
func (s *NodeStream) Pos() int { return s.pos }
