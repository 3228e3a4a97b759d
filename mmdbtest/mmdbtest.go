// Package mmdbtest provides an in-memory search engine and on-disk
// fixture databases for testing code built on the mmdb package.
//
// A Fixture declares networks and their records as plain Go data. Write
// serializes it with msgpack into a temp file, and Opener builds an
// Engine back from the mapped bytes, so reader tests exercise the real
// open/mmap/close path end to end without a production database.
package mmdbtest

import (
	"fmt"
	"math/big"
	"net/netip"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/andreyvit/mmdb"
)

// Fixture describes a test database.
type Fixture struct {
	IPVersion    int               `msgpack:"ip_version"`
	RecordSize   int               `msgpack:"record_size"`
	NodeCount    int               `msgpack:"node_count"`
	DatabaseType string            `msgpack:"database_type"`
	BuildEpoch   uint64            `msgpack:"build_epoch"`
	Languages    []string          `msgpack:"languages"`
	Description  map[string]string `msgpack:"description"`
	Networks     []Network         `msgpack:"networks"`
}

// Network maps a CIDR to a record. Record is flattened into a node stream
// via Nodes; set RawNodes instead to inject an arbitrary (possibly
// deliberately broken) node sequence.
type Network struct {
	CIDR     string         `msgpack:"cidr"`
	Record   map[string]any `msgpack:"record,omitempty"`
	RawNodes []mmdb.Node    `msgpack:"raw_nodes,omitempty"`
}

// Write serializes the fixture into a file under t.TempDir and returns
// its path, ready for mmdb.Open with Opener.
func Write(t testing.TB, fx Fixture) string {
	t.Helper()
	data, err := msgpack.Marshal(fx)
	if err != nil {
		t.Fatalf("mmdbtest: marshaling fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixture.mmdb")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("mmdbtest: writing fixture: %v", err)
	}
	return path
}

// Opener decodes a msgpack fixture from the mapped database bytes.
func Opener() mmdb.EngineOpener {
	return func(data []byte) (mmdb.Engine, error) {
		var fx Fixture
		if err := msgpack.Unmarshal(data, &fx); err != nil {
			return nil, fmt.Errorf("mmdbtest: bad fixture: %w", err)
		}
		return NewEngine(fx)
	}
}

// Open writes the fixture, opens a reader over it through the real
// mmap-backed Open path, and closes the reader when the test finishes.
func Open(t testing.TB, fx Fixture) *mmdb.Reader {
	t.Helper()
	path := Write(t, fx)
	r, err := mmdb.Open(path, Opener(), mmdb.Options{Logf: t.Logf, Verbose: testing.Verbose()})
	if err != nil {
		t.Fatalf("mmdbtest: opening fixture: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r
}

type network struct {
	prefix netip.Prefix
	nodes  []mmdb.Node
}

// Engine is an in-memory mmdb.Engine over a fixture's network table. It
// does longest-prefix matching the way the real search tree would,
// including the IPv4-at-bit-96 convention of IPv6-indexed databases.
type Engine struct {
	fx    Fixture
	nets  []network
	hasV4 bool
}

// NewEngine builds an engine directly from a fixture, without the
// serialize/mmap round trip.
func NewEngine(fx Fixture) (*Engine, error) {
	e := &Engine{fx: fx}
	if e.fx.IPVersion == 0 {
		e.fx.IPVersion = 4
		for _, nw := range fx.Networks {
			if p, err := netip.ParsePrefix(nw.CIDR); err == nil && p.Addr().Is6() {
				e.fx.IPVersion = 6
			}
		}
	}
	if e.fx.RecordSize == 0 {
		e.fx.RecordSize = 28
	}
	if e.fx.NodeCount == 0 {
		e.fx.NodeCount = 2*len(fx.Networks) + 1
	}
	for _, nw := range fx.Networks {
		p, err := netip.ParsePrefix(nw.CIDR)
		if err != nil {
			return nil, fmt.Errorf("mmdbtest: network %q: %w", nw.CIDR, err)
		}
		nodes := nw.RawNodes
		if nodes == nil {
			nodes, err = Nodes(nw.Record)
			if err != nil {
				return nil, fmt.Errorf("mmdbtest: network %q: %w", nw.CIDR, err)
			}
		}
		e.nets = append(e.nets, network{p.Masked(), nodes})
		if p.Addr().Is4() {
			e.hasV4 = true
		}
	}
	return e, nil
}

func (e *Engine) Lookup(addr mmdb.Addr) (mmdb.LookupResult, error) {
	if e.fx.IPVersion == 4 && addr.Family() == mmdb.V6 {
		return mmdb.LookupResult{}, &mmdb.FamilyError{Family: mmdb.V6, IPVersion: 4}
	}

	ip := addr.Netip()
	best := -1
	for i, nw := range e.nets {
		if nw.prefix.Contains(ip) && (best < 0 || nw.prefix.Bits() > e.nets[best].prefix.Bits()) {
			best = i
		}
	}
	if best < 0 {
		return mmdb.LookupResult{PrefixLen: e.missPrefixLen(addr)}, nil
	}

	raw := e.nets[best].prefix.Bits()
	if e.fx.IPVersion == 6 && e.nets[best].prefix.Addr().Is4() {
		// IPv4 networks live in the IPv4-in-IPv6 subtree rooted at bit 96,
		// and the raw tree prefix is expressed in IPv6 bit terms.
		raw += 96
	}
	return mmdb.LookupResult{Found: true, PrefixLen: raw, Entry: mmdb.EntryRef(best)}, nil
}

// missPrefixLen emulates where a real tree walk bottoms out when no entry
// covers the address: at the root of the IPv4 subtree when the database
// has one, at the tree root otherwise.
func (e *Engine) missPrefixLen(addr mmdb.Addr) int {
	if e.fx.IPVersion == 6 && addr.Family() == mmdb.V4 && e.hasV4 {
		return 96
	}
	return 0
}

func (e *Engine) EntryStream(entry mmdb.EntryRef) (*mmdb.NodeStream, error) {
	if int(entry) >= len(e.nets) {
		return nil, fmt.Errorf("mmdbtest: unknown entry %d", entry)
	}
	return mmdb.NewNodeStream(e.nets[entry].nodes), nil
}

func (e *Engine) MetadataStream() *mmdb.NodeStream {
	pairs := []struct {
		key  string
		node []mmdb.Node
	}{
		{"binary_format_major_version", []mmdb.Node{{Type: mmdb.TypeUint16, U64: 2}}},
		{"binary_format_minor_version", []mmdb.Node{{Type: mmdb.TypeUint16, U64: 0}}},
		{"build_epoch", []mmdb.Node{{Type: mmdb.TypeUint64, U64: e.fx.BuildEpoch}}},
		{"database_type", []mmdb.Node{{Type: mmdb.TypeString, Str: e.fx.DatabaseType}}},
		{"description", stringMapNodes(e.fx.Description)},
		{"ip_version", []mmdb.Node{{Type: mmdb.TypeUint16, U64: uint64(e.fx.IPVersion)}}},
		{"languages", stringSliceNodes(e.fx.Languages)},
		{"node_count", []mmdb.Node{{Type: mmdb.TypeUint32, U64: uint64(e.fx.NodeCount)}}},
		{"record_size", []mmdb.Node{{Type: mmdb.TypeUint16, U64: uint64(e.fx.RecordSize)}}},
	}
	nodes := []mmdb.Node{{Type: mmdb.TypeMap, Size: uint32(len(pairs))}}
	for _, p := range pairs {
		nodes = append(nodes, mmdb.Node{Type: mmdb.TypeString, Str: p.key})
		nodes = append(nodes, p.node...)
	}
	return mmdb.NewNodeStream(nodes)
}

func (e *Engine) Close() error { return nil }

func stringMapNodes(m map[string]string) []mmdb.Node {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	nodes := []mmdb.Node{{Type: mmdb.TypeMap, Size: uint32(len(m))}}
	for _, k := range keys {
		nodes = append(nodes,
			mmdb.Node{Type: mmdb.TypeString, Str: k},
			mmdb.Node{Type: mmdb.TypeString, Str: m[k]})
	}
	return nodes
}

func stringSliceNodes(s []string) []mmdb.Node {
	nodes := []mmdb.Node{{Type: mmdb.TypeSlice, Size: uint32(len(s))}}
	for _, v := range s {
		nodes = append(nodes, mmdb.Node{Type: mmdb.TypeString, Str: v})
	}
	return nodes
}

// Nodes flattens a plain Go value into the pre-order node sequence a real
// search engine would produce for it. Map keys are emitted in sorted
// order so that fixtures decode deterministically.
func Nodes(v any) ([]mmdb.Node, error) {
	return appendNodes(nil, v)
}

func appendNodes(dst []mmdb.Node, v any) ([]mmdb.Node, error) {
	switch v := v.(type) {
	case string:
		return append(dst, mmdb.Node{Type: mmdb.TypeString, Str: v}), nil
	case []byte:
		return append(dst, mmdb.Node{Type: mmdb.TypeBytes, Raw: v}), nil
	case bool:
		return append(dst, mmdb.Node{Type: mmdb.TypeBool, Bool: v}), nil
	case float64:
		return append(dst, mmdb.Node{Type: mmdb.TypeFloat64, F64: v}), nil
	case float32:
		return append(dst, mmdb.Node{Type: mmdb.TypeFloat32, F32: v}), nil
	case int:
		return appendInt(dst, int64(v))
	case int8:
		return appendInt(dst, int64(v))
	case int16:
		return appendInt(dst, int64(v))
	case int32:
		return appendInt(dst, int64(v))
	case int64:
		return appendInt(dst, v)
	case uint8:
		return append(dst, mmdb.Node{Type: mmdb.TypeUint16, U64: uint64(v)}), nil
	case uint16:
		return append(dst, mmdb.Node{Type: mmdb.TypeUint16, U64: uint64(v)}), nil
	case uint32:
		return append(dst, mmdb.Node{Type: mmdb.TypeUint32, U64: uint64(v)}), nil
	case uint:
		return append(dst, mmdb.Node{Type: mmdb.TypeUint64, U64: uint64(v)}), nil
	case uint64:
		return append(dst, mmdb.Node{Type: mmdb.TypeUint64, U64: v}), nil
	case *big.Int:
		return append(dst, mmdb.Uint128Node(v.Bytes())), nil
	case []any:
		dst = append(dst, mmdb.Node{Type: mmdb.TypeSlice, Size: uint32(len(v))})
		for _, el := range v {
			var err error
			dst, err = appendNodes(dst, el)
			if err != nil {
				return nil, err
			}
		}
		return dst, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dst = append(dst, mmdb.Node{Type: mmdb.TypeMap, Size: uint32(len(v))})
		for _, k := range keys {
			dst = append(dst, mmdb.Node{Type: mmdb.TypeString, Str: k})
			var err error
			dst, err = appendNodes(dst, v[k])
			if err != nil {
				return nil, err
			}
		}
		return dst, nil
	default:
		return nil, fmt.Errorf("mmdbtest: cannot represent %T as a node", v)
	}
}

func appendInt(dst []mmdb.Node, v int64) ([]mmdb.Node, error) {
	if v < -1<<31 || v > 1<<31-1 {
		return nil, fmt.Errorf("mmdbtest: %d overflows int32", v)
	}
	return append(dst, mmdb.Node{Type: mmdb.TypeInt32, I32: int32(v)}), nil
}
