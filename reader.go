package mmdb

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/andreyvit/mmdb/mmap"
)

// Options tunes a Reader. The zero value is ready to use.
type Options struct {
	// Logf receives diagnostic output when set.
	Logf    func(format string, args ...any)
	Verbose bool
}

// Reader is an open database handle. It owns a read-only memory mapping
// of the database file and the search engine built over it. Lookups are
// safe to run concurrently; each call gets its own node-stream traversal
// state, and the mapping is never written to. Close is the only state
// transition a Reader has, and it happens exactly once.
type Reader struct {
	engine  Engine
	file    *os.File
	data    []byte
	logf    func(format string, args ...any)
	verbose bool

	// ipVersion is cached from the metadata at open time; prefix-length
	// adjustment needs it on every IPv4 lookup.
	ipVersion int

	mu     sync.RWMutex
	closed bool
}

// Open validates that path is accessible, memory-maps it read-only and
// hands the mapped bytes to opener to build the search engine. The
// metadata section is decoded once as part of format validation; a
// database whose metadata does not decode fails to open.
func Open(path string, opener EngineOpener, opt Options) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &OpenError{path, err}
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &OpenError{path, err}
	}
	if st.Size() == 0 {
		f.Close()
		return nil, &OpenError{path, errors.New("file is empty")}
	}
	data, err := mmap.Map(f, int(st.Size()))
	if err != nil {
		f.Close()
		return nil, &OpenError{path, err}
	}

	r := &Reader{
		file:    f,
		data:    data,
		logf:    opt.Logf,
		verbose: opt.Verbose,
	}
	r.engine, err = opener(data)
	if err != nil {
		r.release()
		return nil, &OpenError{path, err}
	}

	md, err := r.decodeMetadata()
	if err != nil {
		r.engine.Close()
		r.release()
		return nil, &OpenError{path, err}
	}
	r.ipVersion = md.IPVersion()

	if r.verbose && r.logf != nil {
		r.logf("mmdb: opened %s: %s, %d bytes, ip_version=%d", path, md.DatabaseType(), len(data), r.ipVersion)
	}
	return r, nil
}

// Lookup returns the record for addr. found=false with a nil error means
// the database has no entry covering the address, which is a valid
// outcome distinct from any decoded value.
func (r *Reader) Lookup(addr Addr) (v Value, found bool, err error) {
	v, found, _, err = r.LookupPrefix(addr)
	return v, found, err
}

// LookupPrefix is Lookup plus the prefix length of the network the answer
// (or the miss) applies to. For an IPv4 query against an IPv6-indexed
// database the raw tree prefix is re-expressed in IPv4 bit terms: raw
// lengths under 96 mean the tree has no IPv4 subtree, which yields the
// maximally generic length 0 rather than an error.
func (r *Reader) LookupPrefix(addr Addr) (v Value, found bool, prefixLen int, err error) {
	if !addr.IsValid() {
		return Value{}, false, 0, addrErrf("Addr{}", "zero address value")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return Value{}, false, 0, ErrClosed
	}

	res, err := r.engine.Lookup(addr)
	if err != nil {
		return Value{}, false, 0, fmt.Errorf("mmdb: looking up %s: %w", addr, err)
	}

	prefixLen = res.PrefixLen
	if addr.Family() == V4 && r.ipVersion == 6 {
		if prefixLen >= 96 {
			prefixLen -= 96
		} else {
			prefixLen = 0
		}
	}

	if !res.Found {
		return Value{}, false, prefixLen, nil
	}

	s, err := r.engine.EntryStream(res.Entry)
	if err != nil {
		return Value{}, false, 0, fmt.Errorf("mmdb: looking up %s: %w", addr, err)
	}
	v, err = DecodeStream(s)
	if err != nil {
		return Value{}, false, 0, fmt.Errorf("mmdb: looking up %s: %w", addr, err)
	}
	return v, true, prefixLen, nil
}

// LookupString normalizes a textual address and looks it up.
func (r *Reader) LookupString(s string) (Value, bool, error) {
	addr, err := ParseAddr(s)
	if err != nil {
		return Value{}, false, err
	}
	return r.Lookup(addr)
}

// LookupIP normalizes a net.IP and looks it up.
func (r *Reader) LookupIP(ip net.IP) (Value, bool, error) {
	addr, err := addrFromIP(ip)
	if err != nil {
		return Value{}, false, err
	}
	return r.Lookup(addr)
}

// Metadata decodes the metadata section into a fresh snapshot. The
// snapshot stays valid after the reader is closed.
func (r *Reader) Metadata() (*Metadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return nil, ErrClosed
	}
	return r.decodeMetadata()
}

func (r *Reader) decodeMetadata() (*Metadata, error) {
	v, err := DecodeStream(r.engine.MetadataStream())
	if err != nil {
		return nil, err
	}
	return materializeMetadata(v)
}

// Closed reports whether Close has been called.
func (r *Reader) Closed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}

// Close releases the engine and the file mapping. The first call performs
// the transition; repeated calls are no-ops. In-flight lookups finish
// before the mapping is released, and every operation after Close fails
// with ErrClosed.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	err := r.engine.Close()
	if rerr := r.release(); err == nil {
		err = rerr
	}
	if r.verbose && r.logf != nil {
		r.logf("mmdb: closed %s", r.file.Name())
	}
	return err
}

func (r *Reader) release() error {
	var err error
	if r.data != nil {
		err = mmap.Unmap(r.data)
		r.data = nil
	}
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}
