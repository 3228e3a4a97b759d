package mmdb

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by every operation attempted after the reader's
// close transition, including repeated attempts.
var ErrClosed = errors.New("mmdb: reader is closed")

// ErrInvalidMetadata is returned when the database's metadata section does
// not decode to a map.
var ErrInvalidMetadata = errors.New("mmdb: metadata is not a map")

// CorruptError reports a structural violation found while decoding a node
// stream: premature exhaustion, an unrecognized type tag, a non-string map
// key, or nesting past the depth ceiling. Any CorruptError means the
// database is damaged or written for an incompatible format version; the
// call's partial output is discarded.
type CorruptError struct {
	Pos int      // index of the offending node within the stream
	Tag NodeType // offending type tag, if the violation is tag-related
	Msg string
}

func corruptErrf(pos int, tag NodeType, format string, args ...any) error {
	return &CorruptError{pos, tag, fmt.Sprintf(format, args...)}
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("mmdb: corrupt data at node %d: %s", e.Pos, e.Msg)
}

// AddrError reports a malformed lookup address: unparsable text, an
// embedded NUL byte, a zoned literal, or a packed byte string of the wrong
// length. Always a caller error.
type AddrError struct {
	Input string // offending input, quoted or described
	Msg   string
}

func addrErrf(input string, format string, args ...any) error {
	return &AddrError{input, fmt.Sprintf(format, args...)}
}

func (e *AddrError) Error() string {
	return fmt.Sprintf("mmdb: invalid address %s: %s", e.Input, e.Msg)
}

// OpenError reports a database that could not be opened: inaccessible
// file, mapping failure, or failed format validation.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Unwrap() error { return e.Err }

func (e *OpenError) Error() string {
	return fmt.Sprintf("mmdb: opening %s: %v", e.Path, e.Err)
}

// FamilyError reports a lookup whose address family the database does not
// index (an IPv6 query against an IPv4-only database). It is distinct from
// CorruptError so that callers can branch on it.
type FamilyError struct {
	Family    Family // queried family
	IPVersion int    // the database's declared IP version
}

func (e *FamilyError) Error() string {
	return fmt.Sprintf("mmdb: cannot look up an IPv%d address in an IPv%d database", e.Family, e.IPVersion)
}
