package mmdb

import (
	"errors"
	"strings"
	"testing"
)

func TestCorruptError(t *testing.T) {
	err := corruptErrf(5, 77, "unrecognized type tag %d", 77)
	var ce *CorruptError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %T, wanted *CorruptError", err)
	}
	if ce.Pos != 5 || ce.Tag != 77 {
		t.Fatalf("CorruptError = %+v, wanted Pos 5, Tag 77", ce)
	}
	s := err.Error()
	if !strings.Contains(s, "node 5") || !strings.Contains(s, "77") {
		t.Fatalf("err.Error() = %q, wanted position and tag", s)
	}
}

func TestAddrError(t *testing.T) {
	err := addrErrf(`"foo"`, "not an IPv4 or IPv6 address")
	s := err.Error()
	if !strings.Contains(s, `"foo"`) || !strings.Contains(s, "invalid address") {
		t.Fatalf("err.Error() = %q, wanted input and message", s)
	}
}

func TestOpenError(t *testing.T) {
	inner := errors.New("inner")
	err := &OpenError{Path: "/tmp/db.mmdb", Err: inner}
	if !errors.Is(err, inner) {
		t.Fatalf("errors.Is(err, inner) = false, wanted true")
	}
	s := err.Error()
	if !strings.Contains(s, "/tmp/db.mmdb") || !strings.Contains(s, "inner") {
		t.Fatalf("err.Error() = %q, wanted path and cause", s)
	}
}

func TestFamilyError(t *testing.T) {
	err := &FamilyError{Family: V6, IPVersion: 4}
	s := err.Error()
	if !strings.Contains(s, "IPv6") || !strings.Contains(s, "IPv4") {
		t.Fatalf("err.Error() = %q, wanted both families", s)
	}
}
