package mmdb

import (
	"errors"
	"net"
	"net/netip"
	"testing"
)

func TestParseAddr(t *testing.T) {
	tests := []struct {
		input  string
		family Family
		str    string
	}{
		{"1.2.3.4", V4, "1.2.3.4"},
		{"0.0.0.0", V4, "0.0.0.0"},
		{"255.255.255.255", V4, "255.255.255.255"},
		{"::1", V6, "::1"},
		{"2001:db8::68", V6, "2001:db8::68"},
		{"::ffff:1.2.3.4", V6, "::ffff:1.2.3.4"}, // no implicit unmapping
	}
	for _, test := range tests {
		a, err := ParseAddr(test.input)
		if err != nil {
			t.Fatalf("ParseAddr(%q) failed: %v", test.input, err)
		}
		if a.Family() != test.family {
			t.Errorf("ParseAddr(%q).Family() = %v, wanted %v", test.input, a.Family(), test.family)
		}
		if a.String() != test.str {
			t.Errorf("ParseAddr(%q).String() = %q, wanted %q", test.input, a.String(), test.str)
		}
	}
}

func TestParseAddrRejects(t *testing.T) {
	tests := []string{
		"",
		"foo",
		"example.com",
		"1.2.3.4.5",
		"1.2.3.256",
		"1.2.3.4/24",
		"2001:db8::68%eth0", // zoned
		"1.2.3.4\x00",       // embedded NUL
		"\x00",
	}
	for _, input := range tests {
		_, err := ParseAddr(input)
		var ae *AddrError
		if !errors.As(err, &ae) {
			t.Errorf("ParseAddr(%q) = %v, wanted *AddrError", input, err)
		}
	}
}

func TestAddrFromSlice(t *testing.T) {
	a := must(AddrFromSlice([]byte{1, 2, 3, 4}))
	if a.Family() != V4 || a.String() != "1.2.3.4" {
		t.Fatalf("AddrFromSlice(4 bytes) = %v/%v", a.Family(), a)
	}

	b16 := make([]byte, 16)
	b16[15] = 1
	a = must(AddrFromSlice(b16))
	if a.Family() != V6 || a.String() != "::1" {
		t.Fatalf("AddrFromSlice(16 bytes) = %v/%v", a.Family(), a)
	}

	for _, n := range []int{0, 1, 3, 5, 15, 17, 32} {
		_, err := AddrFromSlice(make([]byte, n))
		var ae *AddrError
		if !errors.As(err, &ae) {
			t.Errorf("AddrFromSlice(%d bytes) = %v, wanted *AddrError", n, err)
		}
	}
}

func TestAddrRoundTripEquivalence(t *testing.T) {
	// The same address must normalize identically from its textual and
	// packed forms.
	textual := must(ParseAddr("192.0.2.1"))
	packed := must(AddrFromSlice([]byte{192, 0, 2, 1}))
	if textual != packed {
		t.Fatalf("textual %v != packed %v", textual, packed)
	}

	textual = must(ParseAddr("2001:db8::68"))
	packed = must(AddrFromSlice(textual.AsSlice()))
	if textual != packed {
		t.Fatalf("textual %v != packed %v", textual, packed)
	}
}

func TestAddrFromNetip(t *testing.T) {
	a := AddrFromNetip(netip.MustParseAddr("10.0.0.1"))
	if a.Family() != V4 {
		t.Fatalf("Family = %v, wanted V4", a.Family())
	}
	if got := a.AsSlice(); len(got) != 4 {
		t.Fatalf("AsSlice = %d bytes, wanted 4", len(got))
	}

	a = AddrFromNetip(netip.MustParseAddr("::ffff:10.0.0.1"))
	if a.Family() != V6 {
		t.Fatalf("4-in-6 netip Family = %v, wanted V6", a.Family())
	}
}

func TestAddrFromIP(t *testing.T) {
	// net.IP stores IPv4 addresses in 16 bytes; they must still normalize
	// to V4.
	a := must(addrFromIP(net.ParseIP("1.2.3.4")))
	if a.Family() != V4 {
		t.Fatalf("Family = %v, wanted V4", a.Family())
	}

	a = must(addrFromIP(net.ParseIP("2001:db8::68")))
	if a.Family() != V6 {
		t.Fatalf("Family = %v, wanted V6", a.Family())
	}

	_, err := addrFromIP(net.IP(nil))
	var ae *AddrError
	if !errors.As(err, &ae) {
		t.Fatalf("addrFromIP(nil) = %v, wanted *AddrError", err)
	}
}

func TestZeroAddr(t *testing.T) {
	var a Addr
	if a.IsValid() {
		t.Fatalf("zero Addr.IsValid() = true")
	}
	if a.AsSlice() != nil {
		t.Fatalf("zero Addr.AsSlice() = %v, wanted nil", a.AsSlice())
	}
	if a.String() != "invalid" {
		t.Fatalf("zero Addr.String() = %q", a.String())
	}
}
