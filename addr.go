package mmdb

import (
	"net"
	"net/netip"
	"strconv"
	"strings"
)

// Family tags the address family of a canonical lookup address. The values
// match the conventional IP version numbers.
type Family uint8

const (
	V4 Family = 4
	V6 Family = 6
)

// Addr is the canonical lookup address: a family tag plus the family's
// fixed-width bytes (4 or 16). It is built once per lookup and never
// mutated. No implicit IPv4-to-IPv6 mapping happens here; a 4-in-6
// literal such as "::ffff:1.2.3.4" stays a 16-byte V6 address.
type Addr struct {
	family Family
	bytes  [16]byte // first 4 bytes used for V4
}

// ParseAddr normalizes a textual address. Only numeric IPv4 and IPv6
// literals are accepted: no hostnames, no zone suffixes, no embedded NUL
// bytes.
func ParseAddr(s string) (Addr, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return Addr{}, addrErrf(strconv.Quote(s), "embedded null character")
	}
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return Addr{}, addrErrf(strconv.Quote(s), "not an IPv4 or IPv6 address")
	}
	if ip.Zone() != "" {
		return Addr{}, addrErrf(strconv.Quote(s), "zoned addresses cannot be looked up")
	}
	return AddrFromNetip(ip), nil
}

// AddrFromSlice normalizes a packed binary address: exactly 4 bytes for
// IPv4 or exactly 16 bytes for IPv6.
func AddrFromSlice(b []byte) (Addr, error) {
	var a Addr
	switch len(b) {
	case 4:
		a.family = V4
	case 16:
		a.family = V6
	default:
		return Addr{}, addrErrf(strconv.Itoa(len(b))+" bytes", "packed address must be 4 or 16 bytes")
	}
	copy(a.bytes[:], b)
	return a, nil
}

// AddrFromNetip converts a netip address, dropping any zone. The zero
// netip.Addr converts to the zero Addr.
func AddrFromNetip(ip netip.Addr) Addr {
	var a Addr
	if !ip.IsValid() {
		return a
	}
	if ip.Is4() {
		a.family = V4
		b4 := ip.As4()
		copy(a.bytes[:], b4[:])
	} else {
		a.family = V6
		a.bytes = ip.As16()
	}
	return a
}

func (a Addr) Family() Family { return a.family }

func (a Addr) IsValid() bool { return a.family == V4 || a.family == V6 }

// AsSlice returns the packed bytes: 4 for V4, 16 for V6, nil for the zero
// Addr.
func (a Addr) AsSlice() []byte {
	switch a.family {
	case V4:
		return a.bytes[:4:4]
	case V6:
		b := a.bytes
		return b[:]
	default:
		return nil
	}
}

// Netip converts back to a netip address.
func (a Addr) Netip() netip.Addr {
	switch a.family {
	case V4:
		return netip.AddrFrom4([4]byte(a.bytes[:4]))
	case V6:
		return netip.AddrFrom16(a.bytes)
	default:
		return netip.Addr{}
	}
}

func (a Addr) String() string {
	if !a.IsValid() {
		return "invalid"
	}
	return a.Netip().String()
}

// addrFromIP normalizes a net.IP. net.IP cannot distinguish an IPv4
// address from its 4-in-6 mapping, so anything To4 can reduce is treated
// as V4.
func addrFromIP(ip net.IP) (Addr, error) {
	if v4 := ip.To4(); v4 != nil {
		return AddrFromSlice(v4)
	}
	return AddrFromSlice(ip)
}
