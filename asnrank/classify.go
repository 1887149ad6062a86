package asnrank

import (
	"net/netip"
	"strings"
)

type RangeType int

const (
	RangeUnknown RangeType = iota
	RangePublic
	RangeUnspecified
	RangeThisNetwork
	RangePrivate
	RangeCGNAT
	RangeLoopback
	RangeLinkLocal
	RangeMulticast
	RangeLimitedBroadcast
	RangeReserved
	RangeUniqueLocal
	RangeDocumentation
)

var rangeTypeNames = map[RangeType]string{
	RangeUnknown:          "unknown",
	RangePublic:           "public",
	RangeUnspecified:      "unspecified",
	RangeThisNetwork:      "this-network",
	RangePrivate:          "private",
	RangeCGNAT:            "cgnat",
	RangeLoopback:         "loopback",
	RangeLinkLocal:        "link-local",
	RangeMulticast:        "multicast",
	RangeLimitedBroadcast: "limited-broadcast",
	RangeReserved:         "reserved",
	RangeUniqueLocal:      "unique-local",
	RangeDocumentation:    "documentation",
}

func (t RangeType) String() string {
	if name, ok := rangeTypeNames[t]; ok {
		return name
	}
	return rangeTypeNames[RangeUnknown]
}

type specialRange struct {
	prefix    netip.Prefix
	rangeType RangeType
}

// Ordered most specific first within overlapping blocks.
var specialRanges4 = []specialRange{
	{netip.MustParsePrefix("0.0.0.0/32"), RangeUnspecified},
	{netip.MustParsePrefix("0.0.0.0/8"), RangeThisNetwork},
	{netip.MustParsePrefix("10.0.0.0/8"), RangePrivate},
	{netip.MustParsePrefix("100.64.0.0/10"), RangeCGNAT},
	{netip.MustParsePrefix("127.0.0.0/8"), RangeLoopback},
	{netip.MustParsePrefix("169.254.0.0/16"), RangeLinkLocal},
	{netip.MustParsePrefix("172.16.0.0/12"), RangePrivate},
	{netip.MustParsePrefix("192.0.0.0/24"), RangeReserved},
	{netip.MustParsePrefix("192.0.2.0/24"), RangeDocumentation},
	{netip.MustParsePrefix("192.88.99.0/24"), RangeReserved},
	{netip.MustParsePrefix("192.168.0.0/16"), RangePrivate},
	{netip.MustParsePrefix("198.18.0.0/15"), RangeReserved},
	{netip.MustParsePrefix("198.51.100.0/24"), RangeDocumentation},
	{netip.MustParsePrefix("203.0.113.0/24"), RangeDocumentation},
	{netip.MustParsePrefix("224.0.0.0/4"), RangeMulticast},
	{netip.MustParsePrefix("255.255.255.255/32"), RangeLimitedBroadcast},
	{netip.MustParsePrefix("240.0.0.0/4"), RangeReserved},
}

var specialRanges6 = []specialRange{
	{netip.MustParsePrefix("::/128"), RangeUnspecified},
	{netip.MustParsePrefix("::1/128"), RangeLoopback},
	{netip.MustParsePrefix("64:ff9b::/96"), RangeReserved},
	{netip.MustParsePrefix("100::/64"), RangeReserved},
	{netip.MustParsePrefix("2001:db8::/32"), RangeDocumentation},
	{netip.MustParsePrefix("2001::/23"), RangeReserved},
	{netip.MustParsePrefix("fc00::/7"), RangeUniqueLocal},
	{netip.MustParsePrefix("fe80::/10"), RangeLinkLocal},
	{netip.MustParsePrefix("fec0::/10"), RangeReserved},
	{netip.MustParsePrefix("ff00::/8"), RangeMulticast},
	{netip.MustParsePrefix("::/8"), RangeReserved},
}

// IPv6 space outside global unicast is unassigned.
var globalUnicast6 = netip.MustParsePrefix("2000::/3")

// NormalizeAddress completes a three-octet IPv4 address with a trailing ".0".
// Some exported rows carry addresses truncated to their first three octets.
func NormalizeAddress(ip string) string {
	if strings.Count(ip, ".") == 2 {
		return ip + ".0"
	}
	return ip
}

// RangeTypeOf classifies an address. IPv4-mapped IPv6 addresses are
// classified by their embedded IPv4 address.
func RangeTypeOf(addr netip.Addr) RangeType {
	addr = addr.Unmap()

	ranges := specialRanges6
	if addr.Is4() {
		ranges = specialRanges4
	}

	for _, r := range ranges {
		if r.prefix.Contains(addr) {
			return r.rangeType
		}
	}

	if addr.Is6() && !globalUnicast6.Contains(addr.WithZone("")) {
		return RangeReserved
	}

	return RangePublic
}

// Classify normalizes and parses ip. ok is false unless the address is
// publicly routable.
func Classify(ip string) (addr netip.Addr, ok bool) {
	addr, err := netip.ParseAddr(NormalizeAddress(ip))
	if err != nil {
		return netip.Addr{}, false
	}

	addr = addr.WithZone("")
	if RangeTypeOf(addr) != RangePublic {
		return netip.Addr{}, false
	}

	return addr, true
}
