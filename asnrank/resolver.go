package asnrank

import (
	"net"
	"net/netip"

	"github.com/oschwald/maxminddb-golang"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by a Resolver when the address has no ASN record.
var ErrNotFound = errors.New("address not found")

// Resolver maps a public address to the network announcing it.
type Resolver interface {
	Resolve(addr netip.Addr) (*Network, error)
}

// asnRecord corresponds to the data in the GeoLite2 ASN database.
type asnRecord struct {
	AutonomousSystemNumber       uint32 `maxminddb:"autonomous_system_number"`
	AutonomousSystemOrganization string `maxminddb:"autonomous_system_organization"`
}

// GeoIPResolver resolves addresses against a local GeoLite2-ASN database.
type GeoIPResolver struct {
	reader *maxminddb.Reader
}

func OpenGeoIPResolver(path string) (*GeoIPResolver, error) {
	reader, err := maxminddb.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open ASN database %s", path)
	}

	return &GeoIPResolver{reader: reader}, nil
}

func (r *GeoIPResolver) DatabaseType() string {
	return r.reader.Metadata.DatabaseType
}

func (r *GeoIPResolver) Resolve(addr netip.Addr) (*Network, error) {
	var record asnRecord

	_, ok, err := r.reader.LookupNetwork(net.IP(addr.Unmap().AsSlice()), &record)
	if err != nil {
		return nil, errors.Wrapf(err, "lookup %s", addr)
	}
	if !ok || record.AutonomousSystemNumber == 0 {
		return nil, errors.Wrapf(ErrNotFound, "%s", addr)
	}

	return &Network{
		ASN:          ASN(record.AutonomousSystemNumber),
		Organization: record.AutonomousSystemOrganization,
	}, nil
}

func (r *GeoIPResolver) Close() error {
	return r.reader.Close()
}
