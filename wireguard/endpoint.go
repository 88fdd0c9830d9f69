package wireguard

import (
	"context"
	"net/netip"
)

// Endpoint is the numeric address a peer is reached at. When it was
// derived from a hostname the name is kept so that it can be looked up
// again; the name is never used on the wire.
//
// Endpoint values are immutable. Re-resolution returns a new value.
type Endpoint struct {
	addr     netip.AddrPort
	hostname string
}

func NewEndpoint(addr netip.Addr, port uint16) Endpoint {
	return Endpoint{addr: netip.AddrPortFrom(addr.Unmap(), port)}
}

func EndpointFromAddrPort(ap netip.AddrPort) Endpoint {
	return NewEndpoint(ap.Addr(), ap.Port())
}

// ResolveEndpoint builds an Endpoint from a hostname. An IP literal is
// accepted as is and yields an endpoint with no hostname to re-resolve.
func ResolveEndpoint(ctx context.Context, r Resolver, host string, port uint16) (Endpoint, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return NewEndpoint(addr, port), nil
	}
	addr, err := lookup(ctx, r, host)
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{addr: netip.AddrPortFrom(addr, port), hostname: host}, nil
}

// ResolveEndpointSpec resolves an authored endpoint.
func ResolveEndpointSpec(ctx context.Context, r Resolver, spec EndpointSpec) (Endpoint, error) {
	return ResolveEndpoint(ctx, r, spec.Host, spec.Port)
}

// Reresolve looks the hostname up again. Endpoints built from a numeric
// address are returned unchanged without consulting the resolver.
func (e Endpoint) Reresolve(ctx context.Context, r Resolver) (Endpoint, error) {
	if e.hostname == "" {
		return e, nil
	}
	return ResolveEndpoint(ctx, r, e.hostname, e.addr.Port())
}

func (e Endpoint) AddrPort() netip.AddrPort { return e.addr }
func (e Endpoint) Addr() netip.Addr         { return e.addr.Addr() }
func (e Endpoint) Port() uint16             { return e.addr.Port() }
func (e Endpoint) Hostname() string         { return e.hostname }
func (e Endpoint) IsValid() bool            { return e.addr.Addr().IsValid() }

// Equal compares address and port. The hostname is not part of identity.
func (e Endpoint) Equal(o Endpoint) bool {
	return e.addr == o.addr
}

// String renders a.b.c.d:port or [v6]:port.
func (e Endpoint) String() string {
	return e.addr.String()
}
