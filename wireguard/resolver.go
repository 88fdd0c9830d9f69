package wireguard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sort"
)

// ErrNoAddresses is the cause of a ResolutionFailedError when the lookup
// succeeded but produced no usable address.
var ErrNoAddresses = errors.New("no addresses found")

// Resolver looks up the numeric addresses of a host. *net.Resolver
// satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// DefaultResolver is the system resolver.
var DefaultResolver Resolver = net.DefaultResolver

// ResolutionFailedError is returned when a hostname endpoint cannot be
// turned into a numeric address.
type ResolutionFailedError struct {
	Hostname string
	Err      error
}

func (e *ResolutionFailedError) Error() string {
	return fmt.Sprintf("failed to resolve %s: %v", e.Hostname, e.Err)
}

func (e *ResolutionFailedError) Unwrap() error {
	return e.Err
}

// lookup returns the first address the resolver reports for host.
func lookup(ctx context.Context, r Resolver, host string) (netip.Addr, error) {
	addrs, err := r.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return netip.Addr{}, &ResolutionFailedError{Hostname: host, Err: err}
	}
	for _, a := range addrs {
		if a.IsValid() {
			return a.Unmap(), nil
		}
	}
	return netip.Addr{}, &ResolutionFailedError{Hostname: host, Err: ErrNoAddresses}
}

type familyResolver struct {
	Resolver
	want6 bool
}

// PreferFamily wraps r so that addresses of the given family ("ip4" or
// "ip6") are returned ahead of the others. Any other network returns r
// unchanged.
func PreferFamily(r Resolver, network string) Resolver {
	switch network {
	case "ip4":
		return familyResolver{Resolver: r}
	case "ip6":
		return familyResolver{Resolver: r, want6: true}
	}
	return r
}

func (f familyResolver) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	addrs, err := f.Resolver.LookupNetIP(ctx, network, host)
	if err != nil {
		return nil, err
	}
	sorted := make([]netip.Addr, len(addrs))
	copy(sorted, addrs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return f.preferred(sorted[i]) && !f.preferred(sorted[j])
	})
	return sorted, nil
}

func (f familyResolver) preferred(a netip.Addr) bool {
	a = a.Unmap()
	if f.want6 {
		return a.Is6()
	}
	return a.Is4()
}
