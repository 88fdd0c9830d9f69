package wireguard

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ReresolvePeers re-resolves every peer concurrently and returns the new
// peers in the same order. The first failure cancels the remaining lookups
// and is returned; no partial result is produced.
//
// Callers bound the latency through ctx.
func ReresolvePeers(ctx context.Context, r Resolver, peers []Peer) ([]Peer, error) {
	out := make([]Peer, len(peers))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range peers {
		i, p := i, p
		g.Go(func() error {
			np, err := p.WithReresolvedEndpoint(ctx, r)
			if err != nil {
				return err
			}
			out[i] = np
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolvePeers resolves the authored peers of c into Peers, positionally.
// Peers without an endpoint get an invalid Endpoint.
func (c *Config) ResolvePeers(ctx context.Context, r Resolver) ([]Peer, error) {
	out := make([]Peer, len(c.Peers))
	g, ctx := errgroup.WithContext(ctx)
	for i, pc := range c.Peers {
		i, pc := i, pc
		out[i].PublicKey = pc.PublicKey
		if pc.Endpoint.IsEmpty() {
			continue
		}
		g.Go(func() error {
			e, err := ResolveEndpointSpec(ctx, r, pc.Endpoint)
			if err != nil {
				return err
			}
			out[i].Endpoint = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
