package wireguard

import (
	"context"
	"net/netip"
)

// Peer is a remote tunnel counterpart bound to a resolved endpoint. A peer
// without an endpoint has an invalid Endpoint and only accepts handshakes.
type Peer struct {
	PublicKey Key
	Endpoint  Endpoint
}

// WithReresolvedEndpoint returns a copy of p bound to a freshly resolved
// endpoint. The receiver is not modified.
func (p Peer) WithReresolvedEndpoint(ctx context.Context, r Resolver) (Peer, error) {
	e, err := p.Endpoint.Reresolve(ctx, r)
	if err != nil {
		return Peer{}, err
	}
	return Peer{PublicKey: p.PublicKey, Endpoint: e}, nil
}

// Command returns the command that starts p's peer block: AddPeer when p
// has an endpoint, AddPassivePeer otherwise.
func (p Peer) Command() Command {
	if p.Endpoint.IsValid() {
		return AddPeer{Peer: p}
	}
	return AddPassivePeer{PublicKey: p.PublicKey}
}

func (p Peer) Equal(o Peer) bool {
	return p.PublicKey == o.PublicKey && p.Endpoint.Equal(o.Endpoint)
}

type peerIdentity struct {
	key  Key
	addr netip.AddrPort
}

// UniquePeers drops repeated peers, keeping the first occurrence. Identity
// is the public key together with the endpoint address, so one key reached
// at two addresses stays as two peers.
//
// Config.Commands keeps peers positional with Config.Peers and does not
// call it; UniquePeers is for callers assembling their own peer lists.
func UniquePeers(peers []Peer) []Peer {
	seen := make(map[peerIdentity]struct{}, len(peers))
	out := make([]Peer, 0, len(peers))
	for _, p := range peers {
		id := peerIdentity{key: p.PublicKey, addr: p.Endpoint.AddrPort()}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, p)
	}
	return out
}
