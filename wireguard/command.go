package wireguard

import "net/netip"

// Command is one directive of a UAPI set operation. The set of commands is
// closed: only the types in this file implement it.
type Command interface {
	command()
}

type SetPrivateKey struct {
	Key Key
}

type SetListenPort struct {
	Port uint16
}

// ResetPeers removes every peer not added later in the same operation.
type ResetPeers struct{}

// AddPeer starts a peer block. Commands that follow it, up to the next
// AddPeer, apply to this peer. Peer.Endpoint must be valid; a peer without
// an endpoint is added with AddPassivePeer. Peer.Command picks the variant.
type AddPeer struct {
	Peer Peer
}

// AddPassivePeer starts a peer block for a peer with no endpoint.
type AddPassivePeer struct {
	PublicKey Key
}

type SetPresharedKey struct {
	Key Key
}

// SetPersistentKeepalive sets the keepalive interval in seconds; 0 disables it.
type SetPersistentKeepalive struct {
	Interval uint16
}

type ResetAllowedIPs struct{}

type AddAllowedIP struct {
	Prefix netip.Prefix
}

func (SetPrivateKey) command()          {}
func (SetListenPort) command()          {}
func (ResetPeers) command()             {}
func (AddPeer) command()                {}
func (AddPassivePeer) command()         {}
func (SetPresharedKey) command()        {}
func (SetPersistentKeepalive) command() {}
func (ResetAllowedIPs) command()        {}
func (AddAllowedIP) command()           {}
