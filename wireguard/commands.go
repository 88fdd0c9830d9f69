package wireguard

import "fmt"

// Commands builds the full set operation for c with peers bound to the
// given resolved peers. peers[i] belongs to c.Peers[i].
//
// Each peer block is AddPeer, its per-peer settings, ResetAllowedIPs and
// its AddAllowedIP lines, so every line follows the peer it applies to.
func (c *Config) Commands(peers []Peer) ([]Command, error) {
	if len(peers) != len(c.Peers) {
		return nil, fmt.Errorf("config %s has %d peers, got %d resolved", c.Name, len(c.Peers), len(peers))
	}
	cmds := []Command{SetPrivateKey{Key: c.Interface.PrivateKey}}
	if c.Interface.ListenPort != 0 {
		cmds = append(cmds, SetListenPort{Port: c.Interface.ListenPort})
	}
	cmds = append(cmds, ResetPeers{})
	for i, pc := range c.Peers {
		p := peers[i]
		if p.PublicKey != pc.PublicKey {
			return nil, fmt.Errorf("resolved peer %d has public key %s, config has %s", i, p.PublicKey.String(), pc.PublicKey.String())
		}
		cmds = append(cmds, p.Command())
		if !pc.PresharedKey.IsZero() {
			cmds = append(cmds, SetPresharedKey{Key: pc.PresharedKey})
		}
		if pc.PersistentKeepalive != 0 {
			cmds = append(cmds, SetPersistentKeepalive{Interval: pc.PersistentKeepalive})
		}
		cmds = append(cmds, ResetAllowedIPs{})
		for _, prefix := range pc.AllowedIPs {
			cmds = append(cmds, AddAllowedIP{Prefix: prefix})
		}
	}
	return cmds, nil
}
