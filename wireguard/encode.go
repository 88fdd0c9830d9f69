package wireguard

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Encode renders commands as a UAPI set operation body: one key=value per
// line, in the order given, joined by "\n" with no trailing newline.
// It does not reorder or validate the sequence.
func Encode(cmds []Command) string {
	var b strings.Builder
	for i, c := range cmds {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeCommand(&b, c)
	}
	return b.String()
}

// EncodeTo writes Encode(cmds) to w.
func EncodeTo(w io.Writer, cmds []Command) error {
	_, err := io.WriteString(w, Encode(cmds))
	return err
}

func writeCommand(b *strings.Builder, c Command) {
	switch c := c.(type) {
	case SetPrivateKey:
		line(b, "private_key", c.Key.ToHex())
	case SetListenPort:
		line(b, "listen_port", strconv.FormatUint(uint64(c.Port), 10))
	case ResetPeers:
		line(b, "replace_peers", "true")
	case AddPeer:
		line(b, "public_key", c.Peer.PublicKey.ToHex())
		b.WriteByte('\n')
		line(b, "endpoint", c.Peer.Endpoint.String())
	case AddPassivePeer:
		line(b, "public_key", c.PublicKey.ToHex())
	case SetPresharedKey:
		line(b, "preshared_key", c.Key.ToHex())
	case SetPersistentKeepalive:
		line(b, "persistent_keepalive_interval", strconv.FormatUint(uint64(c.Interval), 10))
	case ResetAllowedIPs:
		line(b, "replace_allowed_ips", "true")
	case AddAllowedIP:
		line(b, "allowed_ip", c.Prefix.String())
	default:
		panic(fmt.Sprintf("wireguard: unknown command %T", c))
	}
}

func line(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteByte('=')
	b.WriteString(value)
}
