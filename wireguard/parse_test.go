package wireguard

import (
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	privateKeyA = "2OZeP9sbnTBiyn1+43610zdMHhhE3CpaBJFxRJl5gGI="
	publicKeyA  = "h761vZ6TghHSmFuuEsAXRMJj8WLHkGhfyQXLcaXS2Xs="
	privateKeyB = "kBXqMKQPlxmJPuxCxsmd+xuoQxZQocKlI2w1sB8zFnI="
	publicKeyB  = "fw2pUc5mHyrSLe43NG+Rb90isqFKnKmK2Et0Ma76CkY="
)

func TestFromWgQuick(t *testing.T) {
	conf, err := FromWgQuick(`
[Interface]
PrivateKey = kBXqMKQPlxmJPuxCxsmd+xuoQxZQocKlI2w1sB8zFnI=
Address = 10.0.0.2, fd00::2/64
ListenPort = 51820
MTU = 1380
DNS = 10.0.0.1, corp.example
PostUp = iptables -A FORWARD -i %i -j ACCEPT # ignored

[Peer]
PublicKey = h761vZ6TghHSmFuuEsAXRMJj8WLHkGhfyQXLcaXS2Xs=
PresharedKey = 2OZeP9sbnTBiyn1+43610zdMHhhE3CpaBJFxRJl5gGI=
AllowedIPs = 10.0.0.1/32, ::/0
Endpoint = vpn.example.com:43234
PersistentKeepalive = 25

[Peer]
PublicKey = fw2pUc5mHyrSLe43NG+Rb90isqFKnKmK2Et0Ma76CkY=
AllowedIPs = 10.0.0.3
Endpoint = [2001:db8::1]:51820
PersistentKeepalive = off
`, "wg0")
	require.NoError(t, err)

	assert.Equal(t, "wg0", conf.Name)
	assert.Equal(t, privateKeyB, conf.Interface.PrivateKey.String())
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("10.0.0.2/32"), netip.MustParsePrefix("fd00::2/64")}, conf.Interface.Addresses)
	assert.Equal(t, uint16(51820), conf.Interface.ListenPort)
	assert.Equal(t, uint16(1380), conf.Interface.MTU)
	assert.Equal(t, []netip.Addr{netip.MustParseAddr("10.0.0.1")}, conf.Interface.DNS)
	assert.Equal(t, []string{"corp.example"}, conf.Interface.DNSSearch)

	require.Len(t, conf.Peers, 2)
	p := conf.Peers[0]
	assert.Equal(t, publicKeyA, p.PublicKey.String())
	assert.Equal(t, privateKeyA, p.PresharedKey.String())
	assert.Equal(t, EndpointSpec{Host: "vpn.example.com", Port: 43234}, p.Endpoint)
	assert.Equal(t, uint16(25), p.PersistentKeepalive)
	assert.Equal(t, []netip.Prefix{netip.MustParsePrefix("10.0.0.1/32"), netip.MustParsePrefix("::/0")}, p.AllowedIPs)

	p = conf.Peers[1]
	assert.Equal(t, EndpointSpec{Host: "2001:db8::1", Port: 51820}, p.Endpoint)
	assert.Equal(t, "[2001:db8::1]:51820", p.Endpoint.String())
	assert.Equal(t, uint16(0), p.PersistentKeepalive)
	assert.True(t, p.PresharedKey.IsZero())
}

func TestFromWgQuickErrors(t *testing.T) {
	tests := []struct {
		name string
		conf string
		line int
	}{
		{"outside section", "PrivateKey = " + privateKeyA, 1},
		{"missing equals", "[Interface]\nPrivateKey", 2},
		{"empty value", "[Interface]\nPrivateKey =", 2},
		{"bad key", "[Interface]\nPrivateKey = abc", 2},
		{"bad port", "[Interface]\nPrivateKey = " + privateKeyA + "\nListenPort = 70000", 3},
		{"small mtu", "[Interface]\nPrivateKey = " + privateKeyA + "\nMTU = 100", 3},
		{"unknown interface key", "[Interface]\nColour = blue", 2},
		{"unknown peer key", "[Interface]\nPrivateKey = " + privateKeyA + "\n[Peer]\nColour = blue", 4},
		{"endpoint without port", "[Interface]\nPrivateKey = " + privateKeyA + "\n[Peer]\nEndpoint = vpn.example.com", 4},
		{"unbracketed v6", "[Interface]\nPrivateKey = " + privateKeyA + "\n[Peer]\nEndpoint = 2001:db8::1:51820", 4},
		{"double comma", "[Interface]\nPrivateKey = " + privateKeyA + "\n[Peer]\nAllowedIPs = 10.0.0.1,,10.0.0.2", 4},
		{"no private key", "[Interface]\nListenPort = 1", 0},
		{"peer without key", "[Interface]\nPrivateKey = " + privateKeyA + "\n[Peer]\nAllowedIPs = 10.0.0.1", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromWgQuick(tt.conf, "wg0")
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestFromWgQuickFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wg0.conf")
	require.NoError(t, os.WriteFile(path, []byte("[Interface]\nPrivateKey = "+privateKeyA+"\n"), 0o600))

	conf, err := FromWgQuickFile(path, "wg0")
	require.NoError(t, err)
	assert.Equal(t, privateKeyA, conf.Interface.PrivateKey.String())

	_, err = FromWgQuickFile(filepath.Join(t.TempDir(), "missing.conf"), "wg0")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestKeys(t *testing.T) {
	privA, err := ParseKey(privateKeyA)
	require.NoError(t, err)
	privB, err := ParseKey(privateKeyB)
	require.NoError(t, err)

	pubA := privA.PublicKey()
	pubB := privB.PublicKey()
	assert.Equal(t, publicKeyA, pubA.String())
	assert.Equal(t, publicKeyB, pubB.String())

	_, err = ParseKey("c2hvcnQ=")
	assert.Error(t, err)

	generated, err := GeneratePrivateKey()
	require.NoError(t, err)
	assert.False(t, generated.IsZero())
	assert.Equal(t, byte(0), generated[0]&7)
	assert.Equal(t, byte(64), generated[31]&0xc0)
}
