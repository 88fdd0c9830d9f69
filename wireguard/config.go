/* SPDX-License-Identifier: MIT
 *
 * Copyright (C) 2019-2022 WireGuard LLC. All Rights Reserved.
 * Original source: https://github.com/WireGuard/wireguard-windows/blob/004c22c5647e5c492daf21d0310cbf575e4e3277/conf/config.go
 */
package wireguard

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"golang.org/x/crypto/curve25519"
)

const KeyLength = 32

// EndpointSpec is an endpoint as the user wrote it. Host may be a DNS name
// or an IP literal; it is resolved into an Endpoint before it is encoded.
type EndpointSpec struct {
	Host string
	Port uint16
}

type Key [KeyLength]byte

type Config struct {
	Name      string
	Interface Interface
	Peers     []PeerConfig
}

type Interface struct {
	PrivateKey Key
	Addresses  []netip.Prefix
	ListenPort uint16
	MTU        uint16
	DNS        []netip.Addr
	DNSSearch  []string
}

type PeerConfig struct {
	PublicKey           Key
	PresharedKey        Key
	AllowedIPs          []netip.Prefix
	Endpoint            EndpointSpec
	PersistentKeepalive uint16
}

func (e EndpointSpec) IsEmpty() bool {
	return len(e.Host) == 0
}

func (e EndpointSpec) String() string {
	if strings.IndexByte(e.Host, ':') > 0 {
		return fmt.Sprintf("[%s]:%d", e.Host, e.Port)
	}
	return e.Host + ":" + strconv.Itoa(int(e.Port))
}

func (k *Key) IsZero() bool {
	var zeros Key
	return subtle.ConstantTimeCompare(zeros[:], k[:]) == 1
}

// ToHex returns the key as 64 lowercase hex characters, the only key
// encoding the control protocol accepts.
func (k *Key) ToHex() string {
	return hex.EncodeToString(k[:])
}

func (k *Key) String() string {
	return base64.StdEncoding.EncodeToString(k[:])
}

// PublicKey derives the curve25519 public key for a private key.
func (k *Key) PublicKey() Key {
	priv := *k
	clamp(&priv)
	out, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		// X25519 only fails for low order points, never for the base point
		panic(err)
	}
	var pub Key
	copy(pub[:], out)
	return pub
}

// GeneratePrivateKey returns a new clamped private key.
func GeneratePrivateKey() (Key, error) {
	var k Key
	if _, err := rand.Read(k[:]); err != nil {
		return Key{}, fmt.Errorf("failed to read random bytes: %w", err)
	}
	clamp(&k)
	return k, nil
}

// ParseKey decodes a base64 key as found in wg-quick files.
func ParseKey(s string) (Key, error) {
	k, err := parseKeyBase64(s)
	if err != nil {
		return Key{}, err
	}
	return *k, nil
}

func clamp(k *Key) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}
