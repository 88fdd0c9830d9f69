/* SPDX-License-Identifier: MIT
 *
 * Copyright (C) 2019-2022 WireGuard LLC. All Rights Reserved.
 *
 * Original copy: https://github.com/WireGuard/wireguard-windows/blob/004c22c5647e5c492daf21d0310cbf575e4e3277/conf/parser.go
 */
package wireguard

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"net/netip"
	"os"
	"strconv"
	"strings"
)

type ParseError struct {
	Line     int
	why      string
	offender string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.why, e.offender)
	}
	return fmt.Sprintf("%s: %q", e.why, e.offender)
}

func parseIPCidr(s string) (netip.Prefix, error) {
	ipcidr, err := netip.ParsePrefix(s)
	if err == nil {
		return ipcidr, nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, &ParseError{why: "Invalid IP address", offender: s}
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func parseEndpoint(s string) (EndpointSpec, error) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return EndpointSpec{}, &ParseError{why: "Missing port from endpoint", offender: s}
	}
	host, portStr := s[:i], s[i+1:]
	if len(host) < 1 {
		return EndpointSpec{}, &ParseError{why: "Invalid endpoint host", offender: host}
	}
	port, err := parsePort(portStr)
	if err != nil {
		return EndpointSpec{}, err
	}
	hostColon := strings.IndexByte(host, ':')
	if host[0] == '[' || host[len(host)-1] == ']' || hostColon > 0 {
		bracketErr := &ParseError{why: "Brackets must contain an IPv6 address", offender: host}
		if len(host) <= 3 || host[0] != '[' || host[len(host)-1] != ']' || hostColon <= 0 {
			return EndpointSpec{}, bracketErr
		}
		end := len(host) - 1
		if i := strings.LastIndexByte(host, '%'); i > 1 {
			end = i
		}
		maybeV6, err := netip.ParseAddr(host[1:end])
		if err != nil || !maybeV6.Is6() {
			return EndpointSpec{}, bracketErr
		}
		host = host[1 : len(host)-1]
	}
	return EndpointSpec{Host: host, Port: port}, nil
}

func parseUint16(s, what string, min int) (uint16, error) {
	m, err := strconv.Atoi(s)
	if err != nil || m < min || m > 65535 {
		return 0, &ParseError{why: "Invalid " + what, offender: s}
	}
	return uint16(m), nil
}

func parsePort(s string) (uint16, error) {
	return parseUint16(s, "port", 0)
}

func parseMTU(s string) (uint16, error) {
	return parseUint16(s, "MTU", 576)
}

func parsePersistentKeepalive(s string) (uint16, error) {
	if s == "off" {
		return 0, nil
	}
	return parseUint16(s, "persistent keepalive", 0)
}

func parseKeyBase64(s string) (*Key, error) {
	k, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, &ParseError{why: fmt.Sprintf("Invalid key: %v", err), offender: s}
	}
	if len(k) != KeyLength {
		return nil, &ParseError{why: "Keys must decode to exactly 32 bytes", offender: s}
	}
	var key Key
	copy(key[:], k)
	return &key, nil
}

func splitList(s string) ([]string, error) {
	var out []string
	for _, split := range strings.Split(s, ",") {
		trim := strings.TrimSpace(split)
		if len(trim) == 0 {
			return nil, &ParseError{why: "Two commas in a row", offender: s}
		}
		out = append(out, trim)
	}
	return out, nil
}

func parsePrefixList(s string) ([]netip.Prefix, error) {
	items, err := splitList(s)
	if err != nil {
		return nil, err
	}
	out := make([]netip.Prefix, 0, len(items))
	for _, item := range items {
		p, err := parseIPCidr(item)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

type parserState int

const (
	inInterfaceSection parserState = iota
	inPeerSection
	notInASection
)

type parser struct {
	conf          Config
	state         parserState
	peer          *PeerConfig
	sawPrivateKey bool
}

func (p *parser) flushPeer() {
	if p.peer != nil {
		p.conf.Peers = append(p.conf.Peers, *p.peer)
		p.peer = nil
	}
}

func (p *parser) interfaceKey(key, val string) error {
	iface := &p.conf.Interface
	switch key {
	case "privatekey":
		k, err := parseKeyBase64(val)
		if err != nil {
			return err
		}
		iface.PrivateKey = *k
		p.sawPrivateKey = true
	case "listenport":
		port, err := parsePort(val)
		if err != nil {
			return err
		}
		iface.ListenPort = port
	case "mtu":
		m, err := parseMTU(val)
		if err != nil {
			return err
		}
		iface.MTU = m
	case "address":
		addresses, err := parsePrefixList(val)
		if err != nil {
			return err
		}
		iface.Addresses = append(iface.Addresses, addresses...)
	case "dns":
		addresses, err := splitList(val)
		if err != nil {
			return err
		}
		for _, address := range addresses {
			if a, err := netip.ParseAddr(address); err == nil {
				iface.DNS = append(iface.DNS, a)
			} else {
				iface.DNSSearch = append(iface.DNSSearch, address)
			}
		}
	case "preup", "postup", "predown", "postdown", "table", "fwmark", "saveconfig":
		// wg-quick host settings, nothing a userspace tunnel applies
	default:
		return &ParseError{why: "Invalid key for [Interface] section", offender: key}
	}
	return nil
}

func (p *parser) peerKey(key, val string) error {
	peer := p.peer
	switch key {
	case "publickey":
		k, err := parseKeyBase64(val)
		if err != nil {
			return err
		}
		peer.PublicKey = *k
	case "presharedkey":
		k, err := parseKeyBase64(val)
		if err != nil {
			return err
		}
		peer.PresharedKey = *k
	case "allowedips":
		prefixes, err := parsePrefixList(val)
		if err != nil {
			return err
		}
		peer.AllowedIPs = append(peer.AllowedIPs, prefixes...)
	case "persistentkeepalive":
		ka, err := parsePersistentKeepalive(val)
		if err != nil {
			return err
		}
		peer.PersistentKeepalive = ka
	case "endpoint":
		e, err := parseEndpoint(val)
		if err != nil {
			return err
		}
		peer.Endpoint = e
	default:
		return &ParseError{why: "Invalid key for [Peer] section", offender: key}
	}
	return nil
}

func (p *parser) line(line string) error {
	line, _, _ = strings.Cut(line, "#")
	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}
	lineLower := strings.ToLower(line)
	switch lineLower {
	case "[interface]":
		p.flushPeer()
		p.state = inInterfaceSection
		return nil
	case "[peer]":
		p.flushPeer()
		p.peer = &PeerConfig{}
		p.state = inPeerSection
		return nil
	}
	if p.state == notInASection {
		return &ParseError{why: "Line must occur in a section", offender: line}
	}
	equals := strings.IndexByte(line, '=')
	if equals < 0 {
		return &ParseError{why: "Config key is missing an equals separator", offender: line}
	}
	key, val := strings.TrimSpace(lineLower[:equals]), strings.TrimSpace(line[equals+1:])
	if len(val) == 0 {
		return &ParseError{why: "Key must have a value", offender: line}
	}
	if p.state == inInterfaceSection {
		return p.interfaceKey(key, val)
	}
	return p.peerKey(key, val)
}

// FromWgQuickReader parses a wg-quick(8) style configuration.
func FromWgQuickReader(r io.Reader, name string) (*Config, error) {
	p := parser{conf: Config{Name: name}, state: notInASection}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := p.line(scanner.Text()); err != nil {
			if pe, ok := err.(*ParseError); ok {
				pe.Line = lineNo
			}
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", name, err)
	}
	p.flushPeer()

	if !p.sawPrivateKey {
		return nil, &ParseError{why: "An interface must have a private key", offender: "[none specified]"}
	}
	for _, peer := range p.conf.Peers {
		if peer.PublicKey.IsZero() {
			return nil, &ParseError{why: "All peers must have public keys", offender: "[none specified]"}
		}
	}
	return &p.conf, nil
}

func FromWgQuick(s, name string) (*Config, error) {
	return FromWgQuickReader(strings.NewReader(s), name)
}

func FromWgQuickFile(file, name string) (*Config, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open config %s: %w", file, err)
	}
	defer f.Close()
	return FromWgQuickReader(f, name)
}
