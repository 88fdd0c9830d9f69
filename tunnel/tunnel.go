package tunnel

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.zx2c4.com/wireguard/conn"
	"golang.zx2c4.com/wireguard/device"
	"golang.zx2c4.com/wireguard/tun/netstack"

	"github.com/dnachev/wg-uapi/wireguard"
)

const (
	DefaultMtu            = 1420
	DefaultResolveTimeout = 10 * time.Second
)

// Tunnel is a userspace WireGuard device on a netstack TUN.
type Tunnel struct {
	net      *netstack.Net
	dev      *device.Device
	config   *wireguard.Config
	resolver wireguard.Resolver
	timeout  time.Duration
	log      *logrus.Entry

	mu    sync.Mutex
	peers []wireguard.Peer
}

type Option func(*Tunnel)

func WithResolver(r wireguard.Resolver) Option {
	return func(t *Tunnel) {
		t.resolver = r
	}
}

// WithResolveTimeout bounds name resolution for each (re)connection
// attempt. Zero leaves it to the caller's context.
func WithResolveTimeout(d time.Duration) Option {
	return func(t *Tunnel) {
		t.timeout = d
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(t *Tunnel) {
		t.log = log
	}
}

func deviceLogger(log *logrus.Entry) *device.Logger {
	return &device.Logger{
		Verbosef: log.Debugf,
		Errorf:   log.Errorf,
	}
}

// Create brings up a tunnel for config. Every peer endpoint must resolve;
// otherwise nothing is configured and the error is returned.
func Create(ctx context.Context, config *wireguard.Config, opts ...Option) (*Tunnel, error) {
	t := &Tunnel{
		config:   config,
		resolver: wireguard.DefaultResolver,
		timeout:  DefaultResolveTimeout,
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.WithField("tunnel", config.Name)

	peers, err := t.resolve(ctx, func(ctx context.Context) ([]wireguard.Peer, error) {
		return config.ResolvePeers(ctx, t.resolver)
	})
	if err != nil {
		return nil, err
	}

	localIps := make([]netip.Addr, 0, len(config.Interface.Addresses))
	for _, p := range config.Interface.Addresses {
		localIps = append(localIps, p.Addr())
	}
	mtu := config.Interface.MTU
	if mtu == 0 {
		mtu = DefaultMtu
	}
	tunDev, gNet, err := netstack.CreateNetTUN(localIps, config.Interface.DNS, int(mtu))
	if err != nil {
		return nil, fmt.Errorf("failed to create netstack tun: %w", err)
	}
	t.net = gNet
	t.dev = device.NewDevice(tunDev, conn.NewDefaultBind(), deviceLogger(t.log.WithField("component", "device")))

	if err := t.apply(peers); err != nil {
		t.dev.Close()
		return nil, err
	}
	if err := t.dev.Up(); err != nil {
		t.dev.Close()
		return nil, fmt.Errorf("failed to bring device up: %w", err)
	}
	t.log.WithField("peers", len(peers)).Info("tunnel is up")
	return t, nil
}

func (t *Tunnel) resolve(ctx context.Context, fn func(context.Context) ([]wireguard.Peer, error)) ([]wireguard.Peer, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return fn(ctx)
}

// apply submits the full configuration for peers. Callers hold t.mu or own t exclusively.
func (t *Tunnel) apply(peers []wireguard.Peer) error {
	cmds, err := t.config.Commands(peers)
	if err != nil {
		return err
	}
	if err := t.dev.IpcSet(wireguard.Encode(cmds)); err != nil {
		return fmt.Errorf("failed to configure device: %w", err)
	}
	t.peers = peers
	return nil
}

// Reconnect performs one reconnection attempt: all peers are re-resolved
// and the full configuration is submitted again. If any endpoint fails to
// resolve the attempt is aborted and the running configuration is kept.
func (t *Tunnel) Reconnect(ctx context.Context) error {
	log := t.log.WithField("attempt_id", uuid.NewString())
	t.mu.Lock()
	defer t.mu.Unlock()

	peers, err := t.resolve(ctx, func(ctx context.Context) ([]wireguard.Peer, error) {
		return wireguard.ReresolvePeers(ctx, t.resolver, t.peers)
	})
	if err != nil {
		log.WithError(err).Warn("reconnect aborted")
		return err
	}
	if err := t.apply(peers); err != nil {
		log.WithError(err).Error("reconnect failed")
		return err
	}
	log.WithField("peers", len(peers)).Info("tunnel reconnected")
	return nil
}

// Refresh re-resolves the peers and reconfigures the device only when an
// endpoint address changed. It reports whether the device was reconfigured.
// On failure the running configuration is kept.
func (t *Tunnel) Refresh(ctx context.Context) (bool, error) {
	log := t.log.WithField("attempt_id", uuid.NewString())
	t.mu.Lock()
	defer t.mu.Unlock()

	peers, err := t.resolve(ctx, func(ctx context.Context) ([]wireguard.Peer, error) {
		return wireguard.ReresolvePeers(ctx, t.resolver, t.peers)
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.WithError(err).Warn("endpoint refresh failed, keeping current configuration")
		}
		return false, err
	}

	changed := false
	for i, p := range peers {
		if !p.Endpoint.Equal(t.peers[i].Endpoint) {
			log.WithFields(logrus.Fields{
				"hostname": p.Endpoint.Hostname(),
				"old":      t.peers[i].Endpoint.String(),
				"new":      p.Endpoint.String(),
			}).Info("peer endpoint moved")
			changed = true
		}
	}
	if !changed {
		return false, nil
	}
	if err := t.apply(peers); err != nil {
		log.WithError(err).Error("endpoint refresh failed")
		return false, err
	}
	return true, nil
}

// Watch calls Refresh every interval until ctx is done. Failed attempts are
// logged and tried again on the next tick.
func (t *Tunnel) Watch(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := t.Refresh(ctx); errors.Is(err, context.Canceled) {
				return err
			}
		}
	}
}

// Peers returns the peers the device is currently configured with.
func (t *Tunnel) Peers() []wireguard.Peer {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]wireguard.Peer, len(t.peers))
	copy(out, t.peers)
	return out
}

func (t *Tunnel) Close() {
	t.dev.Close()
	t.log.Info("tunnel closed")
}

func (t *Tunnel) Dial(network, addr string) (net.Conn, error) {
	return t.net.Dial(network, addr)
}

func (t *Tunnel) Listen(proto string, address string) (net.Listener, error) {
	if proto != "tcp" {
		return nil, fmt.Errorf("only tcp proto is supported")
	}
	if address == "" {
		// nothing is specified, listen on random port
		return t.net.ListenTCP(nil)
	}
	host, portName, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}

	var ipAddr netip.Addr

	if host != "" {
		addrs, err := t.net.LookupHost(host)
		if err != nil {
			return nil, err
		}
		ipAddr, err = netip.ParseAddr(addrs[0])
		if err != nil {
			return nil, err
		}
	} else {
		if len(t.config.Interface.Addresses) == 0 {
			return nil, fmt.Errorf("tunnel %s has no interface address", t.config.Name)
		}
		ipAddr = t.config.Interface.Addresses[0].Addr()
	}

	port, err := net.LookupPort(proto, portName)
	if err != nil {
		return nil, err
	}

	addrPort := netip.AddrPortFrom(ipAddr, uint16(port))
	tcpAddr := net.TCPAddrFromAddrPort(addrPort)
	return t.net.ListenTCP(tcpAddr)
}
