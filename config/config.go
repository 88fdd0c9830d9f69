package config

import (
	"time"

	"github.com/dnachev/wg-uapi/wireguard"
)

// Config holds the wg-uapi runtime settings. Tunnel definitions themselves
// come from wg-quick files.
type Config struct {
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	ResolveTimeout  time.Duration `mapstructure:"resolve_timeout"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	AddressFamily   string        `mapstructure:"address_family"`
}

// Resolver returns the system resolver with the configured address family
// preference applied.
func (c *Config) Resolver() wireguard.Resolver {
	return wireguard.PreferFamily(wireguard.DefaultResolver, c.AddressFamily)
}
