package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level":        "log_level",
	"log-format":       "log_format",
	"resolve-timeout":  "resolve_timeout",
	"refresh-interval": "refresh_interval",
	"address-family":   "address_family",
}

// Loader handles configuration loading from multiple sources.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	return &Loader{
		v: viper.New(),
	}
}

// BindFlags lets the known flags present in fs override file and
// environment values.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads path when given, otherwise looks for an optional
// .wg-uapi.yaml in the usual places, then applies WG_UAPI_* variables.
func (l *Loader) Load(path string) (*Config, error) {
	l.setDefaults()
	l.setupEnvVars()

	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		l.setupConfigPaths()
		if err := l.v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (l *Loader) setDefaults() {
	l.v.SetDefault("log_level", "info")
	l.v.SetDefault("log_format", "text")
	l.v.SetDefault("resolve_timeout", "10s")
	l.v.SetDefault("refresh_interval", "1m")
	l.v.SetDefault("address_family", "any")
}

func (l *Loader) setupConfigPaths() {
	l.v.SetConfigName(".wg-uapi")
	l.v.SetConfigType("yaml")

	l.v.AddConfigPath("/etc/wg-uapi")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}
	l.v.AddConfigPath(".")
}

func (l *Loader) setupEnvVars() {
	l.v.SetEnvPrefix("WG_UAPI")
	l.v.AutomaticEnv()
}

func validate(cfg *Config) error {
	var result *multierror.Error

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid log_level: %s", cfg.LogLevel))
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		result = multierror.Append(result, fmt.Errorf("invalid log_format: %s (must be text or json)", cfg.LogFormat))
	}
	if cfg.ResolveTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("resolve_timeout must be positive"))
	}
	if cfg.RefreshInterval < cfg.ResolveTimeout {
		result = multierror.Append(result, fmt.Errorf("refresh_interval must not be shorter than resolve_timeout"))
	}
	switch cfg.AddressFamily {
	case "any", "ip4", "ip6":
	default:
		result = multierror.Append(result, fmt.Errorf("invalid address_family: %s (must be any, ip4 or ip6)", cfg.AddressFamily))
	}

	return result.ErrorOrNil()
}
