package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoader_Load_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ResolveTimeout)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.Equal(t, "any", cfg.AddressFamily)
	assert.NotNil(t, cfg.Resolver())
}

func TestLoader_Load_FromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("WG_UAPI_LOG_LEVEL", "debug")
	t.Setenv("WG_UAPI_RESOLVE_TIMEOUT", "3s")
	t.Setenv("WG_UAPI_ADDRESS_FAMILY", "ip6")

	cfg, err := NewLoader().Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.ResolveTimeout)
	assert.Equal(t, "ip6", cfg.AddressFamily)
}

func TestLoader_Load_FromFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "wg-uapi.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_format: json\nrefresh_interval: 5m\n"), 0o600))

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
}

func TestLoader_Load_MissingFile(t *testing.T) {
	isolate(t)
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoader_BindFlags(t *testing.T) {
	isolate(t)
	t.Setenv("WG_UAPI_LOG_LEVEL", "debug")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "info", "")
	fs.Duration("resolve-timeout", 10*time.Second, "")
	require.NoError(t, fs.Parse([]string{"--log-level=error", "--resolve-timeout=2s"}))

	l := NewLoader()
	require.NoError(t, l.BindFlags(fs))
	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.ResolveTimeout)
}

func TestLoader_Validation(t *testing.T) {
	isolate(t)
	t.Setenv("WG_UAPI_LOG_LEVEL", "loud")
	t.Setenv("WG_UAPI_LOG_FORMAT", "xml")
	t.Setenv("WG_UAPI_ADDRESS_FAMILY", "ipx")
	t.Setenv("WG_UAPI_REFRESH_INTERVAL", "1s")

	_, err := NewLoader().Load("")
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 4)
	assert.Contains(t, err.Error(), "invalid log_level")
	assert.Contains(t, err.Error(), "invalid log_format")
	assert.Contains(t, err.Error(), "invalid address_family")
	assert.Contains(t, err.Error(), "refresh_interval")
}
