package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoadReadsFileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
[accounts]
file = "/srv/fleet/wallets.txt"

[proxies]
file = "/srv/fleet/proxies.txt"

[gateway]
auth_url = "http://localhost:8080/api/v1"
retries = 1

[session]
heartbeat_interval = "10s"
token_retry_max = 5

[log]
format = "json"
`)
	t.Setenv("FLEET_SESSION_STATUS_INTERVAL", "2m")
	t.Setenv("FLEET_LOG_LEVEL", "debug")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/fleet/wallets.txt", cfg.AccountsFile)
	assert.Equal(t, "/srv/fleet/proxies.txt", cfg.ProxiesFile)
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.Gateway.AuthURL)
	assert.Equal(t, 1, cfg.Gateway.Retries)
	assert.Equal(t, 10*time.Second, cfg.Session.HeartbeatInterval)
	assert.Equal(t, 5, cfg.Session.TokenRetryMax)
	assert.Equal(t, 2*time.Minute, cfg.Session.StatusInterval)
	assert.Equal(t, 60*time.Minute, cfg.Session.ClaimInterval)
	assert.Equal(t, Log{Level: "debug", Format: "json"}, cfg.Log)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
[gateway]
channel_url = "https://not-a-socket.test"

[session]
heartbeat_interval = "0s"
`)

	_, err := Load(viper.New(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyChannelURL)
	assert.Contains(t, err.Error(), KeyHeartbeatInterval)
}

func TestValidateAcceptsFleetFileWithoutAccountsFile(t *testing.T) {
	cfg := Defaults()
	cfg.AccountsFile = ""
	cfg.FleetFile = "fleet.toml"
	assert.NoError(t, cfg.Validate())

	cfg.FleetFile = ""
	assert.Error(t, cfg.Validate())
}
