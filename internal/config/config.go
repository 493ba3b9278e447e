package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = "fleet"
	envPrefix  = "FLEET"
)

const (
	KeyAccountsFile = "accounts.file"
	KeyFleetFile    = "accounts.fleet_file"
	KeyProxiesFile  = "proxies.file"

	KeyAuthURL        = "gateway.auth_url"
	KeyRewardsURL     = "gateway.rewards_url"
	KeyChannelURL     = "gateway.channel_url"
	KeyOrigin         = "gateway.origin"
	KeyUserAgent      = "gateway.user_agent"
	KeyRequestTimeout = "gateway.request_timeout"
	KeyRetries        = "gateway.retries"
	KeyRetryDelay     = "gateway.retry_delay"

	KeyTokenRetryBackoff = "session.token_retry_backoff"
	KeyTokenRetryMax     = "session.token_retry_max"
	KeyReconnectDelay    = "session.reconnect_delay"
	KeyHeartbeatInterval = "session.heartbeat_interval"
	KeyStatusInterval    = "session.status_interval"
	KeyClaimInterval     = "session.claim_interval"

	KeyShutdownGrace = "fleet.shutdown_grace"

	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
)

type Config struct {
	AccountsFile string
	ProxiesFile  string
	// FleetFile, when set, replaces the two line files with one TOML roster.
	FleetFile string

	Gateway Gateway
	Session Session
	Fleet   Fleet
	Log     Log
}

type Gateway struct {
	AuthURL        string
	RewardsURL     string
	ChannelURL     string
	Origin         string
	UserAgent      string
	RequestTimeout time.Duration
	Retries        int
	RetryDelay     time.Duration
}

type Session struct {
	TokenRetryBackoff time.Duration
	TokenRetryMax     int
	ReconnectDelay    time.Duration
	HeartbeatInterval time.Duration
	StatusInterval    time.Duration
	ClaimInterval     time.Duration
}

type Fleet struct {
	ShutdownGrace time.Duration
}

type Log struct {
	Level  string
	Format string
}

// Defaults are the values used by the reference gateway deployment.
func Defaults() Config {
	return Config{
		AccountsFile: "wallets.txt",
		ProxiesFile:  "proxy.txt",
		Gateway: Gateway{
			AuthURL:        "https://apitn.openledger.xyz/api/v1",
			RewardsURL:     "https://rewardstn.openledger.xyz/api/v1",
			ChannelURL:     "wss://apitn.openledger.xyz/ws/v1/orch",
			Origin:         "chrome-extension://ekbbplmjjgoobhdlffmgeokalelnmjjc",
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
			RequestTimeout: 30 * time.Second,
			Retries:        3,
			RetryDelay:     time.Second,
		},
		Session: Session{
			TokenRetryBackoff: 3 * time.Second,
			ReconnectDelay:    5 * time.Second,
			HeartbeatInterval: 30 * time.Second,
			StatusInterval:    9 * time.Minute,
			ClaimInterval:     60 * time.Minute,
		},
		Fleet: Fleet{ShutdownGrace: 10 * time.Second},
		Log:   Log{Level: "info", Format: "text"},
	}
}

// Load reads config.toml from path, or from the standard search locations
// when path is empty, then applies FLEET_* environment overrides. A missing
// file is only an error when path was given explicitly.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		for _, dir := range searchPaths() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := Config{
		AccountsFile: v.GetString(KeyAccountsFile),
		ProxiesFile:  v.GetString(KeyProxiesFile),
		FleetFile:    v.GetString(KeyFleetFile),
		Gateway: Gateway{
			AuthURL:        v.GetString(KeyAuthURL),
			RewardsURL:     v.GetString(KeyRewardsURL),
			ChannelURL:     v.GetString(KeyChannelURL),
			Origin:         v.GetString(KeyOrigin),
			UserAgent:      v.GetString(KeyUserAgent),
			RequestTimeout: v.GetDuration(KeyRequestTimeout),
			Retries:        v.GetInt(KeyRetries),
			RetryDelay:     v.GetDuration(KeyRetryDelay),
		},
		Session: Session{
			TokenRetryBackoff: v.GetDuration(KeyTokenRetryBackoff),
			TokenRetryMax:     v.GetInt(KeyTokenRetryMax),
			ReconnectDelay:    v.GetDuration(KeyReconnectDelay),
			HeartbeatInterval: v.GetDuration(KeyHeartbeatInterval),
			StatusInterval:    v.GetDuration(KeyStatusInterval),
			ClaimInterval:     v.GetDuration(KeyClaimInterval),
		},
		Fleet: Fleet{ShutdownGrace: v.GetDuration(KeyShutdownGrace)},
		Log: Log{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault(KeyAccountsFile, d.AccountsFile)
	v.SetDefault(KeyProxiesFile, d.ProxiesFile)
	v.SetDefault(KeyFleetFile, d.FleetFile)
	v.SetDefault(KeyAuthURL, d.Gateway.AuthURL)
	v.SetDefault(KeyRewardsURL, d.Gateway.RewardsURL)
	v.SetDefault(KeyChannelURL, d.Gateway.ChannelURL)
	v.SetDefault(KeyOrigin, d.Gateway.Origin)
	v.SetDefault(KeyUserAgent, d.Gateway.UserAgent)
	v.SetDefault(KeyRequestTimeout, d.Gateway.RequestTimeout)
	v.SetDefault(KeyRetries, d.Gateway.Retries)
	v.SetDefault(KeyRetryDelay, d.Gateway.RetryDelay)
	v.SetDefault(KeyTokenRetryBackoff, d.Session.TokenRetryBackoff)
	v.SetDefault(KeyTokenRetryMax, d.Session.TokenRetryMax)
	v.SetDefault(KeyReconnectDelay, d.Session.ReconnectDelay)
	v.SetDefault(KeyHeartbeatInterval, d.Session.HeartbeatInterval)
	v.SetDefault(KeyStatusInterval, d.Session.StatusInterval)
	v.SetDefault(KeyClaimInterval, d.Session.ClaimInterval)
	v.SetDefault(KeyShutdownGrace, d.Fleet.ShutdownGrace)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)
}

func searchPaths() []string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, configDir))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", configDir))
	}
	return append(dirs, ".")
}

func (c Config) Validate() error {
	var errs []error

	if c.FleetFile == "" && strings.TrimSpace(c.AccountsFile) == "" {
		errs = append(errs, errors.New("accounts.file is empty"))
	}

	errs = append(errs,
		checkURL(KeyAuthURL, c.Gateway.AuthURL, "http", "https"),
		checkURL(KeyRewardsURL, c.Gateway.RewardsURL, "http", "https"),
		checkURL(KeyChannelURL, c.Gateway.ChannelURL, "ws", "wss"),
		checkPositive(KeyRequestTimeout, c.Gateway.RequestTimeout),
		checkPositive(KeyTokenRetryBackoff, c.Session.TokenRetryBackoff),
		checkPositive(KeyReconnectDelay, c.Session.ReconnectDelay),
		checkPositive(KeyHeartbeatInterval, c.Session.HeartbeatInterval),
		checkPositive(KeyStatusInterval, c.Session.StatusInterval),
		checkPositive(KeyClaimInterval, c.Session.ClaimInterval),
	)
	if c.Gateway.Retries < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyRetries))
	}
	if c.Gateway.Retries > 0 && c.Gateway.RetryDelay <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive when retries are enabled", KeyRetryDelay))
	}
	if c.Session.TokenRetryMax < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyTokenRetryMax))
	}
	if c.Fleet.ShutdownGrace < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyShutdownGrace))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func checkPositive(key string, value time.Duration) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return nil
}

func checkURL(key, raw string, schemes ...string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	for _, scheme := range schemes {
		if parsed.Scheme == scheme && parsed.Host != "" {
			return nil
		}
	}
	return fmt.Errorf("%s must be an absolute %s url, got %q", key, strings.Join(schemes, "/"), raw)
}
