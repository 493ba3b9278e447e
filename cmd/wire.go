package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/bnema/worker-fleet/internal/adapters/channel/ws"
	"github.com/bnema/worker-fleet/internal/adapters/gateway"
	"github.com/bnema/worker-fleet/internal/adapters/logging"
	statusadapter "github.com/bnema/worker-fleet/internal/adapters/render/status"
	tomlrepo "github.com/bnema/worker-fleet/internal/adapters/repo/toml"
	"github.com/bnema/worker-fleet/internal/adapters/source/lines"
	"github.com/bnema/worker-fleet/internal/application"
	"github.com/bnema/worker-fleet/internal/config"
	"github.com/bnema/worker-fleet/internal/ports"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type app struct {
	viper      *viper.Viper
	configPath string
	bindErr    error

	config         config.Config
	logger         *logrus.Logger
	clock          ports.Clock
	gateway        ports.Gateway
	dialer         ports.ChannelDialer
	roster         ports.RosterSource
	service        *application.Service
	statusRenderer func(statusadapter.Report, statusadapter.RenderOptions) (string, error)
	now            func() time.Time
}

func newApp() *app {
	return &app{
		viper:          viper.New(),
		clock:          ports.SystemClock{},
		statusRenderer: statusadapter.Render,
		now:            time.Now,
	}
}

func (a *app) bindFlag(key string, flag *pflag.Flag) {
	if err := a.viper.BindPFlag(key, flag); err != nil && a.bindErr == nil {
		a.bindErr = fmt.Errorf("bind flag %s: %w", flag.Name, err)
	}
}

// wire loads the configuration and builds every adapter. Logs go to
// logOutput so stdout stays free for rendered reports.
func (a *app) wire(logOutput io.Writer) error {
	if a.bindErr != nil {
		return a.bindErr
	}

	cfg, err := config.Load(a.viper, a.configPath)
	if err != nil {
		return err
	}
	a.config = cfg

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: logOutput,
	})
	if err != nil {
		return fmt.Errorf("wire logger: %w", err)
	}
	a.logger = logger

	a.gateway = gateway.New(gateway.Config{
		AuthURL:    cfg.Gateway.AuthURL,
		RewardsURL: cfg.Gateway.RewardsURL,
		Origin:     cfg.Gateway.Origin,
		UserAgent:  cfg.Gateway.UserAgent,
		Retries:    cfg.Gateway.Retries,
		RetryDelay: cfg.Gateway.RetryDelay,
	}, a.clock, logger.WithField("component", "gateway"))

	a.dialer = ws.Dialer{
		URL:              cfg.Gateway.ChannelURL,
		Origin:           cfg.Gateway.Origin,
		UserAgent:        cfg.Gateway.UserAgent,
		HandshakeTimeout: cfg.Gateway.RequestTimeout,
	}

	roster, err := wireRoster(cfg)
	if err != nil {
		return err
	}
	a.roster = roster

	a.service = application.NewService(roster, a.gateway, a.clock)
	return nil
}

func wireRoster(cfg config.Config) (ports.RosterSource, error) {
	if cfg.FleetFile == "" {
		return lines.Source{AccountsPath: cfg.AccountsFile, ProxiesPath: cfg.ProxiesFile}, nil
	}

	repo, err := tomlrepo.NewRepository(cfg.FleetFile)
	if err != nil {
		return nil, fmt.Errorf("wire fleet file: %w", err)
	}
	return repo, nil
}

func (a *app) sessionDeps(observer application.Observer) application.SessionDeps {
	return application.SessionDeps{
		Gateway:  a.gateway,
		Dialer:   a.dialer,
		Clock:    a.clock,
		Logger:   a.logger,
		Observer: observer,
	}
}

func (a *app) fleetSettings() application.FleetSettings {
	s := a.config.Session
	return application.FleetSettings{
		Session: application.SessionSettings{
			TokenRetryBackoff: s.TokenRetryBackoff,
			TokenRetryMax:     s.TokenRetryMax,
			ReconnectDelay:    s.ReconnectDelay,
			HeartbeatInterval: s.HeartbeatInterval,
			StatusInterval:    s.StatusInterval,
			ClaimInterval:     s.ClaimInterval,
			RequestTimeout:    a.config.Gateway.RequestTimeout,
		},
		ShutdownGrace: a.config.Fleet.ShutdownGrace,
	}
}
