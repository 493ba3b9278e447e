package application

import (
	"errors"
	"fmt"
	"time"
)

// SessionSettings holds the per-session intervals. Heartbeat, status and
// claim periods are independent of each other.
type SessionSettings struct {
	TokenRetryBackoff time.Duration
	// TokenRetryMax caps token attempts per login; zero retries forever.
	TokenRetryMax     int
	ReconnectDelay    time.Duration
	HeartbeatInterval time.Duration
	StatusInterval    time.Duration
	ClaimInterval     time.Duration
	RequestTimeout    time.Duration
}

func DefaultSessionSettings() SessionSettings {
	return SessionSettings{
		TokenRetryBackoff: 3 * time.Second,
		ReconnectDelay:    5 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		StatusInterval:    9 * time.Minute,
		ClaimInterval:     60 * time.Minute,
		RequestTimeout:    30 * time.Second,
	}
}

func (s SessionSettings) Validate() error {
	positive := []struct {
		name  string
		value time.Duration
	}{
		{"token retry backoff", s.TokenRetryBackoff},
		{"reconnect delay", s.ReconnectDelay},
		{"heartbeat interval", s.HeartbeatInterval},
		{"status interval", s.StatusInterval},
		{"claim interval", s.ClaimInterval},
	}
	for _, field := range positive {
		if field.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", field.name, field.value)
		}
	}
	if s.TokenRetryMax < 0 {
		return errors.New("token retry max must not be negative")
	}
	if s.RequestTimeout < 0 {
		return errors.New("request timeout must not be negative")
	}
	return nil
}

type FleetSettings struct {
	Session       SessionSettings
	ShutdownGrace time.Duration
}

func DefaultFleetSettings() FleetSettings {
	return FleetSettings{
		Session:       DefaultSessionSettings(),
		ShutdownGrace: 10 * time.Second,
	}
}

func (s FleetSettings) Validate() error {
	if err := s.Session.Validate(); err != nil {
		return err
	}
	if s.ShutdownGrace < 0 {
		return errors.New("shutdown grace must not be negative")
	}
	return nil
}
