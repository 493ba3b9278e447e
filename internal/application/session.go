package application

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/bnema/worker-fleet/internal/domain"
	"github.com/bnema/worker-fleet/internal/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SessionDeps are the collaborators shared by every session of a fleet.
// Gateway and Dialer are required; the rest default when nil.
type SessionDeps struct {
	Gateway  ports.Gateway
	Dialer   ports.ChannelDialer
	Clock    ports.Clock
	Logger   logrus.FieldLogger
	Observer Observer
	Rand     *rand.Rand
	// NewCorrelationID produces the REGISTER message id.
	NewCorrelationID func() string
}

func (d SessionDeps) withDefaults() SessionDeps {
	if d.Clock == nil {
		d.Clock = ports.SystemClock{}
	}
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}
	if d.Observer == nil {
		d.Observer = nopObserver{}
	}
	if d.NewCorrelationID == nil {
		d.NewCorrelationID = uuid.NewString
	}
	return d
}

// SessionStats counts protocol activity over the lifetime of a session.
type SessionStats struct {
	Logins           int64
	Registers        int64
	Heartbeats       int64
	JobsAcknowledged int64
	Responses        int64
	Claims           int64
	Reconnects       int64
	Relogins         int64
}

type sessionCounters struct {
	logins           atomic.Int64
	registers        atomic.Int64
	heartbeats       atomic.Int64
	jobsAcknowledged atomic.Int64
	responses        atomic.Int64
	claims           atomic.Int64
	reconnects       atomic.Int64
	relogins         atomic.Int64
}

func (c *sessionCounters) snapshot() SessionStats {
	return SessionStats{
		Logins:           c.logins.Load(),
		Registers:        c.registers.Load(),
		Heartbeats:       c.heartbeats.Load(),
		JobsAcknowledged: c.jobsAcknowledged.Load(),
		Responses:        c.responses.Load(),
		Claims:           c.claims.Load(),
		Reconnects:       c.reconnects.Load(),
		Relogins:         c.relogins.Load(),
	}
}

// SessionStatus is a point-in-time view of one session.
type SessionStatus struct {
	Assignment domain.Assignment
	Worker     domain.WorkerIdentity
	State      domain.ConnectionState
	HasToken   bool
	Stats      SessionStats
}

// Session drives one account: login, channel, registration, heartbeats,
// reward polling and recovery. Run owns every state and token mutation.
type Session struct {
	assignment    domain.Assignment
	worker        domain.WorkerIdentity
	capacity      domain.Capacity
	correlationID string

	gateway  ports.Gateway
	dialer   ports.ChannelDialer
	clock    ports.Clock
	log      logrus.FieldLogger
	observer Observer
	settings SessionSettings

	stop     chan struct{}
	stopOnce sync.Once

	mu            sync.RWMutex
	state         domain.ConnectionState
	token         domain.SessionToken
	registeredFor domain.SessionToken

	counters sessionCounters
}

func NewSession(assignment domain.Assignment, deps SessionDeps, settings SessionSettings) *Session {
	deps = deps.withDefaults()
	worker := domain.NewWorkerIdentity(assignment.Account)

	return &Session{
		assignment:    assignment,
		worker:        worker,
		capacity:      domain.NewCapacity(deps.Rand),
		correlationID: deps.NewCorrelationID(),
		gateway:       deps.Gateway,
		dialer:        deps.Dialer,
		clock:         deps.Clock,
		log: deps.Logger.WithFields(logrus.Fields{
			"account": assignment.Number(),
			"worker":  string(worker),
		}),
		observer: deps.Observer,
		settings: settings,
		stop:     make(chan struct{}),
		state:    domain.StateDisconnected,
	}
}

func (s *Session) Assignment() domain.Assignment {
	return s.assignment
}

func (s *Session) Capacity() domain.Capacity {
	return s.capacity
}

func (s *Session) State() domain.ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SessionStatus{
		Assignment: s.assignment,
		Worker:     s.worker,
		State:      s.state,
		HasToken:   s.token != "",
		Stats:      s.counters.snapshot(),
	}
}

// Stop turns reconnection off and asks Run to tear the connection down.
// It does not wait; Run returns once the channel has closed.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

type serveOutcome int

const (
	outcomeShutdown serveOutcome = iota
	outcomeClosed
	outcomeRelogin
)

// Run blocks until ctx is cancelled, Stop is called, or the token retry cap
// is exhausted. It returns nil on a requested shutdown.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	s.log.WithField("proxy", s.assignment.Proxy.Label()).Info("processing account")

	for {
		if s.shutdownRequested(ctx) {
			return nil
		}
		if err := s.transition(domain.StateConnecting); err != nil {
			return err
		}

		token, err := s.login(ctx)
		if err != nil {
			_ = s.transition(domain.StateDisconnected)
			if ctx.Err() != nil {
				s.log.Info("session stopped before login completed")
				return nil
			}
			return err
		}

		s.log.Info("getting user info and claim details")
		s.claimIfUnclaimed(ctx, token)
		_ = s.fetchStatus(ctx, token)

		switch s.serve(ctx, token) {
		case outcomeShutdown:
			s.log.Warn("channel closed, session stopped")
			return nil
		case outcomeRelogin:
			s.counters.relogins.Add(1)
			s.log.Warn("token is invalid or expired, logging in again")
		case outcomeClosed:
			s.log.WithField("delay", s.settings.ReconnectDelay).Warn("channel closed, reconnecting")
			select {
			case <-ctx.Done():
				return nil
			case <-s.clock.After(s.settings.ReconnectDelay):
			}
			s.counters.reconnects.Add(1)
		}
	}
}

// shutdownRequested reports whether reconnection is no longer wanted.
func (s *Session) shutdownRequested(ctx context.Context) bool {
	select {
	case <-s.stop:
		return true
	default:
		return ctx.Err() != nil
	}
}

func (s *Session) transition(next domain.ConnectionState) error {
	s.mu.Lock()
	from := s.state
	updated, err := from.Transition(next)
	s.state = updated
	s.mu.Unlock()

	if err != nil {
		s.log.WithError(err).Debug("ignored state transition")
		return err
	}
	s.log.WithField("state", next.String()).Debug("state changed")
	s.observer.StateChanged(s.assignment, from, next)
	return nil
}

// login requests tokens until one is issued. It waits TokenRetryBackoff
// between attempts and never gives up unless TokenRetryMax is set.
func (s *Session) login(ctx context.Context) (domain.SessionToken, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		token, err := s.requestToken(ctx)
		if err == nil {
			s.mu.Lock()
			s.token = token
			s.mu.Unlock()
			s.counters.logins.Add(1)
			s.log.WithField("token", token.Masked()).Info("login success")
			return token, nil
		}

		s.log.WithError(err).WithField("attempt", attempt).Error("failed to generate token, retrying")
		if limit := s.settings.TokenRetryMax; limit > 0 && attempt >= limit {
			return "", fmt.Errorf("generate token after %d attempts: %w", attempt, err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-s.clock.After(s.settings.TokenRetryBackoff):
		}
	}
}

func (s *Session) requestToken(ctx context.Context) (domain.SessionToken, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	token, err := s.gateway.GenerateToken(callCtx, s.assignment.Account, s.assignment.Proxy)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", domain.ErrTokenUnavailable
	}
	return token, nil
}

// callContext detaches gateway calls from cancellation so a shutdown lets
// in-flight requests finish; RequestTimeout still bounds them.
func (s *Session) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if s.settings.RequestTimeout <= 0 {
		return detached, func() {}
	}
	return context.WithTimeout(detached, s.settings.RequestTimeout)
}

func (s *Session) send(conn *connection, message any) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode control message: %w", err)
	}
	if !s.State().CanSend() {
		s.log.Error("connection is not open, cannot send message")
		return domain.ErrChannelNotOpen
	}
	if err := conn.channel.Send(payload); err != nil {
		s.log.WithError(err).Error("connection is not open, cannot send message")
		return err
	}
	return nil
}
