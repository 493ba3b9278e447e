package application

import (
	"context"
	"errors"
	"time"

	"github.com/bnema/worker-fleet/internal/domain"
	"github.com/bnema/worker-fleet/internal/ports"
)

// timerSet holds the tickers that live and die with one connection.
type timerSet struct {
	heartbeat ports.Ticker
	status    ports.Ticker
	claim     ports.Ticker
}

func (t *timerSet) stopAll() {
	for _, ticker := range []*ports.Ticker{&t.heartbeat, &t.status, &t.claim} {
		if *ticker != nil {
			(*ticker).Stop()
			*ticker = nil
		}
	}
}

func tickC(ticker ports.Ticker) <-chan time.Time {
	if ticker == nil {
		return nil
	}
	return ticker.C()
}

type pollKind int

const (
	pollStatus pollKind = iota
	pollClaim
)

type pollResult struct {
	kind pollKind
	err  error
}

// connection is the per-channel state owned by the serve loop.
type connection struct {
	channel ports.Channel
	token   domain.SessionToken
	timers  timerSet
	polls   chan pollResult
	done    chan struct{}
	closing bool
	relogin bool
}

func (s *Session) serve(ctx context.Context, token domain.SessionToken) serveOutcome {
	channel, err := s.dialer.Dial(ctx, token, s.assignment.Proxy)
	if err != nil {
		s.log.WithError(err).Error("channel error")
		_ = s.transition(domain.StateClosing)
		_ = s.transition(domain.StateDisconnected)
		if s.shutdownRequested(ctx) {
			return outcomeShutdown
		}
		return outcomeClosed
	}

	conn := &connection{
		channel: channel,
		token:   token,
		polls:   make(chan pollResult),
		done:    make(chan struct{}),
	}

	events := channel.Events()
	shutdown := ctx.Done()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				event = ports.ChannelEvent{Kind: ports.ChannelClose}
			}
			switch event.Kind {
			case ports.ChannelOpen:
				s.handleOpen(conn)
			case ports.ChannelMessage:
				s.handleMessage(conn, event.Payload)
			case ports.ChannelError:
				s.log.WithError(event.Err).Error("channel error")
			case ports.ChannelClose:
				return s.handleClose(ctx, conn)
			}
		case <-tickC(conn.timers.heartbeat):
			s.sendHeartbeat(conn)
		case <-tickC(conn.timers.status):
			s.launchPoll(ctx, conn, pollStatus)
		case <-tickC(conn.timers.claim):
			s.launchPoll(ctx, conn, pollClaim)
		case result := <-conn.polls:
			s.handlePoll(conn, result)
		case <-shutdown:
			shutdown = nil
			s.log.Warn("shutdown requested, closing channel")
			s.beginClose(conn)
		}
	}
}

func (s *Session) handleOpen(conn *connection) {
	if err := s.transition(domain.StateRegistered); err != nil {
		return
	}
	s.log.Info("channel connection established")

	s.mu.Lock()
	needsRegister := s.registeredFor != conn.token
	s.mu.Unlock()

	if needsRegister {
		s.log.Info("trying to register worker id")
		if err := s.send(conn, domain.NewRegisterMessage(s.worker, s.assignment.Account, s.correlationID)); err == nil {
			s.mu.Lock()
			s.registeredFor = conn.token
			s.mu.Unlock()
			s.counters.registers.Add(1)
		}
	}

	conn.timers.heartbeat = s.clock.NewTicker(s.settings.HeartbeatInterval)
	conn.timers.status = s.clock.NewTicker(s.settings.StatusInterval)
	conn.timers.claim = s.clock.NewTicker(s.settings.ClaimInterval)

	_ = s.transition(domain.StateLive)
}

func (s *Session) sendHeartbeat(conn *connection) {
	s.mu.RLock()
	registered := s.registeredFor == conn.token
	s.mu.RUnlock()
	if !registered || conn.closing {
		return
	}

	s.log.Info("sending heartbeat")
	if err := s.send(conn, domain.NewHeartbeatMessage(s.worker, s.assignment.Account, s.capacity)); err == nil {
		s.counters.heartbeats.Add(1)
	}
}

func (s *Session) handleMessage(conn *connection, payload []byte) {
	inbound, err := domain.ParseInbound(payload)
	if err != nil {
		s.log.WithError(err).Warn("received undecodable message")
	} else {
		s.log.WithField("message", string(payload)).Info("received message")
	}

	if inbound.Kind == domain.InboundJob {
		if err := s.send(conn, domain.NewJobAssignedMessage(s.worker, inbound.JobRef)); err == nil {
			s.counters.jobsAcknowledged.Add(1)
		}
		return
	}

	s.counters.responses.Add(1)
	s.observer.ResponseReceived(s.assignment, inbound.Raw)
}

func (s *Session) handlePoll(conn *connection, result pollResult) {
	if result.kind != pollStatus || !errors.Is(result.err, domain.ErrUnauthorized) || conn.closing {
		return
	}

	s.log.Warn("unauthorized: token is invalid or expired, reconnecting")
	conn.relogin = true
	s.beginClose(conn)
}

// beginClose cancels every timer before asking the channel to close so no
// tick can fire against a channel mid-teardown.
func (s *Session) beginClose(conn *connection) {
	if conn.closing {
		return
	}
	conn.closing = true
	conn.timers.stopAll()
	_ = s.transition(domain.StateClosing)
	if err := conn.channel.Close(); err != nil {
		s.log.WithError(err).Warn("close channel")
	}
}

func (s *Session) handleClose(ctx context.Context, conn *connection) serveOutcome {
	conn.timers.stopAll()
	close(conn.done)

	if s.State() != domain.StateClosing {
		_ = s.transition(domain.StateClosing)
	}
	_ = s.transition(domain.StateDisconnected)

	switch {
	case s.shutdownRequested(ctx):
		return outcomeShutdown
	case conn.relogin:
		return outcomeRelogin
	default:
		return outcomeClosed
	}
}
