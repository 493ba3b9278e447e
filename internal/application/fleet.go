package application

import (
	"context"
	"sort"
	"sync"

	"github.com/bnema/worker-fleet/internal/domain"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Fleet runs one Session per account and coordinates their shutdown.
type Fleet struct {
	deps     SessionDeps
	settings FleetSettings

	mu       sync.RWMutex
	sessions map[int]*Session
}

func NewFleet(deps SessionDeps, settings FleetSettings) *Fleet {
	return &Fleet{
		deps:     deps.withDefaults(),
		settings: settings,
		sessions: map[int]*Session{},
	}
}

// Run starts every session and blocks until ctx is cancelled or all
// sessions have ended on their own. An empty account list is a
// configuration error and starts nothing.
func (f *Fleet) Run(ctx context.Context, accounts []domain.AccountIdentity, proxies []domain.ProxyEndpoint) error {
	log := f.deps.Logger
	if len(accounts) == 0 {
		log.Error("no accounts found")
		return domain.ErrNoAccounts
	}

	log.WithFields(logrus.Fields{
		"accounts": len(accounts),
		"proxies":  len(proxies),
	}).Info("starting program for all accounts")

	sessions := f.spawn(domain.AssignProxies(accounts, proxies))

	var wg conc.WaitGroup
	for _, session := range sessions {
		wg.Go(func() {
			f.runSession(ctx, session)
		})
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
	}

	log.Warn("process received shutdown signal, cleaning up sessions")
	for _, session := range sessions {
		session.Stop()
	}

	if f.settings.ShutdownGrace <= 0 {
		<-finished
		return nil
	}
	select {
	case <-finished:
	case <-f.deps.Clock.After(f.settings.ShutdownGrace):
		log.WithField("grace", f.settings.ShutdownGrace).Warn("sessions still unwinding after shutdown grace period")
	}
	return nil
}

func (f *Fleet) spawn(assignments []domain.Assignment) []*Session {
	f.mu.Lock()
	defer f.mu.Unlock()

	sessions := make([]*Session, 0, len(assignments))
	for _, assignment := range assignments {
		session := NewSession(assignment, f.deps, f.settings.Session)
		f.sessions[assignment.Index] = session
		sessions = append(sessions, session)
	}
	return sessions
}

// runSession isolates one session: its error or panic is logged and never
// reaches sibling sessions.
func (f *Fleet) runSession(ctx context.Context, session *Session) {
	log := f.deps.Logger.WithField("account", session.Assignment().Number())

	var catcher panics.Catcher
	catcher.Try(func() {
		if err := session.Run(ctx); err != nil {
			log.WithError(err).Error("session ended")
		}
	})
	if recovered := catcher.Recovered(); recovered != nil {
		log.WithField("panic", recovered.Value).Error("session crashed")
	}
}

// Sessions returns a snapshot of every session ordered by account index.
func (f *Fleet) Sessions() []SessionStatus {
	f.mu.RLock()
	defer f.mu.RUnlock()

	statuses := make([]SessionStatus, 0, len(f.sessions))
	for _, session := range f.sessions {
		statuses = append(statuses, session.Status())
	}
	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Assignment.Index < statuses[j].Assignment.Index
	})
	return statuses
}
