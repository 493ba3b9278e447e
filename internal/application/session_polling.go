package application

import (
	"context"
	"errors"

	"github.com/bnema/worker-fleet/internal/domain"
	"github.com/sirupsen/logrus"
)

// launchPoll runs one poll off the serve loop so a slow gateway never
// delays heartbeats. The result is dropped if the connection is gone.
func (s *Session) launchPoll(ctx context.Context, conn *connection, kind pollKind) {
	token := conn.token
	go func() {
		result := pollResult{kind: kind}
		switch kind {
		case pollStatus:
			s.log.Info("fetching total points gained today")
			result.err = s.fetchStatus(ctx, token)
		case pollClaim:
			s.log.Info("checking daily rewards")
			s.claimIfUnclaimed(ctx, token)
		}

		select {
		case conn.polls <- result:
		case <-conn.done:
		}
	}()
}

// fetchStatus performs one reward_realtime call. Failures only mean no
// update this cycle; domain.ErrUnauthorized is returned for the caller to
// trigger a relogin.
func (s *Session) fetchStatus(ctx context.Context, token domain.SessionToken) error {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	realtime, err := s.gateway.RewardRealtime(callCtx, token, s.assignment.Proxy)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			s.log.Error("unauthorized, token is invalid or expired")
			return err
		}
		s.log.WithError(err).Error("error fetching user info")
		return err
	}

	s.log.WithField("points_today", realtime.TotalHeartbeats).Info("account has gained points today")
	return nil
}

// claimIfUnclaimed fetches claim details and issues at most one claim.
func (s *Session) claimIfUnclaimed(ctx context.Context, token domain.SessionToken) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	details, err := s.gateway.ClaimDetails(callCtx, token, s.assignment.Proxy)
	if err != nil {
		s.log.WithError(err).Error("error fetching claim info")
		return
	}

	s.log.WithFields(logrus.Fields{
		"tier":        details.Tier,
		"daily_point": details.DailyPoint,
		"claimed":     details.Claimed,
		"next_claim":  details.NextClaimLabel(),
	}).Info("claim details")

	if details.Claimed {
		return
	}

	s.log.Info("trying to claim daily rewards")
	receipt, err := s.gateway.ClaimReward(callCtx, token, s.assignment.Proxy)
	if err != nil {
		s.log.WithError(err).Error("error claiming daily reward")
		return
	}

	s.counters.claims.Add(1)
	s.log.WithField("receipt", string(receipt.Raw)).Info("daily rewards claimed")
}
