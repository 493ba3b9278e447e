package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/worker-fleet/internal/domain"
	"github.com/bnema/worker-fleet/internal/ports"
	"github.com/sourcegraph/conc/iter"
)

var ErrRosterReadOnly = errors.New("roster source does not support writes")

// Service holds the one-shot operations around the fleet: roster
// management and reward reports.
type Service struct {
	source  ports.RosterSource
	gateway ports.Gateway
	clock   ports.Clock
}

func NewService(source ports.RosterSource, gateway ports.Gateway, clock ports.Clock) *Service {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Service{
		source:  source,
		gateway: gateway,
		clock:   clock,
	}
}

func (s *Service) Roster(ctx context.Context) (ports.Roster, error) {
	roster, err := s.source.Load(ctx)
	if err != nil {
		return ports.Roster{}, fmt.Errorf("load roster: %w", err)
	}
	return roster, nil
}

// Assignments pairs every roster account with its proxy.
func (s *Service) Assignments(ctx context.Context) ([]domain.Assignment, error) {
	roster, err := s.Roster(ctx)
	if err != nil {
		return nil, err
	}
	if len(roster.Accounts) == 0 {
		return nil, domain.ErrNoAccounts
	}
	return domain.AssignProxies(roster.Accounts, roster.Proxies), nil
}

// Import appends new accounts and proxies to a writable roster. Entries
// already present are skipped and order is preserved.
func (s *Service) Import(ctx context.Context, cmd ImportCommand) (ImportResult, error) {
	repo, ok := s.source.(ports.RosterRepository)
	if !ok {
		return ImportResult{}, ErrRosterReadOnly
	}

	roster, err := repo.Load(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("load roster: %w", err)
	}

	var result ImportResult
	roster.Accounts, result.AddedAccounts, result.Skipped = mergeUnique(roster.Accounts, cmd.Accounts)
	var skippedProxies int
	roster.Proxies, result.AddedProxies, skippedProxies = mergeUnique(roster.Proxies, cmd.Proxies)
	result.Skipped += skippedProxies

	if result.AddedAccounts == 0 && result.AddedProxies == 0 {
		return result, nil
	}
	if err := repo.Save(ctx, roster); err != nil {
		return ImportResult{}, fmt.Errorf("save roster: %w", err)
	}
	return result, nil
}

func mergeUnique[T ~string](existing, incoming []T) ([]T, int, int) {
	seen := make(map[T]struct{}, len(existing))
	for _, value := range existing {
		seen[value] = struct{}{}
	}

	added, skipped := 0, 0
	for _, value := range incoming {
		value = T(strings.TrimSpace(string(value)))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			skipped++
			continue
		}
		seen[value] = struct{}{}
		existing = append(existing, value)
		added++
	}
	return existing, added, skipped
}

// RewardReport logs every account in once and reads its reward state. A
// failing account gets an entry with Err set and does not fail the report.
func (s *Service) RewardReport(ctx context.Context, assignments []domain.Assignment) []RewardReportEntry {
	entries := iter.Map(assignments, func(assignment *domain.Assignment) RewardReportEntry {
		return s.rewardEntry(ctx, *assignment)
	})
	for i := range entries {
		entries[i].FetchedAt = s.clock.Now()
	}
	return entries
}

func (s *Service) rewardEntry(ctx context.Context, assignment domain.Assignment) RewardReportEntry {
	entry := RewardReportEntry{Assignment: assignment}

	token, err := s.gateway.GenerateToken(ctx, assignment.Account, assignment.Proxy)
	if err == nil && token == "" {
		err = domain.ErrTokenUnavailable
	}
	if err != nil {
		entry.Err = fmt.Errorf("login: %w", err)
		return entry
	}

	details, err := s.gateway.ClaimDetails(ctx, token, assignment.Proxy)
	if err != nil {
		entry.Err = err
		return entry
	}
	realtime, err := s.gateway.RewardRealtime(ctx, token, assignment.Proxy)
	if err != nil {
		entry.Err = err
		return entry
	}

	entry.Status = domain.NewRewardStatus(details, realtime)
	return entry
}
