package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/worker-fleet/internal/domain"
	"github.com/bnema/worker-fleet/internal/ports"
	"github.com/bnema/worker-fleet/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memoryRoster struct {
	mu     sync.Mutex
	roster ports.Roster
	saves  int
}

func (m *memoryRoster) Load(context.Context) (ports.Roster, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ports.Roster{
		Accounts: append([]domain.AccountIdentity(nil), m.roster.Accounts...),
		Proxies:  append([]domain.ProxyEndpoint(nil), m.roster.Proxies...),
	}, nil
}

func (m *memoryRoster) Save(_ context.Context, roster ports.Roster) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roster = roster
	m.saves++
	return nil
}

type readOnlyRoster struct {
	roster ports.Roster
	err    error
}

func (r readOnlyRoster) Load(context.Context) (ports.Roster, error) {
	return r.roster, r.err
}

func TestServiceAssignmentsRotateProxies(t *testing.T) {
	t.Parallel()

	service := NewService(readOnlyRoster{roster: ports.Roster{
		Accounts: []domain.AccountIdentity{"0xA", "0xB", "0xC"},
		Proxies:  []domain.ProxyEndpoint{"http://p1:1", "http://p2:2"},
	}}, nil, &fakeClock{})

	assignments, err := service.Assignments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Assignment{
		{Index: 0, Account: "0xA", Proxy: "http://p1:1"},
		{Index: 1, Account: "0xB", Proxy: "http://p2:2"},
		{Index: 2, Account: "0xC", Proxy: "http://p1:1"},
	}, assignments)
}

func TestServiceAssignmentsRequireAccounts(t *testing.T) {
	t.Parallel()

	service := NewService(readOnlyRoster{}, nil, &fakeClock{})
	_, err := service.Assignments(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoAccounts)

	failing := NewService(readOnlyRoster{err: errors.New("permission denied")}, nil, &fakeClock{})
	_, err = failing.Assignments(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load roster")
}

func TestServiceImportSkipsDuplicates(t *testing.T) {
	t.Parallel()

	repo := &memoryRoster{roster: ports.Roster{
		Accounts: []domain.AccountIdentity{"0xA"},
		Proxies:  []domain.ProxyEndpoint{"http://p1:1"},
	}}
	service := NewService(repo, nil, &fakeClock{})

	result, err := service.Import(context.Background(), ImportCommand{
		Accounts: []domain.AccountIdentity{"0xA", " 0xB ", "", "0xB", "0xC"},
		Proxies:  []domain.ProxyEndpoint{"http://p1:1", "socks5://p2:2"},
	})
	require.NoError(t, err)
	assert.Equal(t, ImportResult{AddedAccounts: 2, AddedProxies: 1, Skipped: 3}, result)
	assert.Equal(t, []domain.AccountIdentity{"0xA", "0xB", "0xC"}, repo.roster.Accounts)
	assert.Equal(t, []domain.ProxyEndpoint{"http://p1:1", "socks5://p2:2"}, repo.roster.Proxies)
	assert.Equal(t, 1, repo.saves)
}

func TestServiceImportWithNothingNewDoesNotWrite(t *testing.T) {
	t.Parallel()

	repo := &memoryRoster{roster: ports.Roster{Accounts: []domain.AccountIdentity{"0xA"}}}
	service := NewService(repo, nil, &fakeClock{})

	result, err := service.Import(context.Background(), ImportCommand{Accounts: []domain.AccountIdentity{"0xA"}})
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Skipped: 1}, result)
	assert.Zero(t, repo.saves)
}

func TestServiceImportNeedsWritableRoster(t *testing.T) {
	t.Parallel()

	service := NewService(readOnlyRoster{}, nil, &fakeClock{})
	_, err := service.Import(context.Background(), ImportCommand{Accounts: []domain.AccountIdentity{"0xA"}})
	assert.ErrorIs(t, err, ErrRosterReadOnly)
}

func TestServiceRewardReport(t *testing.T) {
	t.Parallel()

	gateway := mocks.NewMockGateway(t)
	gateway.EXPECT().GenerateToken(mock.Anything, domain.AccountIdentity("0xA"), domain.ProxyEndpoint("http://p1:1")).
		Return("T1", nil).Once()
	gateway.EXPECT().ClaimDetails(mock.Anything, domain.SessionToken("T1"), domain.ProxyEndpoint("http://p1:1")).
		Return(domain.ClaimDetails{Tier: "gold", DailyPoint: 30, Claimed: true, NextClaim: "tomorrow"}, nil).Once()
	gateway.EXPECT().RewardRealtime(mock.Anything, domain.SessionToken("T1"), domain.ProxyEndpoint("http://p1:1")).
		Return(domain.RewardRealtime{TotalHeartbeats: 120}, nil).Once()

	gateway.EXPECT().GenerateToken(mock.Anything, domain.AccountIdentity("0xB"), domain.ProxyEndpoint("")).
		Return("", nil).Once()

	gateway.EXPECT().GenerateToken(mock.Anything, domain.AccountIdentity("0xC"), domain.ProxyEndpoint("")).
		Return("T3", nil).Once()
	gateway.EXPECT().ClaimDetails(mock.Anything, domain.SessionToken("T3"), domain.ProxyEndpoint("")).
		Return(domain.ClaimDetails{}, nil).Once()
	gateway.EXPECT().RewardRealtime(mock.Anything, domain.SessionToken("T3"), domain.ProxyEndpoint("")).
		Return(domain.RewardRealtime{}, domain.ErrUnauthorized).Once()

	clock := &fakeClock{}
	service := NewService(readOnlyRoster{}, gateway, clock)
	entries := service.RewardReport(context.Background(), []domain.Assignment{
		{Index: 0, Account: "0xA", Proxy: "http://p1:1"},
		{Index: 1, Account: "0xB"},
		{Index: 2, Account: "0xC"},
	})

	require.Len(t, entries, 3)

	assert.NoError(t, entries[0].Err)
	assert.Equal(t, domain.RewardStatus{
		Tier:                 "gold",
		DailyPoint:           30,
		Claimed:              true,
		NextClaim:            "tomorrow",
		TotalHeartbeatsToday: 120,
	}, entries[0].Status)
	assert.Equal(t, clock.Now(), entries[0].FetchedAt)

	assert.ErrorIs(t, entries[1].Err, domain.ErrTokenUnavailable)
	assert.ErrorIs(t, entries[2].Err, domain.ErrUnauthorized)
	assert.Equal(t, 2, entries[2].Assignment.Index)
	assert.False(t, entries[2].FetchedAt.IsZero())
	assert.WithinDuration(t, clock.Now(), entries[2].FetchedAt, time.Second)
}
