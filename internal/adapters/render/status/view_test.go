package status

import (
	"errors"
	"testing"
	"time"

	"github.com/bnema/worker-fleet/internal/application"
	"github.com/bnema/worker-fleet/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSessions(t *testing.T) {
	output, err := Render(Report{Sessions: []application.SessionStatus{
		{
			Assignment: domain.Assignment{Index: 0, Account: "0x1234567890abcdef1234", Proxy: "http://p1:8080"},
			State:      domain.StateLive,
			Stats:      application.SessionStats{Logins: 1, Heartbeats: 42, JobsAcknowledged: 3, Claims: 1},
		},
		{
			Assignment: domain.Assignment{Index: 1, Account: "0xB"},
			State:      domain.StateDisconnected,
			Stats:      application.SessionStats{Logins: 2, Reconnects: 4, Relogins: 1},
		},
	}}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "Worker Fleet")
	assert.Contains(t, output, "sessions: 2 (1 live)")
	assert.Contains(t, output, "#1 0x123456...1234")
	assert.Contains(t, output, "via http://p1:8080")
	assert.Contains(t, output, "jobs: 3")
	assert.Contains(t, output, "#2 0xB")
	assert.Contains(t, output, "via No proxy")
	assert.Contains(t, output, "disconnected")
	assert.Contains(t, output, "reconnects: 4")
	assert.Contains(t, output, "relogins: 1")
	assert.NotContains(t, output, "rewards:")
}

func TestRenderRewards(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	output, err := Render(Report{Rewards: []application.RewardReportEntry{
		{
			Assignment: domain.Assignment{Index: 0, Account: "0xA"},
			Status: domain.RewardStatus{
				Tier:                 "gold",
				DailyPoint:           30,
				Claimed:              true,
				NextClaim:            "2026-02-15 00:00",
				TotalHeartbeatsToday: 120,
			},
			FetchedAt: now.Add(-5 * time.Minute),
		},
		{
			Assignment: domain.Assignment{Index: 1, Account: "0xB"},
			Status:     domain.RewardStatus{DailyPoint: 2.5, NextClaim: "Not Claimed"},
			FetchedAt:  now.Add(-3 * time.Hour),
		},
		{
			Assignment: domain.Assignment{Index: 2, Account: "0xC"},
			Err:        errors.New("login: token unavailable"),
		},
	}}, RenderOptions{Now: now, StaleAfter: time.Hour})

	require.NoError(t, err)
	assert.Contains(t, output, "rewards: 3 (1 failed)")
	assert.Contains(t, output, "tier: gold")
	assert.Contains(t, output, "daily point: 30")
	assert.Contains(t, output, "daily point: 2.50")
	assert.Contains(t, output, "tier: n/a")
	assert.Contains(t, output, "claimed")
	assert.Contains(t, output, "unclaimed")
	assert.Contains(t, output, "next claim: Not Claimed")
	assert.Contains(t, output, "heartbeats today: 120")
	assert.Contains(t, output, "fetched 5 min ago")
	assert.Contains(t, output, "fetched 3 hours ago [stale]")
	assert.Contains(t, output, "error: login: token unavailable")
	assert.NotContains(t, output, "sessions:")
}

func TestRenderEmptyReport(t *testing.T) {
	output, err := Render(Report{}, RenderOptions{})
	require.NoError(t, err)
	assert.Contains(t, output, "No sessions or reward reports available.")
}

func TestInterpolateColor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("255"), interpolateColor(5, 0, 0))
	assert.Equal(t, lipgloss.Color("240"), interpolateColor(-3, 0, 10))
	assert.Equal(t, lipgloss.Color("255"), interpolateColor(12, 0, 10))
	assert.Equal(t, lipgloss.Color("247"), interpolateColor(5, 0, 10))
}

func TestFormatAge(t *testing.T) {
	assert.Equal(t, "just now", formatAge(20*time.Second))
	assert.Equal(t, "12 min ago", formatAge(12*time.Minute))
	assert.Equal(t, "1 hour ago", formatAge(90*time.Minute))
	assert.Equal(t, "5 hours ago", formatAge(5*time.Hour))
}
