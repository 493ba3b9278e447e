package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/worker-fleet/internal/application"
	"github.com/bnema/worker-fleet/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Report is what a single render shows. Either list may be empty.
type Report struct {
	Sessions []application.SessionStatus
	Rewards  []application.RewardReportEntry
}

type RenderOptions struct {
	Now        time.Time
	StaleAfter time.Duration
}

func renderView(report Report, opts RenderOptions, s styles) string {
	lines := []string{s.title.Render("Worker Fleet")}

	if len(report.Sessions) == 0 && len(report.Rewards) == 0 {
		lines = append(lines, s.empty.Render("No sessions or reward reports available."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	if len(report.Sessions) > 0 {
		lines = append(lines, s.header.Render(sessionHeader(report.Sessions)))
		busiest := maxHeartbeats(report.Sessions)
		for _, session := range report.Sessions {
			lines = append(lines, s.section.Render(renderSession(session, busiest, s)))
		}
	}

	if len(report.Rewards) > 0 {
		lines = append(lines, s.header.Render(rewardHeader(report.Rewards)))
		for _, entry := range report.Rewards {
			lines = append(lines, s.section.Render(renderReward(entry, opts, s)))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func sessionHeader(sessions []application.SessionStatus) string {
	live := 0
	for _, session := range sessions {
		if session.State == domain.StateLive {
			live++
		}
	}
	return fmt.Sprintf("sessions: %d (%d live)", len(sessions), live)
}

func rewardHeader(entries []application.RewardReportEntry) string {
	failed := 0
	for _, entry := range entries {
		if entry.Err != nil {
			failed++
		}
	}
	if failed == 0 {
		return fmt.Sprintf("rewards: %d", len(entries))
	}
	return fmt.Sprintf("rewards: %d (%d failed)", len(entries), failed)
}

func renderSession(session application.SessionStatus, busiest int64, s styles) string {
	stats := session.Stats
	heartbeatStyle := lipgloss.NewStyle().Foreground(interpolateColor(float64(stats.Heartbeats), 0, float64(busiest)))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.account.Render(accountTitle(session.Assignment)),
		lipgloss.JoinHorizontal(lipgloss.Top,
			s.key.Render("state:"), " ", stateStyle(session.State, s).Render(session.State.String()),
			" ", s.meta.Render("via "+session.Assignment.Proxy.Label()),
		),
		lipgloss.JoinHorizontal(lipgloss.Top,
			s.key.Render("heartbeats:"), " ", heartbeatStyle.Render(fmt.Sprintf("%d", stats.Heartbeats)),
			" ", s.detail.Render(fmt.Sprintf("jobs: %d", stats.JobsAcknowledged)),
			" ", s.detail.Render(fmt.Sprintf("claims: %d", stats.Claims)),
		),
		s.meta.Render(fmt.Sprintf("logins: %d  reconnects: %d  relogins: %d", stats.Logins, stats.Reconnects, stats.Relogins)),
	)
}

func renderReward(entry application.RewardReportEntry, opts RenderOptions, s styles) string {
	parts := []string{s.account.Render(accountTitle(entry.Assignment))}

	if entry.Err != nil {
		parts = append(parts, s.warning.Render("error: "+entry.Err.Error()))
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	status := entry.Status
	claim := s.notClaimed.Render("unclaimed")
	if status.Claimed {
		claim = s.claimed.Render("claimed")
	}

	parts = append(parts,
		lipgloss.JoinHorizontal(lipgloss.Top,
			s.key.Render("tier:"), " ", s.detail.Render(tierLabel(status.Tier)),
			" ", s.key.Render("daily point:"), " ", s.detail.Render(formatPoints(status.DailyPoint)),
		),
		lipgloss.JoinHorizontal(lipgloss.Top,
			s.key.Render("today:"), " ", claim,
			" ", s.meta.Render("next claim: "+status.NextClaim),
		),
		s.detail.Render(fmt.Sprintf("heartbeats today: %d", status.TotalHeartbeatsToday)),
	)

	if line := fetchedLine(entry.FetchedAt, opts, s); line != "" {
		parts = append(parts, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func fetchedLine(fetchedAt time.Time, opts RenderOptions, s styles) string {
	if fetchedAt.IsZero() || opts.Now.IsZero() {
		return ""
	}

	line := s.meta.Render("fetched " + formatAge(opts.Now.Sub(fetchedAt)))
	if opts.StaleAfter > 0 && opts.Now.Sub(fetchedAt) > opts.StaleAfter {
		line += " " + s.warning.Render("[stale]")
	}
	return line
}

func stateStyle(state domain.ConnectionState, s styles) lipgloss.Style {
	switch state {
	case domain.StateLive:
		return s.stateLive
	case domain.StateConnecting, domain.StateRegistered, domain.StateClosing:
		return s.stateBusy
	default:
		return s.stateIdle
	}
}

func accountTitle(assignment domain.Assignment) string {
	return fmt.Sprintf("#%d %s", assignment.Number(), shortAddress(assignment.Account))
}

func shortAddress(account domain.AccountIdentity) string {
	trimmed := strings.TrimSpace(string(account))
	if len(trimmed) <= 14 {
		return trimmed
	}
	return trimmed[:8] + "..." + trimmed[len(trimmed)-4:]
}

func tierLabel(tier string) string {
	if strings.TrimSpace(tier) == "" {
		return "n/a"
	}
	return tier
}

func formatPoints(points float64) string {
	if points == float64(int64(points)) {
		return fmt.Sprintf("%d", int64(points))
	}
	return fmt.Sprintf("%.2f", points)
}

func formatAge(age time.Duration) string {
	if age < time.Minute {
		return "just now"
	}
	if age < time.Hour {
		return fmt.Sprintf("%d min ago", int(age/time.Minute))
	}
	hours := int(age / time.Hour)
	if hours == 1 {
		return "1 hour ago"
	}
	return fmt.Sprintf("%d hours ago", hours)
}

func maxHeartbeats(sessions []application.SessionStatus) int64 {
	var busiest int64
	for _, session := range sessions {
		if session.Stats.Heartbeats > busiest {
			busiest = session.Stats.Heartbeats
		}
	}
	return busiest
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, faded at min and bright at max.
	baseColor := 240.0
	targetColor := 255.0
	colorCode := int(baseColor + (targetColor-baseColor)*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}
