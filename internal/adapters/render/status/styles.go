package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	account    lipgloss.Style
	detail     lipgloss.Style
	warning    lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	key        lipgloss.Style
	meta       lipgloss.Style
	stateLive  lipgloss.Style
	stateIdle  lipgloss.Style
	stateBusy  lipgloss.Style
	claimed    lipgloss.Style
	notClaimed lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		account:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		key:        lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		meta:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		stateLive:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		stateIdle:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		stateBusy:  lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
		claimed:    lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		notClaimed: lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
	}
}
