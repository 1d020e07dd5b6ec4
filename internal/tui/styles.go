package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/soyeahso/agentchat/internal/theme"
)

type palette struct {
	accent, text, muted, user, agent, warn, border lipgloss.Color
}

var palettes = map[theme.Theme]palette{
	theme.Dark: {
		accent: lipgloss.Color("#01cdfe"),
		text:   lipgloss.Color("#f3f3ff"),
		muted:  lipgloss.Color("#9ca3d8"),
		user:   lipgloss.Color("#05ffa1"),
		agent:  lipgloss.Color("#ff71ce"),
		warn:   lipgloss.Color("#ffd166"),
		border: lipgloss.Color("#3b2a6b"),
	},
	theme.Light: {
		accent: lipgloss.Color("#0057b7"),
		text:   lipgloss.Color("#1d1d28"),
		muted:  lipgloss.Color("#6b6f80"),
		user:   lipgloss.Color("#1a7f37"),
		agent:  lipgloss.Color("#a3195b"),
		warn:   lipgloss.Color("#b35900"),
		border: lipgloss.Color("#c8c8d8"),
	},
}

type styles struct {
	header      lipgloss.Style
	panel       lipgloss.Style
	panelTitle  lipgloss.Style
	topic       lipgloss.Style
	activeTopic lipgloss.Style
	muted       lipgloss.Style
	user        lipgloss.Style
	agent       lipgloss.Style
	system      lipgloss.Style
	notice      lipgloss.Style
	status      lipgloss.Style
	input       lipgloss.Style
}

func newStyles(t theme.Theme) styles {
	p, ok := palettes[t]
	if !ok {
		p = palettes[theme.Light]
	}
	panel := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.border).
		Padding(0, 1)
	return styles{
		header:      lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		panel:       panel,
		panelTitle:  lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		topic:       lipgloss.NewStyle().Foreground(p.text),
		activeTopic: lipgloss.NewStyle().Foreground(p.accent).Bold(true),
		muted:       lipgloss.NewStyle().Foreground(p.muted),
		user:        lipgloss.NewStyle().Foreground(p.user).Bold(true),
		agent:       lipgloss.NewStyle().Foreground(p.agent).Bold(true),
		system:      lipgloss.NewStyle().Foreground(p.muted).Italic(true),
		notice:      lipgloss.NewStyle().Foreground(p.warn).Bold(true),
		status:      lipgloss.NewStyle().Foreground(p.muted),
		input:       panel,
	}
}
