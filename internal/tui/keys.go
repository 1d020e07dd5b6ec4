package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Send          key.Binding
	NewChat       key.Binding
	NextAgent     key.Binding
	NextTopic     key.Binding
	PrevTopic     key.Binding
	ToggleTheme   key.Binding
	ToggleTopics  key.Binding
	ToggleResults key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
	Quit          key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Send:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		NewChat:       key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new chat")),
		NextAgent:     key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "agent")),
		NextTopic:     key.NewBinding(key.WithKeys("ctrl+down", "alt+j"), key.WithHelp("ctrl+↓", "next topic")),
		PrevTopic:     key.NewBinding(key.WithKeys("ctrl+up", "alt+k"), key.WithHelp("ctrl+↑", "prev topic")),
		ToggleTheme:   key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "theme")),
		ToggleTopics:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "topics")),
		ToggleResults: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "results")),
		ScrollUp:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		ScrollDown:    key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
		Quit:          key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Send, k.NewChat, k.NextAgent, k.NextTopic, k.ToggleTheme, k.ToggleTopics, k.ToggleResults, k.Quit}
}
