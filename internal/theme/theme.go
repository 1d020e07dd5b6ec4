// Package theme resolves and persists the dark/light preference.
package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/soyeahso/agentchat/internal/store"
)

// Theme is the stored preference value.
type Theme string

const (
	Dark  Theme = "dark"
	Light Theme = "light"
)

// Detector reports whether the terminal (the OS-level preference for a
// terminal client) has a dark background.
type Detector func() bool

// DetectTerminal queries the terminal background through lipgloss.
func DetectTerminal() bool {
	return lipgloss.HasDarkBackground()
}

// Parse validates a user-supplied theme name.
func Parse(s string) (Theme, error) {
	switch Theme(s) {
	case Dark, Light:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q (want dark or light)", s)
}

// Resolve returns the stored theme. Any stored value other than "dark"
// means light. Without a stored value the detector decides; the result
// is not persisted.
func Resolve(kv store.KV, detect Detector) (Theme, error) {
	v, ok, err := kv.Get(store.KeyTheme)
	if err != nil {
		return fromDark(detect()), err
	}
	if ok {
		return fromDark(Theme(v) == Dark), nil
	}
	return fromDark(detect()), nil
}

// Set persists an explicit choice.
func Set(kv store.KV, t Theme) error {
	return kv.Set(store.KeyTheme, string(t))
}

// Toggle flips the resolved theme, persists it and returns the new value.
func Toggle(kv store.KV, detect Detector) (Theme, error) {
	cur, _ := Resolve(kv, detect)
	next := cur.Opposite()
	if err := Set(kv, next); err != nil {
		return cur, err
	}
	return next, nil
}

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// IsDark reports whether t is the dark theme.
func (t Theme) IsDark() bool { return t == Dark }

func fromDark(dark bool) Theme {
	if dark {
		return Dark
	}
	return Light
}
