package config

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Server validation
	if cfg.Server.Origin != "" {
		u, err := url.Parse(cfg.Server.Origin)
		validSchemes := []string{"http", "https", "ws", "wss"}
		switch {
		case err != nil:
			issues = append(issues, ValidationIssue{
				Path:    "server.origin",
				Message: fmt.Sprintf("not a valid URL: %v", err),
			})
		case !slices.Contains(validSchemes, strings.ToLower(u.Scheme)):
			issues = append(issues, ValidationIssue{
				Path:    "server.origin",
				Message: fmt.Sprintf("scheme must be one of %v, got %q", validSchemes, u.Scheme),
			})
		case u.Host == "":
			issues = append(issues, ValidationIssue{
				Path:    "server.origin",
				Message: "host is required",
			})
		}
	}
	if cfg.Server.DialTimeoutSeconds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "server.dialTimeoutSeconds",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Server.DialTimeoutSeconds),
		})
	}
	if cfg.Server.EventBuffer < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "server.eventBuffer",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.Server.EventBuffer),
		})
	}

	// Storage validation
	validDrivers := []string{"sqlite", "memory"}
	if cfg.Storage.Driver != "" && !slices.Contains(validDrivers, cfg.Storage.Driver) {
		issues = append(issues, ValidationIssue{
			Path:    "storage.driver",
			Message: fmt.Sprintf("must be one of %v, got %q", validDrivers, cfg.Storage.Driver),
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	if cfg.UI.NearBottomLines < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "ui.nearBottomLines",
			Message: fmt.Sprintf("must be >= 0, got %d", cfg.UI.NearBottomLines),
		})
	}

	// Hook validation
	byEvent := cfg.Hooks.ByEvent()
	for _, name := range slices.Sorted(maps.Keys(byEvent)) {
		for i, h := range byEvent[name] {
			path := fmt.Sprintf("hooks.%s[%d]", name, i)
			if strings.TrimSpace(h.Command) == "" {
				issues = append(issues, ValidationIssue{Path: path + ".command", Message: "command is required"})
			}
			if h.Timeout < 0 {
				issues = append(issues, ValidationIssue{
					Path:    path + ".timeout",
					Message: fmt.Sprintf("must be >= 0, got %d", h.Timeout),
				})
			}
		}
	}

	return issues
}
