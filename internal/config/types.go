package config

// Config is the root configuration for agentchat.
type Config struct {
	Server  ServerConfig  `yaml:"server,omitempty"`
	Storage StorageConfig `yaml:"storage,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	UI      UIConfig      `yaml:"ui,omitempty"`
	Hooks   HooksConfig   `yaml:"hooks,omitempty"`
}

// ServerConfig describes the chat backend to connect to.
type ServerConfig struct {
	// Origin is the backend's HTTP origin. The socket scheme mirrors it:
	// http→ws, https→wss. ws:// and wss:// origins are used as-is.
	Origin             string `yaml:"origin,omitempty"`
	DialTimeoutSeconds int    `yaml:"dialTimeoutSeconds,omitempty"`
	EventBuffer        int    `yaml:"eventBuffer,omitempty"`
}

// StorageConfig selects the durable preference store.
type StorageConfig struct {
	Driver string `yaml:"driver,omitempty"` // "sqlite" | "memory"
	Path   string `yaml:"path,omitempty"`   // defaults to <base>/data/agentchat.db
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}

// UIConfig tunes the interactive terminal UI.
type UIConfig struct {
	NearBottomLines int   `yaml:"nearBottomLines,omitempty"`
	ShowTopics      *bool `yaml:"showTopics,omitempty"`
	ShowResults     *bool `yaml:"showResults,omitempty"`
}

// HooksConfig maps client events to shell commands.
type HooksConfig struct {
	Connected          []HookEntry `yaml:"connected,omitempty"`
	Disconnected       []HookEntry `yaml:"disconnected,omitempty"`
	SessionConflict    []HookEntry `yaml:"sessionConflict,omitempty"`
	ServerFailure      []HookEntry `yaml:"serverFailure,omitempty"`
	ServerError        []HookEntry `yaml:"serverError,omitempty"`
	MessageReceived    []HookEntry `yaml:"messageReceived,omitempty"`
	TaskResult         []HookEntry `yaml:"taskResult,omitempty"`
	TopicStateLoaded   []HookEntry `yaml:"topicStateLoaded,omitempty"`
	ActiveTopicChanged []HookEntry `yaml:"activeTopicChanged,omitempty"`
	MessageSending     []HookEntry `yaml:"messageSending,omitempty"`
}

// HookEntry defines a single hook action.
type HookEntry struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout,omitempty"` // milliseconds
}

// ShowTopicsPanel reports whether the topic list starts open.
func (u UIConfig) ShowTopicsPanel() bool {
	return u.ShowTopics == nil || *u.ShowTopics
}

// ShowResultsPanel reports whether the task result panel starts open.
func (u UIConfig) ShowResultsPanel() bool {
	return u.ShowResults == nil || *u.ShowResults
}

// ByEvent returns the configured hooks keyed by their YAML field name.
func (h HooksConfig) ByEvent() map[string][]HookEntry {
	return map[string][]HookEntry{
		"connected":          h.Connected,
		"disconnected":       h.Disconnected,
		"sessionConflict":    h.SessionConflict,
		"serverFailure":      h.ServerFailure,
		"serverError":        h.ServerError,
		"messageReceived":    h.MessageReceived,
		"taskResult":         h.TaskResult,
		"topicStateLoaded":   h.TopicStateLoaded,
		"activeTopicChanged": h.ActiveTopicChanged,
		"messageSending":     h.MessageSending,
	}
}
