package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

const (
	DefaultOrigin          = "http://127.0.0.1:8000"
	DefaultDialTimeout     = 10
	DefaultEventBuffer     = 64
	DefaultNearBottomLines = 3
)

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Origin:             DefaultOrigin,
			DialTimeoutSeconds: DefaultDialTimeout,
			EventBuffer:        DefaultEventBuffer,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
		UI: UIConfig{
			NearBottomLines: DefaultNearBottomLines,
		},
	}
}
