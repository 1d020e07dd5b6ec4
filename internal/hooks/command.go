package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/soyeahso/agentchat/internal/config"
	"github.com/soyeahso/agentchat/internal/logging"
)

// DefaultCommandTimeout bounds a command hook without a configured timeout.
const DefaultCommandTimeout = 5 * time.Second

// configEvents maps the YAML keys of config.HooksConfig to event names.
var configEvents = map[string]string{
	"connected":          EventConnected,
	"disconnected":       EventDisconnected,
	"sessionConflict":    EventSessionConflict,
	"serverFailure":      EventServerFailure,
	"serverError":        EventServerError,
	"messageReceived":    EventMessageReceived,
	"taskResult":         EventTaskResultReceived,
	"topicStateLoaded":   EventTopicStateLoaded,
	"activeTopicChanged": EventActiveTopicChanged,
	"messageSending":     EventMessageSending,
}

// CommandHandler returns a Handler that runs entry.Command through sh -c.
// The payload is written to stdin as JSON and the event name is exported
// as AGENTCHAT_EVENT.
func CommandHandler(entry config.HookEntry, log *logging.Logger) Handler {
	timeout := DefaultCommandTimeout
	if entry.Timeout > 0 {
		timeout = time.Duration(entry.Timeout) * time.Millisecond
	}

	return func(ctx context.Context, p Payload) error {
		input, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encoding hook payload: %w", err)
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, "sh", "-c", entry.Command)
		cmd.Stdin = bytes.NewReader(input)
		cmd.Env = append(os.Environ(), "AGENTCHAT_EVENT="+p.Event)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		cmd.WaitDelay = time.Second

		start := time.Now()
		out, err := cmd.Output()
		log.Debug().
			Str("event", p.Event).
			Str("command", entry.Command).
			Dur("elapsed", time.Since(start)).
			Int("stdoutBytes", len(out)).
			Msg("command hook finished")
		if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("hook %q timed out after %s", entry.Command, timeout)
			}
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return fmt.Errorf("hook %q: %w: %s", entry.Command, err, msg)
			}
			return fmt.Errorf("hook %q: %w", entry.Command, err)
		}
		return nil
	}
}

// RegisterConfigured registers a command handler for every hook in cfg.
// Commands run in the background so a slow hook never stalls the caller
// of Emit. It returns the number of handlers registered.
func RegisterConfigured(m *Manager, cfg config.HooksConfig) int {
	n := 0
	for key, entries := range cfg.ByEvent() {
		event, ok := configEvents[key]
		if !ok {
			continue
		}
		for i, entry := range entries {
			name := fmt.Sprintf("config:%s[%d]", key, i)
			m.On(event, name, background(name, CommandHandler(entry, m.log), m.log))
			n++
		}
	}
	return n
}

// background detaches h from the emitting goroutine. The context is
// detached as well so the command outlives a cancelled emit.
func background(name string, h Handler, log *logging.Logger) Handler {
	return func(ctx context.Context, p Payload) error {
		go func() {
			if err := h(context.WithoutCancel(ctx), p); err != nil {
				log.Warn().Err(err).Str("event", p.Event).Str("handler", name).Msg("command hook failed")
			}
		}()
		return nil
	}
}
