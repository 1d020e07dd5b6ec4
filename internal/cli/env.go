package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/soyeahso/agentchat/internal/client"
	"github.com/soyeahso/agentchat/internal/config"
	"github.com/soyeahso/agentchat/internal/conn"
	"github.com/soyeahso/agentchat/internal/hooks"
	"github.com/soyeahso/agentchat/internal/identity"
	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/soyeahso/agentchat/internal/session"
	"github.com/soyeahso/agentchat/internal/store"
)

// env is the loaded configuration plus the resources opened from it.
type env struct {
	cfg     config.Config
	log     *logging.Logger
	prefs   store.KV
	closers []io.Closer
}

// openEnv loads and validates the config, opens the root logger and the
// preference store. Interactive commands always log to a file.
func openEnv(interactive bool) (*env, error) {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, err
	}
	if issues := config.Validate(&cfg); len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return nil, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}
	if err := paths.EnsureDirs(); err != nil {
		return nil, fmt.Errorf("creating data directories: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	root, logCloser, err := logging.Open(logging.Options{
		Level: level,
		File:  paths.LogFile(cfg.Logging, interactive),
		Style: cfg.Logging.ConsoleStyle,
	}, os.Stderr)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: root, closers: []io.Closer{logCloser}}

	kv, kvCloser, err := store.OpenPrefs(cfg.Storage.Driver, paths.StoragePath(cfg.Storage), root)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("opening preferences: %w", err)
	}
	e.prefs = kv
	e.closers = append(e.closers, kvCloser)
	return e, nil
}

// Close releases resources in reverse order of opening.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			log.Warn().Err(err).Msg("closing resource")
		}
	}
}

func (e *env) identities() *identity.Store {
	return identity.New(e.prefs, e.log)
}

// newClient builds a client with the configured hooks registered.
func (e *env) newClient(opts client.Options) *client.Client {
	hm := hooks.NewManager(e.log)
	if n := hooks.RegisterConfigured(hm, e.cfg.Hooks); n > 0 {
		e.log.Debug().Int("hooks", n).Strs("events", hm.Events()).Msg("command hooks registered")
	}
	opts.Hooks = hm

	mgr := conn.NewManager(conn.Options{
		Origin:      e.cfg.Server.Origin,
		DialTimeout: time.Duration(e.cfg.Server.DialTimeoutSeconds) * time.Second,
		EventBuffer: e.cfg.Server.EventBuffer,
	}, e.log)
	return client.New(mgr, e.identities(), opts, e.log)
}

// printEffects reports notices on a writer; headless commands have no
// input to focus or view to scroll.
type printEffects struct {
	w io.Writer
}

func (printEffects) FocusInput() {}
func (printEffects) ScrollToBottom(bool) {}
func (p printEffects) Notify(n session.Notice) { fmt.Fprintf(p.w, "agentchat: %s\n", n.Text) }
