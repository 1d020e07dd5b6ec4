package cli

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/soyeahso/agentchat/internal/config"
	"github.com/soyeahso/agentchat/internal/identity"
	"github.com/soyeahso/agentchat/internal/store"
	"github.com/soyeahso/agentchat/internal/theme"
	"github.com/soyeahso/agentchat/internal/version"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show agentchat status and configuration summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("agentchat %s (commit %s)\n\n", version.Version, version.Commit)

			// Show paths
			fmt.Printf("Config:  %s\n", paths.Config)
			fmt.Printf("Data:    %s\n", paths.Data)
			fmt.Printf("Logs:    %s\n", paths.Logs)
			fmt.Println()

			// Load config
			cfg, err := config.Load(paths.Config)
			if err != nil {
				if os.IsNotExist(err) {
					fmt.Println("Config:  not found (using defaults)")
				} else {
					fmt.Printf("Config:  error loading: %v\n", err)
				}
				return nil
			}

			fmt.Printf("Server:  origin=%s dialTimeout=%ds\n", cfg.Server.Origin, cfg.Server.DialTimeoutSeconds)
			fmt.Printf("Storage: driver=%s path=%s\n", cfg.Storage.Driver, paths.StoragePath(cfg.Storage))
			logFile := paths.LogFile(cfg.Logging, false)
			if logFile == "" {
				logFile = "stderr"
			}
			fmt.Printf("Logging: level=%s output=%s\n", cfg.Logging.Level, logFile)

			byEvent := cfg.Hooks.ByEvent()
			for _, name := range slices.Sorted(maps.Keys(byEvent)) {
				if n := len(byEvent[name]); n > 0 {
					fmt.Printf("Hooks:   %s=%d\n", name, n)
				}
			}

			// Preferences
			kv, closer, err := store.OpenPrefs(cfg.Storage.Driver, paths.StoragePath(cfg.Storage), log)
			if err != nil {
				fmt.Printf("Prefs:   error opening: %v\n", err)
			} else {
				defer closer.Close()
				id, ok, err := identity.New(kv, log).Peek()
				switch {
				case err != nil:
					fmt.Printf("Client:  error reading: %v\n", err)
				case ok:
					fmt.Printf("Client:  %s\n", id)
				default:
					fmt.Println("Client:  (not yet created)")
				}
				t, _ := theme.Resolve(kv, theme.DetectTerminal)
				fmt.Printf("Theme:   %s\n", t)
			}

			// Validation
			issues := config.Validate(&cfg)
			if len(issues) > 0 {
				fmt.Printf("\nValidation issues (%d):\n", len(issues))
				for _, issue := range issues {
					fmt.Printf("  - %s: %s\n", issue.Path, issue.Message)
				}
			}

			return nil
		},
	}

	return cmd
}
