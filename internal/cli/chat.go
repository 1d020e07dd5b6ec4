package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/soyeahso/agentchat/internal/client"
	"github.com/soyeahso/agentchat/internal/theme"
	"github.com/soyeahso/agentchat/internal/tui"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat view (default)",
		Args:  cobra.NoArgs,
		RunE:  runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	e, err := openEnv(true)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	th, err := theme.Resolve(e.prefs, theme.DetectTerminal)
	if err != nil {
		e.log.Warn().Err(err).Msg("reading theme preference")
	}

	fx := tui.NewEffects()
	c := e.newClient(client.Options{Effects: fx, After: fx})
	defer func() {
		if err := c.Close(); err != nil {
			e.log.Warn().Err(err).Msg("closing connection")
		}
	}()

	m := tui.New(tui.Options{
		Client:  c,
		Effects: fx,
		Prefs:   e.prefs,
		Theme:   th,
		Detect:  theme.DetectTerminal,
		UI:      e.cfg.UI,
	}, e.log)
	return tui.Run(ctx, m)
}
