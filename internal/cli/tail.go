package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/soyeahso/agentchat/internal/client"
	"github.com/soyeahso/agentchat/internal/conn"
	"github.com/spf13/cobra"
)

func newTailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tail",
		Short: "Print every inbound frame as a JSON line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			c := e.newClient(client.Options{
				Effects: printEffects{w: cmd.ErrOrStderr()},
				OnFrame: func(_ string, raw []byte) {
					var buf bytes.Buffer
					if err := json.Compact(&buf, raw); err != nil {
						buf.Reset()
						buf.Write(raw)
					}
					fmt.Fprintln(out, buf.String())
				},
			})
			defer c.Close()

			if err := c.Connect(ctx); err != nil {
				return err
			}
			err = c.Run(ctx)
			switch {
			case errors.Is(err, context.Canceled):
				return nil
			case errors.Is(err, client.ErrClosed):
				if last, ok := c.LastClose(); ok && last.Kind != conn.CloseDisconnect {
					return fmt.Errorf("connection closed: %s (%d %s)", last.Kind, last.Code, last.Reason)
				}
				return nil
			default:
				return err
			}
		},
	}
}
