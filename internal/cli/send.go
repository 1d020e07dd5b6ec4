package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/soyeahso/agentchat/internal/client"
	"github.com/soyeahso/agentchat/internal/domain"
	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	var (
		topicID string
		agentID string
		wait    time.Duration
		idle    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Send a message and print the agent's replies",
		Long: "Send connects, waits for the server's initial state, optionally switches topic or agent, " +
			"sends the message and prints agent replies until the conversation goes quiet.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")

			e, err := openEnv(false)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, wait)
			defer cancel()

			c := e.newClient(client.Options{Effects: printEffects{w: cmd.ErrOrStderr()}})
			defer c.Close()

			if err := c.Connect(ctx); err != nil {
				return err
			}
			if err := c.Pump(ctx, c.Ready); err != nil {
				return fmt.Errorf("waiting for initial state: %w", err)
			}

			s := c.State()
			d := c.Dispatcher()
			if topicID != "" && topicID != s.ActiveTopicID() {
				if err := d.SelectTopic(topicID); err != nil {
					return err
				}
				if err := c.Pump(ctx, func() bool { return s.ActiveTopicID() == topicID }); err != nil {
					return fmt.Errorf("selecting topic %s: %w", topicID, err)
				}
			}
			if agentID != "" {
				d.HandleAgentChange(agentID)
			}

			seen := make(map[string]bool)
			for _, m := range s.CurrentMessages() {
				seen[m.ID] = true
			}
			if err := d.SendMessage(content); err != nil {
				return err
			}

			r := &replyPrinter{c: c, seen: seen, out: cmd.OutOrStdout()}
			if err := c.Pump(ctx, r.pending); err != nil {
				return fmt.Errorf("waiting for reply: %w", err)
			}
			r.flush()
			for {
				idleCtx, cancelIdle := context.WithTimeout(ctx, idle)
				err := c.Pump(idleCtx, r.pending)
				cancelIdle()
				if errors.Is(err, context.DeadlineExceeded) {
					break
				}
				if err != nil {
					return err
				}
				r.flush()
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "\n[topic=%s agent=%s]\n",
				s.ActiveTopicID(), s.AgentName(s.SelectedAgentID()))
			return nil
		},
	}

	cmd.Flags().StringVar(&topicID, "topic", "", "topic ID to continue (default: start a new topic)")
	cmd.Flags().StringVar(&agentID, "agent", "", "agent ID to use")
	cmd.Flags().DurationVar(&wait, "wait", 30*time.Second, "maximum time to wait for the first reply")
	cmd.Flags().DurationVar(&idle, "idle", 3*time.Second, "stop after no reply arrives for this long")

	return cmd
}

// replyPrinter prints agent messages of the active topic that arrived
// after the send. Streamed replies are printed once complete.
type replyPrinter struct {
	c    *client.Client
	seen map[string]bool
	out  io.Writer
}

func (r *replyPrinter) fresh() []domain.Message {
	var out []domain.Message
	s := r.c.State()
	for _, m := range s.CurrentMessages() {
		if m.Sender == domain.SenderAgent && !r.seen[m.ID] && !s.IsStreaming(m.TopicID, m.ID) {
			out = append(out, m)
		}
	}
	return out
}

func (r *replyPrinter) pending() bool { return len(r.fresh()) > 0 }

func (r *replyPrinter) flush() {
	for _, m := range r.fresh() {
		r.seen[m.ID] = true
		fmt.Fprintln(r.out, m.Content)
	}
}
