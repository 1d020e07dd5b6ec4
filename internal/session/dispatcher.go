package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/soyeahso/agentchat/internal/hooks"
	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/soyeahso/agentchat/internal/protocol"
)

// Dispatcher turns user intents into outbound frames after checking local
// preconditions. It never predicts the server's answer: topic creation,
// topic forking on agent change, and topic activation are all left to the
// frames the server sends back.
type Dispatcher struct {
	state *State
	tr    Transport
	fx    Effects
	after Deferrer
	hooks *hooks.Manager // may be nil
	log   *logging.Logger
}

// NewDispatcher creates a dispatcher. hm may be nil.
func NewDispatcher(state *State, tr Transport, fx Effects, after Deferrer, hm *hooks.Manager, log *logging.Logger) *Dispatcher {
	return &Dispatcher{state: state, tr: tr, fx: fx, after: after, hooks: hm, log: log.Sub("dispatch")}
}

// SendMessage sends content to the active topic, or asks for a new topic
// when none is active. On success the compose buffer is cleared.
func (d *Dispatcher) SendMessage(content string) error {
	if !d.tr.IsOpen() {
		d.log.Warn().Msg("cannot send message: not connected")
		d.fx.Notify(Notice{Kind: NoticeNotConnected, Text: TextNotConnected})
		return ErrNotConnected
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}
	s := d.state
	if s.selectedAgentID == "" {
		d.log.Warn().Msg("cannot send message: no agent selected")
		d.fx.Notify(Notice{Kind: NoticeNoAgent, Text: TextNoAgent})
		return ErrNoAgentSelected
	}

	frame, err := protocol.NewFrame(protocol.TypeSendMessage, protocol.SendMessage{
		Content:        content,
		TopicID:        protocol.OptionalID(s.activeTopicID),
		CurrentAgentID: s.selectedAgentID,
	})
	if err != nil {
		return err
	}

	d.emit(hooks.EventMessageSending, map[string]any{
		"topicId": s.activeTopicID,
		"agentId": s.selectedAgentID,
		"content": content,
	})
	if err := d.tr.Send(frame); err != nil {
		d.log.Error().Err(err).Msg("send_message failed")
		return fmt.Errorf("sending message: %w", err)
	}

	d.log.Info().
		Str("topic", s.activeTopicID).
		Str("agent", s.selectedAgentID).
		Int("chars", len(content)).
		Msg("message sent")
	s.input = ""
	return nil
}

// Submit sends the compose buffer.
func (d *Dispatcher) Submit() error {
	return d.SendMessage(d.state.input)
}

// SetInput replaces the compose buffer.
func (d *Dispatcher) SetInput(text string) {
	d.state.input = text
}

// SelectTopic asks the server to activate a topic. The active topic only
// changes when the server confirms it.
func (d *Dispatcher) SelectTopic(topicID string) error {
	s := d.state
	if topicID == s.activeTopicID {
		return nil
	}
	if !d.tr.IsOpen() {
		d.log.Warn().Str("topic", topicID).Msg("cannot select topic: not connected")
		return ErrNotConnected
	}

	frame, err := protocol.NewFrame(protocol.TypeSelectTopic, protocol.SelectTopic{TopicID: topicID})
	if err != nil {
		return err
	}
	s.loading = true
	if err := d.tr.Send(frame); err != nil {
		s.loading = false
		d.log.Error().Err(err).Str("topic", topicID).Msg("select_topic failed")
		return fmt.Errorf("selecting topic: %w", err)
	}
	d.log.Debug().Str("topic", topicID).Msg("topic selection requested")
	return nil
}

// StartNewChat switches to composing a new topic with the default agent.
// It is purely local.
func (d *Dispatcher) StartNewChat() {
	s := d.state
	prev := s.activeTopicID
	s.activeTopicID = ""
	s.input = ""
	if def := s.DefaultAgentID(); def != "" {
		s.selectedAgentID = def
	} else {
		d.log.Warn().Msg("no default agent available")
	}
	d.after.AfterRender(d.fx.FocusInput)

	if prev != "" {
		d.emit(hooks.EventActiveTopicChanged, map[string]any{"topicId": ""})
	}
}

// HandleAgentChange sets the agent for the next send. Existing topic
// bindings are unaffected.
func (d *Dispatcher) HandleAgentChange(agentID string) {
	d.state.selectedAgentID = agentID
	d.log.Debug().Str("agent", agentID).Msg("agent selected")
	if d.state.activeTopicID == "" {
		d.after.AfterRender(d.fx.FocusInput)
	}
}

func (d *Dispatcher) emit(event string, data map[string]any) {
	if d.hooks == nil {
		return
	}
	d.hooks.Emit(context.Background(), event, data)
}
