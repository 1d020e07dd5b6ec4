package session

import (
	"context"
	"time"

	"github.com/soyeahso/agentchat/internal/domain"
	"github.com/soyeahso/agentchat/internal/hooks"
	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/soyeahso/agentchat/internal/protocol"
)

// Router applies inbound frames to State, in delivery order.
type Router struct {
	state *State
	fx    Effects
	after Deferrer
	hooks *hooks.Manager // may be nil
	now   func() time.Time
	log   *logging.Logger
}

// NewRouter creates a router over state. hm may be nil.
func NewRouter(state *State, fx Effects, after Deferrer, hm *hooks.Manager, log *logging.Logger) *Router {
	return &Router{state: state, fx: fx, after: after, hooks: hm, now: time.Now, log: log.Sub("router")}
}

// Route decodes one raw frame and applies it. It returns the frame type,
// or "" when the frame could not be parsed. Malformed frames and unknown
// types are logged and leave the state untouched.
func (r *Router) Route(raw []byte) string {
	f, err := protocol.Decode(raw)
	if err != nil {
		r.log.Error().Err(err).Int("bytes", len(raw)).Msg("dropping malformed frame")
		return ""
	}
	if !f.IsKnown() {
		r.log.Warn().Str("type", f.Type).Msg("unknown frame type ignored")
		return f.Type
	}

	// Any classified frame ends a pending topic load.
	r.state.loading = false

	r.log.Debug().Str("type", f.Type).Msg("frame received")

	switch f.Type {
	case protocol.TypeInitialState:
		r.initialState(f)
	case protocol.TypeTopicListUpdate:
		r.topicListUpdate(f)
	case protocol.TypeTopicState:
		r.topicState(f)
	case protocol.TypeNewMessage:
		r.newMessage(f)
	case protocol.TypeNewTaskResult:
		r.newTaskResult(f)
	case protocol.TypeActiveTopicUpdate:
		r.activeTopicUpdate(f)
	case protocol.TypeAgentMessageChunk:
		r.agentMessageChunk(f)
	case protocol.TypeAgentStreamEnd:
		r.agentStreamEnd(f)
	case protocol.TypeError:
		r.serverError(f)
	case protocol.TypePong:
	}
	return f.Type
}

func (r *Router) decode(f protocol.Frame, target any) bool {
	if err := f.DecodePayload(target); err != nil {
		r.log.Error().Err(err).Msg("dropping frame with bad payload")
		return false
	}
	return true
}

func (r *Router) initialState(f protocol.Frame) {
	var p protocol.InitialState
	if !r.decode(f, &p) {
		return
	}
	s := r.state
	s.agents = p.Agents
	prev := s.activeTopicID
	s.activeTopicID = protocol.DerefID(p.ActiveTopicID)

	if s.selectedAgentID == "" && len(s.agents) > 0 {
		s.selectedAgentID = s.agentFor(s.activeTopicID)
		r.log.Debug().Str("agent", s.selectedAgentID).Msg("initial agent selected")
	}
	if s.activeTopicID == "" {
		r.after.AfterRender(r.fx.FocusInput)
	}

	r.log.Info().
		Int("agents", len(s.agents)).
		Str("activeTopic", s.activeTopicID).
		Msg("initial state applied")
	if prev != s.activeTopicID {
		r.emit(hooks.EventActiveTopicChanged, map[string]any{"topicId": s.activeTopicID})
	}
}

func (r *Router) topicListUpdate(f protocol.Frame) {
	var topics []domain.Topic
	if !r.decode(f, &topics) {
		return
	}
	s := r.state
	s.topics = topics

	if s.selectedAgentID == "" && len(s.agents) > 0 {
		s.selectedAgentID = s.agentFor(s.activeTopicID)
		r.log.Debug().Str("agent", s.selectedAgentID).Msg("agent selected from topic list")
	}
	r.log.Debug().Int("topics", len(topics)).Msg("topic list replaced")
}

func (r *Router) topicState(f protocol.Frame) {
	var p protocol.TopicState
	if !r.decode(f, &p) {
		return
	}
	if p.TopicID == "" {
		r.log.Warn().Msg("topic_state without topic_id ignored")
		return
	}
	s := r.state
	s.replaceTopic(p.TopicID, p.Messages, p.TaskResults)

	if p.TopicID == s.activeTopicID {
		r.after.AfterRender(func() { r.fx.ScrollToBottom(true) })
		if p.AgentID != s.selectedAgentID {
			r.log.Debug().
				Str("from", s.selectedAgentID).
				Str("to", p.AgentID).
				Msg("selected agent synced to topic")
			s.selectedAgentID = p.AgentID
		}
	}

	r.emit(hooks.EventTopicStateLoaded, map[string]any{
		"topicId":     p.TopicID,
		"agentId":     p.AgentID,
		"messages":    len(s.messages[p.TopicID]),
		"taskResults": len(s.results[p.TopicID]),
	})
}

func (r *Router) newMessage(f protocol.Frame) {
	var msg domain.Message
	if !r.decode(f, &msg) {
		return
	}
	if msg.TopicID == "" {
		r.log.Warn().Str("id", msg.ID).Msg("new_message without topic_id ignored")
		return
	}
	if !r.state.appendMessage(msg) {
		r.log.Warn().Str("id", msg.ID).Str("topic", msg.TopicID).Msg("duplicate message skipped")
		return
	}
	if msg.TopicID == r.state.activeTopicID {
		r.after.AfterRender(func() { r.fx.ScrollToBottom(false) })
	}
	r.messageReceived(msg, false)
}

func (r *Router) messageReceived(msg domain.Message, streamed bool) {
	r.emit(hooks.EventMessageReceived, map[string]any{
		"id":        msg.ID,
		"topicId":   msg.TopicID,
		"sender":    string(msg.Sender),
		"content":   msg.Content,
		"timestamp": msg.Timestamp,
		"streamed":  streamed,
	})
}

// agentMessageChunk assembles a streamed agent reply in the topic cache,
// keyed by message id like new_message.
func (r *Router) agentMessageChunk(f protocol.Frame) {
	var p protocol.AgentMessageChunk
	if !r.decode(f, &p) {
		return
	}
	if p.TopicID == "" || p.MessageID == "" {
		r.log.Warn().Str("id", p.MessageID).Msg("agent_message_chunk without topic_id or message_id ignored")
		return
	}
	created, ok := r.state.appendChunk(p.TopicID, p.MessageID, p.ContentChunk, r.now().UTC().Format(time.RFC3339))
	if !ok {
		r.log.Warn().Str("id", p.MessageID).Str("topic", p.TopicID).Msg("chunk for completed message skipped")
		return
	}
	if created {
		r.log.Debug().Str("id", p.MessageID).Str("topic", p.TopicID).Msg("agent reply streaming")
	}
	if p.TopicID == r.state.activeTopicID {
		r.after.AfterRender(func() { r.fx.ScrollToBottom(false) })
	}
}

func (r *Router) agentStreamEnd(f protocol.Frame) {
	var p protocol.AgentStreamEnd
	if !r.decode(f, &p) {
		return
	}
	msg, ok := r.state.endStream(p.TopicID, p.MessageID)
	if !ok {
		r.log.Debug().Str("id", p.MessageID).Str("topic", p.TopicID).Msg("stream end for unknown message")
		return
	}
	r.log.Debug().Str("id", msg.ID).Int("bytes", len(msg.Content)).Msg("agent reply complete")
	r.messageReceived(msg, true)
}

func (r *Router) newTaskResult(f protocol.Frame) {
	var res domain.TaskResult
	if !r.decode(f, &res) {
		return
	}
	if res.TopicID == "" {
		r.log.Warn().Str("id", res.ID).Msg("new_task_result without topic_id ignored")
		return
	}
	if !r.state.appendResult(res) {
		r.log.Warn().Str("id", res.ID).Str("topic", res.TopicID).Msg("duplicate task result skipped")
		return
	}
	r.emit(hooks.EventTaskResultReceived, map[string]any{
		"id":        res.ID,
		"topicId":   res.TopicID,
		"content":   res.Content,
		"timestamp": res.Timestamp,
	})
}

func (r *Router) activeTopicUpdate(f protocol.Frame) {
	var p protocol.ActiveTopicUpdate
	if !r.decode(f, &p) {
		return
	}
	s := r.state
	next := protocol.DerefID(p.TopicID)
	if next == s.activeTopicID {
		r.log.Debug().Str("topic", next).Msg("active topic confirmed")
		return
	}

	s.activeTopicID = next
	if next == "" {
		r.after.AfterRender(r.fx.FocusInput)
	} else if t, ok := s.Topic(next); ok && t.AgentID != s.selectedAgentID {
		s.selectedAgentID = t.AgentID
	}

	r.log.Info().Str("topic", next).Msg("active topic changed")
	r.emit(hooks.EventActiveTopicChanged, map[string]any{"topicId": next})
}

func (r *Router) serverError(f protocol.Frame) {
	var p protocol.ErrorPayload
	if !r.decode(f, &p) {
		p = protocol.ErrorPayload{}
	}
	detail := p.Detail
	if detail == "" {
		detail = TextUnknownServerError
	}
	r.log.Error().Str("detail", detail).Msg("server reported error")
	r.fx.Notify(Notice{Kind: NoticeServerError, Text: "Server Error: " + detail})
	r.emit(hooks.EventServerError, map[string]any{"detail": detail})
}

func (r *Router) emit(event string, data map[string]any) {
	if r.hooks == nil {
		return
	}
	r.hooks.Emit(context.Background(), event, data)
}
