// Package protocol defines the JSON frames exchanged with the chat backend
// over the realtime socket. Every frame is a {type, payload} envelope.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/soyeahso/agentchat/internal/domain"
)

// Inbound frame types.
const (
	TypeInitialState      = "initial_state"
	TypeTopicListUpdate   = "topic_list_update"
	TypeTopicState        = "topic_state"
	TypeNewMessage        = "new_message"
	TypeNewTaskResult     = "new_task_result"
	TypeActiveTopicUpdate = "active_topic_update"
	TypeAgentMessageChunk = "agent_message_chunk"
	TypeAgentStreamEnd    = "agent_stream_end"
	TypeError             = "error"
	TypePong              = "pong"
)

// Outbound frame types.
const (
	TypeSendMessage = "send_message"
	TypeSelectTopic = "select_topic"
)

// Close codes and reasons the backend uses to end a session.
const (
	CloseCodeSessionConflict = 1008
	CloseReasonSessionActive = "Session already active"
	CloseCodeServerFailure   = 1011
)

// Frame is the envelope for all socket messages.
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewFrame creates a frame with a JSON-encoded payload.
func NewFrame(typ string, payload any) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("encoding %s payload: %w", typ, err)
	}
	return Frame{Type: typ, Payload: raw}, nil
}

// Decode parses a raw socket message into a Frame.
func Decode(raw []byte) (Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return Frame{}, err
	}
	return f, nil
}

// DecodePayload unmarshals the frame payload into target. An absent or
// null payload leaves target untouched.
func (f Frame) DecodePayload(target any) error {
	if len(f.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(f.Payload, target); err != nil {
		return fmt.Errorf("decoding %s payload: %w", f.Type, err)
	}
	return nil
}

// IsKnown reports whether the frame type is one the client handles.
func (f Frame) IsKnown() bool {
	switch f.Type {
	case TypeInitialState, TypeTopicListUpdate, TypeTopicState,
		TypeNewMessage, TypeNewTaskResult, TypeActiveTopicUpdate,
		TypeAgentMessageChunk, TypeAgentStreamEnd,
		TypeError, TypePong:
		return true
	}
	return false
}

// InitialState is sent once after the socket opens.
type InitialState struct {
	ClientID      string         `json:"client_id,omitempty"`
	Agents        []domain.Agent `json:"agents"`
	ActiveTopicID *string        `json:"active_topic_id"`
}

// TopicState is a full snapshot of one topic's history.
type TopicState struct {
	TopicID     string              `json:"topic_id"`
	AgentID     string              `json:"agent_id"`
	Messages    []domain.Message    `json:"messages"`
	TaskResults []domain.TaskResult `json:"task_results"`
}

// ActiveTopicUpdate tells the client which topic is active. A nil TopicID
// means "new chat".
type ActiveTopicUpdate struct {
	TopicID *string `json:"topic_id"`
}

// AgentMessageChunk is one piece of an agent reply streamed under
// MessageID. IsFirstChunk is advisory; chunks are assembled by id.
type AgentMessageChunk struct {
	TopicID      string `json:"topic_id"`
	MessageID    string `json:"message_id"`
	ContentChunk string `json:"content_chunk"`
	IsFirstChunk bool   `json:"is_first_chunk"`
}

// AgentStreamEnd marks a streamed agent reply as complete.
type AgentStreamEnd struct {
	TopicID   string `json:"topic_id"`
	MessageID string `json:"message_id"`
}

// ErrorPayload carries a server-reported application error.
type ErrorPayload struct {
	Detail string `json:"detail,omitempty"`
}

// SendMessage asks the backend to post content. A nil TopicID lets the
// backend create a new topic bound to CurrentAgentID.
type SendMessage struct {
	Content        string  `json:"content"`
	TopicID        *string `json:"topic_id"`
	CurrentAgentID string  `json:"current_agent_id"`
}

// SelectTopic asks the backend to make a topic active and send its state.
type SelectTopic struct {
	TopicID string `json:"topic_id"`
}

// OptionalID converts an empty id to a JSON null.
func OptionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

// DerefID converts a JSON null id to the empty string.
func DerefID(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}
