// Package session holds the topic synchronization state of one connection
// session and the two components allowed to mutate it: the Router, which
// applies inbound frames, and the Dispatcher, which turns user intents into
// outbound frames. Views read State through its accessors only.
package session

import (
	"slices"

	"github.com/soyeahso/agentchat/internal/domain"
)

// State is the mutable core of a session. An empty activeTopicID means the
// user is composing a new, not-yet-created topic; an empty selectedAgentID
// means no agent is chosen yet.
type State struct {
	activeTopicID   string
	selectedAgentID string

	messages map[string][]domain.Message
	results  map[string][]domain.TaskResult
	streams  map[streamKey]struct{} // agent replies still receiving chunks

	topics []domain.Topic
	agents []domain.Agent

	loading bool
	input   string
}

// NewState creates an empty session state.
func NewState() *State {
	return &State{
		messages: make(map[string][]domain.Message),
		results:  make(map[string][]domain.TaskResult),
		streams:  make(map[streamKey]struct{}),
	}
}

type streamKey struct {
	topicID   string
	messageID string
}

// ActiveTopicID returns the active topic, or "" when composing a new chat.
func (s *State) ActiveTopicID() string { return s.activeTopicID }

// SelectedAgentID returns the agent used for the next send, or "".
func (s *State) SelectedAgentID() string { return s.selectedAgentID }

// IsLoading reports whether a topic selection is awaiting the server.
func (s *State) IsLoading() bool { return s.loading }

// Input returns the compose buffer.
func (s *State) Input() string { return s.input }

// Agents returns a copy of the agent list in server order.
func (s *State) Agents() []domain.Agent { return slices.Clone(s.agents) }

// Topics returns a copy of the topic list in server order.
func (s *State) Topics() []domain.Topic { return slices.Clone(s.topics) }

// Messages returns a copy of the cached messages for a topic.
func (s *State) Messages(topicID string) []domain.Message {
	return slices.Clone(s.messages[topicID])
}

// TaskResults returns a copy of the cached task results for a topic.
func (s *State) TaskResults(topicID string) []domain.TaskResult {
	return slices.Clone(s.results[topicID])
}

// CurrentMessages returns the active topic's messages. With no active
// topic it returns nil without consulting the cache.
func (s *State) CurrentMessages() []domain.Message {
	if s.activeTopicID == "" {
		return nil
	}
	return s.Messages(s.activeTopicID)
}

// CurrentTaskResults returns the active topic's task results, or nil.
func (s *State) CurrentTaskResults() []domain.TaskResult {
	if s.activeTopicID == "" {
		return nil
	}
	return s.TaskResults(s.activeTopicID)
}

// IsStreaming reports whether a cached agent message is still being
// assembled from chunks.
func (s *State) IsStreaming(topicID, messageID string) bool {
	_, ok := s.streams[streamKey{topicID, messageID}]
	return ok
}

// Topic looks up a topic by id.
func (s *State) Topic(id string) (domain.Topic, bool) {
	i := slices.IndexFunc(s.topics, func(t domain.Topic) bool { return t.ID == id })
	if i < 0 {
		return domain.Topic{}, false
	}
	return s.topics[i], true
}

// CurrentTopicAgentID returns the agent bound to the active topic, or "".
func (s *State) CurrentTopicAgentID() string {
	if s.activeTopicID == "" {
		return ""
	}
	t, _ := s.Topic(s.activeTopicID)
	return t.AgentID
}

// DefaultAgentID returns the first agent's id, or "" with no agents.
func (s *State) DefaultAgentID() string {
	if len(s.agents) == 0 {
		return ""
	}
	return s.agents[0].ID
}

// AgentName returns the display name for an agent id.
func (s *State) AgentName(id string) string {
	for _, a := range s.agents {
		if a.ID == id {
			return a.Name
		}
	}
	return domain.UnknownAgentName
}

// agentFor returns the agent bound to topicID when the topic is known,
// otherwise the default agent.
func (s *State) agentFor(topicID string) string {
	if topicID != "" {
		if t, ok := s.Topic(topicID); ok && t.AgentID != "" {
			return t.AgentID
		}
	}
	return s.DefaultAgentID()
}

// appendMessage adds msg to its topic unless the id is already present.
func (s *State) appendMessage(msg domain.Message) bool {
	if slices.ContainsFunc(s.messages[msg.TopicID], func(m domain.Message) bool { return m.ID == msg.ID }) {
		return false
	}
	s.messages[msg.TopicID] = append(s.messages[msg.TopicID], msg)
	return true
}

// appendChunk extends the streamed agent message messageID, creating it
// with timestamp ts on the first chunk. It reports whether the message was
// created, and false for ok when the id belongs to a completed message.
func (s *State) appendChunk(topicID, messageID, chunk, ts string) (created, ok bool) {
	key := streamKey{topicID, messageID}
	msgs := s.messages[topicID]
	i := slices.IndexFunc(msgs, func(m domain.Message) bool { return m.ID == messageID })
	if i < 0 {
		s.messages[topicID] = append(msgs, domain.Message{
			ID:        messageID,
			TopicID:   topicID,
			Sender:    domain.SenderAgent,
			Content:   chunk,
			Timestamp: ts,
		})
		s.streams[key] = struct{}{}
		return true, true
	}
	if _, streaming := s.streams[key]; !streaming {
		return false, false
	}
	msgs[i].Content += chunk
	return false, true
}

// endStream marks a streamed message complete and returns it.
func (s *State) endStream(topicID, messageID string) (domain.Message, bool) {
	key := streamKey{topicID, messageID}
	if _, ok := s.streams[key]; !ok {
		return domain.Message{}, false
	}
	delete(s.streams, key)
	i := slices.IndexFunc(s.messages[topicID], func(m domain.Message) bool { return m.ID == messageID })
	if i < 0 {
		return domain.Message{}, false
	}
	return s.messages[topicID][i], true
}

// appendResult adds res to its topic unless the id is already present.
func (s *State) appendResult(res domain.TaskResult) bool {
	if slices.ContainsFunc(s.results[res.TopicID], func(r domain.TaskResult) bool { return r.ID == res.ID }) {
		return false
	}
	s.results[res.TopicID] = append(s.results[res.TopicID], res)
	return true
}

// replaceTopic installs a full snapshot for a topic. Repeated ids within
// the snapshot keep their first occurrence. Replies still streaming are
// kept after the snapshot unless it already holds them.
func (s *State) replaceTopic(topicID string, msgs []domain.Message, res []domain.TaskResult) {
	var partial []domain.Message
	for _, m := range s.messages[topicID] {
		if s.IsStreaming(topicID, m.ID) {
			partial = append(partial, m)
		}
	}

	s.messages[topicID] = nil
	for _, m := range msgs {
		m.TopicID = topicID
		s.appendMessage(m)
	}
	for _, m := range partial {
		if !s.appendMessage(m) {
			delete(s.streams, streamKey{topicID, m.ID})
		}
	}
	if s.messages[topicID] == nil {
		s.messages[topicID] = []domain.Message{}
	}

	s.results[topicID] = nil
	for _, r := range res {
		r.TopicID = topicID
		s.appendResult(r)
	}
	if s.results[topicID] == nil {
		s.results[topicID] = []domain.TaskResult{}
	}
}
