package domain

// UnknownAgentName is shown for an agent id that is not in the agent list.
const UnknownAgentName = "Unknown Agent"

// Agent is a selectable persona that processes messages within a topic.
// Agents are immutable once received from the backend.
type Agent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Model       string `json:"model,omitempty"`
}

// Topic is a persisted conversation thread bound to exactly one agent.
// The binding never changes for the topic's lifetime.
type Topic struct {
	ID      string `json:"id"`
	AgentID string `json:"agent_id"`
	Name    string `json:"name"`
}

// ClientIdentity is the opaque, durable identifier this client connects
// with. It is generated once and reused across restarts.
type ClientIdentity string

// String returns the identity as a plain string.
func (c ClientIdentity) String() string { return string(c) }
