package session

import (
	"testing"

	"github.com/soyeahso/agentchat/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestState_NoActiveTopicYieldsEmptyViews(t *testing.T) {
	s := NewState()
	// Entries under the empty key must never surface as "current".
	s.messages[""] = []domain.Message{{ID: "stray"}}
	s.results[""] = []domain.TaskResult{{ID: "stray"}}

	assert.Empty(t, s.CurrentMessages())
	assert.Empty(t, s.CurrentTaskResults())
	assert.Equal(t, "", s.CurrentTopicAgentID())
}

func TestState_AccessorsReturnCopies(t *testing.T) {
	s := NewState()
	s.activeTopicID = "t1"
	s.appendMessage(domain.Message{ID: "m1", TopicID: "t1"})
	s.agents = []domain.Agent{{ID: "a1", Name: "Echo"}}

	msgs := s.CurrentMessages()
	msgs[0].ID = "mutated"
	agents := s.Agents()
	agents[0].Name = "mutated"

	assert.Equal(t, "m1", s.CurrentMessages()[0].ID)
	assert.Equal(t, "Echo", s.Agents()[0].Name)
}

func TestState_AgentName(t *testing.T) {
	s := NewState()
	s.agents = []domain.Agent{{ID: "a1", Name: "Echo"}}

	assert.Equal(t, "Echo", s.AgentName("a1"))
	assert.Equal(t, "Unknown Agent", s.AgentName("a9"))
	assert.Equal(t, "Unknown Agent", s.AgentName(""))
}

func TestState_DefaultAgentID(t *testing.T) {
	s := NewState()
	assert.Equal(t, "", s.DefaultAgentID())

	s.agents = []domain.Agent{{ID: "a2"}, {ID: "a1"}}
	assert.Equal(t, "a2", s.DefaultAgentID())
}

func TestState_TopicLookup(t *testing.T) {
	s := NewState()
	s.topics = []domain.Topic{{ID: "t1", AgentID: "a1", Name: "Chat 1"}}

	got, ok := s.Topic("t1")
	assert.True(t, ok)
	assert.Equal(t, "Chat 1", got.Name)

	_, ok = s.Topic("t2")
	assert.False(t, ok)

	s.activeTopicID = "t1"
	assert.Equal(t, "a1", s.CurrentTopicAgentID())
}

func TestState_ReplaceTopicDedupsSnapshot(t *testing.T) {
	s := NewState()
	s.replaceTopic("t1", []domain.Message{
		{ID: "m1", Content: "first"},
		{ID: "m2"},
		{ID: "m1", Content: "again"},
	}, nil)

	msgs := s.Messages("t1")
	assert.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Content)
	assert.Equal(t, "t1", msgs[0].TopicID)
	assert.NotNil(t, s.results["t1"])
}

func TestNoticeKindString(t *testing.T) {
	assert.Equal(t, "session_conflict", NoticeSessionConflict.String())
	assert.Equal(t, "unknown", NoticeKind(99).String())
}

func TestImmediateRunsAtOnce(t *testing.T) {
	ran := false
	Immediate{}.AfterRender(func() { ran = true })
	assert.True(t, ran)
}
