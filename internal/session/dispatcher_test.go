package session

import (
	"context"
	"errors"
	"testing"

	"github.com/soyeahso/agentchat/internal/domain"
	"github.com/soyeahso/agentchat/internal/hooks"
	"github.com/soyeahso/agentchat/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage_NewTopic(t *testing.T) {
	h := newHarness(t)
	withActiveTopic(t, h, "")
	h.d.SetInput("  hello  ")

	require.NoError(t, h.d.Submit())

	require.Len(t, h.tr.sent, 1)
	f := h.tr.sent[0]
	assert.Equal(t, protocol.TypeSendMessage, f.Type)
	assert.JSONEq(t, `{"content":"hello","topic_id":null,"current_agent_id":"a1"}`, string(f.Payload))
	assert.Equal(t, "", h.state.Input())
	// Nothing is created locally; the server decides.
	assert.Equal(t, "", h.state.ActiveTopicID())
}

func TestSendMessage_ExistingTopicWithOtherAgent(t *testing.T) {
	h := newHarness(t)
	withActiveTopic(t, h, "t1")
	h.d.HandleAgentChange("a2")

	require.NoError(t, h.d.SendMessage("fork please"))
	require.Len(t, h.tr.sent, 1)
	assert.JSONEq(t, `{"content":"fork please","topic_id":"t1","current_agent_id":"a2"}`, string(h.tr.sent[0].Payload))
	assert.Equal(t, "t1", h.state.ActiveTopicID())
}

func TestSendMessage_NoAgentSelected(t *testing.T) {
	h := newHarness(t)

	err := h.d.SendMessage("hello")
	assert.ErrorIs(t, err, ErrNoAgentSelected)
	assert.Empty(t, h.tr.sent)
	require.Len(t, h.fx.notices, 1)
	assert.Equal(t, NoticeNoAgent, h.fx.notices[0].Kind)
}

func TestSendMessage_NotConnected(t *testing.T) {
	h := newHarness(t)
	withActiveTopic(t, h, "")
	h.tr.open = false
	h.d.SetInput("hello")

	err := h.d.Submit()
	assert.ErrorIs(t, err, ErrNotConnected)
	require.Len(t, h.fx.notices, 1)
	assert.Equal(t, NoticeNotConnected, h.fx.notices[0].Kind)
	assert.Equal(t, "hello", h.state.Input())
}

func TestSendMessage_NotConnectedCheckedFirst(t *testing.T) {
	h := newHarness(t)
	h.tr.open = false

	assert.ErrorIs(t, h.d.SendMessage(""), ErrNotConnected)
}

func TestSendMessage_EmptyIsSilent(t *testing.T) {
	h := newHarness(t)

	for _, content := range []string{"", "   ", "\n\t"} {
		err := h.d.SendMessage(content)
		assert.ErrorIs(t, err, ErrEmptyContent)
	}
	assert.Empty(t, h.tr.sent)
	assert.Empty(t, h.fx.notices)
}

func TestSendMessage_TransportFailureKeepsInput(t *testing.T) {
	h := newHarness(t)
	withActiveTopic(t, h, "")
	h.tr.sendErr = errors.New("broken pipe")
	h.d.SetInput("keep me")

	err := h.d.Submit()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
	assert.Equal(t, "keep me", h.state.Input())
}

func TestSendMessage_PublishesHook(t *testing.T) {
	h := newHarness(t)
	withActiveTopic(t, h, "t1")

	var got hooks.Payload
	h.hooks.On(hooks.EventMessageSending, "rec", func(_ context.Context, p hooks.Payload) error {
		got = p
		return nil
	})

	require.NoError(t, h.d.SendMessage("hi"))
	assert.Equal(t, "hi", got.Data["content"])
	assert.Equal(t, "t1", got.Data["topicId"])
}

func TestSelectTopic(t *testing.T) {
	h := newHarness(t)
	withActiveTopic(t, h, "t1")

	require.NoError(t, h.d.SelectTopic("t2"))

	assert.True(t, h.state.IsLoading())
	// Not optimistic: the server confirms the switch.
	assert.Equal(t, "t1", h.state.ActiveTopicID())
	require.Len(t, h.tr.sent, 1)
	assert.Equal(t, protocol.TypeSelectTopic, h.tr.sent[0].Type)
	assert.JSONEq(t, `{"topic_id":"t2"}`, string(h.tr.sent[0].Payload))

	h.route(t, protocol.TypeActiveTopicUpdate, protocol.ActiveTopicUpdate{TopicID: ptr("t2")})
	assert.Equal(t, "t2", h.state.ActiveTopicID())
	assert.False(t, h.state.IsLoading())
}

func TestSelectTopic_AlreadyActive(t *testing.T) {
	h := newHarness(t)
	withActiveTopic(t, h, "t1")

	require.NoError(t, h.d.SelectTopic("t1"))
	assert.Empty(t, h.tr.sent)
	assert.False(t, h.state.IsLoading())
}

func TestSelectTopic_NotConnected(t *testing.T) {
	h := newHarness(t)
	withActiveTopic(t, h, "t1")
	h.tr.open = false

	assert.ErrorIs(t, h.d.SelectTopic("t2"), ErrNotConnected)
	assert.False(t, h.state.IsLoading())
	assert.Empty(t, h.fx.notices)
}

func TestSelectTopic_SendFailureClearsLoading(t *testing.T) {
	h := newHarness(t)
	withActiveTopic(t, h, "t1")
	h.tr.sendErr = errors.New("reset")

	require.Error(t, h.d.SelectTopic("t2"))
	assert.False(t, h.state.IsLoading())
}

func TestStartNewChat(t *testing.T) {
	h := newHarness(t)
	withActiveTopic(t, h, "t1")
	h.d.HandleAgentChange("a2")
	h.d.SetInput("draft")

	h.d.StartNewChat()

	assert.Equal(t, "", h.state.ActiveTopicID())
	assert.Equal(t, "", h.state.Input())
	assert.Equal(t, "a1", h.state.SelectedAgentID())
	assert.Empty(t, h.tr.sent)
	h.after.flush()
	assert.Equal(t, 1, h.fx.focus)
}

func TestStartNewChat_NoAgents(t *testing.T) {
	h := newHarness(t)
	h.d.HandleAgentChange("a9")

	h.d.StartNewChat()
	assert.Equal(t, "a9", h.state.SelectedAgentID())
}

func TestHandleAgentChange(t *testing.T) {
	h := newHarness(t)
	withActiveTopic(t, h, "t1")
	h.route(t, protocol.TypeTopicListUpdate, []domain.Topic{{ID: "t1", AgentID: "a1"}})

	h.d.HandleAgentChange("a2")
	h.after.flush()

	assert.Equal(t, "a2", h.state.SelectedAgentID())
	// Topic binding is untouched.
	assert.Equal(t, "a1", h.state.CurrentTopicAgentID())
	assert.Equal(t, 0, h.fx.focus)
	assert.Empty(t, h.tr.sent)
}

func TestHandleAgentChange_NewChatRefocuses(t *testing.T) {
	h := newHarness(t)
	withActiveTopic(t, h, "")

	h.d.HandleAgentChange("a2")
	h.after.flush()
	assert.Equal(t, 1, h.fx.focus)
}
