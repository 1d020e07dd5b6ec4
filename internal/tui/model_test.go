package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/soyeahso/agentchat/internal/client"
	"github.com/soyeahso/agentchat/internal/config"
	"github.com/soyeahso/agentchat/internal/conn"
	"github.com/soyeahso/agentchat/internal/domain"
	"github.com/soyeahso/agentchat/internal/identity"
	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/soyeahso/agentchat/internal/protocol"
	"github.com/soyeahso/agentchat/internal/session"
	"github.com/soyeahso/agentchat/internal/store"
	"github.com/soyeahso/agentchat/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTransport struct {
	events chan conn.Event
	sent   []protocol.Frame
	closed bool
}

func (s *stubTransport) Connect(context.Context, domain.ClientIdentity) error { return nil }
func (s *stubTransport) Events() <-chan conn.Event { return s.events }
func (s *stubTransport) IsOpen() bool { return !s.closed }
func (s *stubTransport) Close() error {
	s.closed = true
	return nil
}
func (s *stubTransport) Send(f protocol.Frame) error {
	s.sent = append(s.sent, f)
	return nil
}

type fixture struct {
	tr    *stubTransport
	prefs *store.MemoryPrefs
}

var (
	echo   = domain.Agent{ID: "a1", Name: "Echo"}
	critic = domain.Agent{ID: "a2", Name: "Critic"}
)

func newTestModel(t *testing.T) (Model, *fixture) {
	t.Helper()
	log := logging.New(nil, "silent")
	f := &fixture{tr: &stubTransport{events: make(chan conn.Event, 8)}, prefs: store.NewMemoryPrefs()}
	fx := NewEffects()
	c := client.New(f.tr, identity.New(f.prefs, log), client.Options{Effects: fx, After: fx}, log)
	m := New(Options{
		Client:  c,
		Effects: fx,
		Prefs:   f.prefs,
		Theme:   theme.Light,
		Detect:  func() bool { return false },
		UI:      config.UIConfig{NearBottomLines: 2},
	}, log)
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	return m, f
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func frame(t *testing.T, typ string, payload any) connEventMsg {
	t.Helper()
	f, err := protocol.NewFrame(typ, payload)
	require.NoError(t, err)
	raw, err := json.Marshal(f)
	require.NoError(t, err)
	return connEventMsg{ev: conn.FrameReceived{Raw: raw}}
}

func press(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func withAgents(t *testing.T, m Model, active string) Model {
	t.Helper()
	m = update(t, m, connEventMsg{ev: conn.Opened{}})
	m = update(t, m, frame(t, protocol.TypeInitialState, protocol.InitialState{
		Agents:        []domain.Agent{echo, critic},
		ActiveTopicID: protocol.OptionalID(active),
	}))
	return update(t, m, afterRenderMsg{})
}

func TestModel_InitialStateFocusesAfterRender(t *testing.T) {
	m, _ := newTestModel(t)
	m.input.Blur()

	m = update(t, m, frame(t, protocol.TypeInitialState, protocol.InitialState{Agents: []domain.Agent{echo}}))
	assert.Contains(t, m.View(), "New chat with Echo")
	assert.True(t, m.fx.pending())
	assert.False(t, m.input.Focused())

	m = update(t, m, afterRenderMsg{})
	assert.True(t, m.input.Focused())
	assert.False(t, m.fx.pending())
}

func TestModel_EnterSendsAndClears(t *testing.T) {
	m, f := newTestModel(t)
	m = withAgents(t, m, "")

	m.input.SetValue("hello there")
	m = update(t, m, press(tea.KeyEnter))

	require.Len(t, f.tr.sent, 1)
	assert.JSONEq(t, `{"content":"hello there","topic_id":null,"current_agent_id":"a1"}`, string(f.tr.sent[0].Payload))
	assert.Equal(t, "", m.input.Value())
}

func TestModel_EnterWithoutAgentShowsNotice(t *testing.T) {
	m, f := newTestModel(t)

	m.input.SetValue("hello")
	m = update(t, m, press(tea.KeyEnter))

	assert.Empty(t, f.tr.sent)
	assert.Equal(t, session.TextNoAgent, m.Notice())
	assert.Equal(t, "hello", m.input.Value())
	assert.Contains(t, m.View(), session.TextNoAgent)
}

func TestModel_AgentCycle(t *testing.T) {
	m, _ := newTestModel(t)
	m = withAgents(t, m, "")

	m = update(t, m, press(tea.KeyCtrlA))
	assert.Equal(t, "a2", m.c.State().SelectedAgentID())
	m = update(t, m, press(tea.KeyCtrlA))
	assert.Equal(t, "a1", m.c.State().SelectedAgentID())
}

func TestModel_TopicNavigationIsServerConfirmed(t *testing.T) {
	m, f := newTestModel(t)
	m = withAgents(t, m, "t1")
	m = update(t, m, frame(t, protocol.TypeTopicListUpdate, []domain.Topic{
		{ID: "t1", AgentID: "a1", Name: "First"},
		{ID: "t2", AgentID: "a2", Name: "Second"},
	}))

	m = update(t, m, press(tea.KeyCtrlDown))
	require.Len(t, f.tr.sent, 1)
	assert.JSONEq(t, `{"topic_id":"t2"}`, string(f.tr.sent[0].Payload))
	assert.Equal(t, "t1", m.c.State().ActiveTopicID())
	assert.Contains(t, m.View(), "loading topic")

	m = update(t, m, frame(t, protocol.TypeActiveTopicUpdate, protocol.ActiveTopicUpdate{TopicID: protocol.OptionalID("t2")}))
	assert.Equal(t, "t2", m.c.State().ActiveTopicID())
	assert.Contains(t, m.View(), "Second")
}

func TestModel_NewChat(t *testing.T) {
	m, _ := newTestModel(t)
	m = withAgents(t, m, "t1")
	m.input.SetValue("draft")

	m = update(t, m, press(tea.KeyCtrlN))
	assert.Equal(t, "", m.c.State().ActiveTopicID())
	assert.Equal(t, "", m.input.Value())
	assert.Contains(t, m.View(), "New chat")
}

func TestModel_ThemeTogglePersists(t *testing.T) {
	m, f := newTestModel(t)

	m = update(t, m, press(tea.KeyCtrlT))
	assert.Equal(t, theme.Dark, m.Theme())
	v, ok, err := f.prefs.Get(store.KeyTheme)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dark", v)

	m = update(t, m, press(tea.KeyCtrlT))
	assert.Equal(t, theme.Light, m.Theme())
}

func TestModel_PanelToggles(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Contains(t, m.View(), "Topics")
	assert.Contains(t, m.View(), "Task results")

	m = update(t, m, press(tea.KeyCtrlL))
	assert.NotContains(t, m.View(), "Topics")
	m = update(t, m, press(tea.KeyCtrlR))
	assert.NotContains(t, m.View(), "Task results")
}

func TestModel_NarrowTerminalHidesPanels(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 30})

	view := m.View()
	assert.NotContains(t, view, "Topics")
	assert.NotContains(t, view, "Task results")
}

func TestModel_ConflictCloseShowsNotice(t *testing.T) {
	m, _ := newTestModel(t)
	m = withAgents(t, m, "")

	m = update(t, m, connEventMsg{ev: conn.Closed{
		Code:   protocol.CloseCodeSessionConflict,
		Reason: protocol.CloseReasonSessionActive,
		Kind:   conn.CloseConflict,
	}})

	assert.True(t, m.Closed())
	assert.Equal(t, session.TextSessionConflict, m.Notice())
	assert.Contains(t, m.View(), "disconnected")
}

func TestModel_QuitClosesConnection(t *testing.T) {
	m, f := newTestModel(t)

	_, cmd := m.Update(press(tea.KeyEsc))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, f.tr.closed)
}

func TestModel_TopicStateScrollsToBottom(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 20})
	m = withAgents(t, m, "t1")

	msgs := make([]domain.Message, 0, 40)
	for i := range 40 {
		msgs = append(msgs, domain.Message{ID: fmt.Sprintf("m%d", i), Sender: domain.SenderUser, Content: "line"})
	}
	m = update(t, m, frame(t, protocol.TypeTopicState, protocol.TopicState{TopicID: "t1", AgentID: "a1", Messages: msgs}))
	assert.False(t, m.messages.AtBottom())

	m = update(t, m, afterRenderMsg{})
	assert.True(t, m.messages.AtBottom())
}

func TestNearBottom(t *testing.T) {
	vp := viewport.New(20, 5)
	vp.SetContent(strings.Repeat("x\n", 19) + "x")

	assert.False(t, nearBottom(vp, 3))
	vp.SetYOffset(12)
	assert.True(t, nearBottom(vp, 3))
	vp.GotoBottom()
	assert.True(t, nearBottom(vp, 0))

	short := viewport.New(20, 5)
	short.SetContent("one line")
	assert.True(t, nearBottom(short, 0))
}

func TestModel_StreamedReplyRendersAsItArrives(t *testing.T) {
	m, _ := newTestModel(t)
	m = withAgents(t, m, "t1")
	m = update(t, m, frame(t, protocol.TypeTopicListUpdate, []domain.Topic{{ID: "t1", AgentID: "a1", Name: "First"}}))

	m = update(t, m, frame(t, protocol.TypeAgentMessageChunk, protocol.AgentMessageChunk{
		TopicID: "t1", MessageID: "m7", ContentChunk: "Okay, I ", IsFirstChunk: true,
	}))
	assert.Contains(t, m.View(), "Okay, I")
	assert.True(t, m.fx.pending())

	m = update(t, m, frame(t, protocol.TypeAgentMessageChunk, protocol.AgentMessageChunk{
		TopicID: "t1", MessageID: "m7", ContentChunk: "received it",
	}))
	m = update(t, m, frame(t, protocol.TypeAgentStreamEnd, protocol.AgentStreamEnd{TopicID: "t1", MessageID: "m7"}))
	m = update(t, m, afterRenderMsg{})

	view := m.View()
	assert.Contains(t, view, "Okay, I received it")
	assert.Contains(t, view, "Echo")
	assert.False(t, m.c.State().IsStreaming("t1", "m7"))
}
