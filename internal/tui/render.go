package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/soyeahso/agentchat/internal/domain"
)

func (m Model) View() string {
	if m.width == 0 {
		return "starting…"
	}
	topicsW, messagesW, resultsW, bodyH := m.layout()

	cols := make([]string, 0, 3)
	if topicsW > 0 {
		cols = append(cols, m.panel("Topics", m.renderTopics(bodyH), topicsW, bodyH))
	}
	cols = append(cols, m.panel(m.conversationTitle(), m.messages.View(), messagesW, bodyH))
	if resultsW > 0 {
		cols = append(cols, m.panel("Task results", m.results.View(), resultsW, bodyH))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		lipgloss.JoinHorizontal(lipgloss.Top, cols...),
		m.renderStatus(),
		m.st.input.Render(m.input.View()),
		m.renderHelp(),
	)
}

func (m Model) panel(title, body string, width, height int) string {
	frameW := m.st.panel.GetHorizontalFrameSize()
	frameH := m.st.panel.GetVerticalFrameSize()
	inner := lipgloss.JoinVertical(lipgloss.Left, m.st.panelTitle.Render(title), body)
	return m.st.panel.
		Width(max(1, width-frameW)).
		Height(max(1, height-frameH)).
		Render(inner)
}

func (m Model) renderHeader() string {
	s := m.c.State()
	agent := "none"
	if id := s.SelectedAgentID(); id != "" {
		agent = s.AgentName(id)
	}
	return m.st.header.Render("agentchat") +
		m.st.muted.Render(fmt.Sprintf("  ·  agent: %s  ·  theme: %s", agent, m.theme))
}

func (m Model) conversationTitle() string {
	s := m.c.State()
	id := s.ActiveTopicID()
	if id == "" {
		return "New chat"
	}
	if t, ok := s.Topic(id); ok && t.Name != "" {
		return t.Name
	}
	return id
}

func (m Model) renderTopics(height int) string {
	s := m.c.State()
	topics := s.Topics()
	if len(topics) == 0 {
		return m.st.muted.Render("No topics yet")
	}
	active := s.ActiveTopicID()
	var b strings.Builder
	for i, t := range topics {
		if i >= height-3 {
			b.WriteString(m.st.muted.Render(fmt.Sprintf("… %d more", len(topics)-i)))
			break
		}
		name := t.Name
		if name == "" {
			name = t.ID
		}
		if t.ID == active {
			b.WriteString(m.st.activeTopic.Render("▸ " + name))
		} else {
			b.WriteString(m.st.topic.Render("  " + name))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderMessages() string {
	s := m.c.State()
	if s.ActiveTopicID() == "" {
		agent := "an agent"
		if id := s.SelectedAgentID(); id != "" {
			agent = s.AgentName(id)
		}
		return m.st.muted.Render(fmt.Sprintf("New chat with %s. Type a message to start.", agent))
	}
	msgs := s.CurrentMessages()
	if len(msgs) == 0 {
		return m.st.muted.Render("No messages yet.")
	}

	agentName := s.AgentName(s.CurrentTopicAgentID())
	width := max(10, m.messages.Width)
	var b strings.Builder
	for _, msg := range msgs {
		var label string
		switch msg.Sender {
		case domain.SenderUser:
			label = m.st.user.Render("You")
		case domain.SenderAgent:
			label = m.st.agent.Render(agentName)
		default:
			label = m.st.system.Render("System")
		}
		if ts := domain.FormatTimestamp(msg.Timestamp); ts != "" {
			label += m.st.muted.Render("  " + ts)
		}
		if s.IsStreaming(msg.TopicID, msg.ID) {
			label += " " + m.spinner.View()
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Render(msg.Content))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderResults() string {
	results := m.c.State().CurrentTaskResults()
	if len(results) == 0 {
		return m.st.muted.Render("No task results")
	}
	width := max(10, m.results.Width)
	var b strings.Builder
	for _, r := range results {
		if ts := domain.FormatTimestamp(r.Timestamp); ts != "" {
			b.WriteString(m.st.muted.Render(ts))
			b.WriteString("\n")
		}
		b.WriteString(lipgloss.NewStyle().Width(width).Render(r.Content))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderStatus() string {
	var state string
	switch {
	case m.connecting:
		state = m.spinner.View() + " connecting"
	case m.closed:
		state = "disconnected"
	case m.c.State().IsLoading():
		state = m.spinner.View() + " loading topic"
	default:
		state = "connected"
	}
	line := m.st.status.Render(state)
	if m.notice != "" {
		line += "  " + m.st.notice.Render(m.notice)
	}
	return line
}

func (m Model) renderHelp() string {
	parts := make([]string, 0, 8)
	for _, k := range m.keys.help() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.st.muted.Render(strings.Join(parts, " · "))
}
