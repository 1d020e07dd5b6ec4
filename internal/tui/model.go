// Package tui is the interactive terminal view over one client session.
// All session mutation happens inside Update; connection events reach it
// as messages pulled from the client's event channel.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/soyeahso/agentchat/internal/client"
	"github.com/soyeahso/agentchat/internal/config"
	"github.com/soyeahso/agentchat/internal/conn"
	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/soyeahso/agentchat/internal/session"
	"github.com/soyeahso/agentchat/internal/store"
	"github.com/soyeahso/agentchat/internal/theme"
)

const (
	topicsWidth      = 26
	resultsWidth     = 34
	minTopicsWidth   = 70 // terminal width below which the topic list hides
	minResultsWidth  = 100
	inputLines       = 3
	placeholderReady = "Type a message and press enter"
)

type connEventMsg struct{ ev conn.Event }

type connectDoneMsg struct{ err error }

type afterRenderMsg struct{}

// Options configure the view.
type Options struct {
	Client  *client.Client
	Effects *Effects // the collector the client was built with
	Prefs   store.KV
	Theme   theme.Theme
	Detect  theme.Detector
	UI      config.UIConfig
}

// Model is the bubbletea model of the chat client.
type Model struct {
	c      *client.Client
	fx     *Effects
	prefs  store.KV
	detect theme.Detector
	theme  theme.Theme
	st     styles
	ui     config.UIConfig
	keys   keyMap
	log    *logging.Logger

	width  int
	height int

	showTopics  bool
	showResults bool
	connecting  bool
	closed      bool
	notice      string

	lastContent string
	stickBottom bool

	input    textarea.Model
	messages viewport.Model
	results  viewport.Model
	spinner  spinner.Model
}

// New builds the model. The connection is dialed by Init.
func New(opts Options, log *logging.Logger) Model {
	ta := textarea.New()
	ta.Placeholder = placeholderReady
	ta.ShowLineNumbers = false
	ta.CharLimit = 8000
	ta.SetHeight(inputLines)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	msgs := viewport.New(0, 0)
	msgs.MouseWheelEnabled = true
	msgs.MouseWheelDelta = 3

	if opts.Detect == nil {
		opts.Detect = theme.DetectTerminal
	}
	ui := opts.UI
	if ui.NearBottomLines <= 0 {
		ui.NearBottomLines = config.DefaultNearBottomLines
	}

	m := Model{
		c:           opts.Client,
		fx:          opts.Effects,
		prefs:       opts.Prefs,
		detect:      opts.Detect,
		ui:          ui,
		keys:        defaultKeys(),
		log:         log.Sub("tui"),
		showTopics:  ui.ShowTopicsPanel(),
		showResults: ui.ShowResultsPanel(),
		connecting:  true,
		stickBottom: true,
		input:       ta,
		messages:    msgs,
		results:     viewport.New(0, 0),
		spinner:     sp,
	}
	m.setTheme(opts.Theme)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		textarea.Blink,
		connectCmd(m.c),
		waitEvent(m.c.Events()),
	)
}

func connectCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		return connectDoneMsg{err: c.Connect(context.Background())}
	}
}

func waitEvent(ch <-chan conn.Event) tea.Cmd {
	return func() tea.Msg {
		return connEventMsg{ev: <-ch}
	}
}

func afterRender() tea.Msg { return afterRenderMsg{} }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
	case connectDoneMsg:
		if msg.err != nil {
			m.connecting = false
			m.log.Error().Err(msg.err).Msg("connect failed")
			m.notice = fmt.Sprintf("Connection failed: %v", msg.err)
		}
	case connEventMsg:
		if _, ok := msg.ev.(conn.Opened); ok {
			m.connecting = false
		}
		if err := m.c.HandleEvent(msg.ev); errors.Is(err, client.ErrClosed) {
			m.connecting = false
			m.closed = true
			m.input.Placeholder = "Disconnected. Press esc to quit."
		} else {
			cmds = append(cmds, waitEvent(m.c.Events()))
		}
	case afterRenderMsg:
		m.fx.runDeferred()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	case tea.MouseMsg:
		var cmd tea.Cmd
		m.messages, cmd = m.messages.Update(msg)
		cmds = append(cmds, cmd)
	case tea.KeyMsg:
		cmd, quit := m.handleKey(msg)
		if quit {
			return m, cmd
		}
		cmds = append(cmds, cmd)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.applyEffects()
	m.syncViews()
	if m.fx.pending() {
		cmds = append(cmds, afterRender)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	d := m.c.Dispatcher()
	switch {
	case key.Matches(msg, m.keys.Quit):
		if err := m.c.Close(); err != nil {
			m.log.Warn().Err(err).Msg("close on exit")
		}
		return tea.Quit, true
	case key.Matches(msg, m.keys.Send):
		d.SetInput(m.input.Value())
		if err := d.Submit(); err != nil {
			m.log.Debug().Err(err).Msg("send rejected")
			return nil, false
		}
		m.input.Reset()
		m.notice = ""
	case key.Matches(msg, m.keys.NewChat):
		d.StartNewChat()
		m.input.Reset()
	case key.Matches(msg, m.keys.NextAgent):
		if next := m.nextAgent(); next != "" {
			d.HandleAgentChange(next)
		}
	case key.Matches(msg, m.keys.NextTopic), key.Matches(msg, m.keys.PrevTopic):
		step := 1
		if key.Matches(msg, m.keys.PrevTopic) {
			step = -1
		}
		if id := m.adjacentTopic(step); id != "" {
			if err := d.SelectTopic(id); err != nil {
				m.log.Debug().Err(err).Str("topic", id).Msg("select rejected")
			}
		}
	case key.Matches(msg, m.keys.ToggleTheme):
		t, err := theme.Toggle(m.prefs, m.detect)
		if err != nil {
			m.log.Error().Err(err).Msg("saving theme")
			m.notice = fmt.Sprintf("Could not save theme: %v", err)
			return nil, false
		}
		m.setTheme(t)
	case key.Matches(msg, m.keys.ToggleTopics):
		m.showTopics = !m.showTopics
		m.resize()
	case key.Matches(msg, m.keys.ToggleResults):
		m.showResults = !m.showResults
		m.resize()
	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.messages, cmd = m.messages.Update(msg)
		return cmd, false
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd, false
	}
	return nil, false
}

// nextAgent returns the agent after the selected one, wrapping around.
func (m *Model) nextAgent() string {
	agents := m.c.State().Agents()
	if len(agents) == 0 {
		return ""
	}
	cur := m.c.State().SelectedAgentID()
	for i, a := range agents {
		if a.ID == cur {
			return agents[(i+1)%len(agents)].ID
		}
	}
	return agents[0].ID
}

// adjacentTopic returns the topic step positions away from the active one.
// With no active topic it starts from the first or last topic.
func (m *Model) adjacentTopic(step int) string {
	topics := m.c.State().Topics()
	if len(topics) == 0 {
		return ""
	}
	active := m.c.State().ActiveTopicID()
	for i, t := range topics {
		if t.ID == active {
			j := (i + step + len(topics)) % len(topics)
			return topics[j].ID
		}
	}
	if step < 0 {
		return topics[len(topics)-1].ID
	}
	return topics[0].ID
}

func (m *Model) setTheme(t theme.Theme) {
	m.theme = t
	m.st = newStyles(t)
	m.spinner.Style = m.st.header
}

// applyEffects carries out what the session requested during this update.
func (m *Model) applyEffects() {
	if m.fx.focus {
		m.fx.focus = false
		m.input.Focus()
	}
	if m.fx.scroll {
		if m.fx.force || m.stickBottom {
			m.messages.GotoBottom()
		}
		m.fx.scroll = false
		m.fx.force = false
	}
	for _, n := range m.fx.takeNotices() {
		m.log.Info().Str("kind", n.Kind.String()).Msg(n.Text)
		m.notice = n.Text
	}
}

// syncViews refreshes viewport content from the session state. Whether
// the reader was following the bottom is sampled before content changes.
func (m *Model) syncViews() {
	content := m.renderMessages()
	if content != m.lastContent {
		m.stickBottom = nearBottom(m.messages, m.ui.NearBottomLines)
		m.lastContent = content
		m.messages.SetContent(content)
	}
	m.results.SetContent(m.renderResults())
}

// nearBottom reports whether vp is scrolled to within lines of its end.
func nearBottom(vp viewport.Model, lines int) bool {
	below := vp.TotalLineCount() - vp.YOffset - vp.Height
	return below <= lines
}

func (m *Model) layout() (topicsW, messagesW, resultsW, bodyH int) {
	if m.showTopics && m.width >= minTopicsWidth {
		topicsW = topicsWidth
	}
	if m.showResults && m.width >= minResultsWidth {
		resultsW = resultsWidth
	}
	messagesW = max(20, m.width-topicsW-resultsW)
	// header, status, help and the bordered input
	bodyH = max(3, m.height-3-(inputLines+2))
	return topicsW, messagesW, resultsW, bodyH
}

func (m *Model) resize() {
	_, messagesW, resultsW, bodyH := m.layout()
	frameW := m.st.panel.GetHorizontalFrameSize()
	frameH := m.st.panel.GetVerticalFrameSize()

	m.messages.Width = max(1, messagesW-frameW)
	m.messages.Height = max(1, bodyH-frameH-1)
	m.results.Width = max(1, resultsW-frameW)
	m.results.Height = max(1, bodyH-frameH-1)
	m.input.SetWidth(max(10, m.width-m.st.input.GetHorizontalFrameSize()))
	m.lastContent = ""
}

// Theme returns the active theme.
func (m Model) Theme() theme.Theme { return m.theme }

// Notice returns the notice currently shown, if any.
func (m Model) Notice() string { return m.notice }

// Closed reports whether the connection has ended.
func (m Model) Closed() bool { return m.closed }

var _ session.Effects = (*Effects)(nil)
var _ session.Deferrer = (*Effects)(nil)
