package tui

import "github.com/soyeahso/agentchat/internal/session"

// Effects collects the view effects the session asks for while Update
// handles a message. The model applies them before returning, and runs
// deferred work on the message that follows the next render.
type Effects struct {
	deferred []func()
	focus    bool
	scroll   bool
	force    bool
	notices  []session.Notice
}

// NewEffects returns an empty effect collector.
func NewEffects() *Effects {
	return &Effects{}
}

// FocusInput requests compose focus on the next sync.
func (e *Effects) FocusInput() { e.focus = true }

// ScrollToBottom requests a scroll. An unforced request only applies when
// the view was already near the bottom.
func (e *Effects) ScrollToBottom(force bool) {
	e.scroll = true
	e.force = e.force || force
}

// Notify queues a notice for the status line.
func (e *Effects) Notify(n session.Notice) { e.notices = append(e.notices, n) }

// AfterRender queues fn until the view has rendered the current state.
func (e *Effects) AfterRender(fn func()) { e.deferred = append(e.deferred, fn) }

func (e *Effects) pending() bool { return len(e.deferred) > 0 }

func (e *Effects) runDeferred() {
	fns := e.deferred
	e.deferred = nil
	for _, fn := range fns {
		fn()
	}
}

func (e *Effects) takeNotices() []session.Notice {
	n := e.notices
	e.notices = nil
	return n
}
