package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/soyeahso/agentchat/internal/hooks"
	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/soyeahso/agentchat/internal/protocol"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	open    bool
	sendErr error
	sent    []protocol.Frame
}

func (f *fakeTransport) IsOpen() bool { return f.open }

func (f *fakeTransport) Send(frame protocol.Frame) error {
	if !f.open {
		return errors.New("closed")
	}
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, frame)
	return nil
}

type recordingEffects struct {
	focus   int
	scrolls []bool
	notices []Notice
}

func (r *recordingEffects) FocusInput() { r.focus++ }
func (r *recordingEffects) ScrollToBottom(f bool) { r.scrolls = append(r.scrolls, f) }
func (r *recordingEffects) Notify(n Notice) { r.notices = append(r.notices, n) }

// queue holds deferred work until flush, like a view that has not yet
// rendered.
type queue struct {
	fns []func()
}

func (q *queue) AfterRender(fn func()) { q.fns = append(q.fns, fn) }

func (q *queue) flush() {
	fns := q.fns
	q.fns = nil
	for _, fn := range fns {
		fn()
	}
}

type harness struct {
	state *State
	tr    *fakeTransport
	fx    *recordingEffects
	after *queue
	hooks *hooks.Manager
	logs  *bytes.Buffer
	r     *Router
	d     *Dispatcher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		state: NewState(),
		tr:    &fakeTransport{open: true},
		fx:    &recordingEffects{},
		after: &queue{},
		logs:  &bytes.Buffer{},
	}
	log := logging.New(h.logs, "debug")
	h.hooks = hooks.NewManager(log)
	h.r = NewRouter(h.state, h.fx, h.after, h.hooks, log)
	h.d = NewDispatcher(h.state, h.tr, h.fx, h.after, h.hooks, log)
	return h
}

// route encodes payload as a frame of the given type and routes it.
func (h *harness) route(t *testing.T, typ string, payload any) {
	t.Helper()
	f, err := protocol.NewFrame(typ, payload)
	require.NoError(t, err)
	raw, err := json.Marshal(f)
	require.NoError(t, err)
	require.Equal(t, typ, h.r.Route(raw))
}

func ptr(s string) *string { return &s }
