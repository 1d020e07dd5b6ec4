// Package conn owns the realtime socket to the chat backend: dialing,
// the read pump, writes and close classification. It never touches
// session state; everything it observes is delivered as an Event.
package conn

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/soyeahso/agentchat/internal/domain"
	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/soyeahso/agentchat/internal/protocol"
	"github.com/soyeahso/agentchat/internal/version"
)

// ErrNotOpen is returned by Send when no connection is open.
var ErrNotOpen = errors.New("connection not open")

const (
	writeWait         = 10 * time.Second
	closeGrace        = time.Second
	clientCloseReason = "Client closing"
	defaultBuffer     = 64
)

// Options configure a Manager.
type Options struct {
	Origin      string        // backend origin, e.g. http://127.0.0.1:8000
	DialTimeout time.Duration // handshake timeout; zero means no limit
	EventBuffer int           // capacity of the event channel
}

// link is one dialed socket and its read pump.
type link struct {
	socket   *websocket.Conn
	stop     chan struct{}
	stopOnce sync.Once
	closing  atomic.Bool
}

// shutdown unblocks any pending emit for this link.
func (l *link) shutdown() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// Manager drives the Idle → Connecting → Open → Closed lifecycle of a
// single socket. There is no automatic reconnection.
type Manager struct {
	opts   Options
	dialer *websocket.Dialer
	events chan Event
	log    *logging.Logger

	mu    sync.Mutex
	state State
	cur   *link
	abort bool // Close called while Connecting

	writeMu sync.Mutex
}

// NewManager creates an idle Manager.
func NewManager(opts Options, log *logging.Logger) *Manager {
	buf := opts.EventBuffer
	if buf <= 0 {
		buf = defaultBuffer
	}
	return &Manager{
		opts: opts,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.DialTimeout,
		},
		events: make(chan Event, buf),
		log:    log.Sub("conn"),
	}
}

// Events returns the channel on which all transport events are delivered,
// in arrival order. It is never closed.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsOpen reports whether frames can be sent.
func (m *Manager) IsOpen() bool {
	return m.State() == StateOpen
}

// Connect dials the backend for the given identity. It is a no-op while a
// connection is open or being established. An origin that cannot be turned
// into an endpoint moves the manager straight to Closed and returns the
// error without emitting events. A dial failure emits TransportError then
// Closed and returns the error.
func (m *Manager) Connect(ctx context.Context, id domain.ClientIdentity) error {
	m.mu.Lock()
	if st := m.state; st == StateOpen || st == StateConnecting {
		m.mu.Unlock()
		m.log.Debug().Str("state", st.String()).Msg("connect ignored")
		return nil
	}
	endpoint, err := Endpoint(m.opts.Origin, id)
	if err != nil {
		m.state = StateClosed
		m.mu.Unlock()
		m.log.Error().Err(err).Str("origin", m.opts.Origin).Msg("cannot build endpoint")
		return fmt.Errorf("building endpoint: %w", err)
	}
	m.state = StateConnecting
	m.abort = false
	m.mu.Unlock()

	m.log.Info().Str("endpoint", endpoint).Msg("connecting")

	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())
	socket, _, err := m.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		m.mu.Lock()
		m.state = StateClosed
		m.mu.Unlock()
		m.log.Error().Err(err).Str("endpoint", endpoint).Msg("dial failed")
		m.emit(TransportError{Err: err}, nil)
		m.emit(Closed{Code: websocket.CloseAbnormalClosure, Kind: CloseDisconnect}, nil)
		return fmt.Errorf("dialing %s: %w", endpoint, err)
	}

	l := &link{socket: socket, stop: make(chan struct{})}

	m.mu.Lock()
	if m.abort {
		m.state = StateClosed
		m.mu.Unlock()
		_ = socket.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, clientCloseReason),
			time.Now().Add(writeWait))
		socket.Close()
		m.emit(Closed{Code: websocket.CloseNormalClosure, Reason: clientCloseReason, Kind: CloseDisconnect}, nil)
		return nil
	}
	m.state = StateOpen
	m.cur = l
	m.mu.Unlock()

	m.log.Info().Str("endpoint", endpoint).Msg("connected")
	m.emit(Opened{}, l.stop)
	go m.readPump(l)
	return nil
}

// Send writes a frame. Sending while not open is a caller error: it is
// logged and ErrNotOpen is returned.
func (m *Manager) Send(frame protocol.Frame) error {
	m.mu.Lock()
	l := m.cur
	open := m.state == StateOpen && l != nil
	m.mu.Unlock()

	if !open {
		m.log.Warn().Str("type", frame.Type).Msg("send while not open; frame dropped")
		return ErrNotOpen
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	_ = l.socket.SetWriteDeadline(time.Now().Add(writeWait))
	if err := l.socket.WriteJSON(frame); err != nil {
		return fmt.Errorf("writing %s frame: %w", frame.Type, err)
	}
	m.log.Debug().Str("type", frame.Type).Msg("frame sent")
	return nil
}

// Close starts a normal client-side closure. The Closed event follows
// once the backend acknowledges or the grace period ends.
func (m *Manager) Close() error {
	m.mu.Lock()
	switch m.state {
	case StateConnecting:
		m.abort = true
		m.mu.Unlock()
		return nil
	case StateOpen:
	default:
		m.mu.Unlock()
		return nil
	}
	l := m.cur
	m.state = StateClosed
	m.cur = nil
	m.mu.Unlock()

	l.closing.Store(true)
	l.shutdown()
	m.log.Info().Msg("closing connection")

	err := l.socket.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, clientCloseReason),
		time.Now().Add(writeWait))
	if err != nil {
		// The pump unblocks on the closed socket and reports the close.
		l.socket.Close()
		return fmt.Errorf("sending close frame: %w", err)
	}
	_ = l.socket.SetReadDeadline(time.Now().Add(closeGrace))
	return nil
}

func (m *Manager) readPump(l *link) {
	defer l.shutdown()
	for {
		_, data, err := l.socket.ReadMessage()
		if err != nil {
			m.finish(l, err)
			return
		}
		m.emit(FrameReceived{Raw: data}, l.stop)
	}
}

// finish records the end of a link and emits its Closed event.
func (m *Manager) finish(l *link, err error) {
	l.socket.Close()

	m.mu.Lock()
	if m.cur == l {
		m.state = StateClosed
		m.cur = nil
	}
	m.mu.Unlock()

	code, reason := websocket.CloseAbnormalClosure, ""
	var ce *websocket.CloseError
	switch {
	case l.closing.Load():
		code, reason = websocket.CloseNormalClosure, clientCloseReason
		if errors.As(err, &ce) && ce.Code != websocket.CloseAbnormalClosure {
			code, reason = ce.Code, ce.Text
		}
	case errors.As(err, &ce) && ce.Code != websocket.CloseAbnormalClosure:
		code, reason = ce.Code, ce.Text
	default:
		// Dropped without a close frame.
		m.log.Warn().Err(err).Msg("read error")
		m.emit(TransportError{Err: err}, l.stop)
	}

	kind := ClassifyClose(code, reason)
	ev := m.log.Info()
	if kind != CloseDisconnect {
		ev = m.log.Warn()
	}
	ev.Int("code", code).Str("reason", reason).Str("kind", kind.String()).Msg("connection closed")
	m.emit(Closed{Code: code, Reason: reason, Kind: kind}, l.stop)
}

// emit delivers an event, blocking while the buffer is full unless stop
// is closed first. A nil stop blocks until the event is delivered.
func (m *Manager) emit(ev Event, stop <-chan struct{}) {
	select {
	case m.events <- ev:
		return
	default:
	}
	select {
	case m.events <- ev:
	case <-stop:
		m.log.Debug().Msgf("dropping %T after close", ev)
	}
}
