// Package client ties the connection manager, the identity store and the
// session components together. A Client processes transport events and
// dispatcher calls on one goroutine; nothing else mutates session state.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/soyeahso/agentchat/internal/conn"
	"github.com/soyeahso/agentchat/internal/domain"
	"github.com/soyeahso/agentchat/internal/hooks"
	"github.com/soyeahso/agentchat/internal/identity"
	"github.com/soyeahso/agentchat/internal/logging"
	"github.com/soyeahso/agentchat/internal/protocol"
	"github.com/soyeahso/agentchat/internal/session"
)

// ErrClosed is returned by Run and Pump once the connection has closed.
var ErrClosed = errors.New("connection closed")

// Transport is the connection surface the client drives. *conn.Manager
// implements it.
type Transport interface {
	Connect(ctx context.Context, id domain.ClientIdentity) error
	Events() <-chan conn.Event
	IsOpen() bool
	Send(frame protocol.Frame) error
	Close() error
}

// Options configure a Client. Zero values are usable.
type Options struct {
	Effects session.Effects  // defaults to session.NopEffects
	After   session.Deferrer // defaults to session.Immediate
	Hooks   *hooks.Manager   // optional observer bus

	// OnFrame, when set, sees every inbound frame after it was routed.
	// typ is "" for frames that could not be parsed.
	OnFrame func(typ string, raw []byte)
}

// Client is the single controller of one connection session.
type Client struct {
	tr     Transport
	ids    *identity.Store
	state  *session.State
	router *session.Router
	disp   *session.Dispatcher
	fx     session.Effects
	hooks  *hooks.Manager
	opts   Options
	log    *logging.Logger

	ready     bool
	closing   bool
	lastClose *conn.Closed
}

// New creates a client over tr. Nothing is dialed until Connect.
func New(tr Transport, ids *identity.Store, opts Options, log *logging.Logger) *Client {
	if opts.Effects == nil {
		opts.Effects = session.NopEffects{}
	}
	if opts.After == nil {
		opts.After = session.Immediate{}
	}
	state := session.NewState()
	return &Client{
		tr:     tr,
		ids:    ids,
		state:  state,
		router: session.NewRouter(state, opts.Effects, opts.After, opts.Hooks, log),
		disp:   session.NewDispatcher(state, tr, opts.Effects, opts.After, opts.Hooks, log),
		fx:     opts.Effects,
		hooks:  opts.Hooks,
		opts:   opts,
		log:    log.Sub("client"),
	}
}

// State exposes the session state for reading.
func (c *Client) State() *session.State { return c.state }

// Dispatcher returns the intent dispatcher. It must only be used on the
// goroutine that handles events.
func (c *Client) Dispatcher() *session.Dispatcher { return c.disp }

// Events returns the transport event channel.
func (c *Client) Events() <-chan conn.Event { return c.tr.Events() }

// Ready reports whether initial_state has been applied.
func (c *Client) Ready() bool { return c.ready }

// LastClose returns the most recent close event, if any.
func (c *Client) LastClose() (conn.Closed, bool) {
	if c.lastClose == nil {
		return conn.Closed{}, false
	}
	return *c.lastClose, true
}

// Connect dials the backend under the persisted client identity.
func (c *Client) Connect(ctx context.Context) error {
	id := c.ids.GetOrCreate()
	c.log.Debug().Str("clientId", id.String()).Msg("connecting as client")
	return c.tr.Connect(ctx, id)
}

// Close tears the connection down with a normal closure.
func (c *Client) Close() error {
	c.closing = true
	return c.tr.Close()
}

// HandleEvent applies one transport event. It returns ErrClosed when the
// event ends the connection. No reconnection is attempted.
func (c *Client) HandleEvent(ev conn.Event) error {
	switch ev := ev.(type) {
	case conn.Opened:
		c.log.Info().Msg("connection open")
		c.emit(hooks.EventConnected, nil)

	case conn.FrameReceived:
		typ := c.router.Route(ev.Raw)
		if typ == protocol.TypeInitialState {
			c.ready = true
		}
		if c.opts.OnFrame != nil {
			c.opts.OnFrame(typ, ev.Raw)
		}

	case conn.TransportError:
		c.log.Warn().Err(ev.Err).Msg("transport error")
		if !c.closing {
			c.fx.Notify(session.Notice{
				Kind: session.NoticeTransportError,
				Text: fmt.Sprintf("Connection error: %v", ev.Err),
			})
		}

	case conn.Closed:
		c.closed(ev)
		return ErrClosed

	default:
		c.log.Warn().Msgf("unexpected event %T", ev)
	}
	return nil
}

func (c *Client) closed(ev conn.Closed) {
	c.lastClose = &ev
	data := map[string]any{"code": ev.Code, "reason": ev.Reason, "kind": ev.Kind.String()}

	switch ev.Kind {
	case conn.CloseConflict:
		c.log.Warn().Msg("session already active in another client")
		c.fx.Notify(session.Notice{Kind: session.NoticeSessionConflict, Text: session.TextSessionConflict})
		c.emit(hooks.EventSessionConflict, data)
	case conn.CloseServerFailure:
		c.log.Error().Str("reason", ev.Reason).Msg("server failed to set up the session")
		c.fx.Notify(session.Notice{Kind: session.NoticeServerFailure, Text: session.TextServerFailure})
		c.emit(hooks.EventServerFailure, data)
	default:
		if !c.closing {
			c.fx.Notify(session.Notice{Kind: session.NoticeDisconnected, Text: session.TextDisconnected})
		}
	}
	c.emit(hooks.EventDisconnected, data)
}

// Run processes transport events until ctx ends or the connection
// closes. It must be the only goroutine touching the session.
func (c *Client) Run(ctx context.Context) error {
	return c.Pump(ctx, nil)
}

// Pump processes transport events until done reports true, ctx ends, or
// the connection closes. done is checked before every wait.
func (c *Client) Pump(ctx context.Context, done func() bool) error {
	events := c.tr.Events()
	for {
		if done != nil && done() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if err := c.HandleEvent(ev); err != nil {
				return err
			}
		}
	}
}

func (c *Client) emit(event string, data map[string]any) {
	if c.hooks == nil {
		return
	}
	c.hooks.Emit(context.Background(), event, data)
}
