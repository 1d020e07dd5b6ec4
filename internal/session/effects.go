package session

import (
	"github.com/soyeahso/agentchat/internal/protocol"
)

// Transport is the part of the connection manager the dispatcher needs.
type Transport interface {
	IsOpen() bool
	Send(frame protocol.Frame) error
}

// NoticeKind classifies a user-visible notice.
type NoticeKind int

const (
	NoticeServerError NoticeKind = iota
	NoticeNotConnected
	NoticeNoAgent
	NoticeSessionConflict
	NoticeServerFailure
	NoticeDisconnected
	NoticeTransportError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeServerError:
		return "server_error"
	case NoticeNotConnected:
		return "not_connected"
	case NoticeNoAgent:
		return "no_agent"
	case NoticeSessionConflict:
		return "session_conflict"
	case NoticeServerFailure:
		return "server_failure"
	case NoticeDisconnected:
		return "disconnected"
	case NoticeTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// Notice is a message the view must show the user.
type Notice struct {
	Kind NoticeKind
	Text string
}

// User-facing notice texts.
const (
	TextUnknownServerError = "An unknown error occurred."
	TextNotConnected       = "Not connected to the server. Please wait or reconnect."
	TextNoAgent            = "Please select an agent before sending a message."
	TextSessionConflict    = "Session Conflict: this chat is already open in another client. Please close the other instance."
	TextServerFailure      = "Server Error: connection closed unexpectedly. Please try reconnecting."
	TextDisconnected       = "Disconnected from the server."
)

// Effects are the view-side effects state changes can request.
type Effects interface {
	FocusInput()
	// ScrollToBottom scrolls the message view. Unforced scrolls only
	// happen when the view is already near the bottom.
	ScrollToBottom(force bool)
	Notify(n Notice)
}

// Deferrer runs layout-dependent work after the view has rendered the
// state change that requested it.
type Deferrer interface {
	AfterRender(fn func())
}

// Immediate runs deferred work at once; used where nothing renders.
type Immediate struct{}

func (Immediate) AfterRender(fn func()) { fn() }

// NopEffects ignores every effect.
type NopEffects struct{}

func (NopEffects) FocusInput() {}
func (NopEffects) ScrollToBottom(bool) {}
func (NopEffects) Notify(Notice) {}
