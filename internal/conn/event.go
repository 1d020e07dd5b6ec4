package conn

import (
	"fmt"

	"github.com/soyeahso/agentchat/internal/protocol"
)

// State is the lifecycle position of a Manager.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Event is a transport occurrence delivered to the single consumer loop.
// It is one of Opened, FrameReceived, TransportError or Closed.
type Event interface {
	isEvent()
}

// Opened is emitted once the socket handshake completes.
type Opened struct{}

// FrameReceived carries one raw inbound message, undecoded.
type FrameReceived struct {
	Raw []byte
}

// TransportError reports a failure below the protocol layer. It is always
// followed by a Closed event.
type TransportError struct {
	Err error
}

// Closed ends a connection. Kind classifies the close for user messaging.
type Closed struct {
	Code   int
	Reason string
	Kind   CloseKind
}

func (Opened) isEvent()         {}
func (FrameReceived) isEvent()  {}
func (TransportError) isEvent() {}
func (Closed) isEvent()         {}

// CloseKind distinguishes closes that need a specific explanation.
type CloseKind int

const (
	// CloseDisconnect is any close without special meaning.
	CloseDisconnect CloseKind = iota
	// CloseConflict means another session is already active for this identity.
	CloseConflict
	// CloseServerFailure means the backend failed while setting up the session.
	CloseServerFailure
)

func (k CloseKind) String() string {
	switch k {
	case CloseConflict:
		return "conflict"
	case CloseServerFailure:
		return "server_failure"
	default:
		return "disconnect"
	}
}

// ClassifyClose maps a close code and reason to a CloseKind.
func ClassifyClose(code int, reason string) CloseKind {
	switch {
	case code == protocol.CloseCodeSessionConflict && reason == protocol.CloseReasonSessionActive:
		return CloseConflict
	case code == protocol.CloseCodeServerFailure:
		return CloseServerFailure
	default:
		return CloseDisconnect
	}
}
