package session

import "errors"

// Precondition failures returned by the Dispatcher. No frame is sent when
// one of these is returned.
var (
	ErrNotConnected    = errors.New("not connected")
	ErrEmptyContent    = errors.New("empty message")
	ErrNoAgentSelected = errors.New("no agent selected")
)
