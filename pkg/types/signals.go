package types

import json "github.com/goccy/go-json"

// SignalType identifies a connection lifecycle signal.
type SignalType string

// The closed set of signals the connection adapter emits.
const (
	SignalConnected    SignalType = "connected"
	SignalDisconnected SignalType = "disconnected"
	SignalAuthFailed   SignalType = "auth_failed"
	SignalEvent        SignalType = "event"
	SignalError        SignalType = "error"
)

// Signal is one tagged message from the connection adapter to the feed
// engine. Payload is set only for SignalEvent and holds the raw data of
// a new:arb frame (single object or batch array). Err is set only for
// SignalError.
type Signal struct {
	Type    SignalType
	Payload json.RawMessage
	Err     error
}
