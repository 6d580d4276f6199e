package types

import (
	"errors"
	"fmt"
)

// ErrMissingIdentity is returned by normalization when a raw payload
// carries none of the identity-bearing fields (no id and no provider
// event id). Such payloads are logged and skipped, never upserted.
var ErrMissingIdentity = errors.New("raw event has no identity-bearing fields")

// DecodeError wraps a payload decoding failure with enough context to
// debug the offending frame without dumping it whole.
type DecodeError struct {
	Event  string // frame event name, if known
	Reason error
}

func (e *DecodeError) Error() string {
	if e.Event != "" {
		return fmt.Sprintf("decode %s frame: %v", e.Event, e.Reason)
	}
	return fmt.Sprintf("decode frame: %v", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Reason
}
