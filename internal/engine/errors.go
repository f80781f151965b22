package engine

import (
	"errors"
	"fmt"

	"github.com/gyromouse/gyromouse/internal/keymap"
)

var (
	// ErrUnknownAction is returned for an action, source or button the engine
	// does not handle. No sink call is made.
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnsupported is returned for message types the engine does not route.
	ErrUnsupported = errors.New("unsupported message")
)

// SinkError reports a failed sink call.
type SinkError struct {
	Op  string
	Key keymap.Key
	Err error
}

func (e *SinkError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("sink %s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("sink %s: %v", e.Op, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }
