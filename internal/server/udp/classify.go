package udp

import (
	"errors"
	"net"

	"github.com/gyromouse/gyromouse/internal/engine"
	"github.com/gyromouse/gyromouse/internal/keymap"
	"github.com/gyromouse/gyromouse/internal/message"
)

// Class groups dispatch errors by how the loop reacts to them.
type Class string

const (
	ClassNone      Class = ""
	ClassDecode    Class = "decode"
	ClassUnknown   Class = "unknown"
	ClassSink      Class = "sink"
	ClassTransport Class = "transport"
	ClassOther     Class = "other"
)

// Classify returns the class of err.
func Classify(err error) Class {
	var sinkErr *engine.SinkError
	var netErr net.Error
	switch {
	case err == nil:
		return ClassNone
	case errors.Is(err, message.ErrDecode):
		return ClassDecode
	case errors.Is(err, keymap.ErrUnknownKey),
		errors.Is(err, engine.ErrUnknownAction),
		errors.Is(err, engine.ErrUnsupported):
		return ClassUnknown
	case errors.As(err, &sinkErr):
		return ClassSink
	case errors.As(err, &netErr), errors.Is(err, net.ErrClosed):
		return ClassTransport
	default:
		return ClassOther
	}
}
