package sink

import (
	"fmt"
	"log/slog"
)

// Backend names accepted by Open.
const (
	BackendLog    = "log"
	BackendEvdev  = "evdev"
	BackendViiper = "viiper"
)

// Options configures the backends that need it.
type Options struct {
	Evdev  EvdevConfig  `embed:"" prefix:"evdev."`
	Viiper ViiperConfig `embed:"" prefix:"viiper."`
}

// Open creates the sink for the named backend.
func Open(backend string, o Options, logger *slog.Logger) (Sink, error) {
	switch backend {
	case BackendLog:
		return NewLog(logger), nil
	case BackendEvdev:
		s, err := NewEvdev(o.Evdev, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendViiper:
		s, err := NewViiper(o.Viiper, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown sink backend %q", backend)
	}
}
