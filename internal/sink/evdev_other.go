//go:build !linux

package sink

import (
	"errors"
	"log/slog"
)

// NewEvdev is only available on Linux.
func NewEvdev(cfg EvdevConfig, logger *slog.Logger) (Sink, error) {
	return nil, errors.New("evdev sink is not supported on this platform")
}
