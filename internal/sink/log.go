package sink

import (
	"log/slog"

	"github.com/gyromouse/gyromouse/internal/keymap"
)

// LogSink performs no synthesis and logs every action instead.
type LogSink struct {
	logger *slog.Logger
}

// NewLog creates a dry-run sink.
func NewLog(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("sink", "log")}
}

func (l *LogSink) Press(k keymap.Key) error {
	l.logger.Info("key press", "key", k)
	return nil
}

func (l *LogSink) Release(k keymap.Key) error {
	l.logger.Info("key release", "key", k)
	return nil
}

func (l *LogSink) Move(dx, dy int) error {
	l.logger.Debug("pointer move", "dx", dx, "dy", dy)
	return nil
}

func (l *LogSink) Click(b Button) error {
	l.logger.Info("pointer click", "button", b)
	return nil
}

func (l *LogSink) Scroll(dx, dy int) error {
	l.logger.Info("pointer scroll", "dx", dx, "dy", dy)
	return nil
}

func (l *LogSink) Close() error { return nil }
