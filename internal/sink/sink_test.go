package sink_test

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/gyromouse/gyromouse/internal/keymap"
	"github.com/gyromouse/gyromouse/internal/sink"
	th "github.com/gyromouse/gyromouse/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exclusiveSink fails the test if two calls overlap.
type exclusiveSink struct {
	*th.RecordingSink
	mu     sync.Mutex
	inside bool
	t      *testing.T
}

func (e *exclusiveSink) enter() func() {
	e.mu.Lock()
	if e.inside {
		e.t.Error("concurrent sink call")
	}
	e.inside = true
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		e.inside = false
		e.mu.Unlock()
	}
}

func (e *exclusiveSink) Move(dx, dy int) error {
	defer e.enter()()
	return e.RecordingSink.Move(dx, dy)
}

func (e *exclusiveSink) Press(k keymap.Key) error {
	defer e.enter()()
	return e.RecordingSink.Press(k)
}

func TestSerializeExcludesConcurrentCalls(t *testing.T) {
	inner := &exclusiveSink{RecordingSink: th.NewRecordingSink(), t: t}
	s := sink.Serialize(inner)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Move(1, 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Press(keymap.Char('w'))
			}
		}()
	}
	wg.Wait()
	assert.Len(t, inner.Calls(), 800)
}

func TestSerializeIsIdempotentAndForwardsErrors(t *testing.T) {
	inner := th.NewRecordingSink()
	s := sink.Serialize(inner)
	assert.Same(t, s, sink.Serialize(s))

	boom := errors.New("denied")
	inner.FailOn(th.OpClick, boom)
	assert.ErrorIs(t, s.Click(sink.ButtonLeft), boom)
	assert.NoError(t, s.Scroll(0, 3))
	assert.NoError(t, s.Release(keymap.KeyUp))
	require.NoError(t, s.Close())
	assert.True(t, inner.Closed)
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := sink.NewLog(logger)

	require.NoError(t, s.Press(keymap.KeyEnter))
	require.NoError(t, s.Release(keymap.KeyEnter))
	require.NoError(t, s.Move(2, -2))
	require.NoError(t, s.Click(sink.ButtonRight))
	require.NoError(t, s.Scroll(0, 1))
	require.NoError(t, s.Close())

	out := buf.String()
	assert.Contains(t, out, "key press")
	assert.Contains(t, out, "key=enter")
	assert.Contains(t, out, "pointer move")
	assert.Contains(t, out, "button=right")
	assert.Contains(t, out, "sink=log")
}

func TestOpen(t *testing.T) {
	s, err := sink.Open(sink.BackendLog, sink.Options{}, slog.Default())
	require.NoError(t, err)
	assert.IsType(t, &sink.LogSink{}, s)

	s, err = sink.Open("robot", sink.Options{}, slog.Default())
	assert.Error(t, err)
	assert.Nil(t, s)
}
