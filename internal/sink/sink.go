// Package sink synthesizes key and pointer actions on the host.
package sink

import (
	"sync"

	"github.com/gyromouse/gyromouse/internal/keymap"
)

// Button is a pointer button.
type Button int

const (
	ButtonLeft Button = iota + 1
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	default:
		return "unknown"
	}
}

// Sink performs key and pointer synthesis. Press and Release must be safe to
// repeat: pressing a held key or releasing a free key is not an error.
type Sink interface {
	Press(k keymap.Key) error
	Release(k keymap.Key) error
	Move(dx, dy int) error
	Click(b Button) error
	Scroll(dx, dy int) error
	Close() error
}

type serialized struct {
	mu sync.Mutex
	s  Sink
}

// Serialize returns a Sink that forwards to s while holding a mutex, so the
// dispatch and motion loops never call s concurrently.
func Serialize(s Sink) Sink {
	if _, ok := s.(*serialized); ok {
		return s
	}
	return &serialized{s: s}
}

func (z *serialized) Press(k keymap.Key) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.s.Press(k)
}

func (z *serialized) Release(k keymap.Key) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.s.Release(k)
}

func (z *serialized) Move(dx, dy int) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.s.Move(dx, dy)
}

func (z *serialized) Click(b Button) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.s.Click(b)
}

func (z *serialized) Scroll(dx, dy int) error {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.s.Scroll(dx, dy)
}

func (z *serialized) Close() error {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.s.Close()
}
