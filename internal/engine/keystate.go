package engine

import (
	"slices"
	"sync"

	"github.com/gyromouse/gyromouse/internal/keymap"
)

// KeyState is the set of keys currently held by the engine.
type KeyState struct {
	mu   sync.Mutex
	held map[keymap.Key]struct{}
}

func NewKeyState() *KeyState {
	return &KeyState{held: make(map[keymap.Key]struct{})}
}

func (s *KeyState) Held(k keymap.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.held[k]
	return ok
}

func (s *KeyState) add(k keymap.Key) {
	s.mu.Lock()
	s.held[k] = struct{}{}
	s.mu.Unlock()
}

func (s *KeyState) remove(k keymap.Key) {
	s.mu.Lock()
	delete(s.held, k)
	s.mu.Unlock()
}

// Keys returns the held keys in sorted order.
func (s *KeyState) Keys() []keymap.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]keymap.Key, 0, len(s.held))
	for k := range s.held {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (s *KeyState) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.held)
}
