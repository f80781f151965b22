// Package motion emits relative pointer motion at a fixed rate from a shared
// velocity.
package motion

import "sync"

// Velocity is the pointer velocity set by the engine and read by the Loop.
// The zero value is ready to use and at rest.
type Velocity struct {
	mu     sync.Mutex
	vx, vy float64
}

func NewVelocity() *Velocity { return &Velocity{} }

// Set stores both components atomically.
func (v *Velocity) Set(x, y float64) {
	v.mu.Lock()
	v.vx, v.vy = x, y
	v.mu.Unlock()
}

// Load returns both components from the same Set.
func (v *Velocity) Load() (x, y float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vx, v.vy
}

func (v *Velocity) Reset() { v.Set(0, 0) }
