package motion

import (
	"context"
	"log/slog"
	"math"
	"time"
)

// Defaults for Config.
const (
	DefaultInterval    = 16 * time.Millisecond
	DefaultSensitivity = 2.0
)

// Mover receives relative pointer motion.
type Mover interface {
	Move(dx, dy int) error
}

// Config zero values select the defaults.
type Config struct {
	Interval    time.Duration
	Sensitivity float64
}

// Loop turns velocity into pointer motion once per interval.
type Loop struct {
	cfg      Config
	velocity *Velocity
	mover    Mover
	logger   *slog.Logger

	// fractional pixels not yet emitted
	remX, remY float64
}

func NewLoop(cfg Config, velocity *Velocity, mover Mover, logger *slog.Logger) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Sensitivity == 0 {
		cfg.Sensitivity = DefaultSensitivity
	}
	return &Loop{cfg: cfg, velocity: velocity, mover: mover, logger: logger}
}

// Tick performs one step and reports whether a move was emitted. A velocity
// of zero emits nothing and drops any remainder.
func (l *Loop) Tick() bool {
	vx, vy := l.velocity.Load()
	if vx == 0 && vy == 0 {
		l.remX, l.remY = 0, 0
		return false
	}

	fx := vx*l.cfg.Sensitivity + l.remX
	fy := vy*l.cfg.Sensitivity + l.remY
	dx, dy := math.Trunc(fx), math.Trunc(fy)
	l.remX, l.remY = fx-dx, fy-dy
	if dx == 0 && dy == 0 {
		return false
	}

	if err := l.mover.Move(int(dx), int(dy)); err != nil {
		l.logger.Warn("pointer move failed", "dx", int(dx), "dy", int(dy), "error", err)
		return false
	}
	return true
}

// Run ticks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.Interval)
	defer ticker.Stop()
	l.logger.Debug("Motion loop started", "interval", l.cfg.Interval, "sensitivity", l.cfg.Sensitivity)
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("Motion loop stopped")
			return nil
		case <-ticker.C:
			l.Tick()
		}
	}
}
