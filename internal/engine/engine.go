// Package engine translates decoded handheld messages into sink actions.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/gyromouse/gyromouse/internal/keymap"
	"github.com/gyromouse/gyromouse/internal/message"
	"github.com/gyromouse/gyromouse/internal/motion"
	"github.com/gyromouse/gyromouse/internal/sink"
)

const (
	// StickThreshold is the deflection past which a left stick direction holds
	// its key.
	StickThreshold = 0.5
	// RightStickDeadzone applies to each right stick axis independently.
	RightStickDeadzone = 0.1
	// TiltDeadzone applies to the tilt roll axis.
	TiltDeadzone = 0.2

	DefaultPointerSensitivity = 2.0
)

// Keys driven by the left stick and tilt.
var (
	KeyForward    = keymap.Char('w')
	KeyBack       = keymap.Char('s')
	KeySteerLeft  = keymap.Char('a')
	KeySteerRight = keymap.Char('d')
)

type Config struct {
	// PointerSensitivity scales pointer motion. Zero selects the default.
	PointerSensitivity float64
}

// Engine applies messages to a sink. Handle is not safe for concurrent use;
// the velocity is shared with the motion loop.
type Engine struct {
	cfg      Config
	keys     *KeyState
	velocity *motion.Velocity
	sink     sink.Sink
	logger   *slog.Logger
}

func New(cfg Config, keys *KeyState, velocity *motion.Velocity, s sink.Sink, logger *slog.Logger) *Engine {
	if cfg.PointerSensitivity == 0 {
		cfg.PointerSensitivity = DefaultPointerSensitivity
	}
	return &Engine{cfg: cfg, keys: keys, velocity: velocity, sink: s, logger: logger}
}

// Handle routes m to its handler. Handshakes are answered by the transport
// and are a no-op here.
func (e *Engine) Handle(m message.Message) error {
	switch m := m.(type) {
	case message.ButtonEvent:
		return e.HandleButton(m)
	case message.AnalogEvent:
		return e.HandleAnalog(m)
	case message.PointerMotion:
		return e.HandlePointerMotion(m)
	case message.PointerClick:
		return e.HandlePointerClick(m)
	case message.PointerScroll:
		return e.HandlePointerScroll(m)
	case message.RawKeyTap:
		return e.HandleRawKey(m)
	case message.Handshake:
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupported, m)
	}
}

// HandleButton presses the mapped key if it is not already held and always
// releases it on a release edge.
func (e *Engine) HandleButton(b message.ButtonEvent) error {
	k, err := keymap.Resolve(b.Key)
	if err != nil {
		return err
	}
	e.logger.Debug("button", "key", b.Key, "action", b.Action, "group", b.Group)
	switch b.Action {
	case message.ActionPress:
		if e.keys.Held(k) {
			return nil
		}
		return e.press(k)
	case message.ActionRelease:
		return e.release(k)
	default:
		return fmt.Errorf("%w: button action %q", ErrUnknownAction, b.RawAction)
	}
}

func (e *Engine) HandleAnalog(a message.AnalogEvent) error {
	switch a.Source {
	case message.SourceLeftStick:
		return errors.Join(
			e.hold(KeyForward, a.Y < -StickThreshold),
			e.hold(KeyBack, a.Y > StickThreshold),
			e.hold(KeySteerLeft, a.X < -StickThreshold),
			e.hold(KeySteerRight, a.X > StickThreshold),
		)
	case message.SourceRightStick:
		e.velocity.Set(deadzone(a.X, RightStickDeadzone), deadzone(a.Y, RightStickDeadzone))
		return nil
	case message.SourceTilt:
		// Pitch (Y) is not mapped.
		if math.Abs(a.X) <= TiltDeadzone {
			return errors.Join(e.release(KeySteerLeft), e.release(KeySteerRight))
		}
		if a.X < 0 {
			return errors.Join(e.press(KeySteerLeft), e.release(KeySteerRight))
		}
		return errors.Join(e.press(KeySteerRight), e.release(KeySteerLeft))
	default:
		return fmt.Errorf("%w: analog source %q", ErrUnknownAction, a.RawSource)
	}
}

func (e *Engine) HandlePointerMotion(m message.PointerMotion) error {
	dx := int(math.Round(m.DX * e.cfg.PointerSensitivity))
	dy := int(math.Round(m.DY * e.cfg.PointerSensitivity))
	if dx == 0 && dy == 0 {
		return nil
	}
	if err := e.sink.Move(dx, dy); err != nil {
		return &SinkError{Op: "move", Err: err}
	}
	return nil
}

func (e *Engine) HandlePointerClick(c message.PointerClick) error {
	var b sink.Button
	switch c.Button {
	case message.PointerLeft:
		b = sink.ButtonLeft
	case message.PointerRight:
		b = sink.ButtonRight
	default:
		return fmt.Errorf("%w: click %q", ErrUnknownAction, c.RawButton)
	}
	if err := e.sink.Click(b); err != nil {
		return &SinkError{Op: "click", Err: err}
	}
	return nil
}

func (e *Engine) HandlePointerScroll(s message.PointerScroll) error {
	if err := e.sink.Scroll(0, s.Amount); err != nil {
		return &SinkError{Op: "scroll", Err: err}
	}
	return nil
}

// HandleRawKey taps a key. A completed tap leaves KeyState unchanged; a
// failed release keeps the key held.
func (e *Engine) HandleRawKey(r message.RawKeyTap) error {
	k, err := keymap.Resolve(r.Key)
	if err != nil {
		return err
	}
	if err := e.sink.Press(k); err != nil {
		return &SinkError{Op: "press", Key: k, Err: err}
	}
	if err := e.sink.Release(k); err != nil {
		// the key is down on the host until a later release succeeds
		e.keys.add(k)
		return &SinkError{Op: "release", Key: k, Err: err}
	}
	return nil
}

// ReleaseAll releases every held key and stops pointer motion.
func (e *Engine) ReleaseAll() error {
	e.velocity.Reset()
	var errs []error
	for _, k := range e.keys.Keys() {
		errs = append(errs, e.release(k))
	}
	return errors.Join(errs...)
}

func (e *Engine) hold(k keymap.Key, active bool) error {
	if active {
		return e.press(k)
	}
	return e.release(k)
}

func (e *Engine) press(k keymap.Key) error {
	if err := e.sink.Press(k); err != nil {
		return &SinkError{Op: "press", Key: k, Err: err}
	}
	e.keys.add(k)
	return nil
}

func (e *Engine) release(k keymap.Key) error {
	if err := e.sink.Release(k); err != nil {
		return &SinkError{Op: "release", Key: k, Err: err}
	}
	e.keys.remove(k)
	return nil
}

func deadzone(v, dz float64) float64 {
	if math.Abs(v) > dz {
		return v
	}
	return 0
}
