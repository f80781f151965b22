//go:build linux

package sink

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gyromouse/gyromouse/internal/keymap"

	evdev "github.com/holoplot/go-evdev"
	"golang.org/x/sys/unix"
)

// EvdevSink injects events through a uinput virtual device.
type EvdevSink struct {
	dev    *evdev.InputDevice
	logger *slog.Logger
}

var namedCodes = map[keymap.Key]evdev.EvCode{
	keymap.KeyUp:        evdev.KEY_UP,
	keymap.KeyDown:      evdev.KEY_DOWN,
	keymap.KeyLeft:      evdev.KEY_LEFT,
	keymap.KeyRight:     evdev.KEY_RIGHT,
	keymap.KeyEnter:     evdev.KEY_ENTER,
	keymap.KeyEscape:    evdev.KEY_ESC,
	keymap.KeyTab:       evdev.KEY_TAB,
	keymap.KeySpace:     evdev.KEY_SPACE,
	keymap.KeyBackspace: evdev.KEY_BACKSPACE,
}

var punctuation = map[rune]string{
	' ':  "SPACE",
	'-':  "MINUS",
	'=':  "EQUAL",
	'[':  "LEFTBRACE",
	']':  "RIGHTBRACE",
	'\\': "BACKSLASH",
	';':  "SEMICOLON",
	'\'': "APOSTROPHE",
	'`':  "GRAVE",
	',':  "COMMA",
	'.':  "DOT",
	'/':  "SLASH",
}

// evdevCode returns the KEY_* code for k.
func evdevCode(k keymap.Key) (evdev.EvCode, bool) {
	if c, ok := namedCodes[k]; ok {
		return c, true
	}
	r, ok := k.Rune()
	if !ok {
		return 0, false
	}
	name, ok := punctuation[r]
	if !ok {
		name = strings.ToUpper(string(r))
	}
	c, ok := evdev.KEYFromString["KEY_"+name]
	return c, ok
}

func keyCapabilities() []evdev.EvCode {
	codes := make([]evdev.EvCode, 0, 64)
	for _, c := range namedCodes {
		codes = append(codes, c)
	}
	for r := 'a'; r <= 'z'; r++ {
		if c, ok := evdevCode(keymap.Char(r)); ok {
			codes = append(codes, c)
		}
	}
	for r := '0'; r <= '9'; r++ {
		if c, ok := evdevCode(keymap.Char(r)); ok {
			codes = append(codes, c)
		}
	}
	for r := range punctuation {
		if c, ok := evdevCode(keymap.Char(r)); ok {
			codes = append(codes, c)
		}
	}
	return append(codes, evdev.BTN_LEFT, evdev.BTN_RIGHT)
}

// NewEvdev creates the uinput device. The process needs write access to the
// uinput node (root or the "input" group on most distributions).
func NewEvdev(cfg EvdevConfig, logger *slog.Logger) (*EvdevSink, error) {
	if cfg.Uinput == "" {
		cfg.Uinput = "/dev/uinput"
	}
	if err := unix.Access(cfg.Uinput, unix.W_OK); err != nil {
		return nil, fmt.Errorf("uinput %s not writable: %w", cfg.Uinput, err)
	}

	id := evdev.InputID{
		BusType: uint16(evdev.BUS_VIRTUAL),
		Vendor:  cfg.Vendor,
		Product: cfg.Product,
		Version: 1,
	}
	capabilities := map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: keyCapabilities(),
		evdev.EV_REL: {evdev.REL_X, evdev.REL_Y, evdev.REL_WHEEL, evdev.REL_HWHEEL},
	}
	dev, err := evdev.CreateDevice(cfg.Name, id, capabilities)
	if err != nil {
		return nil, fmt.Errorf("create uinput device: %w", err)
	}
	logger.Info("Created uinput device", "name", cfg.Name)
	return &EvdevSink{dev: dev, logger: logger.With("sink", "evdev")}, nil
}

func (e *EvdevSink) write(events ...evdev.InputEvent) error {
	events = append(events, evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT})
	for i := range events {
		if err := e.dev.WriteOne(&events[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *EvdevSink) key(k keymap.Key, value int32) error {
	code, ok := evdevCode(k)
	if !ok {
		return fmt.Errorf("evdev: no key code for %q", k)
	}
	return e.write(evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: value})
}

func (e *EvdevSink) Press(k keymap.Key) error   { return e.key(k, 1) }
func (e *EvdevSink) Release(k keymap.Key) error { return e.key(k, 0) }

func (e *EvdevSink) Move(dx, dy int) error {
	var events []evdev.InputEvent
	if dx != 0 {
		events = append(events, evdev.InputEvent{Type: evdev.EV_REL, Code: evdev.REL_X, Value: int32(dx)})
	}
	if dy != 0 {
		events = append(events, evdev.InputEvent{Type: evdev.EV_REL, Code: evdev.REL_Y, Value: int32(dy)})
	}
	if len(events) == 0 {
		return nil
	}
	return e.write(events...)
}

func (e *EvdevSink) Click(b Button) error {
	var code evdev.EvCode
	switch b {
	case ButtonLeft:
		code = evdev.BTN_LEFT
	case ButtonRight:
		code = evdev.BTN_RIGHT
	default:
		return fmt.Errorf("evdev: unsupported button %v", b)
	}
	if err := e.write(evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: 1}); err != nil {
		return err
	}
	return e.write(evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: 0})
}

// Scroll takes wheel notches; positive dy scrolls up like the X11 wheel.
func (e *EvdevSink) Scroll(dx, dy int) error {
	var events []evdev.InputEvent
	if dy != 0 {
		events = append(events, evdev.InputEvent{Type: evdev.EV_REL, Code: evdev.REL_WHEEL, Value: int32(dy)})
	}
	if dx != 0 {
		events = append(events, evdev.InputEvent{Type: evdev.EV_REL, Code: evdev.REL_HWHEEL, Value: int32(dx)})
	}
	if len(events) == 0 {
		return nil
	}
	return e.write(events...)
}

func (e *EvdevSink) Close() error {
	if e.dev == nil {
		return nil
	}
	err := e.dev.Close()
	e.dev = nil
	if err != nil && !errors.Is(err, unix.EBADF) {
		return err
	}
	return nil
}
