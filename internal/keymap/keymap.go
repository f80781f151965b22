// Package keymap resolves logical button names sent by the handheld into key
// symbols understood by every action sink.
package keymap

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrUnknownKey is returned when a logical name has no mapping and is not a
// single literal character.
var ErrUnknownKey = errors.New("unknown key")

// Key is an abstract key symbol. Named keys use lower-case identifiers
// ("up", "enter"); literal character keys hold exactly one character.
type Key string

// Named keys understood by all sinks.
const (
	KeyUp        Key = "up"
	KeyDown      Key = "down"
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
	KeyEnter     Key = "enter"
	KeyEscape    Key = "esc"
	KeyTab       Key = "tab"
	KeySpace     Key = "space"
	KeyBackspace Key = "backspace"
)

// Char returns the literal character key for r.
func Char(r rune) Key {
	return Key(string(r))
}

// Rune reports the literal character of k, if k is a character key.
func (k Key) Rune() (rune, bool) {
	if utf8.RuneCountInString(string(k)) != 1 {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(string(k))
	return r, true
}

func (k Key) String() string { return string(k) }

// buttons maps handheld button names to keys.
var buttons = map[string]Key{
	"UP":       KeyUp,
	"DOWN":     KeyDown,
	"LEFT":     KeyLeft,
	"RIGHT":    KeyRight,
	"CROSS":    KeyEnter,  // select / confirm
	"CIRCLE":   KeyEscape, // back / cancel
	"TRIANGLE": Char('m'), // map / menu
	"SQUARE":   Char('r'), // reload / interact
	"START":    KeyEscape, // pause
	"SELECT":   KeyTab,
	"L1":       Char('q'),
	"R1":       Char('e'),
}

// Lookup returns the key mapped to a logical button name.
// Literal characters are not considered; use Resolve for that.
func Lookup(name string) (Key, bool) {
	k, ok := buttons[name]
	return k, ok
}

// Resolve maps name to a key. Mapped button names win; otherwise a
// single-character name is taken as a literal character key. Anything else
// yields ErrUnknownKey.
func Resolve(name string) (Key, error) {
	if k, ok := Lookup(name); ok {
		return k, nil
	}
	if utf8.RuneCountInString(name) == 1 {
		return Key(strings.ToLower(name)), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, name)
}

// Names returns every mapped logical button name.
func Names() []string {
	out := make([]string, 0, len(buttons))
	for n := range buttons {
		out = append(out, n)
	}
	return out
}
