//go:build linux

package sink

import (
	"testing"

	"github.com/gyromouse/gyromouse/internal/keymap"

	evdev "github.com/holoplot/go-evdev"
	"github.com/stretchr/testify/assert"
)

func TestEvdevCode(t *testing.T) {
	tests := []struct {
		key  keymap.Key
		want evdev.EvCode
		ok   bool
	}{
		{key: keymap.KeyUp, want: evdev.KEY_UP, ok: true},
		{key: keymap.KeyEscape, want: evdev.KEY_ESC, ok: true},
		{key: keymap.Char('w'), want: evdev.KEY_W, ok: true},
		{key: keymap.Char('7'), want: evdev.KEY_7, ok: true},
		{key: keymap.Char('.'), want: evdev.KEY_DOT, ok: true},
		{key: keymap.Char('é')},
		{key: keymap.Key("hyper")},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got, ok := evdevCode(tt.key)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestKeyCapabilitiesIncludeEmulatedKeys(t *testing.T) {
	caps := keyCapabilities()
	for _, k := range []keymap.Key{keymap.Char('w'), keymap.Char('a'), keymap.Char('s'), keymap.Char('d'), keymap.KeyEnter} {
		c, ok := evdevCode(k)
		assert.True(t, ok)
		assert.Contains(t, caps, c)
	}
	assert.Contains(t, caps, evdev.EvCode(evdev.BTN_LEFT))
	assert.Contains(t, caps, evdev.EvCode(evdev.BTN_RIGHT))
}
