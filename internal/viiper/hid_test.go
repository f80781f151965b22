package viiper_test

import (
	"testing"

	"github.com/gyromouse/gyromouse/internal/keymap"
	"github.com/gyromouse/gyromouse/internal/viiper"
	"github.com/stretchr/testify/assert"
)

func TestKeyboardReportMarshal(t *testing.T) {
	var r viiper.KeyboardReport
	r.Set(0x1A, true) // W
	r.Set(0x04, true) // A
	r.Set(0x07, true) // D
	r.Set(0x07, false)

	b, err := r.MarshalBinary()
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x02, 0x04, 0x1A}, b)
	assert.True(t, r.Pressed(0x1A))
	assert.False(t, r.Pressed(0x07))
}

func TestKeyboardReportEmpty(t *testing.T) {
	b, err := viiper.KeyboardReport{}.MarshalBinary()
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x00}, b)
}

func TestMouseReportMarshal(t *testing.T) {
	b, err := viiper.MouseReport{Buttons: viiper.MouseRight, DX: -2, DY: 300, Wheel: 1}.MarshalBinary()
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0xFE, 0xFF, 0x2C, 0x01, 0x01, 0x00, 0x00, 0x00}, b)
}

func TestUsage(t *testing.T) {
	tests := []struct {
		key  keymap.Key
		want uint8
		ok   bool
	}{
		{key: keymap.KeyUp, want: 0x52, ok: true},
		{key: keymap.KeyEnter, want: 0x28, ok: true},
		{key: keymap.Char('w'), want: 0x1A, ok: true},
		{key: keymap.Char('Q'), want: 0x14, ok: true},
		{key: keymap.Char('1'), want: 0x1E, ok: true},
		{key: keymap.Char('0'), want: 0x27, ok: true},
		{key: keymap.Char('/'), want: 0x38, ok: true},
		{key: keymap.Char('ß')},
		{key: keymap.Key("hyper")},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got, ok := viiper.Usage(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
