package viiper

import "github.com/gyromouse/gyromouse/internal/keymap"

// KeyboardReport is the state of a VIIPER keyboard device as a 256 bit map of
// pressed HID usage codes.
type KeyboardReport struct {
	Modifiers uint8
	KeyBitmap [32]uint8
}

// Set marks usage as pressed or released.
func (r *KeyboardReport) Set(usage uint8, pressed bool) {
	if pressed {
		r.KeyBitmap[usage/8] |= 1 << (usage % 8)
	} else {
		r.KeyBitmap[usage/8] &^= 1 << (usage % 8)
	}
}

// Pressed reports whether usage is set.
func (r *KeyboardReport) Pressed(usage uint8) bool {
	return r.KeyBitmap[usage/8]&(1<<(usage%8)) != 0
}

// MarshalBinary encodes the stream wire format:
//
//	Byte 0: Modifiers
//	Byte 1: Key count
//	Bytes 2+: HID usage codes of pressed keys
func (r KeyboardReport) MarshalBinary() ([]byte, error) {
	b := make([]byte, 2, 8)
	b[0] = r.Modifiers
	for i := 0; i < 256; i++ {
		if r.Pressed(uint8(i)) {
			b = append(b, uint8(i))
		}
	}
	b[1] = uint8(len(b) - 2)
	return b, nil
}

// Mouse button bits.
const (
	MouseLeft  uint8 = 0x01
	MouseRight uint8 = 0x02
)

// MouseReport is one relative report of a VIIPER mouse device.
type MouseReport struct {
	Buttons uint8
	DX, DY  int16
	Wheel   int16
	Pan     int16
}

// MarshalBinary encodes the 9 byte little-endian stream format.
func (m MouseReport) MarshalBinary() ([]byte, error) {
	return []byte{
		m.Buttons,
		byte(m.DX), byte(m.DX >> 8),
		byte(m.DY), byte(m.DY >> 8),
		byte(m.Wheel), byte(m.Wheel >> 8),
		byte(m.Pan), byte(m.Pan >> 8),
	}, nil
}

// HID usage codes (keyboard/keypad page).
const (
	usageA         = 0x04
	usage1         = 0x1E
	usage0         = 0x27
	usageEnter     = 0x28
	usageEscape    = 0x29
	usageBackspace = 0x2A
	usageTab       = 0x2B
	usageSpace     = 0x2C
	usageRight     = 0x4F
	usageLeft      = 0x50
	usageDown      = 0x51
	usageUp        = 0x52
)

var namedUsages = map[keymap.Key]uint8{
	keymap.KeyUp:        usageUp,
	keymap.KeyDown:      usageDown,
	keymap.KeyLeft:      usageLeft,
	keymap.KeyRight:     usageRight,
	keymap.KeyEnter:     usageEnter,
	keymap.KeyEscape:    usageEscape,
	keymap.KeyTab:       usageTab,
	keymap.KeySpace:     usageSpace,
	keymap.KeyBackspace: usageBackspace,
}

var punctUsages = map[rune]uint8{
	' ':  usageSpace,
	'-':  0x2D,
	'=':  0x2E,
	'[':  0x2F,
	']':  0x30,
	'\\': 0x31,
	';':  0x33,
	'\'': 0x34,
	'`':  0x35,
	',':  0x36,
	'.':  0x37,
	'/':  0x38,
}

// Usage returns the HID usage code for k.
func Usage(k keymap.Key) (uint8, bool) {
	if u, ok := namedUsages[k]; ok {
		return u, true
	}
	r, ok := k.Rune()
	if !ok {
		return 0, false
	}
	switch {
	case r >= 'a' && r <= 'z':
		return usageA + uint8(r-'a'), true
	case r >= 'A' && r <= 'Z':
		return usageA + uint8(r-'A'), true
	case r == '0':
		return usage0, true
	case r >= '1' && r <= '9':
		return usage1 + uint8(r-'1'), true
	}
	u, ok := punctUsages[r]
	return u, ok
}
