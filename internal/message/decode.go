package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrDecode wraps every malformed-payload failure.
	ErrDecode = errors.New("decode")
	// ErrUnknownType is returned for a structured message whose type is not recognised.
	ErrUnknownType = fmt.Errorf("%w: unknown message type", ErrDecode)
)

// Decode parses one datagram payload. Payloads starting with '{' are decoded
// as JSON, everything else as a short-form record ("M:dx,dy", "S:n", "C:L",
// "K:Name").
func Decode(data []byte) (Message, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: payload is not UTF-8", ErrDecode)
	}
	if data[0] == '{' {
		return DecodeJSON(data)
	}
	return DecodeShort(string(data))
}

type wireMessage struct {
	Type   string      `json:"type"`
	Key    string      `json:"key"`
	Action string      `json:"action"`
	Group  string      `json:"group"`
	Source string      `json:"source"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	DX     float64     `json:"dx"`
	DY     float64     `json:"dy"`
	Amount json.Number `json:"amount"`
}

// DecodeJSON parses the structured wire format. Missing fields keep their zero
// value; unrecognised enum values map to the corresponding Unknown constant.
func DecodeJSON(data []byte) (Message, error) {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	switch Kind(w.Type) {
	case KindButton:
		return ButtonEvent{Key: w.Key, Action: parseAction(w.Action), Group: w.Group, RawAction: w.Action}, nil
	case KindAnalog:
		return AnalogEvent{Source: parseSource(w.Source), X: w.X, Y: w.Y, RawSource: w.Source}, nil
	case KindPointerMotion:
		return PointerMotion{DX: w.DX, DY: w.DY}, nil
	case KindPointerClick:
		return PointerClick{Button: parsePointerButton(w.Action), RawButton: w.Action}, nil
	case KindPointerScroll:
		n, err := parseAmount(w.Amount.String())
		if err != nil {
			return nil, err
		}
		return PointerScroll{Amount: n}, nil
	case KindRawKey:
		return RawKeyTap{Key: w.Key}, nil
	case KindHandshake:
		return Handshake{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
	}
}

// DecodeShort parses the legacy short-form records.
func DecodeShort(s string) (Message, error) {
	tag, body, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("%w: short-form record without tag: %q", ErrDecode, s)
	}

	switch tag {
	case "M":
		xs, ys, ok := strings.Cut(body, ",")
		if !ok {
			return nil, fmt.Errorf("%w: motion record wants dx,dy: %q", ErrDecode, body)
		}
		dx, err := parseFinite(xs)
		if err != nil {
			return nil, err
		}
		dy, err := parseFinite(ys)
		if err != nil {
			return nil, err
		}
		return PointerMotion{DX: dx, DY: dy}, nil
	case "S":
		n, err := strconv.ParseInt(strings.TrimSpace(body), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: scroll amount: %v", ErrDecode, err)
		}
		return PointerScroll{Amount: int(n)}, nil
	case "C":
		return PointerClick{Button: parsePointerButton(body), RawButton: body}, nil
	case "K":
		return RawKeyTap{Key: body}, nil
	default:
		return nil, fmt.Errorf("%w: short-form tag %q", ErrUnknownType, tag)
	}
}

// parseAmount accepts a whole number of scroll notches within int32. An
// absent amount is 0.
func parseAmount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("%w: scroll amount %s is not a whole number of notches", ErrDecode, s)
	}
	return int(f), nil
}

func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: non-finite value %q", ErrDecode, s)
	}
	return f, nil
}

func parseAction(s string) Action {
	switch s {
	case "PRESS":
		return ActionPress
	case "RELEASE":
		return ActionRelease
	default:
		return ActionUnknown
	}
}

func parseSource(s string) Source {
	switch s {
	case "left_stick":
		return SourceLeftStick
	case "right_stick":
		return SourceRightStick
	case "tilt":
		return SourceTilt
	default:
		return SourceUnknown
	}
}

func parsePointerButton(s string) PointerButton {
	switch s {
	case "L":
		return PointerLeft
	case "R":
		return PointerRight
	default:
		return PointerUnknown
	}
}
