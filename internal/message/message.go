// Package message defines the decoded input events sent by the handheld and
// the decoders for both wire formats.
package message

// Kind discriminates the message variants.
type Kind string

const (
	KindButton        Kind = "button"
	KindAnalog        Kind = "analog"
	KindPointerMotion Kind = "mouse_motion"
	KindPointerClick  Kind = "mouse_click"
	KindPointerScroll Kind = "mouse_scroll"
	KindRawKey        Kind = "keyboard"
	KindHandshake     Kind = "handshake"
)

// Message is implemented by every decoded event.
type Message interface {
	Kind() Kind
}

// Action is the edge carried by a button event.
type Action int

const (
	ActionUnknown Action = iota
	ActionPress
	ActionRelease
)

func (a Action) String() string {
	switch a {
	case ActionPress:
		return "PRESS"
	case ActionRelease:
		return "RELEASE"
	default:
		return "UNKNOWN"
	}
}

// Source identifies the analog input that produced an AnalogEvent.
type Source int

const (
	SourceUnknown Source = iota
	SourceLeftStick
	SourceRightStick
	SourceTilt
)

func (s Source) String() string {
	switch s {
	case SourceLeftStick:
		return "left_stick"
	case SourceRightStick:
		return "right_stick"
	case SourceTilt:
		return "tilt"
	default:
		return "unknown"
	}
}

// PointerButton is the button named by a click.
type PointerButton int

const (
	PointerUnknown PointerButton = iota
	PointerLeft
	PointerRight
)

func (b PointerButton) String() string {
	switch b {
	case PointerLeft:
		return "L"
	case PointerRight:
		return "R"
	default:
		return "unknown"
	}
}

// ButtonEvent is a discrete button edge.
type ButtonEvent struct {
	Key    string
	Action Action
	// Group is the on-screen button group (dpad, action, shoulder, system).
	Group string
	// RawAction keeps the wire value for diagnostics when Action is unknown.
	RawAction string
}

// AnalogEvent is a two-axis analog sample. X and Y are nominally in [-1, 1].
type AnalogEvent struct {
	Source    Source
	X, Y      float64
	RawSource string
}

// PointerMotion is a relative pointer delta before sensitivity scaling.
type PointerMotion struct {
	DX, DY float64
}

// PointerClick is a single click of a pointer button.
type PointerClick struct {
	Button    PointerButton
	RawButton string
}

// PointerScroll is a vertical scroll by Amount notches.
type PointerScroll struct {
	Amount int
}

// RawKeyTap is a press-and-release of a named or literal key.
type RawKeyTap struct {
	Key string
}

// Handshake asks the receiver to acknowledge the sender.
type Handshake struct{}

func (ButtonEvent) Kind() Kind   { return KindButton }
func (AnalogEvent) Kind() Kind   { return KindAnalog }
func (PointerMotion) Kind() Kind { return KindPointerMotion }
func (PointerClick) Kind() Kind  { return KindPointerClick }
func (PointerScroll) Kind() Kind { return KindPointerScroll }
func (RawKeyTap) Kind() Kind     { return KindRawKey }
func (Handshake) Kind() Kind     { return KindHandshake }
