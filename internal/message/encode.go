package message

import (
	"encoding/json"
	"fmt"
)

// Encode renders m in the structured wire format, as the handheld sends it.
func Encode(m Message) ([]byte, error) {
	out := map[string]any{"type": string(m.Kind())}
	switch v := m.(type) {
	case ButtonEvent:
		out["key"] = v.Key
		out["action"] = v.Action.String()
		if v.Group != "" {
			out["group"] = v.Group
		}
	case AnalogEvent:
		out["source"] = v.Source.String()
		out["x"] = v.X
		out["y"] = v.Y
	case PointerMotion:
		out["dx"] = v.DX
		out["dy"] = v.DY
	case PointerClick:
		out["action"] = v.Button.String()
	case PointerScroll:
		out["amount"] = v.Amount
	case RawKeyTap:
		out["key"] = v.Key
	case Handshake:
	default:
		return nil, fmt.Errorf("encode: unsupported message %T", m)
	}
	return json.Marshal(out)
}
