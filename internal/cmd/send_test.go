package cmd

import (
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/gyromouse/gyromouse/internal/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// receive collects n datagrams sent to a loopback socket.
func receive(t *testing.T, n int) (string, <-chan []message.Message) {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pc.Close() })

	out := make(chan []message.Message, 1)
	go func() {
		var got []message.Message
		buf := make([]byte, 1024)
		_ = pc.SetReadDeadline(time.Now().Add(2 * time.Second))
		for len(got) < n {
			k, _, err := pc.ReadFrom(buf)
			if err != nil {
				break
			}
			m, err := message.Decode(buf[:k])
			if err != nil {
				break
			}
			got = append(got, m)
		}
		out <- got
	}()
	return pc.LocalAddr().String(), out
}

func TestSendStick(t *testing.T) {
	addr, got := receive(t, 2)
	c := &SendStick{Target: Target{To: addr}, Source: "tilt", X: -0.4, Y: 0.3, Hold: time.Millisecond}
	require.NoError(t, c.Run(slog.Default()))
	assert.Equal(t, []message.Message{
		message.AnalogEvent{Source: message.SourceTilt, X: -0.4, Y: 0.3, RawSource: "tilt"},
		message.AnalogEvent{Source: message.SourceTilt, RawSource: "tilt"},
	}, <-got)
}

func TestSendButton(t *testing.T) {
	addr, got := receive(t, 2)
	c := &SendButton{Target: Target{To: addr}, Name: "CROSS", Hold: time.Millisecond}
	require.NoError(t, c.Run(slog.Default()))
	assert.Equal(t, []message.Message{
		message.ButtonEvent{Key: "CROSS", Action: message.ActionPress, RawAction: "PRESS"},
		message.ButtonEvent{Key: "CROSS", Action: message.ActionRelease, RawAction: "RELEASE"},
	}, <-got)
}

func TestSendKeyAndRaw(t *testing.T) {
	addr, got := receive(t, 2)
	require.NoError(t, (&SendKey{Target: Target{To: addr}, Name: "x"}).Run(slog.Default()))
	require.NoError(t, (&SendRaw{Target: Target{To: addr}, Payload: "S:3"}).Run(slog.Default()))
	assert.Equal(t, []message.Message{
		message.RawKeyTap{Key: "x"},
		message.PointerScroll{Amount: 3},
	}, <-got)
}
