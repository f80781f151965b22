package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/gyromouse/gyromouse/internal/message"
)

// Send groups commands that play the handheld's role against a receiver.
type Send struct {
	Stick     SendStick     `cmd:"" help:"Deflect a stick, hold it, then centre it"`
	Handshake SendHandshake `cmd:"" help:"Send a handshake and wait for the acknowledgement"`
	Key       SendKey       `cmd:"" help:"Tap a key (keyboard message)"`
	Button    SendButton    `cmd:"" help:"Press and release a logical button"`
	Raw       SendRaw       `cmd:"" help:"Send a payload verbatim, e.g. short-form M:10,0"`
}

// Target is the receiver a send command talks to.
type Target struct {
	To      string        `help:"Receiver address" default:"127.0.0.1:5005" env:"GYROMOUSE_SEND_TO"`
	Timeout time.Duration `help:"Timeout for the handshake reply" default:"2s"`
}

func (t Target) dial() (net.Conn, error) {
	c, err := net.Dial("udp", t.To)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", t.To, err)
	}
	return c, nil
}

func send(conn net.Conn, logger *slog.Logger, m message.Message) error {
	data, err := message.Encode(m)
	if err != nil {
		return err
	}
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	logger.Info("Sent", "message", string(data))
	return nil
}

type SendStick struct {
	Target `embed:""`

	Source string        `help:"Analog source" enum:"left_stick,right_stick,tilt" default:"right_stick"`
	X      float64       `help:"Horizontal deflection" default:"1"`
	Y      float64       `help:"Vertical deflection" default:"0"`
	Hold   time.Duration `help:"How long to hold before centring" default:"2s"`
}

func (c *SendStick) Run(logger *slog.Logger) error {
	return c.run(context.Background(), logger)
}

func (c *SendStick) run(ctx context.Context, logger *slog.Logger) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	src := sourceByName(c.Source)
	if err := send(conn, logger, message.AnalogEvent{Source: src, X: c.X, Y: c.Y}); err != nil {
		return err
	}
	select {
	case <-time.After(c.Hold):
	case <-ctx.Done():
	}
	return send(conn, logger, message.AnalogEvent{Source: src})
}

func sourceByName(name string) message.Source {
	for _, s := range []message.Source{message.SourceLeftStick, message.SourceRightStick, message.SourceTilt} {
		if s.String() == name {
			return s
		}
	}
	return message.SourceUnknown
}

type SendHandshake struct {
	Target `embed:""`
}

func (c *SendHandshake) Run(logger *slog.Logger) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	start := time.Now()
	if err := send(conn, logger, message.Handshake{}); err != nil {
		return err
	}
	if err := conn.SetReadDeadline(time.Now().Add(c.Timeout)); err != nil {
		return err
	}
	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return fmt.Errorf("no acknowledgement from %s within %s", c.To, c.Timeout)
		}
		return fmt.Errorf("read reply: %w", err)
	}
	if !bytes.Equal(buf[:n], []byte("ACK")) {
		return fmt.Errorf("unexpected reply %q", buf[:n])
	}
	logger.Info("Receiver acknowledged", "addr", c.To, "rtt", time.Since(start))
	return nil
}

type SendKey struct {
	Target `embed:""`

	Name string `arg:"" help:"Logical button name or a single character"`
}

func (c *SendKey) Run(logger *slog.Logger) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()
	return send(conn, logger, message.RawKeyTap{Key: c.Name})
}

type SendButton struct {
	Target `embed:""`

	Name string        `arg:"" help:"Logical button name, e.g. CROSS"`
	Hold time.Duration `help:"Time between press and release" default:"100ms"`
}

func (c *SendButton) Run(logger *slog.Logger) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := send(conn, logger, message.ButtonEvent{Key: c.Name, Action: message.ActionPress}); err != nil {
		return err
	}
	time.Sleep(c.Hold)
	return send(conn, logger, message.ButtonEvent{Key: c.Name, Action: message.ActionRelease})
}

type SendRaw struct {
	Target `embed:""`

	Payload string `arg:"" help:"Datagram payload"`
}

func (c *SendRaw) Run(logger *slog.Logger) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()
	if _, err := conn.Write([]byte(c.Payload)); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	logger.Info("Sent", "payload", c.Payload)
	return nil
}
