package sink_test

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gyromouse/gyromouse/internal/keymap"
	"github.com/gyromouse/gyromouse/internal/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeViiper implements just enough of the VIIPER management API.
type fakeViiper struct {
	ln      net.Listener
	mu      sync.Mutex
	buses   []uint32
	nextDev int
	devType map[string]string
	streams map[string][]byte
	reqs    []string
}

func newFakeViiper(t *testing.T, buses ...uint32) *fakeViiper {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	f := &fakeViiper{ln: ln, buses: buses, devType: map[string]string{}, streams: map[string][]byte{}}
	go f.serve()
	t.Cleanup(func() { _ = ln.Close() })
	return f
}

func (f *fakeViiper) addr() string { return f.ln.Addr().String() }

func (f *fakeViiper) serve() {
	for {
		c, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.handle(c)
	}
}

func (f *fakeViiper) handle(c net.Conn) {
	defer c.Close()
	r := bufio.NewReader(c)
	req, err := r.ReadString('\x00')
	if err != nil {
		return
	}
	req = strings.TrimSuffix(req, "\x00")
	path, payload, _ := strings.Cut(req, " ")

	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()

	switch {
	case path == "bus/list":
		f.mu.Lock()
		b := fmt.Sprintf(`{"buses":[%s]}`, joinBuses(f.buses))
		f.mu.Unlock()
		fmt.Fprintln(c, b)
	case path == "bus/create":
		f.mu.Lock()
		f.buses = append(f.buses, 1)
		f.mu.Unlock()
		fmt.Fprintf(c, `{"busId":%s}`+"\n", payload)
	case path == "bus/remove":
		fmt.Fprintf(c, `{"busId":%s}`+"\n", payload)
	case strings.HasSuffix(path, "/add"):
		bus := strings.Split(path, "/")[1]
		typ := "keyboard"
		if strings.Contains(payload, "mouse") {
			typ = "mouse"
		}
		f.mu.Lock()
		f.nextDev++
		id := fmt.Sprintf("%d", f.nextDev)
		f.devType[bus+"/"+id] = typ
		f.mu.Unlock()
		fmt.Fprintf(c, `{"busId":%s,"devId":"%s","vid":"0x0","pid":"0x0","type":"%s"}`+"\n", bus, id, typ)
	case strings.HasSuffix(path, "/remove"):
		bus := strings.Split(path, "/")[1]
		fmt.Fprintf(c, `{"busId":%s,"devId":"%s"}`+"\n", bus, payload)
	default:
		// device stream: bus/<bus>/<dev>
		parts := strings.Split(path, "/")
		if len(parts) != 3 {
			return
		}
		f.mu.Lock()
		typ := f.devType[parts[1]+"/"+parts[2]]
		f.mu.Unlock()
		buf := make([]byte, 256)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				f.mu.Lock()
				f.streams[typ] = append(f.streams[typ], buf[:n]...)
				f.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}
}

func (f *fakeViiper) stream(typ string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.streams[typ]...)
}

func (f *fakeViiper) requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.reqs...)
}

func joinBuses(b []uint32) string {
	s := make([]string, len(b))
	for i, v := range b {
		s[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(s, ",")
}

func TestViiperSinkStreamsReports(t *testing.T) {
	f := newFakeViiper(t, 4, 2)
	s, err := sink.NewViiper(sink.ViiperConfig{Addr: f.addr(), Timeout: time.Second}, slog.Default())
	require.NoError(t, err)

	require.NoError(t, s.Press(keymap.Char('w')))
	require.NoError(t, s.Press(keymap.KeyUp))
	require.NoError(t, s.Release(keymap.Char('w')))
	require.NoError(t, s.Move(3, -1))
	require.NoError(t, s.Click(sink.ButtonLeft))
	assert.Error(t, s.Press(keymap.Key("hyper")))

	wantKeyboard := []byte{
		0, 1, 0x1A,
		0, 2, 0x1A, 0x52,
		0, 1, 0x52,
	}
	wantMouse := []byte{
		0, 3, 0, 0xFF, 0xFF, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0,
		1, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
	assert.Eventually(t, func() bool {
		return string(f.stream("keyboard")) == string(wantKeyboard) && string(f.stream("mouse")) == string(wantMouse)
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, s.Close())
	reqs := f.requests()
	assert.Contains(t, reqs, "bus/2/add {\"type\":\"keyboard\"}")
	assert.Contains(t, reqs, "bus/2/remove 1")
	assert.Contains(t, reqs, "bus/2/remove 2")
	assert.NotContains(t, reqs, "bus/remove 2")
}

func TestViiperSinkCreatesAndRemovesBus(t *testing.T) {
	f := newFakeViiper(t)
	s, err := sink.NewViiper(sink.ViiperConfig{Addr: f.addr(), Timeout: time.Second}, slog.Default())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reqs := f.requests()
	assert.Contains(t, reqs, "bus/create 1")
	assert.Contains(t, reqs, "bus/remove 1")
}

func TestViiperSinkUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	_ = ln.Close()

	_, err = sink.NewViiper(sink.ViiperConfig{Addr: addr, Timeout: 200 * time.Millisecond}, slog.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list buses")
}
