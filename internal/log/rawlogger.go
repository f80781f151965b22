package log

import (
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// RawLogger records every datagram exchanged with the handheld.
type RawLogger interface {
	Log(in bool, peer net.Addr, data []byte)
}

type rawLogger struct {
	w  io.Writer
	mu sync.Mutex
}

// NewRaw returns a RawLogger writing to w. A nil w discards everything.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w}
}

// Log writes one line per datagram: time, direction, peer, size and hex dump.
// in is true for datagrams received from the peer.
func (r *rawLogger) Log(in bool, peer net.Addr, data []byte) {
	if r.w == nil || len(data) == 0 {
		return
	}
	dir := "out"
	if in {
		dir = "in "
	}
	p := "-"
	if peer != nil {
		p = peer.String()
	}
	line := fmt.Sprintf("%s %s %s %d bytes: % x\n",
		time.Now().Format("2006/01/02 15:04:05.000"), dir, p, len(data), data)

	r.mu.Lock()
	_, _ = io.WriteString(r.w, line)
	r.mu.Unlock()
}
