// Package probe accepts TCP connections and closes them at once so the
// handheld can check that the receiver is reachable.
package probe

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

const acceptRetryDelay = 50 * time.Millisecond

type Server struct {
	addr   string
	logger *slog.Logger

	mu        sync.Mutex
	ln        net.Listener
	closed    bool
	ready     chan struct{}
	readyOnce sync.Once
}

func New(addr string, logger *slog.Logger) *Server {
	return &Server{addr: addr, logger: logger, ready: make(chan struct{})}
}

// ListenAndServe accepts connections until Close.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen tcp %s: %w", s.addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Close. Accept errors other than a
// closed listener are logged and retried after a short delay.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = ln.Close()
		return nil
	}
	s.ln = ln
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
	s.logger.Info("Liveness probe listening", "addr", ln.Addr())

	for {
		c, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.logger.Info("Liveness probe stopped")
				return nil
			}
			s.logger.Warn("Accept error", "error", err)
			time.Sleep(acceptRetryDelay)
			continue
		}
		s.logger.Debug("Connection check", "remote", c.RemoteAddr())
		_ = c.Close()
	}
}

func (s *Server) Ready() <-chan struct{} { return s.ready }

func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.ln != nil {
		return s.ln.Close()
	}
	return nil
}
