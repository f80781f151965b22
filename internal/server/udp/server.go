// Package udp runs the dispatch loop: it receives datagrams from the
// handheld, decodes them and hands them to a Handler.
package udp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gyromouse/gyromouse/internal/log"
	"github.com/gyromouse/gyromouse/internal/message"
)

// Ack is the reply to a handshake.
var Ack = []byte("ACK")

const receiveRetryDelay = 50 * time.Millisecond

// Handler consumes decoded messages other than handshakes.
type Handler interface {
	Handle(m message.Message) error
}

type Server struct {
	config    ServerConfig
	handler   Handler
	logger    *slog.Logger
	rawLogger log.RawLogger

	mu        sync.Mutex
	conn      net.PacketConn
	closed    bool
	ready     chan struct{}
	readyOnce sync.Once
}

func New(config ServerConfig, handler Handler, logger *slog.Logger, rawLogger log.RawLogger) *Server {
	if config.ReadBuffer <= 0 {
		config.ReadBuffer = 1024
	}
	if rawLogger == nil {
		rawLogger = log.NewRaw(nil)
	}
	return &Server{
		config:    config,
		handler:   handler,
		logger:    logger,
		rawLogger: rawLogger,
		ready:     make(chan struct{}),
	}
}

// ListenAndServe binds the socket and runs the dispatch loop until Close.
// Only a bind failure is returned; every other error is logged.
func (s *Server) ListenAndServe() error {
	conn, err := net.ListenPacket("udp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listen udp %s: %w", s.config.Addr, err)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return nil
	}
	s.conn = conn
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
	s.logger.Info("Listening for datagrams", "addr", conn.LocalAddr())

	buf := make([]byte, s.config.ReadBuffer)
	for {
		n, peer, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.logger.Info("Datagram listener stopped")
				return nil
			}
			s.logger.Error("Receive failed", "class", ClassTransport, "error", err)
			time.Sleep(receiveRetryDelay)
			continue
		}
		s.dispatch(conn, peer, buf[:n])
	}
}

func (s *Server) dispatch(conn net.PacketConn, peer net.Addr, data []byte) {
	s.rawLogger.Log(true, peer, data)
	logger := s.logger.With("remote", peer.String())

	msg, err := message.Decode(data)
	if err != nil {
		s.report(logger, err)
		return
	}
	logger.Log(context.Background(), log.LevelTrace, "Message", "kind", msg.Kind())

	if _, ok := msg.(message.Handshake); ok {
		logger.Info("Handshake requested")
		if _, err := conn.WriteTo(Ack, peer); err != nil {
			logger.Warn("Failed to send handshake reply", "class", ClassTransport, "error", err)
			return
		}
		s.rawLogger.Log(false, peer, Ack)
		return
	}
	s.report(logger, s.handler.Handle(msg))
}

func (s *Server) report(logger *slog.Logger, err error) {
	switch c := Classify(err); c {
	case ClassNone:
	case ClassDecode, ClassUnknown:
		logger.Warn("Dropped message", "class", c, "error", err)
	default:
		logger.Error("Message failed", "class", c, "error", err)
	}
}

// Ready is closed once the socket is bound.
func (s *Server) Ready() <-chan struct{} { return s.ready }

// Addr returns the bound address, or nil before Ready.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.conn.LocalAddr()
}

// Close interrupts the dispatch loop by closing the socket.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
