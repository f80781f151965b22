package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gyromouse/gyromouse/internal/engine"
	"github.com/gyromouse/gyromouse/internal/log"
	"github.com/gyromouse/gyromouse/internal/motion"
	"github.com/gyromouse/gyromouse/internal/server/probe"
	"github.com/gyromouse/gyromouse/internal/server/udp"
	"github.com/gyromouse/gyromouse/internal/sink"
)

type Serve struct {
	udp.ServerConfig `embed:""`

	Probe              bool          `help:"Accept TCP connections on the same port as a liveness probe" default:"true" negatable:"" env:"GYROMOUSE_PROBE"`
	Sink               string        `help:"Action sink backend" enum:"log,evdev,viiper" default:"evdev" env:"GYROMOUSE_SINK"`
	PointerSensitivity float64       `help:"Multiplier for pointer motion messages" default:"2" env:"GYROMOUSE_POINTER_SENSITIVITY"`
	StickSensitivity   float64       `help:"Pixels per tick at full right stick deflection" default:"2" env:"GYROMOUSE_STICK_SENSITIVITY"`
	MotionInterval     time.Duration `help:"Period of the pointer motion loop" default:"16ms" env:"GYROMOUSE_MOTION_INTERVAL"`

	sink.Options `embed:""`

	// OnReady is called with the bound datagram address once serving.
	OnReady func(net.Addr) `kong:"-" json:"-"`
}

// Run is called by Kong when the serve command is executed.
func (s *Serve) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.StartServer(ctx, logger, rawLogger)
}

// StartServer serves until ctx is done or a listener fails.
func (s *Serve) StartServer(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	if s.MotionInterval <= 0 {
		return fmt.Errorf("motion interval must be positive, got %s", s.MotionInterval)
	}
	if s.PointerSensitivity <= 0 {
		return fmt.Errorf("pointer sensitivity must be positive, got %v", s.PointerSensitivity)
	}
	if s.StickSensitivity <= 0 {
		return fmt.Errorf("stick sensitivity must be positive, got %v", s.StickSensitivity)
	}

	backend, err := sink.Open(s.Sink, s.Options, logger)
	if err != nil {
		return fmt.Errorf("open %s sink: %w", s.Sink, err)
	}
	out := sink.Serialize(backend)
	logger.Info("Action sink ready", "sink", s.Sink)

	keys := engine.NewKeyState()
	velocity := motion.NewVelocity()
	eng := engine.New(engine.Config{PointerSensitivity: s.PointerSensitivity}, keys, velocity, out, logger)
	loop := motion.NewLoop(motion.Config{Interval: s.MotionInterval, Sensitivity: s.StickSensitivity}, velocity, out, logger)

	defer func() {
		if err := eng.ReleaseAll(); err != nil {
			logger.Warn("Failed to release held keys", "error", err)
		}
		if err := out.Close(); err != nil {
			logger.Warn("Failed to close sink", "error", err)
		}
	}()

	udpSrv := udp.New(s.ServerConfig, eng, logger, rawLogger)
	udpErrCh := make(chan error, 1)
	go func() { udpErrCh <- udpSrv.ListenAndServe() }()
	select {
	case err := <-udpErrCh:
		return err
	case <-udpSrv.Ready():
	}
	defer func() {
		_ = udpSrv.Close()
		if udpErrCh != nil {
			<-udpErrCh
		}
	}()

	var probeErrCh chan error
	if s.Probe {
		probeSrv := probe.New(probeAddr(s.Addr, udpSrv.Addr()), logger)
		probeErrCh = make(chan error, 1)
		go func() { probeErrCh <- probeSrv.ListenAndServe() }()
		select {
		case err := <-probeErrCh:
			return err
		case <-probeSrv.Ready():
		}
		defer probeSrv.Close()
	}

	loopCtx, cancelLoop := context.WithCancel(ctx)
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = loop.Run(loopCtx)
	}()
	defer func() {
		cancelLoop()
		<-loopDone
	}()

	if s.OnReady != nil {
		s.OnReady(udpSrv.Addr())
	}
	logger.Info("gyromouse ready", "addr", udpSrv.Addr(), "probe", s.Probe)

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		return nil
	case err := <-udpErrCh:
		udpErrCh = nil
		return err
	case err := <-probeErrCh:
		if err == nil {
			err = errors.New("liveness probe stopped")
		}
		return err
	}
}

// probeAddr puts the probe on the port the datagram socket actually bound,
// which differs from configured when that asks for port 0.
func probeAddr(configured string, bound net.Addr) string {
	host, _, err := net.SplitHostPort(configured)
	if err != nil {
		return configured
	}
	ua, ok := bound.(*net.UDPAddr)
	if !ok {
		return configured
	}
	return net.JoinHostPort(host, fmt.Sprint(ua.Port))
}
