package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/gyromouse/gyromouse/internal/keymap"
	"github.com/gyromouse/gyromouse/internal/viiper"
)

// ViiperConfig selects the VIIPER server that hosts the virtual devices.
type ViiperConfig struct {
	Addr     string        `help:"VIIPER API server address" default:"localhost:3242" env:"GYROMOUSE_VIIPER_ADDR"`
	Password string        `help:"VIIPER API password; empty disables authentication" env:"GYROMOUSE_VIIPER_PASSWORD"`
	Bus      uint32        `help:"Bus to attach devices to; 0 uses the lowest existing bus or creates one" default:"0" env:"GYROMOUSE_VIIPER_BUS"`
	Timeout  time.Duration `help:"Timeout for VIIPER API calls" default:"5s" env:"GYROMOUSE_VIIPER_TIMEOUT"`
}

// ViiperSink drives a virtual keyboard and mouse on a VIIPER server.
type ViiperSink struct {
	client     *viiper.Client
	cfg        ViiperConfig
	busID      uint32
	createdBus bool
	keyboard   *viiper.DeviceStream
	mouse      *viiper.DeviceStream
	keys       viiper.KeyboardReport
	logger     *slog.Logger
}

// NewViiper attaches a keyboard and a mouse to a VIIPER bus.
func NewViiper(cfg ViiperConfig, logger *slog.Logger) (*ViiperSink, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	client := viiper.New(cfg.Addr, &viiper.Config{
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		Password:     cfg.Password,
	})
	v := &ViiperSink{client: client, cfg: cfg, logger: logger.With("sink", "viiper")}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout*4)
	defer cancel()

	if err := v.pickBus(ctx); err != nil {
		return nil, err
	}
	kb, dev, err := client.AddDeviceAndConnect(ctx, v.busID, "keyboard")
	if err != nil {
		v.cleanup(ctx)
		return nil, fmt.Errorf("add keyboard: %w", err)
	}
	v.keyboard = kb
	v.logger.Info("Attached virtual keyboard", "bus", dev.BusID, "dev", dev.DevId)

	ms, dev, err := client.AddDeviceAndConnect(ctx, v.busID, "mouse")
	if err != nil {
		v.cleanup(ctx)
		return nil, fmt.Errorf("add mouse: %w", err)
	}
	v.mouse = ms
	v.logger.Info("Attached virtual mouse", "bus", dev.BusID, "dev", dev.DevId)
	return v, nil
}

func (v *ViiperSink) pickBus(ctx context.Context) error {
	if v.cfg.Bus != 0 {
		v.busID = v.cfg.Bus
		return nil
	}
	list, err := v.client.BusList(ctx)
	if err != nil {
		return fmt.Errorf("list buses: %w", err)
	}
	if len(list.Buses) > 0 {
		v.busID = list.Buses[0]
		for _, b := range list.Buses[1:] {
			v.busID = min(v.busID, b)
		}
		return nil
	}
	var createErr error
	for try := uint32(1); try <= 100; try++ {
		r, err := v.client.BusCreate(ctx, try)
		if err == nil {
			v.busID = r.BusID
			v.createdBus = true
			v.logger.Info("Created VIIPER bus", "bus", v.busID)
			return nil
		}
		createErr = err
	}
	return fmt.Errorf("create bus: %w", createErr)
}

func (v *ViiperSink) setKey(k keymap.Key, pressed bool) error {
	u, ok := viiper.Usage(k)
	if !ok {
		return fmt.Errorf("viiper: no HID usage for %q", k)
	}
	v.keys.Set(u, pressed)
	return v.keyboard.WriteBinary(v.keys)
}

func (v *ViiperSink) Press(k keymap.Key) error   { return v.setKey(k, true) }
func (v *ViiperSink) Release(k keymap.Key) error { return v.setKey(k, false) }

// pulse writes r followed by an empty report so deltas are applied once.
func (v *ViiperSink) pulse(r viiper.MouseReport) error {
	if err := v.mouse.WriteBinary(r); err != nil {
		return err
	}
	return v.mouse.WriteBinary(viiper.MouseReport{})
}

func (v *ViiperSink) Move(dx, dy int) error {
	return v.pulse(viiper.MouseReport{DX: clamp16(dx), DY: clamp16(dy)})
}

func (v *ViiperSink) Click(b Button) error {
	switch b {
	case ButtonLeft:
		return v.pulse(viiper.MouseReport{Buttons: viiper.MouseLeft})
	case ButtonRight:
		return v.pulse(viiper.MouseReport{Buttons: viiper.MouseRight})
	default:
		return fmt.Errorf("viiper: unsupported button %v", b)
	}
}

func (v *ViiperSink) Scroll(dx, dy int) error {
	return v.pulse(viiper.MouseReport{Wheel: clamp16(dy), Pan: clamp16(dx)})
}

// Close releases every key and removes the devices, and the bus if this
// sink created it.
func (v *ViiperSink) Close() error {
	var errs []error
	if v.keyboard != nil {
		v.keys = viiper.KeyboardReport{}
		errs = append(errs, v.keyboard.WriteBinary(v.keys))
	}
	ctx, cancel := context.WithTimeout(context.Background(), v.cfg.Timeout*4)
	defer cancel()
	errs = append(errs, v.cleanup(ctx))
	return errors.Join(errs...)
}

func (v *ViiperSink) cleanup(ctx context.Context) error {
	var errs []error
	for _, s := range []*viiper.DeviceStream{v.keyboard, v.mouse} {
		if s == nil {
			continue
		}
		errs = append(errs, s.Close())
		if _, err := v.client.DeviceRemove(ctx, s.BusID, s.DevID); err != nil {
			v.logger.Warn("failed to remove device", "bus", s.BusID, "dev", s.DevID, "error", err)
		}
	}
	v.keyboard, v.mouse = nil, nil
	if v.createdBus {
		if _, err := v.client.BusRemove(ctx, v.busID); err != nil {
			v.logger.Warn("failed to remove bus", "bus", v.busID, "error", err)
		}
		v.createdBus = false
	}
	return errors.Join(errs...)
}

func clamp16(n int) int16 {
	return int16(max(math.MinInt16, min(math.MaxInt16, n)))
}
