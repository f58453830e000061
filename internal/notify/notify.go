// Package notify runs the device loop: read the thermometer, correct for
// emissivity, show and log the value, push it to a connected BLE client and
// re-advertise after a disconnect.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/luki/irtemp/internal/emissivity"
	"github.com/luki/irtemp/internal/gatt"
	"github.com/luki/irtemp/internal/link"
	"github.com/luki/irtemp/internal/particulate"
	"github.com/luki/irtemp/internal/sensor"
	"github.com/luki/irtemp/internal/wallclock"
)

type (
	// Board is the per-iteration housekeeping hook.
	Board interface {
		Update()
	}

	Acquirer interface {
		Acquire() (sensor.Reading, error)
	}

	DustSampler interface {
		Sample(ctx context.Context) (particulate.Sample, error)
	}

	// Display is the local status output.
	Display interface {
		Reading(r sensor.Reading)
		Link(s link.State)
		Status(line string)
	}

	Recorder interface {
		Reading(r sensor.Reading)
		Link(connected bool)
		Notified()
		Readvertised()
		Error(stage string)
	}
)

// Config holds the loop's fixed parameters.
type Config struct {
	Emissivity  float64
	Interval    time.Duration // end-of-iteration delay
	SettleDelay time.Duration // wait after a disconnect before advertising
	Precision   int           // decimals in the characteristic text
}

// DefaultConfig is the reference device timing: 500 ms settle and loop delay.
var DefaultConfig = Config{
	Emissivity:  emissivity.DefaultEmissivity,
	Interval:    500 * time.Millisecond,
	SettleDelay: 500 * time.Millisecond,
	Precision:   gatt.DefaultPrecision,
}

// Deps are the loop's collaborators. Acquirer, Peripheral and Tracker are
// required.
type Deps struct {
	Board      Board
	Acquirer   Acquirer
	Dust       DustSampler
	Display    Display
	Peripheral gatt.Peripheral
	Tracker    *link.Tracker
	Recorder   Recorder
	Clock      wallclock.Clock
	Logger     *slog.Logger
}

// Loop owns all mutable loop state; nothing is process-global.
type Loop struct {
	cfg  Config
	deps Deps
	log  *slog.Logger
}

func New(cfg Config, d Deps) (*Loop, error) {
	if d.Acquirer == nil || d.Peripheral == nil || d.Tracker == nil {
		return nil, errors.New("notify: acquirer, peripheral and tracker are required")
	}
	if cfg.Emissivity <= 0 {
		return nil, errors.Errorf("notify: emissivity %v must be > 0", cfg.Emissivity)
	}
	if d.Board == nil {
		d.Board = nopBoard{}
	}
	if d.Display == nil {
		d.Display = nopDisplay{}
	}
	if d.Recorder == nil {
		d.Recorder = nopRecorder{}
	}
	if d.Clock == nil {
		d.Clock = wallclock.Instance
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Loop{cfg: cfg, deps: d, log: d.Logger}, nil
}

// Start begins advertising so a client can find the device.
func (l *Loop) Start() error {
	l.deps.Display.Status("Start BLE")
	if err := l.deps.Peripheral.Advertise(); err != nil {
		return errors.Wrap(err, "start advertising")
	}
	l.log.Info("waiting for a client connection to notify")
	l.deps.Display.Link(link.Disconnected)
	return nil
}

// Run ticks until ctx is done. It returns nil on cancellation.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := l.Tick(ctx); err != nil {
			return ignoreDone(ctx, err)
		}
		if err := l.deps.Clock.Sleep(ctx, l.cfg.Interval); err != nil {
			return ignoreDone(ctx, err)
		}
	}
}

func ignoreDone(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

// Tick runs one iteration. Sensor and radio failures are logged and
// counted; only context cancellation is returned.
func (l *Loop) Tick(ctx context.Context) error {
	d := l.deps

	d.Board.Update()

	rd, acqErr := d.Acquirer.Acquire()
	if acqErr != nil {
		d.Recorder.Error("acquire")
		l.log.Warn("acquire failed", "err", acqErr)
		d.Display.Status("sensor error")
	}

	if d.Dust != nil {
		s, err := d.Dust.Sample(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			d.Recorder.Error("dust")
			l.log.Warn("dust sample failed", "err", err)
		case acqErr == nil:
			rd.HasDust = true
			rd.DustRaw = s.Raw
			rd.DustFiltered = s.Filtered
			rd.DustDensity = s.Density
		default:
			l.log.Debug("dust sample", "raw", s.Raw, "filtered", s.Filtered, "density", s.Density)
		}
	}

	if acqErr == nil {
		rd.CorrectedC = emissivity.Correct(l.cfg.Emissivity, rd.AmbientC, rd.ObjectC)
		d.Display.Reading(rd)
		d.Recorder.Reading(rd)
		attrs := []any{"corrected", rd.CorrectedC, "object", rd.ObjectC, "ambient", rd.AmbientC}
		if rd.HasDust {
			attrs = append(attrs, "dust", rd.DustDensity)
		}
		l.log.Info("reading", attrs...)
	}

	action := d.Tracker.Poll()
	connected := d.Tracker.Connected()
	d.Recorder.Link(connected)

	if connected && acqErr == nil {
		if err := d.Peripheral.Publish(gatt.FormatValue(rd.CorrectedC, l.cfg.Precision)); err != nil {
			d.Recorder.Error("publish")
			l.log.Warn("notify failed", "err", err)
		} else {
			d.Recorder.Notified()
		}
	}

	switch action {
	case link.ActionReadvertise:
		// Give the stack time to release the old connection.
		if err := d.Clock.Sleep(ctx, l.cfg.SettleDelay); err != nil {
			return err
		}
		d.Display.Link(link.Disconnected)
		if err := d.Peripheral.Advertise(); err != nil {
			d.Recorder.Error("advertise")
			l.log.Warn("restart advertising failed", "err", err)
			break
		}
		d.Recorder.Readvertised()
		l.log.Info("start advertising")
		d.Display.Status("start advertising")
	case link.ActionConnected:
		l.log.Info("client connected")
		d.Display.Link(link.Connected)
	}

	return nil
}

type nopBoard struct{}

func (nopBoard) Update() {}

type nopDisplay struct{}

func (nopDisplay) Reading(sensor.Reading) {}
func (nopDisplay) Link(link.State)        {}
func (nopDisplay) Status(string)          {}

type nopRecorder struct{}

func (nopRecorder) Reading(sensor.Reading) {}
func (nopRecorder) Link(bool)              {}
func (nopRecorder) Notified()              {}
func (nopRecorder) Readvertised()          {}
func (nopRecorder) Error(string)           {}
