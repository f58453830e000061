package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/luki/irtemp/internal/config"
	"github.com/luki/irtemp/internal/display"
	"github.com/luki/irtemp/internal/gatt"
	"github.com/luki/irtemp/internal/link"
	"github.com/luki/irtemp/internal/logging"
	"github.com/luki/irtemp/internal/metrics"
	"github.com/luki/irtemp/internal/monitor"
	"github.com/luki/irtemp/internal/notify"
	"github.com/luki/irtemp/internal/sensor"
)

// hardware is what differs between a real device and a simulation.
type hardware struct {
	therm      sensor.Thermometer
	board      notify.Board
	dust       notify.DustSampler
	peripheral func(h gatt.ConnectionHandler, logger *slog.Logger) (gatt.Peripheral, error)
	// out receives the status line in plain mode. Nil means stdout.
	out io.Writer
}

func newLogger(cfg *config.AppConfig, tui bool) (*slog.Logger, io.Closer, error) {
	if tui {
		return logging.Open(cfg.LogFile, cfg.LogLevel)
	}
	l, err := logging.New(os.Stderr, cfg.LogLevel)
	return l, io.NopCloser(nil), err
}

// serve wires the loop to hw and runs it until ctx is done or, with tui,
// until the user quits.
func serve(ctx context.Context, cfg *config.AppConfig, hw hardware, logger *slog.Logger, tui bool) error {
	contract, err := cfg.Contract()
	if err != nil {
		return err
	}

	tracker := link.NewTracker(0)
	peripheral, err := hw.peripheral(tracker, logger)
	if err != nil {
		return errors.Wrap(err, "bluetooth")
	}

	if err := hw.therm.Begin(); err != nil {
		return errors.Wrap(err, "thermometer")
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	rec := metrics.New()
	if cfg.StatusAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("status server listening", "addr", cfg.StatusAddr)
			if err := rec.Serve(ctx, cfg.StatusAddr); err != nil {
				logger.Error("status server stopped", "err", err)
			}
		}()
	}

	deps := notify.Deps{
		Board:      hw.board,
		Acquirer:   sensor.NewAcquirer(hw.therm, cfg.Breaker(), nil, logger),
		Dust:       hw.dust,
		Peripheral: peripheral,
		Tracker:    tracker,
		Recorder:   rec,
		Logger:     logger,
	}
	loopCfg := notify.Config{
		Emissivity:  cfg.Emissivity,
		Interval:    cfg.LoopInterval,
		SettleDelay: cfg.SettleDelay,
		Precision:   cfg.NotifyPrecision,
	}

	if !tui {
		out := hw.out
		if out == nil {
			out = os.Stdout
		}
		deps.Display = display.NewLine(out)
		loop, err := notify.New(loopCfg, deps)
		if err != nil {
			return err
		}
		if err := loop.Start(); err != nil {
			return err
		}
		return loop.Run(ctx)
	}

	p := tea.NewProgram(monitor.New(monitor.Info{
		DeviceName:     contract.LocalName,
		Service:        contract.Service.String(),
		Characteristic: contract.Characteristic.String(),
		Emissivity:     cfg.Emissivity,
	}), tea.WithAltScreen(), tea.WithContext(ctx))

	deps.Display = monitor.NewDisplay(p)
	loop, err := notify.New(loopCfg, deps)
	if err != nil {
		return err
	}

	// Send blocks until the program runs, so the loop starts on its own
	// goroutine.
	loopErr := make(chan error, 1)
	go func() {
		if err := loop.Start(); err != nil {
			loopErr <- err
			p.Quit()
			return
		}
		loopErr <- loop.Run(ctx)
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		<-loopErr
		return errors.Wrap(err, "monitor")
	}
	cancel()
	return <-loopErr
}
