package main

import (
	"context"
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/luki/irtemp/internal/config"
	"github.com/luki/irtemp/internal/gatt"
	"github.com/luki/irtemp/internal/particulate"
	"github.com/luki/irtemp/internal/sensor"
)

// Simulated client: stays connected for clientOn, away for clientOff.
const (
	clientOn  = 8 * time.Second
	clientOff = 4 * time.Second
	dustBase  = 95
)

type simOptions struct {
	duration time.Duration
	plain    bool
}

func parseSimArgs(args []string) (simOptions, error) {
	var opts simOptions
	for _, a := range args {
		switch a {
		case "-plain", "--plain":
			opts.plain = true
		case "-h", "--help":
			return opts, errors.New("usage: irtemp simulate [duration] [--plain]")
		default:
			if d, err := time.ParseDuration(a); err == nil {
				opts.duration = d
			} else if secs, err := strconv.Atoi(a); err == nil {
				opts.duration = time.Duration(secs) * time.Second
			} else {
				return opts, errors.Errorf("bad duration %q", a)
			}
		}
	}
	return opts, nil
}

// runSimulate runs the full loop against simulated sensors and an
// in-memory peripheral whose client comes and goes.
func runSimulate(args []string) error {
	opts, err := parseSimArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	tui := !opts.plain
	logger, closer, err := newLogger(cfg, tui)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}

	therm := sensor.NewSimulated()
	hw := hardware{
		therm: therm,
		board: therm,
		dust:  particulate.NewSampler(particulate.NewSimulatedADC(dustBase), nil, nil),
		peripheral: func(h gatt.ConnectionHandler, logger *slog.Logger) (gatt.Peripheral, error) {
			lb := gatt.NewLoopback(h)
			go driveClient(ctx, lb, logger)
			return lb, nil
		},
	}

	return serve(ctx, cfg, hw, logger, tui)
}

// driveClient connects and disconnects lb on a fixed cycle until ctx is done.
func driveClient(ctx context.Context, lb *gatt.Loopback, logger *slog.Logger) {
	wait := func(d time.Duration) bool {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
			return true
		}
	}

	for wait(clientOff) {
		logger.Debug("simulated client connecting")
		lb.Connect()
		if !wait(clientOn) {
			return
		}
		logger.Debug("simulated client leaving")
		lb.Disconnect()
	}
}
