package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/luki/irtemp/internal/config"
	"github.com/luki/irtemp/internal/gatt"
	"github.com/luki/irtemp/internal/particulate"
	"github.com/luki/irtemp/internal/sensor"
)

// runDevice drives the real sensor and Bluetooth adapter.
func runDevice(tui bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(cfg, tui)
	if err != nil {
		return err
	}
	defer closer.Close()

	therm, err := sensor.OpenMLX90614(cfg.I2CBus, cfg.I2CAddr)
	if err != nil {
		return err
	}
	defer therm.Close()

	if id, err := therm.Identify(); err != nil {
		logger.Warn("could not identify thermometer", "err", err)
	} else {
		logger.Info("thermometer", "id", id.String())
		if id.Compensating() {
			logger.Warn("sensor applies its own emissivity, readings are corrected twice",
				"sensor", id.Emissivity, "configured", cfg.Emissivity)
		}
	}

	hw := hardware{
		therm: therm,
		peripheral: func(h gatt.ConnectionHandler, logger *slog.Logger) (gatt.Peripheral, error) {
			contract, err := cfg.Contract()
			if err != nil {
				return nil, err
			}
			return gatt.NewBLEServer(contract, h, logger)
		},
	}

	if cfg.ADCPath != "" {
		var led particulate.LED
		if cfg.LEDPin != "" {
			pin, err := particulate.OpenLED(cfg.LEDPin)
			if err != nil {
				return errors.Wrap(err, "dust sensor led")
			}
			led = pin
		}
		hw.dust = particulate.NewSampler(particulate.SysfsADC{Path: cfg.ADCPath}, led, nil)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, hw, logger, tui)
}
