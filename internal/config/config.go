// Package config loads runtime settings from the environment (and an
// optional .env file) and validates them.
package config

import (
	"log"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/luki/irtemp/internal/emissivity"
	"github.com/luki/irtemp/internal/gatt"
	"github.com/luki/irtemp/internal/sensor"
)

const prefix = "IRTEMP_"

type AppConfig struct {
	DeviceName string `validate:"required,max=29"`

	// Emissivity of the measured surface.
	Emissivity float64 `validate:"gt=0,lte=1"`

	// LoopInterval is the end-of-iteration delay; SettleDelay is waited
	// after a disconnect before advertising again.
	LoopInterval time.Duration `validate:"gt=0"`
	SettleDelay  time.Duration `validate:"gte=0"`

	ServiceUUID        string `validate:"required,uuid"`
	CharacteristicUUID string `validate:"required,uuid,nefield=ServiceUUID"`
	NotifyPrecision    int    `validate:"gte=-1,lte=10"`

	I2CBus  string
	I2CAddr uint16 `validate:"gte=8,lte=119"`

	// Particulate sensor; empty ADCPath disables it.
	ADCPath string
	LEDPin  string

	BreakerFailures uint32        `validate:"gte=1"`
	BreakerTimeout  time.Duration `validate:"gt=0"`

	// StatusAddr enables the HTTP status server, e.g. ":9102".
	StatusAddr string `validate:"omitempty,hostname_port"`

	LogLevel string `validate:"oneof=debug info warn error"`
	LogFile  string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// FromEnv builds and validates the config from the current environment.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		DeviceName:         getenvDefault("DEVICE_NAME", gatt.DefaultLocalName),
		ServiceUUID:        getenvDefault("SERVICE_UUID", gatt.DefaultServiceUUID.String()),
		CharacteristicUUID: getenvDefault("CHARACTERISTIC_UUID", gatt.DefaultCharacteristicUUID.String()),
		I2CBus:             getenvDefault("I2C_BUS", ""),
		ADCPath:            getenvDefault("ADC_PATH", ""),
		LEDPin:             getenvDefault("LED_PIN", ""),
		StatusAddr:         getenvDefault("STATUS_ADDR", ""),
		LogLevel:           getenvDefault("LOG_LEVEL", "info"),
		LogFile:            getenvDefault("LOG_FILE", ""),
	}

	var err error
	if cfg.Emissivity, err = getenvFloat("EMISSIVITY", emissivity.DefaultEmissivity); err != nil {
		return nil, err
	}
	if cfg.NotifyPrecision, err = getenvInt("NOTIFY_PRECISION", gatt.DefaultPrecision); err != nil {
		return nil, err
	}
	failures, err := getenvInt("BREAKER_FAILURES", int(sensor.DefaultBreaker.Failures))
	if err != nil {
		return nil, err
	}
	if failures < 1 || int64(failures) > math.MaxUint32 {
		return nil, errors.Errorf("invalid %sBREAKER_FAILURES: %d out of range", prefix, failures)
	}
	cfg.BreakerFailures = uint32(failures)
	if cfg.LoopInterval, err = getenvDuration("LOOP_INTERVAL", "500ms"); err != nil {
		return nil, err
	}
	if cfg.SettleDelay, err = getenvDuration("SETTLE_DELAY", "500ms"); err != nil {
		return nil, err
	}
	if cfg.BreakerTimeout, err = getenvDuration("BREAKER_TIMEOUT", sensor.DefaultBreaker.Timeout.String()); err != nil {
		return nil, err
	}

	addr, err := strconv.ParseUint(getenvDefault("I2C_ADDR", "0x5a"), 0, 16)
	if err != nil {
		return nil, errors.Wrap(err, "invalid "+prefix+"I2C_ADDR")
	}
	cfg.I2CAddr = uint16(addr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// Contract returns the GATT contract described by the config.
func (c *AppConfig) Contract() (gatt.Contract, error) {
	return gatt.NewContract(c.DeviceName, c.ServiceUUID, c.CharacteristicUUID)
}

// Breaker returns the acquisition breaker settings.
func (c *AppConfig) Breaker() sensor.BreakerSettings {
	return sensor.BreakerSettings{Failures: c.BreakerFailures, Timeout: c.BreakerTimeout}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(prefix + key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(prefix + key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrap(err, "invalid "+prefix+key)
	}
	return n, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(prefix + key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrap(err, "invalid "+prefix+key)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, errors.Wrap(err, "invalid "+prefix+key)
	}
	return d, nil
}
