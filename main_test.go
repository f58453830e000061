package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/luki/irtemp/internal/config"
	"github.com/luki/irtemp/internal/gatt"
	"github.com/luki/irtemp/internal/logging"
	"github.com/luki/irtemp/internal/particulate"
	"github.com/luki/irtemp/internal/sensor"
)

func TestRunCorrect(t *testing.T) {
	var buf bytes.Buffer
	if err := runCorrect([]string{"1", "25", "25"}, &buf); err != nil {
		t.Fatalf("runCorrect: %v", err)
	}
	if got := buf.String(); got != "25.00\n" {
		t.Errorf("got %q, want %q", got, "25.00\n")
	}
}

func TestRunCorrectRejects(t *testing.T) {
	cases := [][]string{
		{},
		{"0.98", "20"},
		{"abc", "20", "37"},
		{"0", "20", "37"},
		{"1.5", "20", "37"},
	}
	for _, args := range cases {
		var buf bytes.Buffer
		if err := runCorrect(args, &buf); err == nil {
			t.Errorf("runCorrect(%q) should fail, printed %q", args, buf.String())
		}
	}
}

func TestParseSimArgs(t *testing.T) {
	tests := []struct {
		args  []string
		dur   time.Duration
		plain bool
	}{
		{nil, 0, false},
		{[]string{"30s"}, 30 * time.Second, false},
		{[]string{"90", "--plain"}, 90 * time.Second, true},
		{[]string{"-plain", "2m"}, 2 * time.Minute, true},
	}
	for _, tt := range tests {
		got, err := parseSimArgs(tt.args)
		if err != nil {
			t.Errorf("parseSimArgs(%q): %v", tt.args, err)
			continue
		}
		if got.duration != tt.dur || got.plain != tt.plain {
			t.Errorf("parseSimArgs(%q) = %+v, want duration %v plain %v", tt.args, got, tt.dur, tt.plain)
		}
	}

	if _, err := parseSimArgs([]string{"soon"}); err == nil {
		t.Error("bad duration should fail")
	}
}

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	t.Setenv("IRTEMP_LOOP_INTERVAL", "10ms")
	t.Setenv("IRTEMP_SETTLE_DELAY", "1ms")
	cfg, err := config.FromEnv()
	require.NoError(t, err)
	return cfg
}

func quietLogger(t *testing.T) *slog.Logger {
	t.Helper()
	logger, err := logging.New(io.Discard, "error")
	require.NoError(t, err)
	return logger
}

// serveAsync runs serve in the background and returns its result channel.
func serveAsync(ctx context.Context, cfg *config.AppConfig, hw hardware, logger *slog.Logger) <-chan error {
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, hw, logger, false) }()
	return done
}

func waitServe(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("serve did not return")
		return nil
	}
}

func TestServeNotifiesConnectedClient(t *testing.T) {
	cfg := testConfig(t)
	cfg.StatusAddr = "127.0.0.1:0"

	therm := sensor.NewSimulated()
	lbCh := make(chan *gatt.Loopback, 1)
	var out bytes.Buffer
	hw := hardware{
		therm: therm,
		board: therm,
		dust:  particulate.NewSampler(particulate.NewSimulatedADC(dustBase), nil, nil),
		peripheral: func(h gatt.ConnectionHandler, _ *slog.Logger) (gatt.Peripheral, error) {
			lb := gatt.NewLoopback(h)
			lbCh <- lb
			return lb, nil
		},
		out: &out,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := serveAsync(ctx, cfg, hw, quietLogger(t))

	var lb *gatt.Loopback
	select {
	case lb = <-lbCh:
	case <-time.After(3 * time.Second):
		t.Fatal("peripheral was never created")
	}
	require.Eventually(t, func() bool { return lb.Advertises() > 0 }, 3*time.Second, 5*time.Millisecond)

	lb.Connect()
	require.Eventually(t, func() bool { return len(lb.Notified()) > 0 }, 3*time.Second, 5*time.Millisecond)

	v, err := gatt.ParseValue(lb.Value())
	require.NoError(t, err)
	require.InDelta(t, 36, v, 6)

	cancel()
	require.NoError(t, waitServe(t, done))

	text := out.String()
	require.Contains(t, text, "Start BLE")
	require.Contains(t, text, "corrected")
	require.Contains(t, text, "BLE connected")
}

var errAdapterBusy = errors.New("adapter busy")

type refusingPeripheral struct{}

func (refusingPeripheral) Advertise() error     { return errAdapterBusy }
func (refusingPeripheral) Publish([]byte) error { return nil }

func TestServeReturnsAdvertiseError(t *testing.T) {
	cfg := testConfig(t)
	cfg.StatusAddr = "127.0.0.1:0"

	therm := sensor.NewSimulated()
	hw := hardware{
		therm: therm,
		peripheral: func(gatt.ConnectionHandler, *slog.Logger) (gatt.Peripheral, error) {
			return refusingPeripheral{}, nil
		},
		out: io.Discard,
	}

	done := serveAsync(context.Background(), cfg, hw, quietLogger(t))
	err := waitServe(t, done)
	require.ErrorIs(t, err, errAdapterBusy)
}

func TestServeReturnsThermometerError(t *testing.T) {
	cfg := testConfig(t)

	hw := hardware{
		therm: failingThermometer{},
		peripheral: func(h gatt.ConnectionHandler, _ *slog.Logger) (gatt.Peripheral, error) {
			return gatt.NewLoopback(h), nil
		},
		out: io.Discard,
	}

	err := waitServe(t, serveAsync(context.Background(), cfg, hw, quietLogger(t)))
	require.ErrorIs(t, err, errNoDevice)
}

var errNoDevice = errors.New("no device at 0x5a")

type failingThermometer struct{}

func (failingThermometer) Begin() error                       { return errNoDevice }
func (failingThermometer) ReadObjectTempC() (float64, error)  { return 0, errNoDevice }
func (failingThermometer) ReadAmbientTempC() (float64, error) { return 0, errNoDevice }
