package particulate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/luki/irtemp/internal/wallclock"
)

type scriptedADC struct {
	values []int
	err    error
}

func (s *scriptedADC) ReadRaw() (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v, nil
}

type recordingLED struct {
	states []bool
}

func (l *recordingLED) Set(on bool) error {
	l.states = append(l.states, on)
	return nil
}

func TestDensity(t *testing.T) {
	tests := []struct {
		adc         int
		wantMV      float64
		wantDensity float64
	}{
		{0, 0, 0},
		{7, 5000.0 / 1024 * 7 * 11, 0},
		{8, 5000.0 / 1024 * 8 * 11, (5000.0/1024*8*11 - 400) * 0.2},
		{100, 5000.0 / 1024 * 100 * 11, (5000.0/1024*100*11 - 400) * 0.2},
	}
	for _, tt := range tests {
		mv, d := Density(tt.adc)
		require.InDelta(t, tt.wantMV, mv, 1e-9, "adc %d", tt.adc)
		require.InDelta(t, tt.wantDensity, d, 1e-9, "adc %d", tt.adc)
	}
}

func TestSamplerPulsesLEDAndFilters(t *testing.T) {
	clock := wallclock.NewFake(time.Date(2026, 2, 21, 14, 0, 0, 0, time.UTC))
	led := &recordingLED{}
	adc := &scriptedADC{values: []int{50, 60}}
	s := NewSampler(adc, led, clock)

	first, err := s.Sample(context.Background())
	require.NoError(t, err)
	require.Equal(t, 50, first.Raw)
	require.Equal(t, 50, first.Filtered)

	second, err := s.Sample(context.Background())
	require.NoError(t, err)
	require.Equal(t, 60, second.Raw)
	require.Equal(t, 51, second.Filtered)

	require.Equal(t, []bool{true, false, true, false}, led.states)
	require.Equal(t, []time.Duration{LEDSampleWait, LEDSampleWait}, clock.Sleeps())
}

func TestSamplerTurnsLEDOffOnError(t *testing.T) {
	led := &recordingLED{}
	s := NewSampler(&scriptedADC{err: errors.New("adc busy")}, led, wallclock.NewFake(time.Time{}))

	_, err := s.Sample(context.Background())
	require.Error(t, err)
	require.Equal(t, []bool{true, false}, led.states)
}

func TestSysfsADC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in_voltage0_raw")
	require.NoError(t, os.WriteFile(path, []byte("123\n"), 0o644))

	v, err := SysfsADC{Path: path}.ReadRaw()
	require.NoError(t, err)
	require.Equal(t, 123, v)

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, err = SysfsADC{Path: path}.ReadRaw()
	require.Error(t, err)
}

func TestSimulatedADCStaysNearBase(t *testing.T) {
	adc := NewSimulatedADC(90)
	for i := 0; i < 50; i++ {
		v, err := adc.ReadRaw()
		require.NoError(t, err)
		require.InDelta(t, 90, v, 20)
	}
}
