// Package particulate samples an optical dust sensor: pulse the IR LED,
// read the analog output, smooth it and convert to a mass density.
package particulate

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/luki/irtemp/internal/filter"
	"github.com/luki/irtemp/internal/wallclock"
)

const (
	CovRatio      = 0.2  // µg/m³ per mV
	NoDustMV      = 400  // output voltage with clean air
	SysVoltageMV  = 5000 // ADC reference
	ADCLevels     = 1024
	DividerRatio  = 11 // board divides the sensor output by 11
	LEDSampleWait = 280 * time.Microsecond
)

type (
	// AnalogInput returns raw ADC counts.
	AnalogInput interface {
		ReadRaw() (int, error)
	}

	// LED drives the sensor's internal IR LED.
	LED interface {
		Set(on bool) error
	}
)

// Sample is one particulate measurement.
type Sample struct {
	Raw       int
	Filtered  int
	VoltageMV float64
	Density   float64 // µg/m³
}

// Density converts ADC counts to the sensor voltage and dust density.
func Density(adc int) (voltageMV, density float64) {
	voltageMV = float64(SysVoltageMV) / ADCLevels * float64(adc) * DividerRatio
	if voltageMV >= NoDustMV {
		density = (voltageMV - NoDustMV) * CovRatio
	}
	return voltageMV, density
}

// Sampler owns the smoothing window for one sensor.
type Sampler struct {
	adc    AnalogInput
	led    LED
	clock  wallclock.Clock
	window filter.Window
}

// NewSampler returns a Sampler. led may be nil when the LED is wired on.
func NewSampler(adc AnalogInput, led LED, clock wallclock.Clock) *Sampler {
	if clock == nil {
		clock = wallclock.Instance
	}
	return &Sampler{adc: adc, led: led, clock: clock}
}

// Sample pulses the LED, reads once and feeds the filter.
func (s *Sampler) Sample(ctx context.Context) (Sample, error) {
	if s.led != nil {
		if err := s.led.Set(true); err != nil {
			return Sample{}, errors.Wrap(err, "led on")
		}
		if err := s.clock.Sleep(ctx, LEDSampleWait); err != nil {
			_ = s.led.Set(false)
			return Sample{}, err
		}
	}

	raw, err := s.adc.ReadRaw()

	if s.led != nil {
		if lerr := s.led.Set(false); lerr != nil && err == nil {
			err = errors.Wrap(lerr, "led off")
		}
	}
	if err != nil {
		return Sample{}, errors.Wrap(err, "read adc")
	}

	filtered := s.window.Filter(raw)
	mv, density := Density(filtered)
	return Sample{Raw: raw, Filtered: filtered, VoltageMV: mv, Density: density}, nil
}
