package sensor

import (
	"math"
	"sync"
)

// Simulated is a Thermometer for host runs: a slow object swing over a
// steady ambient, advanced one step per board Update.
type Simulated struct {
	mu       sync.Mutex
	step     int
	fault    error
	ambientC float64
	baseC    float64
	swingC   float64
	period   int
}

// NewSimulated returns a skin-temperature profile: ambient 22.5 °C, object
// 34.8 ± 1.6 °C over 120 steps.
func NewSimulated() *Simulated {
	return &Simulated{
		ambientC: 22.5,
		baseC:    34.8,
		swingC:   1.6,
		period:   120,
	}
}

func (s *Simulated) Begin() error { return nil }

// Update advances the waveform. It satisfies the loop's board hook.
func (s *Simulated) Update() {
	s.mu.Lock()
	s.step++
	s.mu.Unlock()
}

// SetFault makes every read fail with err until it is cleared with nil.
func (s *Simulated) SetFault(err error) {
	s.mu.Lock()
	s.fault = err
	s.mu.Unlock()
}

func (s *Simulated) ReadObjectTempC() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fault != nil {
		return 0, s.fault
	}
	phase := 2 * math.Pi * float64(s.step) / float64(s.period)
	jitter := 0.05 * math.Sin(1.7*float64(s.step))
	return s.baseC + s.swingC*math.Sin(phase) + jitter, nil
}

func (s *Simulated) ReadAmbientTempC() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fault != nil {
		return 0, s.fault
	}
	phase := 2 * math.Pi * float64(s.step) / float64(4*s.period)
	return s.ambientC + 0.3*math.Sin(phase), nil
}
