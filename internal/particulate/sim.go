package particulate

import (
	"math"
	"sync"
)

// SimulatedADC produces a slowly drifting dust reading around a base level.
type SimulatedADC struct {
	mu   sync.Mutex
	step int
	base int
}

// NewSimulatedADC returns an ADC centred on base counts.
func NewSimulatedADC(base int) *SimulatedADC {
	return &SimulatedADC{base: base}
}

func (s *SimulatedADC) ReadRaw() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step++
	drift := 4 * math.Sin(float64(s.step)/9)
	spike := 0
	if s.step%17 == 0 {
		spike = 12
	}
	return s.base + int(drift) + spike, nil
}
