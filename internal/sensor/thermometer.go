package sensor

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"

	"github.com/luki/irtemp/internal/wallclock"
)

// Thermometer is the driver surface the loop consumes.
type Thermometer interface {
	Begin() error
	ReadObjectTempC() (float64, error)
	ReadAmbientTempC() (float64, error)
}

// ErrUnavailable is returned while the breaker is open after repeated
// failures.
var ErrUnavailable = errors.New("thermometer unavailable")

// BreakerSettings controls when acquisition stops hitting a failing sensor.
type BreakerSettings struct {
	Failures uint32        // consecutive failures that open the breaker
	Timeout  time.Duration // open period before a trial read
}

// DefaultBreaker trips after five failed reads and retries after ten seconds.
var DefaultBreaker = BreakerSettings{Failures: 5, Timeout: 10 * time.Second}

// Acquirer reads both temperatures through a circuit breaker.
type Acquirer struct {
	therm   Thermometer
	breaker *gobreaker.CircuitBreaker
	clock   wallclock.Clock
}

// NewAcquirer wraps t. A nil clock uses the wall clock.
func NewAcquirer(t Thermometer, bs BreakerSettings, clock wallclock.Clock, logger *slog.Logger) *Acquirer {
	if clock == nil {
		clock = wallclock.Instance
	}
	if logger == nil {
		logger = slog.Default()
	}
	if bs.Failures == 0 {
		bs.Failures = DefaultBreaker.Failures
	}
	if bs.Timeout <= 0 {
		bs.Timeout = DefaultBreaker.Timeout
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "thermometer",
		MaxRequests: 1,
		Timeout:     bs.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.Failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &Acquirer{therm: t, breaker: cb, clock: clock}
}

type pair struct{ object, ambient float64 }

// Acquire reads object then ambient temperature. CorrectedC is left for the
// caller.
func (a *Acquirer) Acquire() (Reading, error) {
	v, err := a.breaker.Execute(func() (interface{}, error) {
		obj, err := a.therm.ReadObjectTempC()
		if err != nil {
			return nil, errors.Wrap(err, "read object temperature")
		}
		amb, err := a.therm.ReadAmbientTempC()
		if err != nil {
			return nil, errors.Wrap(err, "read ambient temperature")
		}
		if !plausible(obj) || !plausible(amb) {
			return nil, errors.Errorf("implausible reading: object %.2f°C ambient %.2f°C", obj, amb)
		}
		return pair{object: obj, ambient: amb}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Reading{}, errors.Wrap(ErrUnavailable, err.Error())
		}
		return Reading{}, err
	}

	p := v.(pair)
	return Reading{
		Time:     a.clock.Now(),
		AmbientC: p.ambient,
		ObjectC:  p.object,
	}, nil
}

// State reports the breaker state, e.g. "closed" or "open".
func (a *Acquirer) State() string {
	return a.breaker.State().String()
}

// MLX90614 range is -70..380 °C for objects; anything outside is a bus fault.
func plausible(c float64) bool {
	return c > -100 && c < 400
}
