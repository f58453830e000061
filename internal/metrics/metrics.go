// Package metrics exports the loop's readings as Prometheus series and
// serves a small status API.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/luki/irtemp/internal/sensor"
)

const namespace = "irtemp"

// Recorder collects loop observations in its own registry.
type Recorder struct {
	Registry *prometheus.Registry

	ambient     prometheus.Gauge
	object      prometheus.Gauge
	corrected   prometheus.Gauge
	dust        prometheus.Gauge
	connected   prometheus.Gauge
	notifies    prometheus.Counter
	errors      *prometheus.CounterVec
	readvertise prometheus.Counter

	mu     sync.RWMutex
	latest sensor.Reading
	link   bool
}

func New() *Recorder {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}
	r := &Recorder{
		Registry:  prometheus.NewRegistry(),
		ambient:   gauge("ambient_celsius", "Sensor ambient temperature."),
		object:    gauge("object_celsius", "Raw object temperature."),
		corrected: gauge("corrected_celsius", "Emissivity-corrected object temperature."),
		dust:      gauge("dust_density_ugm3", "Filtered particulate density."),
		connected: gauge("ble_connected", "1 while a BLE client is connected."),
		notifies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "notifies_total", Help: "Values pushed to the BLE characteristic.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "errors_total", Help: "Loop errors by stage.",
		}, []string{"stage"}),
		readvertise: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "readvertise_total", Help: "Advertising restarts after a disconnect.",
		}),
	}
	r.Registry.MustRegister(r.ambient, r.object, r.corrected, r.dust, r.connected, r.notifies, r.errors, r.readvertise)
	return r
}

// Reading records a completed acquisition.
func (r *Recorder) Reading(rd sensor.Reading) {
	r.ambient.Set(rd.AmbientC)
	r.object.Set(rd.ObjectC)
	r.corrected.Set(rd.CorrectedC)
	if rd.HasDust {
		r.dust.Set(rd.DustDensity)
	}

	r.mu.Lock()
	r.latest = rd
	r.mu.Unlock()
}

// Link records the connection state.
func (r *Recorder) Link(connected bool) {
	v := 0.0
	if connected {
		v = 1
	}
	r.connected.Set(v)

	r.mu.Lock()
	r.link = connected
	r.mu.Unlock()
}

func (r *Recorder) Notified()     { r.notifies.Inc() }
func (r *Recorder) Readvertised() { r.readvertise.Inc() }

// Error counts a failure in stage ("acquire", "dust", "publish", "advertise").
func (r *Recorder) Error(stage string) {
	r.errors.WithLabelValues(stage).Inc()
}

// Latest returns the last reading and link state.
func (r *Recorder) Latest() (sensor.Reading, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.link
}
