// Package sensor acquires ambient and object temperatures from a non-contact
// infrared thermometer.
package sensor

import "time"

// Reading is one acquisition plus the values derived from it.
type Reading struct {
	Time       time.Time
	AmbientC   float64 // sensor die temperature
	ObjectC    float64 // raw object temperature at the sensor's emissivity
	CorrectedC float64 // object temperature after emissivity correction

	// Particulate channel, set only when a dust sampler is wired.
	HasDust      bool
	DustRaw      int
	DustFiltered int
	DustDensity  float64 // µg/m³
}
