// Package emissivity corrects an infrared thermometer's object reading for
// a surface whose emissivity differs from the sensor's calibration.
package emissivity

import "math"

const (
	// KelvinOffset converts Celsius to Kelvin.
	KelvinOffset = 273.15

	// DefaultEmissivity is typical for human skin.
	DefaultEmissivity = 0.98
)

// Correct returns the corrected object temperature in Celsius. The object
// and ambient radiance are balanced with a fourth-power blend:
//
//	T = To^4/e + Ta^4*(1 - 1/e)
//
// emissivity must be > 0; it is not checked here.
func Correct(emissivity, ambientC, objectC float64) float64 {
	ta := ambientC + KelvinOffset
	to := objectC + KelvinOffset

	t := (to*to*to*to)/emissivity + (ta*ta*ta*ta)*(1-1/emissivity)

	return math.Sqrt(math.Sqrt(t)) - KelvinOffset
}
