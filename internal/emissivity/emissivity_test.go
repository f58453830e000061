package emissivity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func reference(e, ambientC, objectC float64) float64 {
	ta := ambientC + 273.15
	to := objectC + 273.15
	t := math.Pow(to, 4)/e + math.Pow(ta, 4)*(1-1/e)
	return math.Pow(t, 0.25) - 273.15
}

func TestUnitEmissivityAtAmbient(t *testing.T) {
	for _, a := range []float64{25.0, -10.0, 0, 36.6, 80} {
		require.InDelta(t, a, Correct(1, a, a), 1e-9, "ambient %v", a)
	}
}

func TestUnitEmissivityIgnoresAmbient(t *testing.T) {
	require.InDelta(t, 37.0, Correct(1, 20, 37), 1e-9)
}

func TestMatchesReferenceFormula(t *testing.T) {
	tests := []struct {
		e, a, o float64
	}{
		{0.98, 20.0, 37.0},
		{0.95, 22.5, 33.1},
		{0.5, 25, 100},
		{0.98, 30, 30},
	}
	for _, tt := range tests {
		got := Correct(tt.e, tt.a, tt.o)
		want := reference(tt.e, tt.a, tt.o)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("Correct(%v, %v, %v) = %v, want %v", tt.e, tt.a, tt.o, got, want)
		}
	}
}

func TestLowEmissivityRaisesWarmObject(t *testing.T) {
	got := Correct(DefaultEmissivity, 20, 37)
	require.Greater(t, got, 37.0)
	require.Less(t, got, 38.0)
}

func TestPureFunction(t *testing.T) {
	first := Correct(0.98, 20, 37)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Correct(0.98, 20, 37))
	}
}
