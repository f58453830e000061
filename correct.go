package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/luki/irtemp/internal/emissivity"
	"github.com/luki/irtemp/internal/gatt"
)

// runCorrect prints the corrected temperature for one set of readings.
func runCorrect(args []string, w io.Writer) error {
	if len(args) != 3 {
		return errors.New("usage: irtemp correct <emissivity> <ambient °C> <object °C>")
	}

	vals := make([]float64, 3)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return errors.Wrapf(err, "argument %d", i+1)
		}
		vals[i] = v
	}

	e, ambient, object := vals[0], vals[1], vals[2]
	if e <= 0 || e > 1 {
		return errors.Errorf("emissivity %v out of range (0, 1]", e)
	}

	corrected := emissivity.Correct(e, ambient, object)
	_, err := fmt.Fprintf(w, "%s\n", gatt.FormatValue(corrected, gatt.DefaultPrecision))
	return err
}
