package particulate

import (
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// PinLED drives the LED through a GPIO output.
type PinLED struct {
	pin gpio.PinOut
}

// OpenLED looks the pin up by name (e.g. "GPIO12") and drives it low.
func OpenLED(name string) (*PinLED, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "init host drivers")
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, errors.Errorf("gpio %q not found", name)
	}
	l := &PinLED{pin: p}
	if err := l.Set(false); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *PinLED) Set(on bool) error {
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := l.pin.Out(level); err != nil {
		return errors.Wrapf(err, "set %s", l.pin)
	}
	return nil
}
