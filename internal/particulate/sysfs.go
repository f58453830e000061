package particulate

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// SysfsADC reads an industrial-I/O channel such as
// /sys/bus/iio/devices/iio:device0/in_voltage0_raw.
type SysfsADC struct {
	Path string
}

func (a SysfsADC) ReadRaw() (int, error) {
	b, err := os.ReadFile(a.Path)
	if err != nil {
		return 0, errors.Wrap(err, "read iio channel")
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, errors.Wrapf(err, "parse %s", a.Path)
	}
	return v, nil
}
