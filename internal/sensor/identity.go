package sensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// EEPROM cells are read with the 0x20 access opcode.
const (
	eepromEmissivity = 0x24
	eepromID0        = 0x3C
	idWords          = 4
)

// Identity is what an MLX90614 reports about itself from EEPROM.
type Identity struct {
	ID [idWords]uint16
	// Emissivity the sensor applies internally. Factory parts ship with 1.0.
	Emissivity float64
}

func (id Identity) String() string {
	return fmt.Sprintf("mlx90614 %04x-%04x-%04x-%04x ε=%.2f",
		id.ID[0], id.ID[1], id.ID[2], id.ID[3], id.Emissivity)
}

// Compensating reports whether the sensor already corrects for emissivity.
// Applying a second correction on top of it skews the result.
func (id Identity) Compensating() bool {
	return id.Emissivity < 0.995
}

// Identify reads the chip ID and the stored emissivity.
func (m *MLX90614) Identify() (Identity, error) {
	var id Identity
	for i := range id.ID {
		w, err := m.readWord(eepromID0 + byte(i))
		if err != nil {
			return id, errors.Wrap(err, "mlx90614 id")
		}
		id.ID[i] = w
	}

	raw, err := m.readWord(eepromEmissivity)
	if err != nil {
		return id, errors.Wrap(err, "mlx90614 emissivity")
	}
	id.Emissivity = emissivityFromRaw(raw)
	return id, nil
}

// emissivityFromRaw scales the EEPROM word, where 0xFFFF is 1.0.
func emissivityFromRaw(raw uint16) float64 {
	return float64(raw) / 0xFFFF
}
