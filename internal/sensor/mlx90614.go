package sensor

import (
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

const (
	// MLX90614Addr is the factory SMBus address.
	MLX90614Addr = 0x5A

	regAmbient = 0x06 // RAM: Ta
	regObject1 = 0x07 // RAM: Tobj1

	kelvinPerLSB = 0.02
	kelvinOffset = 273.15
	errorFlag    = 0x8000
)

var ErrPEC = errors.New("mlx90614: packet error code mismatch")

// MLX90614 reads an MLX90614 infrared thermometer over SMBus.
type MLX90614 struct {
	mu     sync.Mutex
	dev    *i2c.Dev
	closer interface{ Close() error }
}

// NewMLX90614 uses an already opened bus.
func NewMLX90614(bus i2c.Bus, addr uint16) *MLX90614 {
	if addr == 0 {
		addr = MLX90614Addr
	}
	return &MLX90614{dev: &i2c.Dev{Addr: addr, Bus: bus}}
}

// OpenMLX90614 initialises the host drivers and opens the named I2C bus
// ("" picks the first one).
func OpenMLX90614(busName string, addr uint16) (*MLX90614, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Wrap(err, "init host drivers")
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, errors.Wrapf(err, "open i2c bus %q", busName)
	}
	m := NewMLX90614(bus, addr)
	m.closer = bus
	return m, nil
}

// Begin checks the device answers with a valid ambient reading.
func (m *MLX90614) Begin() error {
	if _, err := m.ReadAmbientTempC(); err != nil {
		return errors.Wrap(err, "mlx90614 not responding")
	}
	return nil
}

func (m *MLX90614) ReadObjectTempC() (float64, error) {
	return m.readTemp(regObject1)
}

func (m *MLX90614) ReadAmbientTempC() (float64, error) {
	return m.readTemp(regAmbient)
}

// Close releases the bus when it was opened by OpenMLX90614.
func (m *MLX90614) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer.Close()
}

func (m *MLX90614) readTemp(reg byte) (float64, error) {
	raw, err := m.readWord(reg)
	if err != nil {
		return 0, err
	}
	return celsius(reg, raw)
}

func (m *MLX90614) readWord(reg byte) (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := make([]byte, 3)
	if err := m.dev.Tx([]byte{reg}, buf); err != nil {
		return 0, errors.Wrapf(err, "mlx90614 read 0x%02x", reg)
	}
	return decodeWord(uint8(m.dev.Addr), reg, buf)
}

// decodeWord checks the PEC of buf (lsb, msb, pec) and returns the
// little-endian word.
func decodeWord(addr, reg byte, buf []byte) (uint16, error) {
	if len(buf) != 3 {
		return 0, errors.Errorf("mlx90614: short read of %d bytes", len(buf))
	}
	if pec := crc8([]byte{addr << 1, reg, addr<<1 | 1, buf[0], buf[1]}); pec != buf[2] {
		return 0, errors.Wrapf(ErrPEC, "reg 0x%02x got 0x%02x want 0x%02x", reg, buf[2], pec)
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}

// decodeTemp converts a temperature register response to Celsius.
func decodeTemp(addr, reg byte, buf []byte) (float64, error) {
	raw, err := decodeWord(addr, reg, buf)
	if err != nil {
		return 0, err
	}
	return celsius(reg, raw)
}

func celsius(reg byte, raw uint16) (float64, error) {
	if raw&errorFlag != 0 {
		return 0, errors.Errorf("mlx90614: error flag set on reg 0x%02x", reg)
	}
	return float64(raw)*kelvinPerLSB - kelvinOffset, nil
}

// crc8 is the SMBus PEC: CRC-8, polynomial x^8+x^2+x+1, initial value 0.
func crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = crc<<1 ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
