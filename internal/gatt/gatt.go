// Package gatt describes the BLE service that carries the corrected
// temperature and the peripherals that can serve it.
package gatt

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Property is a characteristic capability bit.
type Property uint8

const (
	PropertyRead Property = 1 << iota
	PropertyWrite
	PropertyNotify
	PropertyIndicate
)

// Has reports whether all bits in q are set.
func (p Property) Has(q Property) bool { return p&q == q }

func (p Property) String() string {
	var parts []string
	for _, f := range []struct {
		bit  Property
		name string
	}{
		{PropertyRead, "read"},
		{PropertyWrite, "write"},
		{PropertyNotify, "notify"},
		{PropertyIndicate, "indicate"},
	} {
		if p.Has(f.bit) {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "|")
}

var (
	DefaultServiceUUID        = uuid.MustParse("4fafc201-1fb5-459e-8fcc-c5c9c331914b")
	DefaultCharacteristicUUID = uuid.MustParse("beb5483e-36e1-4688-b7f5-ea07361b26a8")
)

const (
	DefaultLocalName  = "ESP32 THAT PROJECT"
	DefaultProperties = PropertyRead | PropertyWrite | PropertyNotify | PropertyIndicate
	// DefaultPrecision matches the two decimals of Arduino's String(float).
	DefaultPrecision = 2
)

// Contract is the advertised service: one service with one characteristic.
type Contract struct {
	LocalName      string
	Service        uuid.UUID
	Characteristic uuid.UUID
	Properties     Property
}

// DefaultContract returns the contract of the reference device.
func DefaultContract() Contract {
	return Contract{
		LocalName:      DefaultLocalName,
		Service:        DefaultServiceUUID,
		Characteristic: DefaultCharacteristicUUID,
		Properties:     DefaultProperties,
	}
}

// NewContract builds a contract from textual identifiers.
func NewContract(name, service, characteristic string) (Contract, error) {
	c := DefaultContract()
	if name != "" {
		c.LocalName = name
	}

	var err error
	if c.Service, err = uuid.Parse(service); err != nil {
		return Contract{}, errors.Wrapf(err, "service uuid %q", service)
	}
	if c.Characteristic, err = uuid.Parse(characteristic); err != nil {
		return Contract{}, errors.Wrapf(err, "characteristic uuid %q", characteristic)
	}
	if c.Service == c.Characteristic {
		return Contract{}, errors.New("service and characteristic share a uuid")
	}
	return c, nil
}

type (
	// ConnectionHandler receives connect and disconnect callbacks from the
	// stack. Implementations must not block.
	ConnectionHandler interface {
		OnConnect()
		OnDisconnect()
	}

	// Peripheral is the device side of the contract.
	Peripheral interface {
		// Advertise (re)starts advertising the service.
		Advertise() error
		// Publish sets the characteristic value and notifies subscribers.
		Publish(value []byte) error
	}
)

// FormatValue renders a temperature as decimal ASCII. precision < 0 uses the
// shortest representation that round-trips.
func FormatValue(v float64, precision int) []byte {
	return strconv.AppendFloat(nil, v, 'f', precision, 64)
}

// ParseValue is the inverse of FormatValue.
func ParseValue(b []byte) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(b)), 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse characteristic value")
	}
	return v, nil
}
