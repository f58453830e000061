package gatt

import (
	"log/slog"
	"sync"

	"github.com/pkg/errors"
	"tinygo.org/x/bluetooth"
)

// BLEServer serves a Contract on the default Bluetooth adapter.
type BLEServer struct {
	mu      sync.Mutex
	adapter *bluetooth.Adapter
	adv     *bluetooth.Advertisement
	char    bluetooth.Characteristic
	handler ConnectionHandler
	logger  *slog.Logger
}

// NewBLEServer enables the adapter, registers the service and configures
// advertising. It does not start advertising; call Advertise.
func NewBLEServer(c Contract, h ConnectionHandler, logger *slog.Logger) (*BLEServer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &BLEServer{
		adapter: bluetooth.DefaultAdapter,
		handler: h,
		logger:  logger.With("component", "ble"),
	}

	serviceUUID, err := bluetooth.ParseUUID(c.Service.String())
	if err != nil {
		return nil, errors.Wrap(err, "service uuid")
	}
	charUUID, err := bluetooth.ParseUUID(c.Characteristic.String())
	if err != nil {
		return nil, errors.Wrap(err, "characteristic uuid")
	}

	// Must be installed before the adapter starts serving.
	s.adapter.SetConnectHandler(s.onConnection)

	if err := s.adapter.Enable(); err != nil {
		return nil, errors.Wrap(err, "enable adapter")
	}

	// The stack adds the client configuration descriptor for notify and
	// indicate characteristics.
	err = s.adapter.AddService(&bluetooth.Service{
		UUID: serviceUUID,
		Characteristics: []bluetooth.CharacteristicConfig{{
			Handle:     &s.char,
			UUID:       charUUID,
			Value:      []byte{},
			Flags:      permissions(c.Properties),
			WriteEvent: s.onWrite,
		}},
	})
	if err != nil {
		return nil, errors.Wrap(err, "add service")
	}

	// No scan response and no connection interval hint.
	s.adv = s.adapter.DefaultAdvertisement()
	err = s.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    c.LocalName,
		ServiceUUIDs: []bluetooth.UUID{serviceUUID},
	})
	if err != nil {
		return nil, errors.Wrap(err, "configure advertisement")
	}

	s.logger.Info("service registered",
		"name", c.LocalName,
		"service", c.Service.String(),
		"characteristic", c.Characteristic.String(),
		"properties", c.Properties.String())
	return s, nil
}

// Advertise restarts advertising. Stopping first lets it be called while
// already advertising.
func (s *BLEServer) Advertise() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.adv.Stop()
	if err := s.adv.Start(); err != nil {
		return errors.Wrap(err, "start advertising")
	}
	return nil
}

// Publish writes the value; the stack notifies subscribed clients.
func (s *BLEServer) Publish(value []byte) error {
	if _, err := s.char.Write(value); err != nil {
		return errors.Wrap(err, "write characteristic")
	}
	return nil
}

// onConnection runs on the stack's goroutine. On connect it keeps the device
// discoverable so further clients can attach.
func (s *BLEServer) onConnection(device bluetooth.Device, connected bool) {
	if !connected {
		s.logger.Info("client disconnected", "address", device.Address.String())
		if s.handler != nil {
			s.handler.OnDisconnect()
		}
		return
	}

	s.logger.Info("client connected", "address", device.Address.String())
	if err := s.Advertise(); err != nil {
		s.logger.Warn("advertise on connect", "err", err)
	}
	if s.handler != nil {
		s.handler.OnConnect()
	}
}

func (s *BLEServer) onWrite(client bluetooth.Connection, offset int, value []byte) {
	s.logger.Debug("characteristic written", "client", client, "offset", offset, "value", string(value))
}

func permissions(p Property) bluetooth.CharacteristicPermissions {
	var flags bluetooth.CharacteristicPermissions
	if p.Has(PropertyRead) {
		flags |= bluetooth.CharacteristicReadPermission
	}
	if p.Has(PropertyWrite) {
		flags |= bluetooth.CharacteristicWritePermission
	}
	if p.Has(PropertyNotify) {
		flags |= bluetooth.CharacteristicNotifyPermission
	}
	if p.Has(PropertyIndicate) {
		flags |= bluetooth.CharacteristicIndicatePermission
	}
	return flags
}
