package gatt

import "sync"

// maxPublished bounds the notification record of a long simulated run.
const maxPublished = 256

// Loopback is an in-memory Peripheral. A simulated client connects and
// disconnects through it, and it behaves like the BLE server on connect:
// advertising restarts before the handler is told.
type Loopback struct {
	mu          sync.Mutex
	handler     ConnectionHandler
	value       []byte
	published   [][]byte
	advertises  int
	clients     int
	advertising bool
}

// NewLoopback returns a Loopback reporting connection changes to h.
func NewLoopback(h ConnectionHandler) *Loopback {
	return &Loopback{handler: h}
}

func (l *Loopback) Advertise() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.advertises++
	l.advertising = true
	return nil
}

func (l *Loopback) Publish(value []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.value = append(l.value[:0], value...)
	if l.clients > 0 {
		l.published = append(l.published, append([]byte(nil), value...))
		if len(l.published) > maxPublished {
			l.published = l.published[len(l.published)-maxPublished:]
		}
	}
	return nil
}

// Connect simulates a client connecting.
func (l *Loopback) Connect() {
	l.mu.Lock()
	l.clients++
	l.mu.Unlock()

	_ = l.Advertise()
	if l.handler != nil {
		l.handler.OnConnect()
	}
}

// Disconnect simulates the client leaving. The stack stops advertising
// while no one is connected until the loop restarts it.
func (l *Loopback) Disconnect() {
	l.mu.Lock()
	if l.clients > 0 {
		l.clients--
	}
	if l.clients == 0 {
		l.advertising = false
	}
	l.mu.Unlock()

	if l.handler != nil {
		l.handler.OnDisconnect()
	}
}

// Value returns the characteristic's current value.
func (l *Loopback) Value() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]byte(nil), l.value...)
}

// Notified returns every value pushed to a connected client.
func (l *Loopback) Notified() [][]byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]byte, len(l.published))
	copy(out, l.published)
	return out
}

// Advertises counts Advertise calls, including the ones made on connect.
func (l *Loopback) Advertises() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.advertises
}

// Advertising reports whether the device is discoverable.
func (l *Loopback) Advertising() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.advertising
}
