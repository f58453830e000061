package gatt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"tinygo.org/x/bluetooth"
)

type countingHandler struct {
	connects, disconnects int
}

func (h *countingHandler) OnConnect()    { h.connects++ }
func (h *countingHandler) OnDisconnect() { h.disconnects++ }

func TestDefaultContract(t *testing.T) {
	c := DefaultContract()
	require.Equal(t, "ESP32 THAT PROJECT", c.LocalName)
	require.Equal(t, "4fafc201-1fb5-459e-8fcc-c5c9c331914b", c.Service.String())
	require.Equal(t, "beb5483e-36e1-4688-b7f5-ea07361b26a8", c.Characteristic.String())
	require.Equal(t, "read|write|notify|indicate", c.Properties.String())
}

func TestNewContract(t *testing.T) {
	c, err := NewContract("bench thermometer", "4fafc201-1fb5-459e-8fcc-c5c9c331914b", "beb5483e-36e1-4688-b7f5-ea07361b26a8")
	require.NoError(t, err)
	require.Equal(t, "bench thermometer", c.LocalName)

	_, err = NewContract("", "not-a-uuid", "beb5483e-36e1-4688-b7f5-ea07361b26a8")
	require.Error(t, err)

	_, err = NewContract("", "4fafc201-1fb5-459e-8fcc-c5c9c331914b", "4fafc201-1fb5-459e-8fcc-c5c9c331914b")
	require.Error(t, err)
}

func TestFormatParseRoundTrip(t *testing.T) {
	tests := []struct {
		v         float64
		precision int
		text      string
	}{
		{37.3241, 2, "37.32"},
		{-4.005, 2, "-4.00"},
		{0, 2, "0.00"},
		{36.6, -1, "36.6"},
		{101.256, 1, "101.3"},
	}
	for _, tt := range tests {
		b := FormatValue(tt.v, tt.precision)
		if string(b) != tt.text {
			t.Errorf("FormatValue(%v, %d) = %q, want %q", tt.v, tt.precision, b, tt.text)
		}

		got, err := ParseValue(b)
		require.NoError(t, err)

		tol := 1e-12
		if tt.precision >= 0 {
			tol = 0.5*math.Pow(10, -float64(tt.precision)) + 1e-9
		}
		if math.Abs(got-tt.v) > tol {
			t.Errorf("round trip %v: got %v (tolerance %v)", tt.v, got, tol)
		}
	}
}

func TestParseValueRejectsGarbage(t *testing.T) {
	_, err := ParseValue([]byte("warm"))
	require.Error(t, err)

	v, err := ParseValue([]byte(" 36.60\n"))
	require.NoError(t, err)
	require.Equal(t, 36.6, v)
}

func TestLoopbackConnectAdvertisesThenNotifies(t *testing.T) {
	h := &countingHandler{}
	l := NewLoopback(h)

	require.NoError(t, l.Publish([]byte("36.00")))
	require.Empty(t, l.Notified())
	require.Equal(t, "36.00", string(l.Value()))

	l.Connect()
	require.Equal(t, 1, h.connects)
	require.Equal(t, 1, l.Advertises())
	require.True(t, l.Advertising())

	require.NoError(t, l.Publish([]byte("36.10")))
	require.Len(t, l.Notified(), 1)

	l.Disconnect()
	require.Equal(t, 1, h.disconnects)
	require.False(t, l.Advertising())
}

func TestPermissions(t *testing.T) {
	got := permissions(DefaultProperties)
	want := bluetooth.CharacteristicReadPermission |
		bluetooth.CharacteristicWritePermission |
		bluetooth.CharacteristicNotifyPermission |
		bluetooth.CharacteristicIndicatePermission
	require.Equal(t, want, got)

	require.Equal(t, bluetooth.CharacteristicReadPermission, permissions(PropertyRead))
}
