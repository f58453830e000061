package monitor

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/luki/irtemp/internal/link"
	"github.com/luki/irtemp/internal/sensor"
)

type capture struct{ msgs []tea.Msg }

func (c *capture) Send(msg tea.Msg) { c.msgs = append(c.msgs, msg) }

func feed(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func testInfo() Info {
	return Info{
		DeviceName:     "irtemp",
		Service:        "4fafc201-1fb5-459e-8fcc-c5c9c331914b",
		Characteristic: "beb5483e-36e1-4688-b7f5-ea07361b26a8",
		Emissivity:     0.98,
	}
}

func TestDisplayForwardsMessages(t *testing.T) {
	c := &capture{}
	d := NewDisplay(c)
	d.Reading(sensor.Reading{CorrectedC: 37})
	d.Link(link.Connected)
	d.Status("start advertising")

	if len(c.msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(c.msgs))
	}
	m := feed(New(testInfo()), c.msgs...)
	if !m.hasReading || m.latest.CorrectedC != 37 {
		t.Errorf("latest: got %+v", m.latest)
	}
	if m.link != link.Connected {
		t.Errorf("link: got %v, want connected", m.link)
	}
	if m.status != "start advertising" {
		t.Errorf("status: got %q", m.status)
	}
}

func TestViewShowsReading(t *testing.T) {
	base := time.Date(2026, 2, 21, 14, 0, 0, 0, time.Local)
	m := feed(New(testInfo()), tea.WindowSizeMsg{Width: 120, Height: 60})

	if v := m.View(); !strings.Contains(v, "Waiting for sensor data") {
		t.Error("expected waiting text before first reading")
	}

	for i := 0; i < 10; i++ {
		m = feed(m, readingMsg(sensor.Reading{
			Time:        base.Add(time.Duration(i) * 500 * time.Millisecond),
			AmbientC:    21,
			ObjectC:     36.8 + float64(i)/10,
			CorrectedC:  37.1 + float64(i)/10,
			HasDust:     true,
			DustDensity: 8,
		}))
	}
	m = feed(m, linkMsg(link.Connected))

	v := m.View()
	for _, want := range []string{"IR THERMOMETER", "Corrected", "38.00°C", "Particulate", "connected", "4fafc201"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestPauseFreezesLatest(t *testing.T) {
	m := feed(New(testInfo()),
		readingMsg(sensor.Reading{CorrectedC: 36.5}),
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")},
		readingMsg(sensor.Reading{CorrectedC: 38.5}),
	)
	if m.latest.CorrectedC != 36.5 {
		t.Errorf("paused latest: got %v, want 36.5", m.latest.CorrectedC)
	}
	if m.readings != 2 {
		t.Errorf("readings: got %d, want 2", m.readings)
	}
}

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{75 * time.Second, "1m15s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h02m03s"},
	}
	for _, tt := range tests {
		if got := fmtDuration(tt.d); got != tt.want {
			t.Errorf("fmtDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
