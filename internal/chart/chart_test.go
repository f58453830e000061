package chart

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/irtemp/internal/history"
)

func TestColor(t *testing.T) {
	tests := []struct {
		v    float64
		want lipgloss.Color
	}{
		{36.5, colorOk},
		{37.2, colorWarm},
		{37.8, colorHigh},
		{39.4, colorCrit},
	}
	for _, tt := range tests {
		if got := Body.Color(tt.v); got != tt.want {
			t.Errorf("Body.Color(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
	if got := (Thresholds{}).Color(1000); got != colorOk {
		t.Errorf("empty thresholds: got %v, want %v", got, colorOk)
	}
}

func TestSparkline(t *testing.T) {
	var pts []history.Point
	for _, v := range []float64{35, 35.5, 36, 36.5, 37, 37.5, 38, 39, 40} {
		pts = append(pts, history.Point{Value: v})
	}
	result := RenderSparkline(pts, 20, 34, 41, Body)
	if len(result) == 0 {
		t.Error("sparkline should not be empty")
	}
	if RenderSparkline(nil, 0, 0, 1, Body) != "" {
		t.Error("zero width should render nothing")
	}
	t.Logf("Sparkline: %s", result)
}

func TestSparklineMinuteTicks(t *testing.T) {
	base := time.Date(2026, 2, 21, 14, 0, 50, 0, time.Local)
	var pts []history.Point
	for i := 0; i < 20; i++ {
		pts = append(pts, history.Point{
			Value: 36 + float64(i%5)/10,
			Time:  base.Add(time.Duration(i) * time.Second),
		})
	}

	result := RenderSparkline(pts, 20, 35, 38, Body)
	if !strings.Contains(result, "│") {
		t.Error("expected minute tick mark in sparkline")
	}

	timeline := RenderTimeline(pts, 20)
	if !strings.Contains(timeline, "14:01") {
		t.Errorf("expected 14:01 label, got %q", timeline)
	}
}

func TestScaleMarksCurrent(t *testing.T) {
	s := RenderScale(36.8, 34, 41, Body, 30)
	if !strings.Contains(s, "◆") {
		t.Error("expected current marker")
	}
	if strings.Count(s, "▪") != 2 {
		t.Errorf("expected two threshold markers in %q", s)
	}
}

func TestRenderValue(t *testing.T) {
	if s := RenderValue(37.32, "°C", Body); !strings.Contains(s, "37.32°C") {
		t.Errorf("RenderValue: got %q", s)
	}
}
