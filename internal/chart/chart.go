// Package chart renders colour-coded sparklines, timeline labels and
// threshold scales for the live display.
package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/irtemp/internal/history"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

var (
	colorOk   = lipgloss.Color("78")
	colorWarm = lipgloss.Color("220")
	colorHigh = lipgloss.Color("208")
	colorCrit = lipgloss.Color("196")
	colorTick = lipgloss.Color("239")
	colorPad  = lipgloss.Color("236")
)

// Thresholds colour a value. A zero field disables that band.
type Thresholds struct {
	Warm float64
	High float64
	Crit float64
}

// Body is for skin and body temperatures: 37.5 °C fever, 39 °C high fever.
var Body = Thresholds{Warm: 37.2, High: 37.5, Crit: 39.0}

// Dust follows the WHO 24h PM2.5 guideline and the "unhealthy" AQI band.
var Dust = Thresholds{Warm: 12, High: 15, Crit: 55}

// Color returns the colour for v.
func (th Thresholds) Color(v float64) lipgloss.Color {
	switch {
	case th.Crit != 0 && v >= th.Crit:
		return colorCrit
	case th.High != 0 && v >= th.High:
		return colorHigh
	case th.Warm != 0 && v >= th.Warm:
		return colorWarm
	default:
		return colorOk
	}
}

// RenderSparkline draws points scaled into [rangeMin, rangeMax]. A tick is
// drawn at each minute boundary. Missing width is padded on the left.
func RenderSparkline(points []history.Point, width int, rangeMin, rangeMax float64, th Thresholds) string {
	if width <= 0 {
		return ""
	}

	dim := lipgloss.NewStyle().Foreground(colorPad)
	if len(points) == 0 {
		return dim.Render(strings.Repeat("╌", width))
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	padLen := width - len(points)
	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder
	for i := 0; i < padLen; i++ {
		sb.WriteString(dim.Render("╌"))
	}

	tickStyle := lipgloss.NewStyle().Foreground(colorTick)

	for i, p := range points {
		if isMinuteTick(points, i) {
			sb.WriteString(tickStyle.Render("│"))
			continue
		}

		norm := (p.Value - rangeMin) / span
		norm = math.Max(0, math.Min(1, norm))
		idx := int(norm * 7)
		if idx > 7 {
			idx = 7
		}

		style := lipgloss.NewStyle().Foreground(th.Color(p.Value))
		if th.Crit != 0 && p.Value >= th.Crit {
			style = style.Bold(true)
		}
		sb.WriteString(style.Render(string(sparkBlocks[idx])))
	}

	return sb.String()
}

func isMinuteTick(points []history.Point, i int) bool {
	p := points[i]
	if p.Time.IsZero() || i == 0 {
		return false
	}
	prev := points[i-1].Time
	if prev.IsZero() {
		return false
	}
	return p.Time.Minute() != prev.Minute() || p.Time.Hour() != prev.Hour()
}

// RenderTimeline renders HH:MM labels under the sparkline at each minute
// tick, skipping labels that would overlap.
func RenderTimeline(points []history.Point, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	padLen := width - len(points)

	line := []rune(strings.Repeat(" ", width))
	lastEnd := -1
	for i, p := range points {
		if !isMinuteTick(points, i) {
			continue
		}
		label := p.Time.Format("15:04")
		start := padLen + i - 2
		if start < 0 {
			start = 0
		}
		end := start + len(label)
		if end > width || start <= lastEnd+1 {
			continue
		}
		copy(line[start:], []rune(label))
		lastEnd = end
	}

	return lipgloss.NewStyle().Foreground(colorTick).Render(string(line))
}

// RenderScale draws a bar from rangeMin to rangeMax marking the thresholds
// and the current value.
func RenderScale(current, rangeMin, rangeMax float64, th Thresholds, width int) string {
	if width <= 0 {
		return ""
	}

	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}
	pos := func(v float64) int {
		p := int(float64(width-1) * (v - rangeMin) / span)
		return max(0, min(width-1, p))
	}

	highPos, critPos := -1, -1
	if th.High > rangeMin && th.High <= rangeMax {
		highPos = pos(th.High)
	}
	if th.Crit > rangeMin && th.Crit <= rangeMax {
		critPos = pos(th.Crit)
	}
	curPos := pos(current)

	var sb strings.Builder
	for i := 0; i < width; i++ {
		switch i {
		case curPos:
			sb.WriteString(lipgloss.NewStyle().Foreground(th.Color(current)).Bold(true).Render("◆"))
		case critPos:
			sb.WriteString(lipgloss.NewStyle().Foreground(colorCrit).Render("▪"))
		case highPos:
			sb.WriteString(lipgloss.NewStyle().Foreground(colorWarm).Render("▪"))
		default:
			sb.WriteString(lipgloss.NewStyle().Foreground(colorPad).Render("·"))
		}
	}
	return sb.String()
}

// RenderValue renders v with its unit in the threshold colour.
func RenderValue(v float64, unit string, th Thresholds) string {
	style := lipgloss.NewStyle().Foreground(th.Color(v))
	if th.Crit != 0 && v >= th.Crit {
		style = style.Bold(true)
	}
	return style.Render(fmt.Sprintf("%6.2f%s", v, unit))
}
