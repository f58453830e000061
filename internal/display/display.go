// Package display writes the device status line to a terminal or log
// stream, one line per update.
package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/luki/irtemp/internal/chart"
	"github.com/luki/irtemp/internal/link"
	"github.com/luki/irtemp/internal/sensor"
)

// Line prints readings and status changes as single lines. Colour is only
// emitted when w is a terminal.
type Line struct {
	mu     sync.Mutex
	w      io.Writer
	dim    lipgloss.Style
	label  lipgloss.Style
	accent lipgloss.Style
	r      *lipgloss.Renderer
}

func NewLine(w io.Writer) *Line {
	r := lipgloss.NewRenderer(w)
	return &Line{
		w:      w,
		r:      r,
		dim:    r.NewStyle().Foreground(lipgloss.Color("240")),
		label:  r.NewStyle().Foreground(lipgloss.Color("252")),
		accent: r.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
	}
}

func (l *Line) Reading(rd sensor.Reading) {
	value := l.r.NewStyle().Foreground(chart.Body.Color(rd.CorrectedC)).Bold(true).
		Render(fmt.Sprintf("%.2f°C", rd.CorrectedC))

	line := l.label.Render("corrected ") + value +
		l.dim.Render(fmt.Sprintf("  object %.2f°C  ambient %.2f°C", rd.ObjectC, rd.AmbientC))
	if rd.HasDust {
		line += l.dim.Render(fmt.Sprintf("  dust %.1fµg/m³", rd.DustDensity))
	}
	l.println(line)
}

func (l *Line) Link(s link.State) {
	l.println(l.label.Render("BLE ") + l.accent.Render(s.String()))
}

func (l *Line) Status(line string) {
	l.println(l.dim.Render("» ") + l.label.Render(line))
}

func (l *Line) println(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}
