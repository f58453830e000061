// Package monitor implements the live thermometer TUI using BubbleTea with
// a sparkline trend and colour-coded fever thresholds. The notify loop feeds
// it through Display.
package monitor

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/luki/irtemp/internal/chart"
	"github.com/luki/irtemp/internal/history"
	"github.com/luki/irtemp/internal/link"
	"github.com/luki/irtemp/internal/sensor"
)

const (
	historySize = 1200 // 10 minutes at the default 500ms cadence
	uptimeTick  = time.Second
)

// ── Messages ─────────────────────────────────────────────────────────

type readingMsg sensor.Reading

type linkMsg link.State

type statusMsg struct {
	text string
	time time.Time
}

type tickMsg time.Time

// ── Display adapter ──────────────────────────────────────────────────

// Sender is the part of *tea.Program the adapter needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Display forwards loop output to a running program.
type Display struct {
	p Sender
}

func NewDisplay(p Sender) *Display { return &Display{p: p} }

func (d *Display) Reading(r sensor.Reading) { d.p.Send(readingMsg(r)) }
func (d *Display) Link(s link.State)        { d.p.Send(linkMsg(s)) }
func (d *Display) Status(line string) {
	d.p.Send(statusMsg{text: line, time: time.Now()})
}

// ── Model ────────────────────────────────────────────────────────────

// Info is static text for the title and BLE panel.
type Info struct {
	DeviceName     string
	Service        string
	Characteristic string
	Emissivity     float64
}

// Model is the BubbleTea model for the live monitor.
type Model struct {
	info       Info
	latest     sensor.Reading
	hasReading bool
	history    *history.Store
	link       link.State
	status     string
	statusAt   time.Time
	readings   int
	width      int
	height     int
	startTime  time.Time
	now        time.Time
	paused     bool
}

// New creates the initial model.
func New(info Info) Model {
	now := time.Now()
	return Model{
		info:      info,
		history:   history.NewStore(historySize),
		startTime: now,
		now:       now,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(uptimeTick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ── Init / Update ────────────────────────────────────────────────────

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "p":
			m.paused = !m.paused
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()

	case readingMsg:
		r := sensor.Reading(msg)
		m.readings++
		m.history.RecordReading(r)
		if !m.paused {
			m.latest = r
			m.hasReading = true
		}

	case linkMsg:
		m.link = link.State(msg)

	case statusMsg:
		m.status = msg.text
		m.statusAt = msg.time
	}

	return m, nil
}

// ── Color palette ────────────────────────────────────────────────────

var (
	colorTitleBg  = lipgloss.Color("17")
	colorTitleFg  = lipgloss.Color("51")
	colorBorder   = lipgloss.Color("62")
	colorHeading  = lipgloss.Color("147")
	colorLabel    = lipgloss.Color("252")
	colorDim      = lipgloss.Color("240")
	colorFooterBg = lipgloss.Color("235")
	colorLinked   = lipgloss.Color("78")
	colorPaused   = lipgloss.Color("196")
)

// ── View ─────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "  Initializing..."
	}

	contentWidth := max(m.width-2, 40)

	sections := []string{m.renderTitleBar(contentWidth)}

	if !m.hasReading {
		waiting := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(contentWidth).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("Waiting for sensor data...")
		sections = append(sections, waiting)
	} else {
		sections = append(sections, m.renderTemperaturePanel(contentWidth))
		if m.latest.HasDust {
			sections = append(sections, m.renderDustPanel(contentWidth))
		}
	}

	sections = append(sections, m.renderLinkPanel(contentWidth))
	sections = append(sections, m.renderFooter(contentWidth))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	lines := strings.Split(content, "\n")
	if m.height > 0 && len(lines) > m.height {
		lines = lines[:m.height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTitleBar(width int) string {
	logo := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorTitleFg).
		Render("IR THERMOMETER")

	dim := lipgloss.NewStyle().Foreground(colorDim)
	statusParts := []string{
		dim.Render(m.info.DeviceName),
		dim.Render(fmt.Sprintf("ε %.2f", m.info.Emissivity)),
		dim.Render("up " + fmtDuration(m.now.Sub(m.startTime))),
	}
	if m.hasReading {
		statusParts = append(statusParts, dim.Render(m.latest.Time.Format("15:04:05")))
	}
	if m.paused {
		statusParts = append(statusParts, lipgloss.NewStyle().Foreground(colorPaused).Bold(true).Render("PAUSED"))
	}

	sep := dim.Render(" │ ")
	right := strings.Join(statusParts, sep)

	gap := max(width-lipgloss.Width(logo)-lipgloss.Width(right)-4, 1)

	return lipgloss.NewStyle().
		Background(colorTitleBg).
		Width(width).
		Padding(0, 1).
		Render(logo + strings.Repeat(" ", gap) + right)
}

type row struct {
	label  string
	series history.Series
	value  float64
	unit   string
	th     chart.Thresholds
}

func (m Model) renderRows(width int, rows []row) []string {
	innerWidth := max(width-4, 30)
	chartWidth := min(max(innerWidth-56, 15), 140)

	labelW := 12
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	valS := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	frameL := lipgloss.NewStyle().Foreground(colorBorder).Render("▕")
	frameR := lipgloss.NewStyle().Foreground(colorBorder).Render("▏")

	var out []string
	var lastPts []history.Point
	for _, r := range rows {
		buf := m.history.Get(r.series)
		if buf == nil {
			continue
		}
		pts := buf.LastN(chartWidth)
		lastPts = pts

		lo, hi := buf.Min()-1, buf.Max()+1
		if r.th.Crit != 0 && r.th.Crit > hi && r.th.Crit-hi < 3 {
			hi = r.th.Crit + 0.5
		}

		label := lipgloss.NewStyle().Foreground(colorLabel).Width(labelW).Render(r.label)
		value := chart.RenderValue(r.value, r.unit, r.th)
		spark := frameL + chart.RenderSparkline(pts, chartWidth, lo, hi, r.th) + frameR
		stats := dimS.Render(" avg") + valS.Render(fmt.Sprintf("%6.2f", buf.Avg())) +
			dimS.Render(" lo") + valS.Render(fmt.Sprintf("%6.2f", buf.Min())) +
			dimS.Render(" pk") + valS.Render(fmt.Sprintf("%6.2f", buf.Max()))

		out = append(out, label+" "+value+" "+spark+stats)
	}

	if lastPts != nil {
		timeline := chart.RenderTimeline(lastPts, chartWidth)
		if strings.TrimSpace(timeline) != "" {
			pad := strings.Repeat(" ", labelW+1+8+1+1)
			out = append(out, pad+timeline)
		}
	}
	return out
}

func (m Model) panel(width int, heading string, rows []string) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(colorHeading).Render(heading)
	content := lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, rows...)...)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		Width(width).
		Render(content)
}

func (m Model) renderTemperaturePanel(width int) string {
	r := m.latest
	rows := m.renderRows(width, []row{
		{"Corrected", history.Corrected, r.CorrectedC, "°C", chart.Body},
		{"Object", history.Object, r.ObjectC, "°C", chart.Body},
		{"Ambient", history.Ambient, r.AmbientC, "°C", chart.Thresholds{}},
	})

	scale := chart.RenderScale(r.CorrectedC, 34, 41, chart.Body, min(max(width-20, 10), 60))
	rows = append(rows, lipgloss.NewStyle().Foreground(colorDim).Render("34°C ")+scale+
		lipgloss.NewStyle().Foreground(colorDim).Render(" 41°C"))

	return m.panel(width, "Temperature", rows)
}

func (m Model) renderDustPanel(width int) string {
	r := m.latest
	rows := m.renderRows(width, []row{
		{"Density", history.Dust, r.DustDensity, "µg", chart.Dust},
	})
	rows = append(rows, lipgloss.NewStyle().Foreground(colorDim).
		Render(fmt.Sprintf("raw %d  filtered %d", r.DustRaw, r.DustFiltered)))
	return m.panel(width, "Particulate", rows)
}

func (m Model) renderLinkPanel(width int) string {
	dim := lipgloss.NewStyle().Foreground(colorDim)
	state := lipgloss.NewStyle().Foreground(colorDim).Render("advertising")
	if m.link == link.Connected {
		state = lipgloss.NewStyle().Foreground(colorLinked).Bold(true).Render("connected")
	}

	rows := []string{
		dim.Render("state ") + state + dim.Render(fmt.Sprintf("   readings %d", m.readings)),
		dim.Render("service ") + m.info.Service,
		dim.Render("characteristic ") + m.info.Characteristic,
	}
	if m.status != "" {
		rows = append(rows, dim.Render(m.statusAt.Format("15:04:05")+" ")+
			lipgloss.NewStyle().Foreground(colorLabel).Render(m.status))
	}
	return m.panel(width, "BLE", rows)
}

func (m Model) renderFooter(width int) string {
	dimS := lipgloss.NewStyle().Foreground(colorDim)
	swatch := func(th chart.Thresholds, v float64) string {
		return lipgloss.NewStyle().Foreground(th.Color(v)).Render("██")
	}
	legend := swatch(chart.Body, 36) + dimS.Render(" normal ") +
		swatch(chart.Body, chart.Body.Warm) + dimS.Render(" warm ") +
		swatch(chart.Body, chart.Body.High) + dimS.Render(" fever ") +
		swatch(chart.Body, chart.Body.Crit) + dimS.Render(" high fever")

	keyS := lipgloss.NewStyle().Foreground(colorLabel)
	keys := dimS.Render("q") + keyS.Render(":quit") +
		dimS.Render("  p") + keyS.Render(":pause")

	gap := max(width-lipgloss.Width(legend)-lipgloss.Width(keys)-4, 1)

	return lipgloss.NewStyle().
		Background(colorFooterBg).
		Width(width).
		Padding(0, 1).
		Render(legend + strings.Repeat(" ", gap) + keys)
}

func fmtDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	mi := d / time.Minute
	d -= mi * time.Minute
	s := d / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, mi, s)
	}
	return fmt.Sprintf("%dm%02ds", mi, s)
}
