package ui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/crazy3lf/colorconv"

	"github.com/cybre/matrix-sound-meter/internal/display"
	"github.com/cybre/matrix-sound-meter/internal/led"
	"github.com/cybre/matrix-sound-meter/internal/sensitivity"
	"github.com/cybre/matrix-sound-meter/internal/utils"
)

// Visualizer mirrors the LED matrix and the text display in the terminal.
// Key presses are forwarded as button events.
type Visualizer struct {
	program   *tea.Program
	mu        sync.Mutex
	lastSend  time.Time
	throttle  time.Duration
	closeOnce sync.Once
}

type frameMsg struct {
	frame      led.Frame
	receivedAt time.Time
}

type readoutMsg struct {
	readout display.Readout
}

type visualizerModel struct {
	frame       led.Frame
	readout     display.Readout
	lastUpdated time.Time
	ready       bool
	width       int
	height      int
	buttons     *sensitivity.Debouncer
	onExit      func()
	exitOnce    sync.Once
}

var (
	vizContainerStyle = lipgloss.NewStyle().Padding(0, 2)
	vizTimestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	vizMetricLabel    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	vizMetricValue    = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	vizReadoutStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Bold(true)
	vizWaitingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	vizHintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	vizOffCellStyle   = lipgloss.NewStyle().Background(lipgloss.Color("235"))
	vizEmptyBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("237"))
	vizGridStyle      = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("238"))

	vizLabelStyles = map[string]lipgloss.Style{
		"Silent":    lipgloss.NewStyle().Foreground(lipgloss.Color("78")).Bold(true),
		"Moderate":  lipgloss.NewStyle().Foreground(lipgloss.Color("221")).Bold(true),
		"Loud":      lipgloss.NewStyle().Foreground(lipgloss.Color("209")).Bold(true),
		"Dangerous": lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true).Blink(true),
	}
)

const (
	vizBarWidth   = 32
	renderLatency = 45 * time.Millisecond
	// brightest component the meter ever emits
	ledFullScale = 100.0
)

// NewVisualizer starts the terminal program. Presses are pushed to buttons
// when it is non-nil; onExit runs once when the user quits.
func NewVisualizer(buttons *sensitivity.Debouncer, onExit func()) *Visualizer {
	model := &visualizerModel{buttons: buttons, onExit: onExit}
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithoutSignalHandler())

	v := &Visualizer{
		program:  program,
		throttle: renderLatency,
	}

	go program.Run()

	return v
}

// WriteFrame mirrors f. Frames arriving faster than the render latency are
// dropped.
func (v *Visualizer) WriteFrame(_ context.Context, f led.Frame) error {
	v.mu.Lock()
	if time.Since(v.lastSend) < v.throttle {
		v.mu.Unlock()
		return nil
	}
	v.lastSend = time.Now()
	v.mu.Unlock()

	v.program.Send(frameMsg{
		frame:      f,
		receivedAt: time.Now(),
	})
	return nil
}

// ShowReadout mirrors the text display.
func (v *Visualizer) ShowReadout(r display.Readout) {
	v.program.Send(readoutMsg{readout: r})
}

// Close stops the terminal program.
func (v *Visualizer) Close() {
	v.closeOnce.Do(func() {
		v.program.Quit()
	})
}

func (m *visualizerModel) Init() tea.Cmd {
	return nil
}

func (m *visualizerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case frameMsg:
		m.frame = msg.frame
		m.lastUpdated = msg.receivedAt
		m.ready = true
	case readoutMsg:
		m.readout = msg.readout
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.invokeExit()
			return m, tea.Quit
		case "a", " ":
			m.press(sensitivity.EventAdvance)
		case "b":
			m.press(sensitivity.EventMaintenance)
		}
	case tea.QuitMsg:
		return m, tea.Quit
	}
	return m, nil
}

func (m *visualizerModel) press(kind sensitivity.EventKind) {
	if m.buttons == nil {
		return
	}
	m.buttons.Push(kind, time.Now())
}

func (m *visualizerModel) View() string {
	body := ""
	if !m.ready {
		header := titleStyle.Render("Sound Level Meter")
		waiting := vizWaitingStyle.Render("Waiting for the first window…")
		body = lipgloss.JoinVertical(lipgloss.Left, header, "", waiting)
	} else {
		body = renderVisualizerView(m.frame, m.readout, m.lastUpdated)
	}
	return vizContainerStyle.Render(body)
}

func renderVisualizerView(frame led.Frame, readout display.Readout, updatedAt time.Time) string {
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render("Sound Level Meter"),
		"  ",
		vizTimestampStyle.Render(updatedAt.Format("15:04:05.000")),
	)

	panel := lipgloss.JoinHorizontal(lipgloss.Top,
		renderMatrix(frame),
		"   ",
		renderReadout(readout),
	)
	controls := vizHintStyle.Render("a/space sensitivity · b maintenance · q/esc quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, "", panel, "", controls)
}

// renderMatrix draws the top row first; row 0 is the bottom of the matrix.
func renderMatrix(frame led.Frame) string {
	rows := make([]string, led.Height)
	for y := led.Height - 1; y >= 0; y-- {
		var b strings.Builder
		for x := range led.Width {
			b.WriteString(renderCell(frame.At(x, y)))
		}
		rows[led.Height-1-y] = b.String()
	}
	return vizGridStyle.Render(strings.Join(rows, "\n"))
}

func renderCell(c led.Color) string {
	if c.IsOff() {
		return vizOffCellStyle.Render("    ")
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(terminalColor(c))).
		Render("    ")
}

// terminalColor keeps the hue of a dim LED colour and lifts its brightness so
// it reads on a terminal background.
func terminalColor(c led.Color) string {
	h, s, v := colorconv.RGBToHSV(c.R, c.G, c.B)
	level := utils.Clamp(v*255/ledFullScale, 0.0, 1.0)
	return hexColorFromHSV(h, s, 0.45+0.55*level)
}

func renderReadout(r display.Readout) string {
	labelStyle, ok := vizLabelStyles[r.Label]
	if !ok {
		labelStyle = vizMetricValue
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		vizReadoutStyle.Render(r.Text),
		labelStyle.Render(r.Label),
		"",
		renderProgress(r.Progress),
		"",
		renderMetric("Sens", r.LevelGauge),
		renderMetric("Level", fmt.Sprintf("%d", r.Level)),
	)
}

func renderMetric(label, value string) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		vizMetricLabel.Render(label+":"),
		" ",
		vizMetricValue.Render(value),
	)
}

// renderProgress fills the bar with a green to red ramp.
func renderProgress(progress uint8) string {
	clamped := utils.Clamp(float64(progress)/100, 0.0, 1.0)
	filled := int(math.Round(clamped * vizBarWidth))
	if clamped > 0 && filled == 0 {
		filled = 1
	}

	var b strings.Builder
	b.Grow(128)
	b.WriteString("[")
	for i := range filled {
		p := float64(i) / float64(vizBarWidth-1)
		hue := 120 - 120*p
		b.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(hexColorFromHSV(hue, 0.85, 0.9))).
			Render("█"))
	}
	for range vizBarWidth - filled {
		b.WriteString(vizEmptyBarStyle.Render("░"))
	}
	b.WriteString("] ")
	b.WriteString(vizMetricValue.Render(fmt.Sprintf("%3d%%", progress)))
	return b.String()
}

func hexColorFromHSV(h, s, v float64) string {
	s = utils.Clamp(s, 0.0, 1.0)
	v = utils.Clamp(v, 0.0, 1.0)
	r, g, b, err := colorconv.HSVToRGB(h, s, v)
	if err != nil {
		return "#FFFFFF"
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func (m *visualizerModel) invokeExit() {
	m.exitOnce.Do(func() {
		if m.onExit != nil {
			m.onExit()
		}
	})
}
