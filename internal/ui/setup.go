package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rotisserie/eris"
	"golang.org/x/term"

	"github.com/cybre/matrix-sound-meter/internal/utils"
)

var (
	ErrSelectionAborted = eris.New("selection aborted")
	ErrNoInteractiveTTY = eris.New("no interactive terminal available")
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78")).
			Bold(true)
	pickerHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244")).
				Underline(true)
	pickerRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))
	pickerCursorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("16")).
				Background(lipgloss.Color("78")).
				Bold(true)
	pickerBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("221"))
	pickerKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("78")).
			Bold(true)
)

// DeviceChoice is one capture device offered by the picker.
type DeviceChoice struct {
	Name       string
	SampleRate float64
	Channels   int
	Latency    time.Duration
	Default    bool
}

// DefaultChoice returns the index of the host default device, or 0.
func DefaultChoice(devices []DeviceChoice) int {
	for i, d := range devices {
		if d.Default {
			return i
		}
	}
	return 0
}

// RunDeviceSetup asks the user to pick a microphone. The cursor starts on the
// host default device. Without a terminal the default is returned together
// with ErrNoInteractiveTTY.
func RunDeviceSetup(devices []DeviceChoice) (int, error) {
	if len(devices) == 0 {
		return 0, eris.New("no input devices available")
	}

	initial := DefaultChoice(devices)
	if !isInteractiveTerminal() {
		return initial, ErrNoInteractiveTTY
	}

	finalModel, err := tea.NewProgram(newSetupModel(devices, initial)).Run()
	if err != nil {
		return 0, eris.Wrap(err, "run device setup")
	}

	result := finalModel.(setupModel)
	if result.err != nil {
		return 0, result.err
	}
	return result.cursor, nil
}

type setupModel struct {
	devices []DeviceChoice
	cursor  int
	done    bool
	err     error
}

func newSetupModel(devices []DeviceChoice, initial int) setupModel {
	return setupModel{
		devices: devices,
		cursor:  utils.ClampIndex(initial, len(devices)),
	}
}

func (m setupModel) Init() tea.Cmd {
	return nil
}

func (m setupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc", "q":
		m.err = ErrSelectionAborted
		return m, tea.Quit
	case "up", "k":
		m.cursor = utils.WrapIndex(m.cursor-1, len(m.devices))
	case "down", "j", "tab":
		m.cursor = utils.WrapIndex(m.cursor+1, len(m.devices))
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = len(m.devices) - 1
	case "d":
		m.cursor = DefaultChoice(m.devices)
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m setupModel) View() string {
	if m.done {
		return ""
	}

	return strings.Join([]string{
		"",
		titleStyle.Render("Select a microphone"),
		"",
		renderDeviceTable(m.devices, m.cursor),
		"",
		renderKeyHints(),
		"",
	}, "\n")
}

func renderDeviceTable(devices []DeviceChoice, cursor int) string {
	nameWidth := len("device")
	for _, d := range devices {
		nameWidth = max(nameWidth, lipgloss.Width(d.Name))
	}

	rowFormat := fmt.Sprintf("%%3s  %%-%ds  %%8s  %%2s  %%7s", nameWidth)
	lines := []string{pickerHeaderStyle.Render(fmt.Sprintf(rowFormat, "#", "device", "rate", "ch", "latency"))}

	for i, d := range devices {
		row := fmt.Sprintf(rowFormat,
			fmt.Sprint(i),
			d.Name,
			fmt.Sprintf("%.0fHz", d.SampleRate),
			fmt.Sprint(d.Channels),
			fmt.Sprintf("%.1fms", float64(d.Latency.Microseconds())/1000),
		)

		style := pickerRowStyle
		if i == cursor {
			style = pickerCursorStyle
		}
		line := style.Render(row)
		if d.Default {
			line += " " + pickerBadgeStyle.Render("default")
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func renderKeyHints() string {
	hints := [][2]string{
		{"↑↓", "move"},
		{"d", "default"},
		{"enter", "use"},
		{"esc", "cancel"},
	}

	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = pickerKeyStyle.Render(h[0]) + " " + vizHintStyle.Render(h[1])
	}
	return strings.Join(parts, vizHintStyle.Render("  "))
}

func isInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
