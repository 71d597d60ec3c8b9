package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

var (
	labelColors = map[string]*color.Color{
		"Silent":    color.New(color.FgGreen),
		"Moderate":  color.New(color.FgYellow),
		"Loud":      color.New(color.FgRed),
		"Dangerous": color.New(color.FgHiRed, color.Bold),
	}
	valueColor = color.New(color.FgHiWhite, color.Bold)
	gaugeColor = color.New(color.FgCyan)
)

// Console prints one line per readout, for headless runs.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole writes readouts to out.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// ShowReadout prints r.
func (c *Console) ShowReadout(r Readout) {
	c.mu.Lock()
	defer c.mu.Unlock()

	label := r.Label
	if lc, ok := labelColors[r.Label]; ok {
		label = lc.Sprint(r.Label)
	}

	fmt.Fprintf(c.out, "%s  %-9s  %3d%%  Sens: %s\n",
		valueColor.Sprintf("%8s", r.Text),
		label,
		r.Progress,
		gaugeColor.Sprint(r.LevelGauge),
	)
}
