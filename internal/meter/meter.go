// Package meter runs the acquisition, estimation and rendering cycle of the
// sound-level meter.
package meter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/cybre/matrix-sound-meter/internal/acquire"
	"github.com/cybre/matrix-sound-meter/internal/display"
	"github.com/cybre/matrix-sound-meter/internal/dsp"
	"github.com/cybre/matrix-sound-meter/internal/led"
	"github.com/cybre/matrix-sound-meter/internal/matrix"
	"github.com/cybre/matrix-sound-meter/internal/sensitivity"
)

// DefaultPollInterval is the pause between two cycles.
const DefaultPollInterval = 200 * time.Millisecond

// ErrMaintenanceRequested is returned by Run when the maintenance button was
// pressed.
var ErrMaintenanceRequested = eris.New("maintenance mode requested")

// FrameWriter receives every rendered LED frame.
type FrameWriter interface {
	WriteFrame(ctx context.Context, f led.Frame) error
}

// Display receives the text readout of every cycle.
type Display interface {
	ShowReadout(r display.Readout)
}

// Mode selects what the matrix shows.
type Mode int

const (
	// ModeMeter shows the level meter and the sensitivity indicator.
	ModeMeter Mode = iota
	// ModeDigits shows the tens digit of the reading.
	ModeDigits
)

// String returns a human-friendly name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeMeter:
		return "meter"
	case ModeDigits:
		return "digits"
	default:
		return "unknown"
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "meter":
		return ModeMeter, nil
	case "digits":
		return ModeDigits, nil
	default:
		return ModeMeter, eris.Errorf("unknown display mode %q", s)
	}
}

// Options tunes the cycle.
type Options struct {
	Mode         Mode
	PollInterval time.Duration
	SampleRate   float64
	SelfTest     bool
	SelfTestStep time.Duration
	Palette      matrix.Palette
}

// Sinks are the outputs of the cycle.
type Sinks struct {
	Frames   []FrameWriter
	Displays []Display
}

// Reading is the result of one cycle.
type Reading struct {
	Level   sensitivity.Level
	Stats   dsp.Stats
	DB      float64
	Frame   led.Frame
	Readout display.Readout
	Elapsed time.Duration
}

// Meter owns everything a cycle needs. Only the sensitivity controller
// outlives a single cycle; windows and estimates are rebuilt every time.
type Meter struct {
	logger     *slog.Logger
	source     acquire.Source
	sinks      Sinks
	controller *sensitivity.Controller
	buttons    *sensitivity.Debouncer
	renderer   *matrix.Renderer
	analyzer   *dsp.Analyzer
	opts       Options

	window  dsp.SampleWindow
	now     func() time.Time
	start   time.Time
	dropped uint64
}

// New constructs a Meter. buttons may be nil when no button source exists.
func New(
	logger *slog.Logger,
	source acquire.Source,
	sinks Sinks,
	controller *sensitivity.Controller,
	buttons *sensitivity.Debouncer,
	opts Options,
) *Meter {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = dsp.ADCSampleRate
	}
	if opts.SelfTestStep <= 0 {
		opts.SelfTestStep = 80 * time.Millisecond
	}
	if controller == nil {
		controller = sensitivity.NewController()
	}

	m := &Meter{
		logger:     logger,
		source:     source,
		sinks:      sinks,
		controller: controller,
		buttons:    buttons,
		renderer:   matrix.NewRenderer(opts.Palette),
		analyzer:   dsp.NewAnalyzer(opts.SampleRate),
		opts:       opts,
		now:        time.Now,
	}
	m.start = m.now()
	return m
}

// Controller returns the sensitivity controller.
func (m *Meter) Controller() *sensitivity.Controller {
	return m.controller
}

// Run performs the optional self-test, then cycles until ctx is done, an
// error occurs or the maintenance button is pressed.
func (m *Meter) Run(ctx context.Context) error {
	m.start = m.now()

	if m.opts.SelfTest {
		if err := m.SelfTest(ctx); err != nil {
			return err
		}
	}

	m.logger.Info("meter running",
		slog.String("mode", m.opts.Mode.String()),
		slog.Duration("poll_interval", m.opts.PollInterval),
		slog.Int("level", m.controller.Level().Number))

	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		if err := m.HandleEvents(); err != nil {
			return err
		}
		if _, err := m.Cycle(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// HandleEvents drains pending button events and applies them in order.
func (m *Meter) HandleEvents() error {
	if m.buttons == nil {
		return nil
	}

	if dropped := m.buttons.Dropped(); dropped > m.dropped {
		m.logger.Warn("button presses dropped, event queue full",
			slog.Uint64("dropped", dropped-m.dropped),
			slog.Uint64("total", dropped))
		m.dropped = dropped
	}

	for _, ev := range m.buttons.Drain() {
		switch ev.Kind {
		case sensitivity.EventAdvance:
			level := m.controller.Advance()
			m.logger.Info("sensitivity adjusted",
				slog.Int("level", level.Number),
				slog.Float64("min_db", level.MinDB),
				slog.Float64("max_db", level.MaxDB))
		case sensitivity.EventMaintenance:
			m.logger.Warn("maintenance button pressed")
			return ErrMaintenanceRequested
		}
	}
	return nil
}

// Cycle acquires one window and pushes the resulting frame and readout to
// every sink.
func (m *Meter) Cycle(ctx context.Context) (Reading, error) {
	if err := m.source.Acquire(ctx, &m.window); err != nil {
		return Reading{}, eris.Wrap(err, "acquire window")
	}

	level := m.controller.Level()
	elapsed := m.now().Sub(m.start)

	stats := m.analyzer.Analyze(&m.window)
	db := dsp.ToDecibels(stats.RMS, level)

	reading := Reading{
		Level:   level,
		Stats:   stats,
		DB:      db,
		Frame:   m.render(db, level, elapsed),
		Readout: display.NewReadout(db, level),
		Elapsed: elapsed,
	}

	if m.logger.Enabled(ctx, slog.LevelDebug) {
		m.logger.Debug("cycle",
			slog.Float64("db", db),
			slog.Int("sens", level.Number),
			slog.Float64("rms", stats.RMS),
			slog.Float64("min_v", stats.MinVoltage),
			slog.Float64("max_v", stats.MaxVoltage),
			slog.Float64("peak_hz", stats.PeakFrequency),
			slog.Int("intensity", dsp.Intensity(stats.RMS)))
	}

	if err := m.writeFrame(ctx, reading.Frame); err != nil {
		return reading, err
	}
	for _, d := range m.sinks.Displays {
		d.ShowReadout(reading.Readout)
	}

	return reading, nil
}

func (m *Meter) render(db float64, level sensitivity.Level, elapsed time.Duration) led.Frame {
	if m.opts.Mode == ModeDigits {
		return matrix.RenderDigit(TensDigit(db), level.Indicator)
	}
	return m.renderer.Render(db, level, uint64(elapsed.Milliseconds()))
}

// TensDigit returns the tens digit of db, 0 for non-positive readings.
func TensDigit(db float64) int {
	if db <= 0 {
		return 0
	}
	return int(db/10) % 10
}

func (m *Meter) writeFrame(ctx context.Context, f led.Frame) error {
	for _, w := range m.sinks.Frames {
		if err := w.WriteFrame(ctx, f); err != nil {
			return eris.Wrap(err, "write frame")
		}
	}
	return nil
}

// SelfTest sweeps every row and then every column of the matrix and finishes
// with a cleared frame.
func (m *Meter) SelfTest(ctx context.Context) error {
	c := led.Color{R: 20, G: 20, B: 20}

	for y := range led.Height {
		var f led.Frame
		matrix.RenderLine(&f, y, c)
		if err := m.showFor(ctx, f); err != nil {
			return err
		}
	}
	for x := range led.Width {
		var f led.Frame
		matrix.RenderColumn(&f, x, c)
		if err := m.showFor(ctx, f); err != nil {
			return err
		}
	}

	return m.writeFrame(ctx, led.Frame{})
}

func (m *Meter) showFor(ctx context.Context, f led.Frame) error {
	if err := m.writeFrame(ctx, f); err != nil {
		return err
	}

	timer := time.NewTimer(m.opts.SelfTestStep)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
