//go:build !unix

package main

import (
	"context"
	"log/slog"

	"github.com/cybre/matrix-sound-meter/internal/sensitivity"
)

// watchButtonSignals has no signal buttons on this platform; keyboard input
// from the visualizer is the only button source.
func watchButtonSignals(ctx context.Context, _ *slog.Logger, _ *sensitivity.Debouncer) error {
	<-ctx.Done()
	return ctx.Err()
}
