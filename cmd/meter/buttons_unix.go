//go:build unix

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cybre/matrix-sound-meter/internal/sensitivity"
)

// watchButtonSignals maps SIGUSR1 to the sensitivity button and SIGUSR2 to
// the maintenance button.
func watchButtonSignals(ctx context.Context, logger *slog.Logger, buttons *sensitivity.Debouncer) error {
	sigs := make(chan os.Signal, 4)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGUSR2)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-sigs:
			kind := sensitivity.EventAdvance
			if sig == syscall.SIGUSR2 {
				kind = sensitivity.EventMaintenance
			}
			if !buttons.Push(kind, time.Now()) {
				logger.Debug("button press ignored", slog.String("button", kind.String()))
			}
		}
	}
}
