package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)

	// Cancel context to signal all components
	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server first so no reader observes a half-closed core.
	err := a.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	// Closing the WebSocket manager closes the signal channel, which
	// drains the engine's input before the engine itself stops.
	err = a.wsManager.Close()
	if err != nil {
		a.logger.Error("websocket-manager-close-error", zap.Error(err))
	}

	err = a.engine.Close()
	if err != nil {
		a.logger.Error("feed-engine-close-error", zap.Error(err))
	}

	// Closing the notifier closes the alert channel and stops the drain.
	a.notifier.Close()

	if a.sink != nil {
		err = a.sink.Close()
		if err != nil {
			a.logger.Error("history-sink-close-error", zap.Error(err))
		}
	}

	// Wait for all goroutines
	a.wg.Wait()

	a.logger.Info("application-shutdown-complete")

	return nil
}
