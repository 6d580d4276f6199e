package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// Run starts the application and blocks until shutdown.
func (a *App) Run() error {
	a.logger.Info("application-starting",
		zap.String("feed-url", a.cfg.FeedWSURL),
		zap.String("history-mode", a.cfg.HistoryMode),
		zap.String("log-level", a.cfg.LogLevel))

	err := a.startComponents()
	if err != nil {
		return err
	}

	a.healthChecker.SetReady(true)

	a.logger.Info("application-ready",
		zap.String("http-addr", ":"+a.cfg.HTTPPort),
		zap.Duration("expiry-threshold", a.cfg.FeedExpiryThreshold),
		zap.Int("max-opportunities", a.cfg.FeedMaxOpportunities))

	return a.waitForShutdown()
}

func (a *App) startComponents() error {
	// Bind the HTTP listener first so probes are reachable before the
	// feed starts; Start returns once the listener accepts.
	err := a.httpServer.Start()
	if err != nil {
		return fmt.Errorf("start http server: %w", err)
	}

	// Start feed engine before the connection so no signal is ever
	// emitted without a consumer.
	err = a.engine.Start(a.ctx)
	if err != nil {
		return fmt.Errorf("start feed engine: %w", err)
	}

	// Start alert drain
	a.wg.Add(1)
	go a.runAlertDrain()

	// Start WebSocket manager
	err = a.wsManager.Start()
	if err != nil {
		return fmt.Errorf("start websocket manager: %w", err)
	}

	return nil
}

// runAlertDrain consumes new-opportunity alerts and surfaces them in the
// log stream. The channel closes when the notifier is closed.
func (a *App) runAlertDrain() {
	defer a.wg.Done()
	for al := range a.notifier.Alerts() {
		a.logger.Info("alert-dispatched",
			zap.String("alert-id", al.ID),
			zap.String("opportunity-id", al.OpportunityID),
			zap.String("provider", al.Provider),
			zap.String("sport", al.Sport),
			zap.String("market", al.MarketName),
			zap.String("runner", al.Runner),
			zap.Float64("arb-percentage", al.ArbPercentage))
	}
}

func (a *App) waitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		a.logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	case <-a.ctx.Done():
		a.logger.Info("context-cancelled")
	}

	return a.Shutdown()
}
