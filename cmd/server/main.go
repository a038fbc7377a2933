// Package main is the entry point for the httpmq broker server.
// It initializes logging, configuration, the audit trail, the broker,
// and starts the HTTP server and expiry sweeper.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/dingwen07/httpmq/internal/audit"
	"github.com/dingwen07/httpmq/internal/broker"
	"github.com/dingwen07/httpmq/internal/config"
	"github.com/dingwen07/httpmq/internal/logging"
	"github.com/dingwen07/httpmq/internal/router"
	sentryscrub "github.com/dingwen07/httpmq/internal/sentry"
)

func main() {
	// Initialize structured logging (reads LOGGING_LEVEL env var)
	logging.Initialize()

	// Load configuration
	cfg := config.Load()

	// Initialize Sentry (no-op when DSN is empty)
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:                   cfg.SentryDSN,
			Environment:           cfg.SentryEnvironment,
			TracesSampleRate:      0.2,
			BeforeSend:            sentryscrub.ScrubEvent,
			BeforeSendTransaction: sentryscrub.ScrubTransaction,
		})
		if err != nil {
			slog.Error("failed to initialize Sentry", slog.String("error", err.Error()))
		} else {
			slog.Info("Sentry initialized", slog.String("environment", cfg.SentryEnvironment))
		}
		defer sentry.Flush(2 * time.Second)
	}

	// Initialize the peripheral audit trail (best-effort, never backs
	// broker state; an empty path disables it entirely)
	auditLogger, err := audit.Open(cfg.AuditDBPath)
	if err != nil {
		slog.Error("failed to open audit trail", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer auditLogger.Close()

	// Create the in-memory broker and start its background sweeper
	b := broker.New()
	stopSweep := startSweeper(b, cfg.SweepInterval)
	defer close(stopSweep)

	// Create router
	r := router.New(cfg, b, auditLogger)

	// Start server
	addr := ":" + cfg.Port
	slog.Info("starting server", slog.String("addr", addr))

	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// startSweeper runs broker.Expire on a timer in addition to the
// synchronous sweep that receive() performs on every poll (spec §4.4).
// Returns a channel that stops the goroutine when closed.
func startSweeper(b *broker.Broker, interval time.Duration) chan struct{} {
	stop := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				stats := b.Expire(time.Now())
				if stats.SessionsExpired > 0 || stats.MessagesExpired > 0 {
					slog.Info("swept expired state",
						slog.Int("sessions_expired", stats.SessionsExpired),
						slog.Int("messages_expired", stats.MessagesExpired),
					)
				}
			case <-stop:
				return
			}
		}
	}()

	return stop
}
