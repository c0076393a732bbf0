// The schedule-worker runs the recurring-schedule engine without the
// HTTP surface: it catches schedules up on startup and then keeps them
// current on an interval. Useful when the API server runs elsewhere or
// is down for long stretches.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"zenwallet/internal/amqp"
	"zenwallet/internal/backend"
	"zenwallet/internal/config"
	applog "zenwallet/internal/log"
	"zenwallet/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting schedule-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger)
	result, err := factory.CreateStore(ctx, backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize state store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Store cleanup error", "error", err)
			}
		}()
	}

	// Publish schedule-fired events when a broker is configured, and
	// drain the queue as the notification sink: every event is logged
	// and acknowledged so the queue cannot grow unbounded.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without eventing", "error", err)
		} else {
			defer client.Close()
			events = client
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

			go func() {
				err := client.ConsumeScheduleFired(ctx, func(msg *amqp.ScheduleFiredMessage) error {
					logger.Info("Schedule fired",
						"schedule_id", msg.ScheduleID,
						"transaction_id", msg.TransactionID,
						"type", msg.Type,
						"amount_cents", msg.AmountCents,
						"fired_at", msg.FiredAt)
					return nil
				})
				if err != nil && ctx.Err() == nil {
					logger.Error("Event consumption stopped", "error", err)
				}
			}()
		}
	}

	svc := services.NewStateService(result.Store, events, logger.WithComponent(applog.ComponentSchedule).Logger)

	logger.Info("Schedule runner configured",
		"interval", cfg.ReconcileInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	// Run initial catch-up on startup.
	if res, err := svc.Reconcile(ctx); err != nil {
		logger.Error("Initial reconcile failed", "error", err)
	} else {
		logger.Info("Initial reconcile complete", "fired", res.Fired, "failed", res.Failed)
	}

	ticker := time.NewTicker(cfg.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received")
			logger.Info("Schedule-worker shutdown complete")
			return
		case <-ticker.C:
			res, err := svc.Reconcile(ctx)
			if err != nil {
				logger.Error("Periodic reconcile failed", "error", err)
				continue
			}
			if res.Fired > 0 || res.Failed > 0 {
				logger.Info("Periodic reconcile complete",
					"fired", res.Fired,
					"failed", res.Failed)
			}
		}
	}
}
