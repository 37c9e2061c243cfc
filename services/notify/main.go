package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devinfinitee/AI-health-companion/internal/platform/mailer"
	"github.com/devinfinitee/AI-health-companion/internal/repo/postgres"
	"github.com/devinfinitee/AI-health-companion/internal/service"
	"github.com/devinfinitee/AI-health-companion/pkg/config"
	"github.com/devinfinitee/AI-health-companion/pkg/database"
	"github.com/devinfinitee/AI-health-companion/pkg/events"
	"github.com/devinfinitee/AI-health-companion/pkg/logger"
	mw "github.com/devinfinitee/AI-health-companion/pkg/middleware"
	"github.com/go-chi/chi/v5"
)

func main() {
	cfg := config.Load()

	if cfg.NATS.URL == "" {
		logger.Error("NATS_URL is required for the notify service")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	bus, err := events.NewNATSEventBus(cfg.NATS.URL, "health-companion-notify")
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer bus.Close()

	notifier := service.NewConfirmationNotifier(mailer.New(cfg.Email), postgres.NewAppointmentsRepo(pool))

	err = bus.QueueSubscribe(events.AppointmentCreated, cfg.NATS.Queue, func(msg *events.Message) {
		msgCtx, cancel := context.WithTimeout(context.WithValue(ctx, logger.ServiceKey, "notify"), 30*time.Second)
		defer cancel()
		if err := notifier.Handle(msgCtx, msg); err != nil {
			logger.ErrorContext(msgCtx, "Failed to handle appointment event", "error", err, "subject", msg.Subject)
		}
	})
	if err != nil {
		logger.Error("Failed to subscribe", "error", err, "subject", events.AppointmentCreated)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("notify"))
	r.Use(mw.Logging)
	r.Use(mw.Health)

	srv := &http.Server{
		Addr:              ":" + cfg.NATS.NotifyPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down notify service...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Notify service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting notify service", "port", cfg.NATS.NotifyPort, "queue", cfg.NATS.Queue)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Notify service error", "error", err)
		os.Exit(1)
	}
}
