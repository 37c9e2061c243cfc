package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devinfinitee/AI-health-companion/internal/http/handlers"
	httpmw "github.com/devinfinitee/AI-health-companion/internal/http/middleware"
	"github.com/devinfinitee/AI-health-companion/internal/http/response"
	"github.com/devinfinitee/AI-health-companion/internal/platform/auth"
	"github.com/devinfinitee/AI-health-companion/internal/platform/cache"
	"github.com/devinfinitee/AI-health-companion/internal/platform/genai"
	"github.com/devinfinitee/AI-health-companion/internal/repo/postgres"
	"github.com/devinfinitee/AI-health-companion/internal/service"
	"github.com/devinfinitee/AI-health-companion/pkg/config"
	"github.com/devinfinitee/AI-health-companion/pkg/database"
	"github.com/devinfinitee/AI-health-companion/pkg/events"
	"github.com/devinfinitee/AI-health-companion/pkg/logger"
	mw "github.com/devinfinitee/AI-health-companion/pkg/middleware"
	"github.com/go-chi/chi/v5"
)

const idempotencyTTL = 24 * time.Hour

func main() {
	cfg := config.Load()

	if cfg.UsesDevSecret() {
		if !cfg.IsDevelopment() {
			logger.Error("JWT_SECRET must be set outside development")
			os.Exit(1)
		}
		logger.Warn("Using the built-in development JWT secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Error("Failed to apply migrations", "error", err)
			os.Exit(1)
		}
	}

	// Event bus is optional; without NATS events are dropped.
	var eventBus events.EventBus = events.NopBus{}
	if cfg.NATS.URL != "" {
		bus, err := events.NewNATSEventBus(cfg.NATS.URL, "health-companion-api")
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		eventBus = bus
	}
	defer eventBus.Close()

	// Initialize repositories
	usersRepo := postgres.NewUsersRepo(pool)
	appointmentsRepo := postgres.NewAppointmentsRepo(pool)
	conversationsRepo := postgres.NewConversationsRepo(pool)
	idempotencyRepo := postgres.NewIdempotencyRepo(pool)

	out := response.Writer{Dev: cfg.IsDevelopment()}
	limitCfg := httpmw.RateLimitConfig{Requests: cfg.RateLimit.Requests, Window: cfg.RateLimit.Window}

	// Redis backs rate limiting and idempotency when reachable.
	var (
		limiter   httpmw.Limiter
		idemStore mw.IdempotencyStore = idempotencyRepo
	)
	if rdb, err := cache.Connect(ctx, cfg.Redis.URL); err != nil {
		logger.Warn("Redis unavailable, using in-process rate limiter and Postgres idempotency store", "error", err)
		local := httpmw.NewLocalLimiter(limitCfg)
		go local.RunSweeper(ctx)
		limiter = local
		go sweepIdempotency(ctx, idempotencyRepo)
	} else {
		defer rdb.Close()
		store := cache.NewStore(rdb, "health-companion:")
		limiter = httpmw.NewCounterLimiter(store, limitCfg)
		idemStore = store
	}

	// Initialize services
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(usersRepo, tokens)
	appointmentService := service.NewAppointmentService(appointmentsRepo, eventBus)
	companionService := service.NewCompanionService(
		genai.NewGeminiClient(cfg.Companion),
		conversationsRepo,
		appointmentsRepo,
		cfg.Companion.MaxPromptLen,
	)

	// Initialize handlers
	requireUser := httpmw.RequireUser(tokens, usersRepo, out)
	api := &handlers.API{
		Auth: handlers.NewAuthHandler(authService, out),
		Appointments: handlers.NewAppointmentsHandler(appointmentService, out, requireUser,
			mw.IdempotencyMiddleware(idemStore, idempotencyTTL)),
		Dashboard: handlers.NewDashboardHandler(companionService, out, requireUser),
		Out:       out,
		AuthLimit: httpmw.RateLimit(limiter, out),
	}

	// Setup router
	r := chi.NewRouter()
	r.Use(mw.ClientIP(cfg.Server.TrustProxy))
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("api"))
	r.Use(mw.Logging)
	r.Use(mw.CORS(cfg.Server.AllowedOrigins))
	r.Use(mw.Health)
	r.Mount(cfg.Server.APIPrefix, api.Routes())
	r.NotFound(func(w http.ResponseWriter, r *http.Request) { out.NotFound(w, r) })

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down API server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("API server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API server", "port", cfg.Server.Port, "env", cfg.Env, "prefix", cfg.Server.APIPrefix)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("API server error", "error", err)
		os.Exit(1)
	}
}

// sweepIdempotency drops expired Postgres idempotency rows every hour.
func sweepIdempotency(ctx context.Context, repo postgres.IdempotencyRepo) {
	t := time.NewTicker(time.Hour)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := repo.CleanupExpired(ctx)
			if err != nil {
				logger.Warn("Idempotency cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Debug("Expired idempotency keys removed", "count", n)
			}
		}
	}
}
