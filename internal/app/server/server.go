package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"appraisal/internal/domain/access"
	"appraisal/internal/domain/appraisal"
	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/directory"
	"appraisal/internal/domain/notifications"
	"appraisal/internal/domain/reports"
	"appraisal/internal/domain/transfer"
	"appraisal/internal/platform/config"
	cryptoutil "appraisal/internal/platform/crypto"
	"appraisal/internal/platform/db"
	"appraisal/internal/platform/email"
	"appraisal/internal/platform/jobs"
	"appraisal/internal/platform/metrics"
	accesshandler "appraisal/internal/transport/http/handlers/access"
	appraisalshandler "appraisal/internal/transport/http/handlers/appraisals"
	audithandler "appraisal/internal/transport/http/handlers/audit"
	authhandler "appraisal/internal/transport/http/handlers/auth"
	directoryhandler "appraisal/internal/transport/http/handlers/directory"
	notificationshandler "appraisal/internal/transport/http/handlers/notifications"
	reportshandler "appraisal/internal/transport/http/handlers/reports"
	transferhandler "appraisal/internal/transport/http/handlers/transfer"
	"appraisal/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
}

// New connects, migrates, seeds and wires the full router. The returned
// App owns the pool; callers must Close it.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	crypto, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	authStore := auth.NewStore(pool)
	directoryStore := directory.NewStore(pool)
	directoryService := directory.NewService(directoryStore)
	appraisalService := appraisal.NewService(appraisal.NewStore(pool), directoryStore)
	accessService := access.NewService(access.NewStore(pool), directoryService)
	transferService := transfer.NewService(transfer.NewStore(pool), directoryStore, access.NewStore(pool))
	reportsService := reports.NewService(pool)
	auditService := audit.New(pool)
	notifier := notifications.NewService(pool, email.New(cfg), slog.Default())
	idemStore := middleware.NewIdempotencyStore(pool)

	jobRunner := jobs.New(pool, cfg, notifier)
	jobRunner.Start(ctx)

	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, authStore))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		if cfg.MetricsEnabled {
			r.With(middleware.RequirePermission(auth.PermSystemAdmin, authStore)).Get("/admin/metrics", collector.Handler())
		}
		authhandler.NewHandler(authStore, directoryStore, auditService, cfg.JWTSecret, cfg.SessionTTL, crypto).RegisterRoutes(r)
		directoryhandler.NewHandler(directoryService, authStore, auditService).RegisterRoutes(r)
		appraisalshandler.NewHandler(appraisalService, directoryStore, authStore, notifier, auditService, idemStore).RegisterRoutes(r)
		accesshandler.NewHandler(accessService, authStore, notifier, auditService).RegisterRoutes(r)
		transferhandler.NewHandler(transferService, authStore, auditService).RegisterRoutes(r)
		reportshandler.NewHandler(reportsService, authStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notifier).RegisterRoutes(r)
		audithandler.NewHandler(auditService, authStore).RegisterRoutes(r)
	})

	return &App{Config: cfg, DB: pool, Router: router, Metrics: collector}, nil
}

func (a *App) Close() {
	a.DB.Close()
}
