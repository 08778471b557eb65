package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadrouter_backend/internal/consultantstore"
	dashboardrepo "leadrouter_backend/internal/dashboard/repository"
	"leadrouter_backend/internal/email"
	"leadrouter_backend/internal/events"
	apphttp "leadrouter_backend/internal/http"
	"leadrouter_backend/internal/http/router"
	"leadrouter_backend/internal/intake"
	"leadrouter_backend/internal/leadrouting"
	"leadrouter_backend/internal/notification"
	"leadrouter_backend/internal/notification/telegram"
	"leadrouter_backend/internal/roster"
	"leadrouter_backend/internal/routing"
	"leadrouter_backend/internal/taxonomy"
	"leadrouter_backend/platform/config"
	"leadrouter_backend/platform/db"
	"leadrouter_backend/platform/logger"
	"leadrouter_backend/platform/redisdb"
	"leadrouter_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting api", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, cfg, "migrations"); err != nil {
		log.Error("failed to run migrations", "error", err)
		panic("failed to run migrations: " + err.Error())
	}

	var rdb *redis.Client
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		c, err := redisdb.NewClient(ctx, cfg)
		if err != nil {
			return err
		}
		rdb = c
		return nil
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer func() { _ = rdb.Close() }()

	tax, err := taxonomy.Load(cfg.GetTaxonomyPath())
	if err != nil {
		log.Error("failed to load taxonomy", "error", err, "path", cfg.GetTaxonomyPath())
		panic("failed to load taxonomy: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	dashboard := dashboardrepo.New(pool)
	stores := consultantstore.Factory(pool)

	notifier := notification.New(
		telegram.NewClient(cfg, log),
		email.NewSender(cfg, log),
		cfg.GetTelegramAdminChatID(),
		cfg.GetAdminEmail(),
		log,
	)

	engine := routing.NewEngine(dashboard, notifier, eventBus, log)
	orphans := routing.NewOrphanProcessor(dashboard, engine, log)

	rosterModule := roster.NewModule(dashboard, stores, notifier, rdb, eventBus, val, log)
	rosterModule.RegisterHandlers(eventBus)

	intakeModule := intake.NewModule(engine, dashboard, stores, rdb, cfg, tax, val, log)
	routingModule := leadrouting.NewModule(engine, orphans, dashboard, stores, val, log)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			intakeModule,
			rosterModule,
			routingModule,
		},
	}

	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http server listening", "addr", cfg.GetHTTPAddr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", "error", err)
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
