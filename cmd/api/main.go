package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pipeline_board_backend/internal/audit"
	auditrepo "pipeline_board_backend/internal/audit/repository"
	auditsvc "pipeline_board_backend/internal/audit/service"
	"pipeline_board_backend/internal/board"
	boardsvc "pipeline_board_backend/internal/board/service"
	"pipeline_board_backend/internal/events"
	apphttp "pipeline_board_backend/internal/http"
	"pipeline_board_backend/internal/http/router"
	"pipeline_board_backend/internal/notification"
	"pipeline_board_backend/internal/scheduler"
	"pipeline_board_backend/internal/statuscatalog"
	"pipeline_board_backend/platform/config"
	"pipeline_board_backend/platform/crmclient"
	"pipeline_board_backend/platform/db"
	"pipeline_board_backend/platform/logger"
	"pipeline_board_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Upstream CRM collaborator API
	crm := crmclient.New(crmclient.Config{
		BaseURL: cfg.GetCRMBaseURL(),
		APIKey:  cfg.GetCRMAPIKey(),
		Timeout: cfg.GetCRMTimeout(),
	})
	log.Info("crm client initialized", "baseUrl", cfg.GetCRMBaseURL())

	sweepScheduler, closeScheduler := initSweepScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	notificationModule := notification.NewModule(log)
	defer notificationModule.Close()

	catalogModule := statuscatalog.NewModule(crm, eventBus, val, log)

	boardModule, err := board.NewModule(crm, catalogModule.Service(), notificationModule.Toasts(), eventBus, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize board module", "error", err)
		panic("failed to initialize board module: " + err.Error())
	}
	boardModule.RegisterHandlers(eventBus)

	auditModule := audit.NewModule(pool, log)
	auditModule.RegisterHandlers(eventBus)

	// Periodic SLA sweeps via the scheduler queue
	if sweepScheduler != nil {
		go runSweepTicker(ctx, sweepScheduler, cfg.GetSLASweepInterval(), log)
	}

	// Periodic metrics snapshots of every loaded board
	go runMetricsSnapshots(ctx, boardModule.Manager(), auditModule.Service(), cfg.GetSLASweepInterval(), log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			boardModule,
			catalogModule,
			auditModule,
			notificationModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initSweepScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; SLA sweeps disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

func runSweepTicker(ctx context.Context, client *scheduler.Client, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.EnqueueSLASweep(ctx, scheduler.SLASweepPayload{}); err != nil {
				log.Error("failed to enqueue sla sweep", "error", err)
			}
		}
	}
}

func runMetricsSnapshots(ctx context.Context, boards *boardsvc.Manager, trail *auditsvc.Service, interval time.Duration, log *logger.Logger) {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, board := range boards.Loaded() {
				snapshot := board.Snapshot()
				if snapshot.State != boardsvc.StateReady {
					continue
				}
				err := trail.SaveSnapshot(ctx, auditrepo.MetricsSnapshot{
					OrganizationID:  snapshot.OrganizationID,
					TotalLeads:      snapshot.Metrics.TotalLeads,
					CriticalLeads:   snapshot.Metrics.CriticalLeads,
					OverdueLeads:    snapshot.Metrics.OverdueLeads,
					UrgentLeads:     snapshot.Metrics.UrgentLeads,
					WonLeads:        snapshot.Metrics.WonLeads,
					ConversionRate:  snapshot.Metrics.ConversionRate,
					CommercialScore: snapshot.Metrics.CommercialScore,
				})
				if err != nil {
					log.Error("failed to save metrics snapshot", "orgId", snapshot.OrganizationID, "error", err)
				}
			}
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
