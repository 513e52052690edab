package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"pipeline_board_backend/internal/board/timeline"
	"pipeline_board_backend/internal/events"
	"pipeline_board_backend/internal/scheduler"
	"pipeline_board_backend/platform/config"
	"pipeline_board_backend/platform/crmclient"
	"pipeline_board_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	table, err := timeline.LoadTable(cfg.GetSLATablePath())
	if err != nil {
		log.Error("failed to load sla table", "error", err)
		panic("failed to load sla table: " + err.Error())
	}

	crm := crmclient.New(crmclient.Config{
		BaseURL: cfg.GetCRMBaseURL(),
		APIKey:  cfg.GetCRMAPIKey(),
		Timeout: cfg.GetCRMTimeout(),
	})

	eventBus := events.NewInMemoryBus(log)

	worker, err := scheduler.NewWorker(cfg, crm, timeline.NewCalculator(table), eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	log.Info("scheduler worker running", "queue", cfg.GetAsynqQueueName())
	worker.Run(ctx)
	log.Info("scheduler worker stopped")
}
