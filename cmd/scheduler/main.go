package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowitec/gogrow/libs/config"
	"github.com/flowitec/gogrow/libs/logger"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Go & Grow Scheduler", zap.String("schedule", cfg.ReconcileCron))

	// Create Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Create scheduler instance
	scheduler, err := NewScheduler(asynqClient, logger.Logger, cfg.ReconcileCron)
	if err != nil {
		logger.Logger.Fatal("Failed to create scheduler", zap.Error(err))
	}

	// Start scheduler
	scheduler.Start()
	defer func() {
		logger.Logger.Info("Shutting down scheduler...")
		scheduler.Stop()
		logger.Logger.Info("Scheduler exited")
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
