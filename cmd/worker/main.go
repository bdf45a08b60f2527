package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowitec/gogrow/internal/render"
	"github.com/flowitec/gogrow/internal/repositories"
	"github.com/flowitec/gogrow/internal/services"
	"github.com/flowitec/gogrow/internal/tasks"
	"github.com/flowitec/gogrow/libs/config"
	"github.com/flowitec/gogrow/libs/logger"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
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

	logger.Logger.Info("Starting Go & Grow Worker")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	// Test Redis connection
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	// Certificates issued by a sweep are queued for email like any other
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	renderer, err := render.NewCertificateRenderer()
	if err != nil {
		logger.Logger.Fatal("Failed to load certificate fonts", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	courseRepo := repositories.NewCourseRepository(db)
	progressRepo := repositories.NewProgressRepository(db)
	attemptRepo := repositories.NewQuizAttemptRepository(db)
	certificateRepo := repositories.NewCertificateRepository(db)

	certificateService := services.NewCertificateService(
		progressRepo,
		attemptRepo,
		certificateRepo,
		userRepo,
		courseRepo,
		tasks.NewNotifier(asynqClient),
		renderer,
		cfg.Learning.CertificateRequireQuizzes,
		logger.Logger,
	)

	// Create Asynq server
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Queues: map[string]int{
			tasks.QueueImmediate: 5,
			tasks.QueueDefault:   1,
		},
		Logger: logger.Logger.Sugar(),
	})

	// Create worker instance
	worker := NewWorker(
		logger.Logger,
		certificateService,
		renderer,
		mail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password),
		cfg.SMTP.From,
	)

	// Register task handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeCertificateIssued, worker.HandleCertificateIssued)
	mux.HandleFunc(tasks.TypeReconcileCertificates, worker.HandleReconcile)

	// Start worker
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Logger.Fatal("Failed to start worker", zap.Error(err))
		}
	}()

	logger.Logger.Info("Worker started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	srv.Shutdown()
	logger.Logger.Info("Worker exited")
}

// connectDB connects to the database
func connectDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
