package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/flowitec/gogrow/docs"
	"github.com/flowitec/gogrow/internal/cache"
	"github.com/flowitec/gogrow/internal/handlers"
	"github.com/flowitec/gogrow/internal/render"
	"github.com/flowitec/gogrow/internal/repositories"
	"github.com/flowitec/gogrow/internal/services"
	"github.com/flowitec/gogrow/internal/tasks"
	"github.com/flowitec/gogrow/libs/auth/middleware"
	"github.com/flowitec/gogrow/libs/auth/service"
	"github.com/flowitec/gogrow/libs/config"
	"github.com/flowitec/gogrow/libs/logger"
	loggerMiddleware "github.com/flowitec/gogrow/libs/logger/middleware"
	sharedMiddleware "github.com/flowitec/gogrow/libs/middlewares"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/hibiken/asynq"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title Flowitec Go & Grow API
// @version 1.0
// @description Learning management API: courses, progress, quizzes and certificates

// @contact.name Flowitec Training
// @contact.email training@flowitec.com

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
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

	logger.Logger.Info("Starting Go & Grow API")

	// Connect to database
	db, err := connectDB(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	courseCache := newCourseCache(rdb, cfg.CacheTTL)

	// Create Asynq client for certificate emails
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	renderer, err := render.NewCertificateRenderer()
	if err != nil {
		logger.Logger.Fatal("Failed to load certificate fonts", zap.Error(err))
	}

	// Initialize JWT token generator
	tokenGenerator := service.NewTokenGenerator(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	courseRepo := repositories.NewCourseRepository(db)
	moduleRepo := repositories.NewModuleRepository(db)
	lessonRepo := repositories.NewLessonRepository(db)
	quizRepo := repositories.NewQuizRepository(db)
	enrollmentRepo := repositories.NewEnrollmentRepository(db)
	progressRepo := repositories.NewProgressRepository(db)
	attemptRepo := repositories.NewQuizAttemptRepository(db)
	certificateRepo := repositories.NewCertificateRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, tokenGenerator, cfg.Server.RegistrationEnabled, logger.Logger)
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
	progressService := services.NewProgressService(lessonRepo, progressRepo, attemptRepo, certificateService, logger.Logger)
	quizService := services.NewQuizService(quizRepo, attemptRepo, certificateService, cfg.Learning.StrictAnswers, logger.Logger)
	catalogService := services.NewCatalogService(
		courseRepo,
		moduleRepo,
		lessonRepo,
		quizRepo,
		enrollmentRepo,
		progressRepo,
		progressService,
		courseCache,
		logger.Logger,
	)
	adminService := services.NewAdminService(services.AdminRepositories{
		Users:        userRepo,
		Courses:      courseRepo,
		Modules:      moduleRepo,
		Lessons:      lessonRepo,
		Quizzes:      quizRepo,
		Enrollments:  enrollmentRepo,
		Progress:     progressRepo,
		Certificates: certificateRepo,
	}, courseCache, logger.Logger)

	if err := authService.EnsureAdmin(context.Background(), cfg.Admin.Email, cfg.Admin.Password); err != nil {
		logger.Logger.Fatal("Failed to create admin account", zap.Error(err))
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger.Logger)
	courseHandler := handlers.NewCourseHandler(catalogService, logger.Logger)
	progressHandler := handlers.NewProgressHandler(progressService, logger.Logger)
	quizHandler := handlers.NewQuizHandler(quizService, logger.Logger)
	certificateHandler := handlers.NewCertificateHandler(certificateService, logger.Logger)
	adminHandler := handlers.NewAdminHandler(adminService, logger.Logger)
	internalHandler := handlers.NewInternalHandler(certificateService, logger.Logger)

	// Initialize auth middleware
	authMiddleware := middleware.AuthMiddleware(tokenGenerator)
	adminMiddleware := middleware.RoleMiddleware(tokenGenerator, service.RoleAdmin)
	apiKeyMiddleware := middleware.APIKeyMiddleware(cfg.APIKey)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(sharedMiddleware.RequestIDMiddleware)
	r.Use(loggerMiddleware.LoggerMiddleware(logger.Logger))
	r.Use(sharedMiddleware.RecoveryMiddleware(logger.Logger))
	r.Use(sharedMiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(100, time.Minute))
	r.Use(sharedMiddleware.RequestSizeLimitMiddleware(10 * 1024 * 1024)) // 10MB

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	r.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authMiddleware)
		courseHandler.RegisterRoutes(r, authMiddleware)
		progressHandler.RegisterRoutes(r, authMiddleware)
		quizHandler.RegisterRoutes(r, authMiddleware)
		certificateHandler.RegisterRoutes(r, authMiddleware)
		adminHandler.RegisterRoutes(r, adminMiddleware)
		internalHandler.RegisterRoutes(r, apiKeyMiddleware)

		// Uploaded course media
		r.Handle("/uploads/*", http.StripPrefix("/api/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}

// newCourseCache returns the Redis course cache, or a no-op cache when caching is
// disabled or Redis cannot be reached at startup
func newCourseCache(rdb *redis.Client, ttl time.Duration) services.CourseTreeCache {
	if ttl <= 0 {
		logger.Logger.Info("Course cache disabled")
		return cache.Noop{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Logger.Warn("Redis unavailable, course cache disabled", zap.Error(err))
		return cache.Noop{}
	}
	return cache.NewCourseCache(rdb, ttl)
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

// runMigrations runs database migrations
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "gogrow_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Running from cmd/api
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
