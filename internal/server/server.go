package server

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	swaggerFiles "github.com/swaggo/files"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/jackc/pgx/v5/pgxpool"

	"content-portal-api/internal/config"
	"content-portal-api/internal/database"
	"content-portal-api/internal/handlers"
	"content-portal-api/internal/pool"
	"content-portal-api/internal/publisher"
	"content-portal-api/internal/repository"
	"content-portal-api/internal/services"
)

// Server wires the portal together: database, blob storage, services
// and the Fiber HTTP surface.
type Server struct {
	app    *fiber.App
	config *config.Config

	db          *pgxpool.Pool
	cleanupPool *pool.WorkerPool
	blobService *services.BlobService

	editorService *services.EditorService
	uploadService *services.UploadService
	adminService  *services.AdminService
	scheduler     *services.Scheduler

	editorHandler *handlers.EditorHandler
	uploadHandler *handlers.UploadHandler
	adminHandler  *handlers.AdminHandler
	metaHandler   *handlers.MetaHandler
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Load()
	}

	return &Server{
		config: cfg,
	}
}

// Initialize sets up all server components
func (s *Server) Initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.DatabaseTimeout)
	defer cancel()

	// Database: migrate first, then open the pool
	if err := database.Migrate(s.config.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := database.Connect(ctx, s.config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	s.db = db

	// Background cleanup pool
	log.Printf("Initializing cleanup pool with %d workers", s.config.MaxWorkers)
	s.cleanupPool = pool.NewWorkerPool(s.config.MaxWorkers, s.config.QueueSizeMultiplier)
	if err := s.cleanupPool.Start(); err != nil {
		return fmt.Errorf("failed to start cleanup pool: %w", err)
	}

	// Blob storage
	blobService, err := services.NewBlobService(s.config.Blob, s.config.MaxVideoSize, s.config.MaxImageSize, s.config.LogUploads)
	if err != nil {
		return fmt.Errorf("failed to initialize blob storage: %w", err)
	}
	s.blobService = blobService

	// Repositories
	editors := repository.NewEditorRepository(s.db)
	uploads := repository.NewUploadRepository(s.db)
	archive := repository.NewArchiveRepository(s.db)
	errorLogs := repository.NewErrorLogRepository(s.db)
	stats := repository.NewStatsRepository(s.db)
	txRunner := repository.NewTxRunner(s.db)

	// Services
	estimator := services.NewNetworkEstimator(nil, s.config.ConnectionType)
	reporter := services.NewErrorReporter(errorLogs)
	uploader := services.NewUploader(s.blobService, estimator, reporter, s.config.UploadMaxRetries, s.config.LogUploads)

	graphClient := publisher.NewGraphClient(publisher.Config{
		BaseURL: s.config.GraphAPIBaseURL,
		PageID:  s.config.PageID,
		Token:   s.config.PageToken,
		Timeout: s.config.PublishTimeout,
	})
	if !graphClient.Configured() {
		log.Println("⚠️ Facebook page credentials not set, scheduled publishing disabled")
	}
	s.scheduler = services.NewScheduler(graphClient, services.ClassifyByName, s.config.LogUploads)

	s.editorService = services.NewEditorService(editors, uploads, archive, txRunner, s.blobService, s.cleanupPool)
	s.uploadService = services.NewUploadService(uploads, editors, s.blobService, uploader, s.cleanupPool)
	s.adminService = services.NewAdminService(
		s.config.AdminPassword,
		s.config.PurgeAfterDays,
		uploads,
		archive,
		stats,
		txRunner,
		reporter,
	)

	// Handlers
	s.editorHandler = handlers.NewEditorHandler(s.editorService, s.uploadService)
	s.uploadHandler = handlers.NewUploadHandler(s.uploadService, estimator)
	s.adminHandler = handlers.NewAdminHandler(s.adminService, s.scheduler)
	s.metaHandler = handlers.NewMetaHandler(
		readAPIVersion(),
		database.NewReadinessChecker(s.db),
		s.blobService,
		s.cleanupPool,
	)

	// Initialize Fiber app with v3 config
	s.app = fiber.New(fiber.Config{
		ServerHeader:  "ContentPortal",
		StrictRouting: true,
		CaseSensitive: true,
		AppName:       "Content Portal API",
		BodyLimit:     s.config.BodyLimit,
		ReadTimeout:   s.config.ReadTimeout,
		WriteTimeout:  s.config.WriteTimeout,
		IdleTimeout:   s.config.IdleTimeout,
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}

			return c.Status(code).JSON(fiber.Map{
				"error":     message,
				"timestamp": time.Now().Unix(),
			})
		},
	})

	// Setup middleware
	s.setupMiddleware()

	// Setup routes
	s.setupRoutes()

	return nil
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	if s.config.EnableRequestID {
		s.app.Use(requestid.New(requestid.Config{
			Header: "X-Request-ID",
			Generator: func() string {
				return fmt.Sprintf("%d", time.Now().UnixNano())
			},
		}))
	}

	// Logger middleware (minimal for performance)
	s.app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
	}))

	if s.config.EnableCORS {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept", "X-Request-ID", "X-Admin-Password"},
			MaxAge:       86400,
		}))
	}

	// Recover middleware
	s.app.Use(recover.New())
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.metaHandler.RegisterRoutes(s.app, s.config.EnableStatsEndpoint)
	s.editorHandler.RegisterRoutes(s.app)
	s.uploadHandler.RegisterRoutes(s.app)
	s.adminHandler.RegisterRoutes(s.app)

	if s.config.EnableSwagger {
		s.registerSwaggerRoutes()
	}

	// 404 handler
	s.app.Use(func(c fiber.Ctx) error {
		return c.Status(404).JSON(fiber.Map{
			"error": "Endpoint not found",
			"path":  c.Path(),
		})
	})
}

func (s *Server) registerSwaggerRoutes() {
	swaggerFiles.Handler.Prefix = "/swagger"
	s.app.Get("/swagger", func(c fiber.Ctx) error {
		return c.Redirect().Status(fiber.StatusTemporaryRedirect).To("/swagger/index.html")
	})
	s.app.Get("/swagger/*", adaptor.HTTPHandler(httpSwagger.Handler(
		httpSwagger.InstanceName("swagger"),
		httpSwagger.DeepLinking(true),
	)))
}

// Start starts the server
func (s *Server) Start() error {
	// Print startup information
	s.printStartupInfo()

	// Create shutdown channel
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		addr := fmt.Sprintf(":%s", s.config.Port)
		if err := s.app.Listen(addr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdownCh

	log.Println("Shutting down server...")
	return s.Shutdown()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown Fiber app
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}

	// Stop cleanup pool so queued blob deletions finish draining
	if s.cleanupPool != nil {
		s.cleanupPool.Stop()
		log.Println("Cleanup pool stopped")
	}

	// Close database pool
	if s.db != nil {
		s.db.Close()
		log.Println("Database pool closed")
	}

	log.Println("Server shutdown complete")
	return nil
}

// printStartupInfo prints server configuration
func (s *Server) printStartupInfo() {
	log.Println("========================================")
	log.Println("Content Portal API")
	log.Println("========================================")
	log.Printf("Port:            %s", s.config.Port)
	log.Printf("Environment:     %s", s.config.AppEnv)
	log.Printf("Workers:         %d", s.config.MaxWorkers)
	log.Printf("Body Limit:      %dMB", s.config.BodyLimit/1024/1024)
	log.Printf("Upload Retries:  %d", s.config.UploadMaxRetries)
	log.Printf("Purge After:     %d days", s.config.PurgeAfterDays)
	log.Printf("Storage Backend: %s", s.config.Blob.Backend)
	log.Printf("Publishing:      %t", s.config.PublishConfigured())
	log.Printf("CPU Cores:       %d", runtime.NumCPU())
	log.Printf("Go Version:      %s", runtime.Version())
	log.Printf("Swagger:         %t", s.config.EnableSwagger)
	log.Println("========================================")
}

func readAPIVersion() string {
	const fallbackVersion = "1.0.0"
	data, err := os.ReadFile("VERSION")
	if err != nil {
		return fallbackVersion
	}

	version := strings.TrimSpace(string(data))
	if version == "" {
		return fallbackVersion
	}

	return version
}
