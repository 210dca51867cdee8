package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"vellum/internal/auth"
	"vellum/internal/config"
	"vellum/internal/doctype"
	"vellum/internal/handler"
	"vellum/internal/middleware"
	"vellum/internal/repository/postgres"
	"vellum/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if dir := os.Getenv("LOG_DIR"); dir != "" {
		logFile, err := config.SetupLogFile(dir, 10)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)
	versionRepo := postgres.NewVersionRepository(repoConfig)
	draftRepo := postgres.NewDraftRepository(repoConfig)
	sequenceRepo := postgres.NewSequenceRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, cfg.LockTimeout)

	// Load document type registry
	registry, err := doctype.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load document type registry: %v", err)
	}
	logger.Info("document type registry loaded", "types", registry.Types())

	// Create services
	numberingService := service.NewNumberingService(sequenceRepo, registry, logger)
	docService := service.NewDocumentService(docRepo, versionRepo, draftRepo, txManager, registry, numberingService, logger)
	draftService := service.NewDraftService(docRepo, draftRepo, logger)
	promotionService := service.NewPromotionService(docRepo, versionRepo, draftRepo, txManager, registry, logger)
	versionService := service.NewVersionService(versionRepo, logger)

	// Create handlers
	docHandler := handler.NewDocumentHandler(docService, logger)
	draftHandler := handler.NewDraftHandler(draftService, logger)
	promotionHandler := handler.NewPromotionHandler(promotionService, logger)
	versionHandler := handler.NewVersionHandler(versionService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", docHandler.HealthCheck)

	// Document routes
	mux.HandleFunc("POST /api/documents", docHandler.CreateDocument)
	mux.HandleFunc("GET /api/documents", docHandler.ListDocuments)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.GetDocument)
	mux.HandleFunc("POST /api/documents/{id}/archive", docHandler.ArchiveDocument)
	mux.HandleFunc("POST /api/documents/{id}/restore", docHandler.RestoreDocument)

	// Draft routes
	mux.HandleFunc("PUT /api/documents/{id}/draft", draftHandler.SaveDraft)
	mux.HandleFunc("GET /api/documents/{id}/draft", draftHandler.GetDraft)
	mux.HandleFunc("DELETE /api/documents/{id}/draft", draftHandler.DiscardDraft)

	// Promotion routes
	mux.HandleFunc("POST /api/documents/{id}/promote", promotionHandler.PromoteDraft)
	mux.HandleFunc("POST /api/documents/{id}/complete", promotionHandler.CompleteDocument)

	// Version routes
	mux.HandleFunc("GET /api/documents/{id}/versions", versionHandler.ListVersions)
	mux.HandleFunc("GET /api/documents/{id}/versions/{number}", versionHandler.GetVersion)
	mux.HandleFunc("POST /api/documents/{id}/versions/{number}/rollback", promotionHandler.RollbackToVersion)

	// Build middleware chain
	var httpHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	httpHandler = middleware.Auth(jwtVerifier, logger)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
