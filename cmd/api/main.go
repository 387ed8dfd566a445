package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"feedbackbox/docs"
	"feedbackbox/internal/auth"
	"feedbackbox/internal/config"
	"feedbackbox/internal/database"
	"feedbackbox/internal/database/migration"
	handlers "feedbackbox/internal/http/handler"
	"feedbackbox/internal/http/middleware"
	otelsetup "feedbackbox/internal/otel"
	"feedbackbox/internal/repository"
	"feedbackbox/internal/repository/postgres"
	"feedbackbox/internal/repository/sqlite"
	"feedbackbox/internal/service"
	"feedbackbox/internal/storage"
)

// @title Feedback Box API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC

	ctx := context.Background()

	shutdownTracing, err := otelsetup.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	target := cfg.Database.Path
	if cfg.Database.Driver == "postgres" {
		target = cfg.Database.Host + "/" + cfg.Database.Name
	}
	if err := migration.EnsureMigrated(ctx, db, cfg.Database.Driver, loc, target); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	policy := storage.Policy{MaxBytes: cfg.Storage.MaxUploadBytes}
	var store storage.Store
	switch cfg.Storage.Backend {
	case "minio":
		store, err = storage.NewMinIO(cfg.MinIO, policy)
	default:
		store, err = storage.NewDisk(cfg.Storage.UploadDir, policy)
	}
	if err != nil {
		log.Fatalf("failed to initialize attachment storage: %v", err)
	}

	var repo repository.CommentRepository
	switch cfg.Database.Driver {
	case "postgres":
		repo = postgres.NewCommentPostgres(db)
	default:
		repo = sqlite.NewCommentSQLite(db)
	}

	hash := cfg.Admin.PasswordHash
	if hash == "" {
		if cfg.Admin.Password == "" {
			log.Fatal("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set")
		}
		hash, err = auth.HashPassword(cfg.Admin.Password)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}
	}
	authn := auth.New(hash, time.Duration(cfg.Admin.SessionTTLMin)*time.Minute)

	svc := service.NewFeedbackService(store, repo, slog.Default())

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.BodyLimitBytes,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())

	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	)
	app.Get("/metrics", func(c *fiber.Ctx) error {
		metricsHandler(c.Context())
		return nil
	})

	// Register HTTP routes with injected dependencies
	handlers.RegisterRoutes(app, db, svc, store, authn)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	// Drop expired admin sessions in the background.
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				authn.Cleanup()
			case <-cleanupDone:
				return
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	case <-quit:
		close(cleanupDone)
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("server shutdown: %v", err)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
		cancel()
	}
}
