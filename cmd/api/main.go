package main

import (
	"context"
	"errors"
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

	"docpress/docs"
	"docpress/internal/auth"
	"docpress/internal/autosave"
	"docpress/internal/cache"
	"docpress/internal/config"
	"docpress/internal/database"
	"docpress/internal/database/migration"
	handlers "docpress/internal/http/handler"
	"docpress/internal/http/middleware"
	"docpress/internal/otel"
	"docpress/internal/repository/postgres"
	"docpress/internal/search"
	"docpress/internal/service"
	"docpress/internal/storage"
)

// @title docpress API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("docpress: %v", err)
	}
}

func run(ctx context.Context) error {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	logger := config.NewLogger(os.Stdout, cfg.LogLevel, time.Local)
	slog.SetDefault(logger)

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.Run(ctx, db, logger, cfg.Database.Host); err != nil {
		return err
	}

	// Uploads answer SERVER_MISCONFIGURED when no backend has credentials.
	var objStore storage.Storage
	st, err := storage.New(ctx, cfg, logger)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		logger.Warn("storage_not_configured")
	case err != nil:
		return err
	default:
		objStore = st
	}

	var docCache cache.Cache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			time.Duration(cfg.Redis.TTLSeconds)*time.Second)
		if err != nil {
			logger.Warn("redis unavailable, caching disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer rc.Close()
			docCache = rc
		}
	}

	docRepo := postgres.NewDocumentPostgres(db)
	userRepo := postgres.NewUserPostgres(db)
	changelogRepo := postgres.NewChangelogPostgres(db)

	var index search.Index
	if cfg.Meili.URL != "" {
		meili := search.NewMeili(cfg.Meili.URL, cfg.Meili.APIKey, cfg.Meili.Index, logger)
		defer meili.Close()
		index = meili
	}
	searchSvc := search.NewService(index, docRepo, logger)

	docSvc := service.NewDocumentService(docRepo, userRepo, changelogRepo, searchSvc, docCache, logger)
	changelogSvc := service.NewChangelogService(changelogRepo, docRepo, docCache, logger)
	uploadSvc := service.NewUploadService(objStore, cfg.Storage, logger)
	userSvc := service.NewUserService(userRepo)

	verifier, err := auth.NewJWTVerifier(ctx, cfg.Auth.JWKSURL, cfg.Auth.Issuer, cfg.Auth.Audience, logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	sessions, err := service.NewEditorSessions(ctx, docSvc, reg, logger, service.SessionOptions{
		Windows:     autosaveWindows(cfg.Autosave),
		IdleTimeout: time.Duration(cfg.Autosave.SessionIdleSec) * time.Second,
	})
	if err != nil {
		return err
	}
	go sessions.Run(ctx)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// multipart overhead on top of the 2 MiB upload limit
		BodyLimit: 8 * 1024 * 1024,
	})

	// Register global middleware
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(metrics.Handler())

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:         db,
		Verifier:   verifier,
		Documents:  docSvc,
		Changelogs: changelogSvc,
		Uploads:    uploadSvc,
		Users:      userSvc,
		Sessions:   sessions,
		Metrics:    reg,
	})

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

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_listening", "addr", addr, "host", cfg.AppHost)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server_shutting_down")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(sctx); err != nil {
		return err
	}
	sessions.CloseAll()
	return nil
}

// autosaveWindows maps the configured debounce windows onto fields. Title
// shares the content window; visibility keeps its immediate default.
func autosaveWindows(cfg config.AutosaveConfig) map[autosave.Field]time.Duration {
	content := time.Duration(cfg.ContentWindowMs) * time.Millisecond
	return map[autosave.Field]time.Duration{
		autosave.FieldContent:  content,
		autosave.FieldTitle:    content,
		autosave.FieldCategory: time.Duration(cfg.CategoryWindowMs) * time.Millisecond,
	}
}
