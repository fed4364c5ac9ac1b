// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/prepvault/internal/access"
	"github.com/carterperez-dev/prepvault/internal/admin"
	"github.com/carterperez-dev/prepvault/internal/auth"
	"github.com/carterperez-dev/prepvault/internal/catalog"
	"github.com/carterperez-dev/prepvault/internal/config"
	"github.com/carterperez-dev/prepvault/internal/content"
	"github.com/carterperez-dev/prepvault/internal/core"
	"github.com/carterperez-dev/prepvault/internal/health"
	"github.com/carterperez-dev/prepvault/internal/importer"
	"github.com/carterperez-dev/prepvault/internal/metrics"
	"github.com/carterperez-dev/prepvault/internal/middleware"
	"github.com/carterperez-dev/prepvault/internal/migrations"
	"github.com/carterperez-dev/prepvault/internal/profile"
	"github.com/carterperez-dev/prepvault/internal/server"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		switch {
		case telErr != nil:
			logger.Warn("failed to initialize telemetry", "error", telErr)
		case tel.Enabled():
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(db.DB.DB); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	if !cfg.IsProduction() {
		created, keyErr := auth.EnsureKeyFile(cfg.JWT.PrivateKeyPath)
		if keyErr != nil {
			return keyErr
		}
		if created {
			logger.Warn("generated development signing key",
				"path", cfg.JWT.PrivateKeyPath,
			)
		}
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	profileRepo := profile.NewRepository(db.DB)
	profileSvc := profile.NewService(profileRepo)

	sessions := access.NewResolver(
		profileSvc,
		access.NewRedisCache(redis.Client),
		cfg.Session.CacheTTL,
		logger,
	)
	gate := access.NewGate(access.GateConfig{
		SignInURL:  cfg.App.SignInURL,
		UpgradeURL: cfg.App.UpgradeURL,
	})

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, jwtManager, profileSvc, sessions)

	questions := content.NewService[content.Question](
		content.NewRepository[content.Question](db.DB, content.QuestionKind),
		gate, content.QuestionKind)
	codingQuestions := content.NewService[content.CodingQuestion](
		content.NewRepository[content.CodingQuestion](db.DB, content.CodingQuestionKind),
		gate, content.CodingQuestionKind)
	systemDesign := content.NewService[content.SystemDesignProblem](
		content.NewRepository[content.SystemDesignProblem](db.DB, content.SystemDesignKind),
		gate, content.SystemDesignKind)
	projects := content.NewService[content.Project](
		content.NewRepository[content.Project](db.DB, content.ProjectKind),
		gate, content.ProjectKind)

	catalogSvc := catalog.NewService(catalog.NewRepository(db.DB))

	importHandler := importer.NewHandler(
		importer.NewQuestionImporter(questions, cfg.Import.BatchSize, logger),
		catalogSvc,
		cfg.Import.MaxPayloadBytes,
		importer.NewRecordImporter[content.Question](
			questions, content.QuestionKind, logger),
		importer.NewRecordImporter[content.CodingQuestion](
			codingQuestions, content.CodingQuestionKind, logger),
		importer.NewRecordImporter[content.SystemDesignProblem](
			systemDesign, content.SystemDesignKind, logger),
		importer.NewRecordImporter[content.Project](
			projects, content.ProjectKind, logger),
	)

	healthHandler := health.NewHandler(
		health.Dependency{Name: "database", Checker: db},
		health.Dependency{Name: "redis", Checker: redis},
		health.Dependency{Name: "schema", Checker: migrations.SchemaCheck{DB: db.DB.DB}},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
		Content: map[string]admin.TierCounter{
			content.QuestionKind.Name:       questions.CountByTier,
			content.CodingQuestionKind.Name: codingQuestions.CountByTier,
			content.SystemDesignKind.Name:   systemDesign.CountByTier,
			content.ProjectKind.Name:        projects.CountByTier,
		},
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Handle("/metrics", metrics.Handler())
	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	tierLimit := middleware.TieredRateLimiter(redis.Client, middleware.DefaultTierLimits)
	authenticator := chain(middleware.Authenticator(authSvc, sessions), tierLimit)
	optionalAuth := chain(middleware.OptionalAuth(authSvc, sessions), tierLimit)
	adminOnly := middleware.RequireAdmin
	importLimit := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit:    middleware.PerMinute(10, 5),
		KeyFunc:  middleware.KeyByUserAndEndpoint,
		FailOpen: true,
	}).Handler

	router.Route("/v1", func(r chi.Router) {
		auth.NewHandler(authSvc).RegisterRoutes(r, authenticator)

		profileHandler := profile.NewHandler(profileSvc, sessions)
		profileHandler.RegisterRoutes(r, authenticator)
		profileHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		catalogHandler := catalog.NewHandler(catalogSvc)
		catalogHandler.RegisterRoutes(r)
		catalogHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		questionHandler := content.NewHandler(questions)
		questionHandler.RegisterRoutes(r, optionalAuth)
		questionHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		codingHandler := content.NewHandler(codingQuestions)
		codingHandler.RegisterRoutes(r, optionalAuth)
		codingHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		systemDesignHandler := content.NewHandler(systemDesign)
		systemDesignHandler.RegisterRoutes(r, optionalAuth)
		systemDesignHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		projectHandler := content.NewHandler(projects)
		projectHandler.RegisterRoutes(r, optionalAuth)
		projectHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		importHandler.RegisterAdminRoutes(r, authenticator, adminOnly, importLimit)
		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

// chain runs the given middleware in order ahead of the handler.
func chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(mws...).Handler(next)
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
