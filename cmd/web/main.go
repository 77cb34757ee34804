package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"sharetome/internal/apiclient"
	"sharetome/internal/auth"
	"sharetome/internal/config"
	"sharetome/internal/database"
	"sharetome/internal/database/migration"
	handlers "sharetome/internal/http/handler"
	"sharetome/internal/http/middleware"
	"sharetome/internal/otel"
	"sharetome/internal/repository/postgres"
	"sharetome/internal/service"
	"sharetome/internal/storage"
	"sharetome/internal/upload"
)

const sweepInterval = time.Minute

// @title ShareTome Web API
// @version 1.0
// @description Session-aware front end for the ShareTome document backend.
// @BasePath /
func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "sharetome-web").Logger()

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Staging area for files between selection and submit
	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize object storage")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}
	clientMetrics, err := apiclient.NewMetrics(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register backend client metrics")
	}
	uploadMetrics, err := upload.NewMetrics(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register upload metrics")
	}

	backend := apiclient.New(apiclient.Options{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: time.Duration(cfg.Backend.TimeoutSec) * time.Second,
		Logger:  log,
		Metrics: clientMetrics,
	})

	sessionTTL := time.Duration(cfg.Auth.SessionTTLHours) * time.Hour
	sessionSvc := service.NewSessionService(postgres.NewSessionPostgres(db), sessionTTL)
	tableSvc := service.NewTableService(backend)
	pipeline := upload.NewPipeline(objStore, backend, tableSvc, upload.Options{
		MaxConcurrency: cfg.Upload.MaxConcurrency,
		Logger:         log,
		Metrics:        uploadMetrics,
	})

	providers := buildProviders(ctx, cfg.Auth, log)
	if providers.Len() == 0 {
		log.Warn().Msg("no sign-in providers configured; set GITHUB_ID/GOOGLE_CLIENT_ID or DEV_AUTH=true")
	}
	states, err := auth.NewStateCodec(stateSecret(cfg.Auth.Secret, log))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid AUTH_SECRET")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		// A staging request may carry several files of up to MaxFileSize each.
		BodyLimit: int(4 * upload.MaxFileSize),
	})

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware(otelfiber.WithNext(func(c *fiber.Ctx) bool {
		return c.Path() == "/healthz" || c.Path() == "/metrics"
	})))
	app.Use(middleware.Logger(zerolog.New(os.Stdout), time.Local))
	app.Use(httpMetrics.Handler())
	app.Use(middleware.Session(sessionSvc, log))

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:      db,
		Tables:  tableSvc,
		Uploads: pipeline,
		Auth: handlers.AuthDeps{
			Providers: providers,
			States:    states,
			Sessions:  sessionSvc,
			Cookies:   handlers.CookieConfig{Secure: cfg.Auth.CookieSecure},
			Log:       log,
		},
		Gatherer: reg,
	})

	sw := &sweeper{
		uploads:  pipeline,
		sessions: sessionSvc,
		batchTTL: time.Duration(cfg.Upload.BatchTTLMin) * time.Minute,
		log:      log,
	}
	go sw.run(ctx, sweepInterval)

	addr := ":" + cfg.Port
	go func() {
		log.Info().Str("addr", addr).Str("host", cfg.AppHost).Str("backend", backend.BaseURL()).Msg("server starting")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
}

func buildProviders(ctx context.Context, cfg config.AuthConfig, log zerolog.Logger) *auth.Providers {
	var list []auth.Provider
	if cfg.GitHub.Enabled() {
		list = append(list, auth.NewGitHub(cfg.GitHub, cfg.PublicURL))
	}
	if cfg.Google.Enabled() {
		g, err := auth.NewGoogle(ctx, cfg.Google, cfg.PublicURL)
		if err != nil {
			log.Error().Err(err).Msg("google sign-in disabled: discovery failed")
		} else {
			list = append(list, g)
		}
	}
	if cfg.DevAuth {
		log.Warn().Msg("development sign-in enabled")
		list = append(list, auth.Dev{})
	}
	return auth.NewProviders(cfg.PublicURL, list...)
}

// stateSecret falls back to a per-process key, which invalidates in-flight
// sign-ins on restart.
func stateSecret(configured string, log zerolog.Logger) string {
	if configured != "" {
		return configured
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatal().Err(err).Msg("generate state secret")
	}
	log.Warn().Msg("AUTH_SECRET not set; using a generated key")
	return hex.EncodeToString(b)
}
