package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fanoo2/backend/internal/application"
	appagents "github.com/fanoo2/backend/internal/application/agents"
	appann "github.com/fanoo2/backend/internal/application/annotations"
	appdash "github.com/fanoo2/backend/internal/application/dashboard"
	apppay "github.com/fanoo2/backend/internal/application/payments"
	"github.com/fanoo2/backend/internal/config"
	domann "github.com/fanoo2/backend/internal/domain/annotation"
	"github.com/fanoo2/backend/internal/infra/ai/openai"
	"github.com/fanoo2/backend/internal/infra/ci/github"
	"github.com/fanoo2/backend/internal/infra/db/memory"
	mysqlp "github.com/fanoo2/backend/internal/infra/db/mysql"
	"github.com/fanoo2/backend/internal/infra/db/postgres"
	"github.com/fanoo2/backend/internal/infra/db/sqlite"
	"github.com/fanoo2/backend/internal/infra/httpserver"
	"github.com/fanoo2/backend/internal/infra/payments/stripe"
	"github.com/fanoo2/backend/internal/infra/rtc/livekit"
	minioStore "github.com/fanoo2/backend/internal/infra/storage"
	"github.com/fanoo2/backend/internal/logger"
	"github.com/fanoo2/backend/internal/middleware"
)

const serviceName = "fanno-backend"

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: serviceName})
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	repo, db, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("storage init error")
	}
	checkers := map[string]middleware.HealthChecker{}
	if db != nil {
		defer db.Close()
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}

	annSvc := &appann.Service{
		AI: openai.NewClient(openai.Options{
			APIKey:      cfg.OpenAI.APIKey,
			Model:       cfg.OpenAI.Model,
			BaseURL:     cfg.OpenAI.BaseURL,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
			Timeout:     cfg.OpenAI.Timeout,
		}),
		Repo:           repo,
		Clock:          application.SystemClock{},
		Log:            logger.Named("annotations"),
		MaxInputLength: cfg.Annotation.MaxInputLength,
		ProviderName:   cfg.Annotation.ProviderName,
	}
	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY not set, annotations use basic analysis only")
	}

	// init minio
	if cfg.ArchiveEnabled() {
		store, err := minioStore.New(ctx, minioStore.Options{
			Endpoint:  cfg.Minio.Endpoint,
			Region:    cfg.Minio.Region,
			Bucket:    cfg.Minio.BucketName,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("minio init error")
		}
		annSvc.Archive = store
	}

	dashStore := memory.NewDashboardStore(memory.IntegrationsFrom(cfg), nil)
	dashSvc := &appdash.Service{Store: dashStore}

	agentSvc := &appagents.Service{
		Activities: dashStore,
		CI: github.NewDispatcher(github.Options{
			Token:    cfg.GitHub.ActionsToken,
			Owner:    cfg.GitHub.Owner,
			Repo:     cfg.GitHub.Repo,
			Workflow: cfg.GitHub.Workflow,
			Ref:      cfg.GitHub.Ref,
		}),
		Log: logger.Named("agents"),
	}

	paySvc := &apppay.Service{
		Payments: stripe.NewClient(stripe.Options{
			SecretKey:     cfg.Stripe.SecretKey,
			WebhookSecret: cfg.Stripe.WebhookSecret,
			SuccessURL:    cfg.Server.FrontendURL + "/success",
			CancelURL:     cfg.Server.FrontendURL + "/cancel",
			ProductName:   "Fanno AI Platform Service",
		}),
		Activities: dashStore,
		Log:        logger.Named("payments"),
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
	defer limiter.Stop()

	handler := httpserver.NewRouter(httpserver.Options{
		Service:     serviceName,
		Annotations: annSvc,
		Dashboard:   dashSvc,
		Agents:      agentSvc,
		Payments:    paySvc,
		RoomTokens: livekit.NewIssuer(livekit.Options{
			URL:       cfg.LiveKit.URL,
			APIKey:    cfg.LiveKit.APIKey,
			APISecret: cfg.LiveKit.APISecret,
			TTL:       cfg.LiveKit.TokenTTL,
		}),
		Metrics:     middleware.NewMetrics(),
		Limiter:     limiter,
		Checkers:    checkers,
		AdminKey:    cfg.Server.AdminKey,
		CORSOrigins: cfg.Server.CORSOrigins,
		Log:         logger.Named("http"),
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Info().
			Str("addr", addr).
			Str("storage", cfg.Storage.Driver).
			Str("environment", cfg.Environment).
			Bool("archive", cfg.ArchiveEnabled()).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

// openStore picks the annotation log backend. The returned *sql.DB is nil
// for the memory driver.
func openStore(ctx context.Context, cfg *config.Config) (domann.Repository, *sql.DB, error) {
	dsn := cfg.StorageDSN()
	switch cfg.Storage.Driver {
	case "postgres":
		db, err := postgres.Connect(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewAnnotationRepository(db), db, nil
	case "mysql":
		db, err := mysqlp.Connect(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := mysqlp.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return mysqlp.NewAnnotationRepository(db), db, nil
	case "sqlite":
		db, err := sqlite.Connect(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlite.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return sqlite.NewAnnotationRepository(db), db, nil
	default:
		return memory.NewAnnotationRepository(), nil, nil
	}
}
