package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/enroll-wizard-api/api/swagger"
	"github.com/noah-isme/enroll-wizard-api/internal/handler"
	internalmiddleware "github.com/noah-isme/enroll-wizard-api/internal/middleware"
	"github.com/noah-isme/enroll-wizard-api/internal/repository"
	"github.com/noah-isme/enroll-wizard-api/internal/service"
	"github.com/noah-isme/enroll-wizard-api/pkg/cache"
	"github.com/noah-isme/enroll-wizard-api/pkg/config"
	"github.com/noah-isme/enroll-wizard-api/pkg/database"
	"github.com/noah-isme/enroll-wizard-api/pkg/jobs"
	"github.com/noah-isme/enroll-wizard-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/enroll-wizard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/enroll-wizard-api/pkg/middleware/requestid"
	"github.com/noah-isme/enroll-wizard-api/pkg/storage"
)

// @title Enroll Wizard API
// @version 1.0.0
// @description Multi-step enrollment wizard with persisted drafts and asynchronous submission
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{}

	drafts, redisClient, err := openDraftStorage(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("draft storage unavailable", zap.String("backend", cfg.Drafts.Backend), zap.Error(err))
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	submitter, db, err := openSubmitter(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("submission backend unavailable", zap.String("mode", cfg.Submission.Mode), zap.Error(err))
	}
	if db != nil {
		checks["postgres"] = db.PingContext
	}

	catalog, err := service.LoadCatalogFile(cfg.Catalog.File, logr)
	if err != nil {
		logr.Fatal("failed to load catalog", zap.String("file", cfg.Catalog.File), zap.Error(err))
	}

	var worker *service.SubmissionWorker
	queue := jobs.NewQueue("submissions", func(ctx context.Context, job jobs.Job) error {
		return worker.Handle(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Submission.Workers,
		MaxRetries: cfg.Submission.MaxRetries,
		RetryDelay: cfg.Submission.RetryDelay,
		Logger:     logr,
		OnDrop: func(job jobs.Job, err error) {
			worker.Abandon(job, err)
		},
	})
	submissions := service.NewSubmissionService(queue, metrics, logr)
	worker = service.NewSubmissionWorker(submitter, submissions, cfg.Submission.MaxRetries, logr)

	queueCtx, cancelQueue := context.WithCancel(context.Background())
	queue.Start(queueCtx)

	engine := service.NewValidationEngine(validator.New())
	wizard := service.NewWizardService(drafts, engine, catalog, submissions, metrics, logr, service.WizardServiceConfig{
		KeyPrefix:     cfg.Drafts.KeyPrefix,
		SaveDebounce:  cfg.Drafts.SaveDebounce,
		IdleTTL:       cfg.Drafts.IdleTTL,
		SubmittedTTL:  cfg.Drafts.SubmittedTTL,
		SweepInterval: cfg.Drafts.SweepInterval,
	})
	wizard.StartEviction(ctx)
	exports := service.NewExportService(wizard, logr, nil, nil)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	handler.RegisterOps(r, handler.NewMetricsHandler(metrics, checks))
	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.NewWizardHandler(wizard, exports), handler.NewCatalogHandler(catalog))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("draft_backend", cfg.Drafts.Backend),
			zap.String("submission_mode", cfg.Submission.Mode),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown", zap.Error(err))
	}
	if err := wizard.Shutdown(shutdownCtx); err != nil {
		logr.Error("flush drafts", zap.Error(err))
	}
	if err := queue.Stop(shutdownCtx); err != nil {
		logr.Warn("submission queue drain", zap.Error(err))
	}
	cancelQueue()

	if db != nil {
		if err := db.Close(); err != nil {
			logr.Warn("close postgres", zap.Error(err))
		}
	}
	if closer, ok := drafts.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logr.Warn("close draft storage", zap.String("backend", cfg.Drafts.Backend), zap.Error(err))
		}
	}
}

// openDraftStorage returns the configured draft backend. The redis client is
// returned for readiness checks when that backend is selected; closing the
// backend releases it.
func openDraftStorage(ctx context.Context, cfg *config.Config, logr *zap.Logger) (service.DraftStorage, *redis.Client, error) {
	switch cfg.Drafts.Backend {
	case config.DraftBackendRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		drafts := repository.NewDraftRepository(client, logr)
		if keys, err := drafts.Keys(ctx, cfg.Drafts.KeyPrefix+":*"); err != nil {
			logr.Warn("scan persisted drafts", zap.Error(err))
		} else {
			logr.Info("persisted drafts found", zap.Int("count", len(keys)))
		}
		return drafts, client, nil
	case config.DraftBackendFile:
		local, err := storage.NewLocalStorage(cfg.Drafts.Dir)
		if err != nil {
			return nil, nil, err
		}
		return local, nil, nil
	case config.DraftBackendMemory:
		logr.Warn("drafts are kept in memory and lost on restart")
		return repository.NewMemoryDraftRepository(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown draft backend %q", cfg.Drafts.Backend)
	}
}

func openSubmitter(ctx context.Context, cfg *config.Config, logr *zap.Logger) (service.Submitter, *sqlx.DB, error) {
	switch cfg.Submission.Mode {
	case config.SubmissionModePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		apps := repository.NewApplicationRepository(db)
		if err := apps.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return service.NewApplicationSubmitter(apps), db, nil
	case config.SubmissionModeSimulated:
		return service.NewSimulatedSubmitter(cfg.Submission.Delay, cfg.Submission.Fail, logr), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown submission mode %q", cfg.Submission.Mode)
	}
}
