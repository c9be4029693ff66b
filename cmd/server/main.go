package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pagecrafter/internal/config"
	"pagecrafter/internal/domain"
	"pagecrafter/internal/extract"
	"pagecrafter/internal/generator"
	_ "pagecrafter/internal/generator/claude"
	_ "pagecrafter/internal/generator/gemini"
	_ "pagecrafter/internal/generator/openai"
	"pagecrafter/internal/handler"
	"pagecrafter/internal/logger"
	"pagecrafter/internal/port"
	"pagecrafter/internal/prompt"
	"pagecrafter/internal/ratelimit"
	"pagecrafter/internal/repository/postgres"
	"pagecrafter/internal/router"
	"pagecrafter/internal/service"
	s3storage "pagecrafter/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog, flush := logger.Init(cfg.Log)
	defer flush()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	projectRepo := postgres.NewProjectRepo(db)

	// Initialize storage
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	} else {
		zlog.Warn("S3 bucket not set; publishing exports is disabled")
	}

	// Initialize generator
	gen, err := generator.NewFromConfig(&cfg.Generator, logger.Named("generator"))
	if err != nil {
		if !errors.Is(err, domain.ErrGeneratorNotConfigured) {
			return fmt.Errorf("failed to initialize generator: %w", err)
		}
		zlog.Warn("generator API key not set; generation requests will fail",
			zap.String("provider", cfg.Generator.Provider))
	}

	prompts, err := prompt.Default(extract.Markers{
		Summary:      cfg.Extraction.SummaryMarker,
		PayloadStart: cfg.Extraction.PayloadStart,
		PayloadEnd:   cfg.Extraction.PayloadEnd,
	})
	if err != nil {
		return fmt.Errorf("failed to load prompt catalog: %w", err)
	}

	// Initialize rate limiting
	checks := map[string]handler.Pinger{"database": db}
	var limiter port.RateLimiter
	if cfg.RateLimit.Enabled {
		rdb := ratelimit.NewClient(cfg.Redis)
		defer rdb.Close()
		limiter = ratelimit.NewSlidingWindow(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	generationSvc := service.NewGenerationService(gen, prompts, zlog)
	projectSvc := service.NewProjectService(projectRepo, generationSvc, storage, cfg.S3, zlog)

	// Setup router
	r := router.Setup(router.Deps{
		AuthService: authSvc,
		Limiter:     limiter,
		CORS:        cfg.CORS,
		Logger:      zlog,
		Auth:        handler.NewAuthHandler(authSvc),
		Generate:    handler.NewGenerateHandler(generationSvc, zlog),
		Projects:    handler.NewProjectHandler(projectSvc),
		Health:      handler.NewHealthHandler(checks),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zlog.Info("server starting", zap.String("addr", srv.Addr), zap.String("provider", cfg.Generator.Provider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		zlog.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
