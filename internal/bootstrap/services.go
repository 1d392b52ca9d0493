package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/tailfin-labs/tailfin/config"
	"github.com/tailfin-labs/tailfin/internal/adapters/helius"
	"github.com/tailfin-labs/tailfin/internal/data"
	httpx "github.com/tailfin-labs/tailfin/internal/http"
	"github.com/tailfin-labs/tailfin/internal/service"
)

// ServiceContainer holds all application services and repositories.
type ServiceContainer struct {
	Jobs        *data.JobRepo
	Credentials *data.CredentialRepo
	Queue       *data.QueueRepo
	Directory   *service.DirectoryService
	Reconciler  *service.Reconciler
	Matcher     *service.Matcher
	Pools       *service.PoolRegistry
	Worker      *service.Worker
	Sweeper     *service.Sweeper
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient *redis.Client
	Logger      *slog.Logger
}

// NewServices wires repositories and services.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service deps and config are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	encryptor := CreateEncryptor(cfg.SecretsEncryptionKey, logger)

	jobRepo := data.NewJobRepo(data.JobRepoOptions{DB: deps.DB, Logger: logger})
	credentialRepo := data.NewCredentialRepo(data.CredentialRepoOptions{
		DB: deps.DB, Encryptor: encryptor, Logger: logger,
	})
	queueRepo := data.NewQueueRepo(data.QueueRepoOptions{DB: deps.DB, Logger: logger})

	var cache *data.RedisDirectoryCache
	if deps.RedisClient != nil {
		cache = data.NewRedisDirectoryCache(data.RedisDirectoryCacheOptions{
			Client: deps.RedisClient, Logger: logger,
		})
	}

	directoryOpts := service.DirectoryServiceOptions{
		Jobs:     jobRepo,
		CacheTTL: cfg.Directory.CacheTTL,
		Logger:   logger,
	}
	if cache != nil {
		directoryOpts.Cache = cache
	}
	directory := service.NewDirectoryService(directoryOpts)

	subscriber := helius.NewClient(helius.ClientOptions{
		BaseURL:     cfg.Subscription.APIBaseURL,
		APIKey:      cfg.Subscription.APIKey,
		WebhookID:   cfg.Subscription.WebhookID,
		CallbackURL: cfg.HTTP.BaseURL + cfg.Subscription.CallbackPath,
		Timeout:     cfg.Subscription.RequestTimeout,
		Logger:      logger,
	})

	reconciler := service.NewReconciler(service.ReconcilerOptions{
		Jobs:        jobRepo,
		Credentials: credentialRepo,
		Directory:   directory,
		Subscriber:  subscriber,
		Logger:      logger,
	})

	matcher := service.NewMatcher(service.MatcherOptions{
		Directory: directory,
		Queue:     queueRepo,
		Jobs:      jobRepo,
		Logger:    logger,
	})

	pools := service.NewPoolRegistry(service.PoolRegistryOptions{
		MaxConns:    cfg.Worker.PoolMaxConns,
		IdleTimeout: cfg.Worker.PoolIdleTimeout,
		Logger:      logger,
	})

	worker := service.NewWorker(service.WorkerOptions{
		Queue:         queueRepo,
		Jobs:          jobRepo,
		Credentials:   credentialRepo,
		Pools:         pools,
		Reconciler:    reconciler,
		Logger:        logger,
		PollInterval:  cfg.Worker.PollInterval,
		MaxAttempts:   cfg.Worker.MaxAttempts,
		QueryTimeout:  cfg.Worker.QueryTimeout,
		ShutdownGrace: cfg.Worker.ShutdownGrace,
	})

	sweeper, err := service.NewSweeper(service.SweeperOptions{
		Queue:       queueRepo,
		Config:      cfg.Sweeper,
		MaxAttempts: cfg.Worker.MaxAttempts,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build sweeper: %w", err)
	}

	return &ServiceContainer{
		Jobs:        jobRepo,
		Credentials: credentialRepo,
		Queue:       queueRepo,
		Directory:   directory,
		Reconciler:  reconciler,
		Matcher:     matcher,
		Pools:       pools,
		Worker:      worker,
		Sweeper:     sweeper,
	}, nil
}

// ServiceOrchestrationConfig groups dependencies for running services.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services *ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and blocks until a
// shutdown signal arrives or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil || cfg.Services == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	if enabled[config.ServiceModeHTTP] {
		server := buildHTTPServer(cfg)
		group.Go(func() error {
			logger.Info("http server listening", "addr", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		group.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	if enabled[config.ServiceModeWorker] {
		group.Go(func() error {
			err := cfg.Services.Worker.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	if enabled[config.ServiceModeSweeper] {
		group.Go(func() error {
			return cfg.Services.Sweeper.Run(ctx)
		})
	}

	err = group.Wait()
	cfg.Services.Pools.Close()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("all services stopped")
	return nil
}

func buildHTTPServer(cfg *ServiceOrchestrationConfig) *http.Server {
	handler := httpx.NewRouter(httpx.RouterServices{
		Reconciler:   cfg.Services.Reconciler,
		Matcher:      cfg.Services.Matcher,
		Jobs:         cfg.Services.Jobs,
		Credentials:  cfg.Services.Credentials,
		Queue:        cfg.Services.Queue,
		Pools:        cfg.Services.Pools,
		MaxBodyBytes: cfg.Config.HTTP.MaxBodyBytes,
		Logger:       cfg.Logger,
	})
	return &http.Server{
		Addr:         cfg.Config.HTTP.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Config.HTTP.ReadTimeout,
		WriteTimeout: cfg.Config.HTTP.WriteTimeout,
	}
}
