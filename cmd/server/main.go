// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"loandesk/internal/api"
	awsclient "loandesk/internal/common/aws"
	"loandesk/internal/common/auth"
	"loandesk/internal/common/config"
	"loandesk/internal/common/database"
	"loandesk/internal/common/facebook"
	"loandesk/internal/common/logger"
	"loandesk/internal/common/observability"
	"loandesk/internal/intake"
	"loandesk/internal/notify"
	"loandesk/internal/permissions"
	"loandesk/internal/search"
	"loandesk/internal/service"
	"loandesk/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(logger.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Service:     cfg.App.Name,
		Environment: cfg.App.Environment,
	})
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("starting loandesk", zap.String("version", cfg.App.Version))

	ctx := context.Background()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	resolver := permissions.NewResolver()
	if err := resolver.ValidateGrants(); err != nil {
		zapLog.Fatal("role table is inconsistent", zap.Error(err))
	}

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		if pg != nil {
			_ = pg.Close()
		}
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres, cfg.App.Name)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "postgres connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("postgres connected")

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(ctx, pg.SQL()); err != nil {
			zapLog.Fatal("migrations failed", zap.Error(err))
		}
		version, _ := database.MigrationVersion(ctx, pg.SQL())
		zapLog.Info("migrations applied", zap.Int64("version", version))
	}

	// --- Redis ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		if redis != nil {
			_ = redis.Close()
		}
		redis = database.NewRedis(cfg.Database.Redis, cfg.App.Name)
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("redis connected")

	// --- Repositories and services ---
	leadRepo := store.NewLeadStore(pg.DB)
	staffRepo := store.NewStaffStore(pg.DB)

	var cache service.LeadCache = store.NewLeadCache(redis.Client, redis.LeadTTL())

	var index service.LeadIndex
	if cfg.Search.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		leadIndex := search.NewLeadIndex(esClient.Client, cfg.Search.Index)
		if err := leadIndex.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("lead index setup failed", zap.Error(err))
		}
		index = leadIndex
		zapLog.Info("elasticsearch connected", zap.String("index", cfg.Search.Index))
	} else {
		zapLog.Info("lead search disabled")
	}

	leads := service.NewLeadService(leadRepo, cache, index, log)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, time.Duration(cfg.Auth.TokenTTL)*time.Minute)
	authService := service.NewAuthService(staffRepo, tokens, log)

	created, err := authService.EnsureOwner(ctx,
		cfg.Auth.BootstrapOwnerName,
		cfg.Auth.BootstrapOwnerEmail,
		cfg.Auth.BootstrapOwnerPassword,
		cfg.Intake.DefaultBranchID,
	)
	if err != nil {
		zapLog.Fatal("bootstrap owner failed", zap.Error(err))
	}
	if created {
		zapLog.Info("bootstrap owner account created", zap.String("email", cfg.Auth.BootstrapOwnerEmail))
	}

	// --- New-lead alerts ---
	var emailSender notify.EmailSender
	var smsSender notify.SMSSender
	if cfg.Notifications.Email.Enabled {
		sesClient, err := awsclient.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		emailSender = sesClient
	}
	if cfg.Notifications.SMS.Enabled {
		snsClient, err := awsclient.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		smsSender = snsClient
	}
	notifier := notify.NewNotifier(emailSender, smsSender, cfg.Notifications, log)

	// --- Lead intake webhook ---
	graph := facebook.NewGraphClient(
		cfg.Facebook.GraphBaseURL,
		cfg.Facebook.GraphVersion,
		cfg.Facebook.AccessToken,
		config.GetDuration(cfg.Facebook.Timeout),
	)
	hook, err := intake.NewHandler(intake.HandlerOptions{
		AppConfig:     cfg,
		Logger:        log,
		Fetcher:       graph,
		Creator:       leads,
		Notifier:      notifier,
		Observability: obs,
	})
	if err != nil {
		zapLog.Fatal("failed to create lead intake handler", zap.Error(err))
	}

	router := api.NewRouter(api.Dependencies{
		Logger:       log,
		Tokens:       tokens,
		Resolver:     resolver,
		Auth:         authService,
		Leads:        leads,
		Staff:        service.NewStaffService(staffRepo, resolver, log),
		Branches:     service.NewBranchService(store.NewBranchStore(pg.DB)),
		Banks:        service.NewBankService(store.NewBankStore(pg.DB)),
		FacebookHook: hook,
		Readiness: map[string]api.Pinger{
			"postgres": pg,
			"redis":    redis,
		},
		RequestTimeout: config.GetDuration(cfg.Server.RequestTimeout),
		Version:        cfg.App.Version,
	})

	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		zapLog.Info("http server listening", zap.String("addr", cfg.Server.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		zapLog.Error("http server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("observability shutdown failed", zap.Error(err))
	}

	zapLog.Info("loandesk stopped")
}
