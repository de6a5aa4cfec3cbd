package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/sitecrew/sitecrew/internal/app"
	"github.com/sitecrew/sitecrew/internal/auth"
	"github.com/sitecrew/sitecrew/internal/authz"
	"github.com/sitecrew/sitecrew/internal/maintenance"
	"github.com/sitecrew/sitecrew/internal/observability"
	"github.com/sitecrew/sitecrew/internal/platform/cache"
	"github.com/sitecrew/sitecrew/internal/platform/db"
	"github.com/sitecrew/sitecrew/internal/ratelimit"
	"github.com/sitecrew/sitecrew/internal/reset"
	"github.com/sitecrew/sitecrew/internal/roles"
	"github.com/sitecrew/sitecrew/internal/tasks"
	"github.com/sitecrew/sitecrew/internal/users"
	"github.com/sitecrew/sitecrew/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	codec := auth.NewTokenCodec(cfg.JWTSecret, cfg.SessionTokenTTL)
	maintSource := maintenance.NewSource(redisClient, logger)
	roleRepo := roles.NewRepository(pool)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, roleRepo, maintSource, codec, logger)
	loginLimiter := ratelimit.NewDual(cfg.DualRatePoints, cfg.DualRateWindow, cfg.DualSecondaryPoints, cfg.DualSecondaryWindow, cfg.RateLimitDisabled)
	authHandler := auth.NewHandler(logger, authService, loginLimiter)

	resetStore := reset.NewStore(pool)
	resetService := reset.NewService(authRepo, resetStore, jobs.NewEnqueuer(asynqClient), reset.ServiceConfig{
		TTL:        cfg.ResetTokenTTL,
		LinkBase:   cfg.ResetLinkBase,
		BcryptCost: cfg.BcryptCost,
	}, logger)
	forgotLimiter := ratelimit.NewDual(cfg.DualRatePoints, cfg.DualRateWindow, cfg.DualSecondaryPoints, cfg.DualSecondaryWindow, cfg.RateLimitDisabled)
	consumeLimiter := ratelimit.New(cfg.RatePoints, cfg.RateWindow, cfg.RateLimitDisabled)
	resetHandler := reset.NewHandler(logger, resetService, forgotLimiter, consumeLimiter)

	hierarchy := authz.NewHierarchy()
	usersService := users.NewService(users.NewRepository(pool), roleRepo, hierarchy)
	usersHandler := users.NewHandler(logger, usersService)

	tasksService := tasks.NewService(tasks.NewRepository(pool), hierarchy)
	tasksHandler := tasks.NewHandler(logger, tasksService)

	rolesHandler := roles.NewHandler(logger, roleRepo)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		TokenCodec:   codec,
		Hierarchy:    hierarchy,
		AuthHandler:  authHandler,
		ResetHandler: resetHandler,
		UsersHandler: usersHandler,
		RolesHandler: rolesHandler,
		TasksHandler: tasksHandler,
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
