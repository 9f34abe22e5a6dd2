package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atlas-backoffice/atlas/internal/app"
	"github.com/atlas-backoffice/atlas/internal/auth"
	"github.com/atlas-backoffice/atlas/internal/companies"
	"github.com/atlas-backoffice/atlas/internal/groups"
	"github.com/atlas-backoffice/atlas/internal/observability"
	"github.com/atlas-backoffice/atlas/internal/platform/cache"
	"github.com/atlas-backoffice/atlas/internal/platform/db"
	"github.com/atlas-backoffice/atlas/internal/rbac"
	"github.com/atlas-backoffice/atlas/internal/roles"
	"github.com/atlas-backoffice/atlas/internal/settings"
	"github.com/atlas-backoffice/atlas/internal/token"
	"github.com/atlas-backoffice/atlas/internal/users"
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

	signer, err := token.NewSigner(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		logger.Error("init token signer", slog.Any("error", err))
		os.Exit(1)
	}
	tokens := token.NewService(signer, cfg.AccessTokenTTL)

	metrics := observability.NewMetrics()

	rbacRepo := rbac.NewRepository(pool)
	resolver := rbac.NewResolver(rbacRepo, rbacRepo, rbacRepo, rbac.NewMatrix(), logger)
	rbacMiddleware := rbac.Middleware{
		Tokens:   tokens,
		Resolver: resolver,
		Logger:   logger,
		Metrics:  metrics,
	}

	throttle := auth.NewLoginThrottle(redisClient, int64(cfg.LoginAttemptLimit), cfg.LoginAttemptWindow, logger)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, throttle, logger)
	authHandler := auth.NewHandler(logger, authService, rbacMiddleware.Authenticate)

	usersService := users.NewService(users.NewRepository(pool), logger)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware.RequireScope(rbac.ScopeUsers))

	companiesHandler := companies.NewHandler(logger, companies.NewRepository(pool), rbacMiddleware.RequireScope(rbac.ScopeCompanies))
	rolesHandler := roles.NewHandler(logger, roles.NewRepository(pool), rbacMiddleware.RequireScope(rbac.ScopeRoles))
	groupsHandler := groups.NewHandler(logger, groups.NewRepository(pool), rbacMiddleware.RequireScope(rbac.ScopeGroups))
	settingsHandler := settings.NewHandler(logger, settings.NewRepository(pool), rbacMiddleware.RequireScope(rbac.ScopeSettings))

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		Authenticate:     rbacMiddleware.Authenticate,
		AuthHandler:      authHandler,
		UsersHandler:     usersHandler,
		CompaniesHandler: companiesHandler,
		RolesHandler:     rolesHandler,
		GroupsHandler:    groupsHandler,
		SettingsHandler:  settingsHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
