package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qmate-api/internal/config"
	"qmate-api/internal/database"
	"qmate-api/internal/handler"
	"qmate-api/internal/metrics"
	"qmate-api/internal/middleware"
	"qmate-api/internal/repository"
	"qmate-api/internal/router"
	"qmate-api/internal/security"
	"qmate-api/internal/service"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

// Core holds the wired domain services shared by the server and the seed
// command.
type Core struct {
	DB          *database.DB
	Auth        *service.AuthService
	Departments *service.DepartmentService
	Codec       *security.TokenCodec
}

// NewCore connects to PostgreSQL, ensures the schema and builds the services.
// The caller owns the returned database handle.
func NewCore(ctx context.Context, cfg *config.Config) (*Core, error) {
	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	userRepo := repository.NewUserRepository(db.Pool)
	departmentRepo := repository.NewDepartmentRepository(db.Pool)
	slog.Info("database ready")

	codec, err := security.NewTokenCodec(cfg.SecretKey, cfg.Algorithm)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	authService, err := service.NewAuthService(service.AuthConfig{
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}, userRepo, security.NewPasswordHasher(cfg.BcryptCost), codec)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}

	return &Core{
		DB:          db,
		Auth:        authService,
		Departments: service.NewDepartmentService(departmentRepo),
		Codec:       codec,
	}, nil
}

func New(cfg *config.Config) (*App, error) {
	core, err := NewCore(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	authMiddleware := middleware.NewAuthMiddleware(core.Codec, core.Auth)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:       handler.NewAuthHandler(core.Auth, m),
		Department: handler.NewDepartmentHandler(core.Departments),
		Health:     handler.NewHealthHandler(core.DB, cfg.Environment),
		Docs:       handler.NewDocsHandler(),
	}, m)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     core.DB,
		cleanupFuncs: []func(){
			func() {
				core.DB.Close()
			},
		},
	}, nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}
}
