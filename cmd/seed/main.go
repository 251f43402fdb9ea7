package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"qmate-api/internal/app"
	"qmate-api/internal/config"
	"qmate-api/internal/logger"
	"qmate-api/internal/model"
	"qmate-api/internal/service"
)

const defaultAdminPassword = "admin123"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logger.New(os.Stdout, cfg.Environment, cfg.Debug))

	if err := run(cfg); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	core, err := app.NewCore(ctx, cfg)
	if err != nil {
		return err
	}
	defer core.DB.Close()

	created, err := core.Departments.EnsureDefaults(ctx, service.DefaultDepartments())
	if err != nil {
		return err
	}
	slog.Info("departments seeded", "created", created)

	password := cfg.SeedAdminPassword
	if password == "" {
		if cfg.IsProduction() {
			return errors.New("SEED_ADMIN_PASSWORD is required in production")
		}
		slog.Warn("SEED_ADMIN_PASSWORD not set, using the development default; change it after first login")
		password = defaultAdminPassword
	}

	admin, err := core.Auth.Signup(ctx, service.SignupInput{
		Email:    cfg.SeedAdminEmail,
		Password: password,
		Name:     "System Administrator",
		Role:     model.RoleAdmin,
	})
	switch {
	case errors.Is(err, model.ErrDuplicateIdentity):
		slog.Info("admin user already exists", "email", model.NormalizeEmail(cfg.SeedAdminEmail))
		return nil
	case err != nil:
		return err
	}

	slog.Info("admin user created", "email", admin.Email, "user_id", admin.ID.String())
	return nil
}
