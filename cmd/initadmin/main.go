// cmd/initadmin/main.go создает первого администратора из ADMIN_EMAIL, ADMIN_USERNAME и ADMIN_PASSWORD.
// Повторный запуск безопасен: существующий пользователь только повышается до admin.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/devabdallah1411/arabFilmsServer/internal/config"
	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/logging"
	"github.com/devabdallah1411/arabFilmsServer/internal/notify"
	"github.com/devabdallah1411/arabFilmsServer/internal/service"
	"github.com/devabdallah1411/arabFilmsServer/internal/store"
	"github.com/devabdallah1411/arabFilmsServer/pkg/auth"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Admin initialization failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}
	logger, logCloser, err := logging.New(cfg)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stores, closeStores, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores(context.Background())

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, auth.WithIssuer(cfg.JWTIssuer))
	if err != nil {
		return err
	}
	// Медиа не нужно: администратор создается без аватара.
	accounts := service.NewAccountService(stores.Users, service.StoreWorkLookup{Works: stores.Works}, tokens, nil,
		notify.NewLogNotifier(logger), domain.NewValidator(), logger, service.AccountConfig{ResetTokenTTL: cfg.ResetTokenTTL})

	admin, created, err := accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		logger.Info("Admin user created", slog.String("userID", admin.ID), slog.String("email", admin.Email))
	} else {
		logger.Info("Admin user already present", slog.String("userID", admin.ID), slog.String("email", admin.Email))
	}
	return nil
}
