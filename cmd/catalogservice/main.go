// cmd/catalogservice/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/devabdallah1411/arabFilmsServer/internal/access"
	"github.com/devabdallah1411/arabFilmsServer/internal/api"
	"github.com/devabdallah1411/arabFilmsServer/internal/clients"
	"github.com/devabdallah1411/arabFilmsServer/internal/config"
	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	lookup "github.com/devabdallah1411/arabFilmsServer/internal/grpc"
	"github.com/devabdallah1411/arabFilmsServer/internal/logging"
	"github.com/devabdallah1411/arabFilmsServer/internal/media"
	"github.com/devabdallah1411/arabFilmsServer/internal/notify"
	"github.com/devabdallah1411/arabFilmsServer/internal/service"
	"github.com/devabdallah1411/arabFilmsServer/internal/store"
	"github.com/devabdallah1411/arabFilmsServer/pkg/auth"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Catalog service stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, logCloser, err := logging.New(cfg)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Хранилище ---
	stores, closeStores, err := store.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("Closing store connections...")
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := closeStores(closeCtx); err != nil {
			logger.Error("Failed to close store", slog.String("error", err.Error()))
		}
	}()

	// --- Медиа и почта ---
	mediaStore, err := newMediaStore(cfg, logger)
	if err != nil {
		return err
	}
	notifier := newNotifier(cfg, logger)

	// --- Проверка существования работ: локально или через удаленный каталог ---
	var works service.WorkLookup = service.StoreWorkLookup{Works: stores.Works}
	if cfg.LookupAddr != "" {
		client, err := clients.NewLookupClient(cfg.LookupAddr, logger)
		if err != nil {
			return err
		}
		defer client.Close()
		works = client
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, auth.WithIssuer(cfg.JWTIssuer))
	if err != nil {
		return err
	}
	validate := domain.NewValidator()
	guard := access.NewGuard(tokens, stores.Works, logger)

	services := api.Services{
		Accounts: service.NewAccountService(stores.Users, works, tokens, mediaStore, notifier, validate, logger,
			service.AccountConfig{
				ResetTokenTTL:       cfg.ResetTokenTTL,
				ResetURLBase:        cfg.ResetURLBase,
				StrictResetDelivery: cfg.ResetStrictDelivery,
			}),
		Catalog:        service.NewCatalogService(stores.Works, guard, mediaStore, validate, logger),
		Ratings:        service.NewRatingService(stores.Ratings, stores.Works, works, validate, logger),
		SiteReviews:    service.NewSiteReviewService(stores.SiteReviews, stores.Users, validate, logger),
		Comments:       service.NewCommentService(stores.Comments, stores.Works, stores.Users, works, validate, logger),
		Advertisements: service.NewAdvertisementService(stores.Advertisements, mediaStore, validate, logger),
		Contacts:       service.NewContactService(stores.Contacts, notifier, cfg.ContactInbox, validate, logger),
	}

	// --- gRPC ---
	var grpcSrv *grpc.Server
	if cfg.GRPCEnabled {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			logger.Error("Failed to listen for gRPC", slog.String("addr", cfg.GRPCAddr), slog.String("error", err.Error()))
			return err
		}
		grpcSrv = grpc.NewServer(grpc.UnaryInterceptor(lookup.LoggingInterceptor(logger)))
		lookup.Register(grpcSrv, lookup.NewServer(stores.Users, stores.Works, logger))
		reflection.Register(grpcSrv)

		go func() {
			logger.Info("gRPC server starting", slog.String("addr", cfg.GRPCAddr))
			if err := grpcSrv.Serve(lis); err != nil {
				logger.Error("gRPC server Serve() failed", slog.String("error", err.Error()))
			}
		}()
	}

	// --- HTTP ---
	handler := api.NewHTTPHandler(services, guard, logger, cfg.MaxUploadBytes())
	routerOpts := api.RouterOptions{}
	if cfg.MediaDriver == "local" {
		routerOpts.UploadsDir = cfg.MediaLocalDir
	}
	httpSrv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      api.NewRouter(handler, routerOpts),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", slog.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Ожидание сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("Catalog service shutting down...", slog.String("signal", sig.String()))
	case err := <-serveErr:
		logger.Error("HTTP server ListenAndServe() failed", slog.String("error", err.Error()))
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
		logger.Info("gRPC server gracefully stopped.")
	}
	return nil
}

func newMediaStore(cfg *config.Config, logger *slog.Logger) (media.Store, error) {
	if cfg.MediaDriver == "cloudinary" {
		return media.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret,
			cfg.MediaFolderRoot, cfg.MaxUploadBytes(), logger)
	}
	return media.NewLocalStore(cfg.MediaLocalDir, cfg.MediaLocalBaseURL, cfg.MediaFolderRoot, cfg.MaxUploadBytes(), logger)
}

func newNotifier(cfg *config.Config, logger *slog.Logger) notify.Notifier {
	if cfg.MailDriver == "smtp" {
		return notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPSSL,
			cfg.MailFrom, cfg.MailFromName, logger)
	}
	return notify.NewLogNotifier(logger)
}
