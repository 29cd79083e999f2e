package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/devabdallah1411/arabFilmsServer/internal/config"
)

// Open создает хранилища выбранного бэкенда. Возвращаемая функция освобождает соединения.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, func(context.Context) error, error) {
	switch cfg.StoreDriver {
	case "postgres":
		logger.InfoContext(ctx, "Using PostgreSQL store", slog.String("dbURL", cfg.MaskedDatabaseURL()))
		connCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		db, err := ConnectPostgres(connCtx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		if cfg.MigrateOnStart {
			if err := EnsureSchema(connCtx, db, logger); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		closeFn := func(context.Context) error { return db.Close() }
		return NewPostgresStores(db, logger), closeFn, nil

	case "mongo":
		logger.InfoContext(ctx, "Using MongoDB store", slog.String("uri", cfg.MaskedMongoURI()))
		client, err := ConnectMongo(ctx, cfg.MongoURI, cfg.StoreTimeout, logger)
		if err != nil {
			return nil, nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if cfg.MigrateOnStart {
			idxCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
			defer cancel()
			if err := EnsureMongoIndexes(idxCtx, db, logger); err != nil {
				_ = client.Disconnect(ctx)
				return nil, nil, err
			}
		}
		return NewMongoStores(db, logger), client.Disconnect, nil

	case "memory":
		logger.WarnContext(ctx, "Using in-memory store, data is lost on restart")
		return NewMockStores(), func(context.Context) error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
