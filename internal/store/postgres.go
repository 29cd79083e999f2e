package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// pgUniqueViolation - код PostgreSQL unique_violation
const pgUniqueViolation = "23505"

// ConnectPostgres открывает пул соединений и проверяет его ping-запросом.
func ConnectPostgres(ctx context.Context, dbURL string, logger *slog.Logger) (*sqlx.DB, error) {
	if dbURL == "" {
		return nil, errors.New("DB connection string (dbURL) cannot be empty")
	}
	logger.InfoContext(ctx, "Connecting to PostgreSQL database...")
	db, err := sqlx.ConnectContext(ctx, "postgres", dbURL)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to PostgreSQL", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to ping PostgreSQL database", slog.String("error", err.Error()))
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	logger.InfoContext(ctx, "Successfully connected to PostgreSQL database.")
	return db, nil
}

// schema создает таблицы, если их еще нет. Ссылки на работы не имеют внешних ключей:
// удаление работы не каскадируется на оценки, комментарии и избранное.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'publisher', 'admin')),
		profile_image_public_id TEXT,
		profile_image_url TEXT,
		reset_token_hash TEXT,
		reset_token_expires TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (LOWER(email))`,
	`CREATE INDEX IF NOT EXISTS idx_users_reset_token ON users (reset_token_hash) WHERE reset_token_hash IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS works (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL CHECK (type IN ('film', 'series')),
		name_arabic TEXT NOT NULL,
		name_english TEXT NOT NULL,
		year INT NOT NULL CHECK (year BETWEEN 1800 AND 3000),
		director TEXT NOT NULL,
		assistant_director TEXT NOT NULL,
		genre TEXT NOT NULL,
		cast_members TEXT[] NOT NULL,
		country TEXT NOT NULL,
		filming_location TEXT NOT NULL,
		summary TEXT NOT NULL,
		poster_url TEXT NOT NULL DEFAULT '',
		poster_public_id TEXT NOT NULL DEFAULT '',
		seasons_count INT CHECK (seasons_count >= 1),
		episodes_count INT CHECK (episodes_count >= 1),
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_works_created_by ON works (created_by)`,
	`CREATE INDEX IF NOT EXISTS idx_works_created_at ON works (created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS user_favorites (
		user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		work_id TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (user_id, work_id)
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		work_id TEXT NOT NULL,
		rating_value INT NOT NULL CHECK (rating_value BETWEEN 1 AND 5),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT uq_user_work_rating UNIQUE (user_id, work_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ratings_work_id ON ratings (work_id)`,
	`CREATE TABLE IF NOT EXISTS site_reviews (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		username TEXT NOT NULL,
		rating_value INT NOT NULL CHECK (rating_value BETWEEN 1 AND 5),
		description TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		work_id TEXT NOT NULL,
		comment_text TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_work_id ON comments (work_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS advertisements (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		media_type TEXT NOT NULL CHECK (media_type IN ('image', 'video')),
		media_public_id TEXT NOT NULL,
		media_url TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_advertisements_active ON advertisements (is_active, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS contact_messages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema применяет DDL в одной транзакции.
func EnsureSchema(ctx context.Context, db *sqlx.DB, logger *slog.Logger) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()
	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	logger.InfoContext(ctx, "PostgreSQL schema is up to date", slog.Int("statements", len(schema)))
	return nil
}

// NewPostgresStores создает все хранилища поверх одного пула соединений.
func NewPostgresStores(db *sqlx.DB, logger *slog.Logger) *Stores {
	return &Stores{
		Users:          &PostgresUserStore{db: db, logger: logger},
		Works:          &PostgresWorkStore{db: db, logger: logger},
		Ratings:        &PostgresRatingStore{db: db, logger: logger},
		SiteReviews:    &PostgresSiteReviewStore{db: db, logger: logger},
		Comments:       &PostgresCommentStore{db: db, logger: logger},
		Advertisements: &PostgresAdvertisementStore{db: db, logger: logger},
		Contacts:       &PostgresContactStore{db: db, logger: logger},
	}
}

func uniqueViolation(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return pqErr, true
	}
	return nil, false
}

// expectOneRow переводит RowsAffected == 0 в notFound.
func expectOneRow(res interface{ RowsAffected() (int64, error) }, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
