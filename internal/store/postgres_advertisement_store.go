package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// PostgresAdvertisementStore реализует AdvertisementStore для PostgreSQL.
// Вложенная структура media собирается sqlx по псевдонимам "media.public_id" и "media.url".
type PostgresAdvertisementStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

const adColumns = `id, name, media_type, media_public_id AS "media.public_id", media_url AS "media.url",
	is_active, created_by, created_at, updated_at`

func (s *PostgresAdvertisementStore) Create(ctx context.Context, ad *domain.Advertisement) error {
	ad.CreatedAt = time.Now().UTC()
	ad.UpdatedAt = ad.CreatedAt
	query := `INSERT INTO advertisements (id, name, media_type, media_public_id, media_url, is_active, created_by, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.db.ExecContext(ctx, query, ad.ID, ad.Name, ad.MediaType, ad.Media.PublicID, ad.Media.URL, ad.IsActive, ad.CreatedBy, ad.CreatedAt, ad.UpdatedAt)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create advertisement in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create advertisement: %w", err)
	}
	s.logger.InfoContext(ctx, "Advertisement created in DB", slog.String("advertisementID", ad.ID))
	return nil
}

func (s *PostgresAdvertisementStore) GetByID(ctx context.Context, id string) (*domain.Advertisement, error) {
	return s.getOne(ctx, `SELECT `+adColumns+` FROM advertisements WHERE id = $1`, id)
}

func (s *PostgresAdvertisementStore) List(ctx context.Context, activeOnly bool) ([]*domain.Advertisement, error) {
	query := `SELECT ` + adColumns + ` FROM advertisements`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC`

	ads := []*domain.Advertisement{}
	if err := s.db.SelectContext(ctx, &ads, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list advertisements", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list advertisements: %w", err)
	}
	return ads, nil
}

func (s *PostgresAdvertisementStore) Rename(ctx context.Context, id, name string) (*domain.Advertisement, error) {
	query := `UPDATE advertisements SET name = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + adColumns
	return s.getOne(ctx, query, name, id)
}

// ToggleActive инвертирует флаг в самом UPDATE, без предварительного чтения.
func (s *PostgresAdvertisementStore) ToggleActive(ctx context.Context, id string) (*domain.Advertisement, error) {
	query := `UPDATE advertisements SET is_active = NOT is_active, updated_at = NOW() WHERE id = $1 RETURNING ` + adColumns
	return s.getOne(ctx, query, id)
}

func (s *PostgresAdvertisementStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM advertisements WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete advertisement", slog.String("advertisementID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete advertisement: %w", err)
	}
	return expectOneRow(result, ErrAdvertisementNotFound)
}

func (s *PostgresAdvertisementStore) getOne(ctx context.Context, query string, args ...interface{}) (*domain.Advertisement, error) {
	var ad domain.Advertisement
	if err := s.db.GetContext(ctx, &ad, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdvertisementNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to query advertisement", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query advertisement: %w", err)
	}
	return &ad, nil
}
