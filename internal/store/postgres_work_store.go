// internal/store/postgres_work_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// PostgresWorkStore реализует WorkStore для PostgreSQL.
type PostgresWorkStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

const workColumns = `id, type, name_arabic, name_english, year, director, assistant_director, genre, cast_members,
	country, filming_location, summary, poster_url, poster_public_id, seasons_count, episodes_count, created_by, created_at, updated_at`

// Create создает новую работу в базе данных.
func (s *PostgresWorkStore) Create(ctx context.Context, work *domain.Work) error {
	query := `INSERT INTO works (` + workColumns + `)
              VALUES (:id, :type, :name_arabic, :name_english, :year, :director, :assistant_director, :genre, :cast_members,
                      :country, :filming_location, :summary, :poster_url, :poster_public_id, :seasons_count, :episodes_count,
                      :created_by, :created_at, :updated_at)`

	work.CreatedAt = time.Now().UTC()
	work.UpdatedAt = work.CreatedAt

	s.logger.DebugContext(ctx, "Executing Create work query", slog.String("workID", work.ID), slog.String("nameEnglish", work.NameEnglish))
	if _, err := s.db.NamedExecContext(ctx, query, work); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create work in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create work: %w", err)
	}
	s.logger.InfoContext(ctx, "Work created successfully in DB", slog.String("workID", work.ID))
	return nil
}

// GetByID находит работу по ID.
func (s *PostgresWorkStore) GetByID(ctx context.Context, id string) (*domain.Work, error) {
	var work domain.Work
	s.logger.DebugContext(ctx, "Executing GetWorkByID query", slog.String("workID", id))
	err := s.db.GetContext(ctx, &work, `SELECT `+workColumns+` FROM works WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Work not found by ID in DB", slog.String("workID", id))
			return nil, ErrWorkNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get work by ID from DB", slog.String("workID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get work by ID: %w", err)
	}
	return &work, nil
}

func (s *PostgresWorkStore) GetOwner(ctx context.Context, id string) (string, error) {
	var owner string
	err := s.db.GetContext(ctx, &owner, `SELECT created_by FROM works WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrWorkNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get work owner from DB", slog.String("workID", id), slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to get work owner: %w", err)
	}
	return owner, nil
}

// Update перезаписывает все поля, кроме created_by и created_at.
func (s *PostgresWorkStore) Update(ctx context.Context, work *domain.Work) error {
	query := `UPDATE works SET type = :type, name_arabic = :name_arabic, name_english = :name_english, year = :year,
              director = :director, assistant_director = :assistant_director, genre = :genre, cast_members = :cast_members,
              country = :country, filming_location = :filming_location, summary = :summary, poster_url = :poster_url,
              poster_public_id = :poster_public_id, seasons_count = :seasons_count, episodes_count = :episodes_count,
              updated_at = :updated_at
              WHERE id = :id`
	work.UpdatedAt = time.Now().UTC()

	s.logger.DebugContext(ctx, "Executing Update work query", slog.String("workID", work.ID))
	result, err := s.db.NamedExecContext(ctx, query, work)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update work in DB", slog.String("workID", work.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update work: %w", err)
	}
	if err := expectOneRow(result, ErrWorkNotFound); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Work updated successfully in DB", slog.String("workID", work.ID))
	return nil
}

func (s *PostgresWorkStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM works WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete work in DB", slog.String("workID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete work: %w", err)
	}
	if err := expectOneRow(result, ErrWorkNotFound); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Work deleted from DB", slog.String("workID", id))
	return nil
}

// List возвращает список работ и общее количество по фильтрам.
func (s *PostgresWorkStore) List(ctx context.Context, params WorkListParams) ([]*domain.Work, int, error) {
	var (
		conditions []string
		args       []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if params.CreatedBy != "" {
		conditions = append(conditions, "created_by = "+arg(params.CreatedBy))
	}
	if params.Type != "" {
		conditions = append(conditions, "type = "+arg(params.Type))
	}
	if params.Genre != "" {
		conditions = append(conditions, "LOWER(genre) = LOWER("+arg(params.Genre)+")")
	}
	if params.Year != 0 {
		conditions = append(conditions, "year = "+arg(params.Year))
	}
	if params.Search != "" {
		p := arg("%" + params.Search + "%")
		conditions = append(conditions, "(name_english ILIKE "+p+" OR name_arabic ILIKE "+p+")")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM works` + where
	s.logger.DebugContext(ctx, "Executing List works count query", slog.String("query", countQuery), slog.Any("args", args))
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count works in DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count works: %w", err)
	}
	if total == 0 {
		return []*domain.Work{}, 0, nil
	}

	selectQuery := `SELECT ` + workColumns + ` FROM works` + where + ` ORDER BY created_at DESC`
	if params.PageSize > 0 {
		selectQuery += " LIMIT " + arg(params.PageSize) + " OFFSET " + arg(params.offset())
	}

	works := []*domain.Work{}
	s.logger.DebugContext(ctx, "Executing List works select query", slog.String("query", selectQuery), slog.Any("args", args))
	if err := s.db.SelectContext(ctx, &works, selectQuery, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list works from DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list works: %w", err)
	}
	return works, total, nil
}

func (s *PostgresWorkStore) IDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	ids := []string{}
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM works WHERE created_by = $1`, ownerID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list work IDs by owner", slog.String("ownerID", ownerID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list work ids: %w", err)
	}
	return ids, nil
}

func (s *PostgresWorkStore) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	existing := []string{}
	if len(ids) == 0 {
		return existing, nil
	}
	if err := s.db.SelectContext(ctx, &existing, `SELECT id FROM works WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to check work ids: %w", err)
	}
	return existing, nil
}
