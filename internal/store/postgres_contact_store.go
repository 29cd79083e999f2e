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

// PostgresContactStore реализует ContactStore для PostgreSQL.
type PostgresContactStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

const contactColumns = `id, name, email, phone, message, is_read, created_at, updated_at`

func (s *PostgresContactStore) Create(ctx context.Context, msg *domain.ContactMessage) error {
	msg.CreatedAt = time.Now().UTC()
	msg.UpdatedAt = msg.CreatedAt
	query := `INSERT INTO contact_messages (` + contactColumns + `)
              VALUES (:id, :name, :email, :phone, :message, :is_read, :created_at, :updated_at)`
	if _, err := s.db.NamedExecContext(ctx, query, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create contact message", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create contact message: %w", err)
	}
	return nil
}

func (s *PostgresContactStore) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	return s.getOne(ctx, `SELECT `+contactColumns+` FROM contact_messages WHERE id = $1`, id)
}

func (s *PostgresContactStore) List(ctx context.Context, unreadOnly bool) ([]*domain.ContactMessage, error) {
	query := `SELECT ` + contactColumns + ` FROM contact_messages`
	if unreadOnly {
		query += ` WHERE NOT is_read`
	}
	query += ` ORDER BY created_at DESC`

	msgs := []*domain.ContactMessage{}
	if err := s.db.SelectContext(ctx, &msgs, query); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list contact messages", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	return msgs, nil
}

func (s *PostgresContactStore) MarkRead(ctx context.Context, id string) (*domain.ContactMessage, error) {
	query := `UPDATE contact_messages SET is_read = TRUE, updated_at = NOW() WHERE id = $1 RETURNING ` + contactColumns
	return s.getOne(ctx, query, id)
}

func (s *PostgresContactStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete contact message", slog.String("contactID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete contact message: %w", err)
	}
	return expectOneRow(result, ErrContactNotFound)
}

func (s *PostgresContactStore) getOne(ctx context.Context, query string, args ...interface{}) (*domain.ContactMessage, error) {
	var msg domain.ContactMessage
	if err := s.db.GetContext(ctx, &msg, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to query contact message", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to query contact message: %w", err)
	}
	return &msg, nil
}
