package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// PostgresCommentStore реализует CommentStore для PostgreSQL.
type PostgresCommentStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

const commentColumns = `id, user_id, work_id, comment_text, created_at`

func (s *PostgresCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	comment.CreatedAt = time.Now().UTC()
	query := `INSERT INTO comments (` + commentColumns + `) VALUES ($1, $2, $3, $4, $5)`
	if _, err := s.db.ExecContext(ctx, query, comment.ID, comment.UserID, comment.WorkID, comment.Text, comment.CreatedAt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create comment in DB", slog.String("workID", comment.WorkID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (s *PostgresCommentStore) ListByWork(ctx context.Context, workID string) ([]*domain.Comment, error) {
	return s.selectComments(ctx, `SELECT `+commentColumns+` FROM comments WHERE work_id = $1 ORDER BY created_at DESC`, workID)
}

func (s *PostgresCommentStore) ListByWorkIDs(ctx context.Context, workIDs []string) ([]*domain.Comment, error) {
	if len(workIDs) == 0 {
		return []*domain.Comment{}, nil
	}
	return s.selectComments(ctx, `SELECT `+commentColumns+` FROM comments WHERE work_id = ANY($1) ORDER BY created_at DESC`, pq.Array(workIDs))
}

func (s *PostgresCommentStore) ListAll(ctx context.Context) ([]*domain.Comment, error) {
	return s.selectComments(ctx, `SELECT `+commentColumns+` FROM comments ORDER BY created_at DESC`)
}

func (s *PostgresCommentStore) selectComments(ctx context.Context, query string, args ...interface{}) ([]*domain.Comment, error) {
	comments := []*domain.Comment{}
	if err := s.db.SelectContext(ctx, &comments, query, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list comments", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (s *PostgresCommentStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete comment", slog.String("commentID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return expectOneRow(result, ErrCommentNotFound)
}
