// internal/store/postgres_user_store.go
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

// PostgresUserStore реализует UserStore для PostgreSQL.
// Избранное хранится в таблице user_favorites с первичным ключом (user_id, work_id).
type PostgresUserStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// userRow - строка таблицы users; аватар и состояние сброса допускают NULL.
type userRow struct {
	ID                   string         `db:"id"`
	Username             string         `db:"username"`
	Email                string         `db:"email"`
	PasswordHash         string         `db:"password_hash"`
	Role                 string         `db:"role"`
	ProfileImagePublicID sql.NullString `db:"profile_image_public_id"`
	ProfileImageURL      sql.NullString `db:"profile_image_url"`
	ResetTokenHash       sql.NullString `db:"reset_token_hash"`
	ResetTokenExpires    sql.NullTime   `db:"reset_token_expires"`
	CreatedAt            time.Time      `db:"created_at"`
	UpdatedAt            time.Time      `db:"updated_at"`
}

const userColumns = `id, username, email, password_hash, role, profile_image_public_id, profile_image_url,
	reset_token_hash, reset_token_expires, created_at, updated_at`

func (r *userRow) toDomain() *domain.User {
	u := &domain.User{
		ID:             r.ID,
		Username:       r.Username,
		Email:          r.Email,
		PasswordHash:   r.PasswordHash,
		Role:           domain.Role(r.Role),
		ResetTokenHash: r.ResetTokenHash.String,
		Favorites:      []string{},
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.ProfileImageURL.Valid {
		u.ProfileImage = &domain.MediaRef{PublicID: r.ProfileImagePublicID.String, URL: r.ProfileImageURL.String}
	}
	if r.ResetTokenExpires.Valid {
		exp := r.ResetTokenExpires.Time
		u.ResetTokenExpires = &exp
	}
	return u
}

func profileImageArgs(img *domain.MediaRef) (sql.NullString, sql.NullString) {
	if img == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: img.PublicID, Valid: true}, sql.NullString{String: img.URL, Valid: true}
}

// Create создает нового пользователя.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, username, email, password_hash, role, profile_image_public_id, profile_image_url, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	if user.Favorites == nil {
		user.Favorites = []string{}
	}
	imgID, imgURL := profileImageArgs(user.ProfileImage)

	s.logger.DebugContext(ctx, "Executing Create user query", slog.String("userID", user.ID), slog.String("email", user.Email))
	_, err := s.db.ExecContext(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.Role, imgID, imgURL, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if pqErr, ok := uniqueViolation(err); ok {
			s.logger.WarnContext(ctx, "User already exists (unique constraint violation in DB)",
				slog.String("email", user.Email),
				slog.String("constraint_name", pqErr.Constraint))
			return ErrUserAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to create user in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User created successfully in DB", slog.String("userID", user.ID))
	return nil
}

func (s *PostgresUserStore) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var row userRow
	if err := s.db.GetContext(ctx, &row, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// GetByID возвращает пользователя вместе со списком избранного.
func (s *PostgresUserStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.WarnContext(ctx, "User not found by ID in DB", slog.String("userID", userID))
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Failed to get user by ID from DB", slog.String("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	favorites, err := s.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Favorites = favorites
	return user, nil
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.logger.DebugContext(ctx, "User not found by email in DB", slog.String("email", email))
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Failed to get user by email from DB", slog.String("email", email), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (s *PostgresUserStore) FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error) {
	var row userRow
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1) OR username = $2 LIMIT 1`
	if err := s.db.GetContext(ctx, &row, query, email, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to find user by email or username", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return row.toDomain(), nil
}

func (s *PostgresUserStore) List(ctx context.Context) ([]*domain.User, error) {
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toDomain())
	}
	return users, nil
}

// Update перезаписывает изменяемые поля пользователя.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	query := `UPDATE users SET username = $1, email = $2, password_hash = $3, role = $4,
              profile_image_public_id = $5, profile_image_url = $6, updated_at = $7
              WHERE id = $8`
	user.UpdatedAt = time.Now().UTC()
	imgID, imgURL := profileImageArgs(user.ProfileImage)

	s.logger.DebugContext(ctx, "Executing Update user query", slog.String("userID", user.ID))
	result, err := s.db.ExecContext(ctx, query, user.Username, user.Email, user.PasswordHash, user.Role, imgID, imgURL, user.UpdatedAt, user.ID)
	if err != nil {
		if pqErr, ok := uniqueViolation(err); ok {
			s.logger.WarnContext(ctx, "Update failed: email already exists (DB constraint)", slog.String("userID", user.ID), slog.String("constraint", pqErr.Constraint))
			return ErrUserAlreadyExists
		}
		s.logger.ErrorContext(ctx, "Failed to update user in DB", slog.String("userID", user.ID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to update user: %w", err)
	}
	if err := expectOneRow(result, ErrUserNotFound); err != nil {
		s.logger.WarnContext(ctx, "No user updated in DB", slog.String("userID", user.ID), slog.String("error", err.Error()))
		return err
	}
	s.logger.InfoContext(ctx, "User updated successfully in DB", slog.String("userID", user.ID))
	return nil
}

func (s *PostgresUserStore) Delete(ctx context.Context, userID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete user in DB", slog.String("userID", userID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectOneRow(result, ErrUserNotFound)
}

// SetResetToken заменяет предыдущий токен сброса, если он был.
func (s *PostgresUserStore) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	query := `UPDATE users SET reset_token_hash = $1, reset_token_expires = $2, updated_at = NOW() WHERE id = $3`
	result, err := s.db.ExecContext(ctx, query, tokenHash, expiresAt.UTC(), userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to store reset token", slog.String("userID", userID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return expectOneRow(result, ErrUserNotFound)
}

// ConsumeResetToken выполняет поиск и смену пароля одним UPDATE ... RETURNING.
func (s *PostgresUserStore) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, newPasswordHash string) (*domain.User, error) {
	query := `UPDATE users SET password_hash = $1, reset_token_hash = NULL, reset_token_expires = NULL, updated_at = $2
              WHERE reset_token_hash = $3 AND reset_token_expires > $2
              RETURNING ` + userColumns
	var row userRow
	err := s.db.GetContext(ctx, &row, query, newPasswordHash, now.UTC(), tokenHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Reset token not found or expired")
			return nil, ErrResetTokenNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to consume reset token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to consume reset token: %w", err)
	}
	return row.toDomain(), nil
}

// AddFavorite: ON CONFLICT DO NOTHING делает вставку атомарной, 0 строк - уже в избранном.
func (s *PostgresUserStore) AddFavorite(ctx context.Context, userID, workID string) error {
	query := `INSERT INTO user_favorites (user_id, work_id)
              SELECT id, $2 FROM users WHERE id = $1
              ON CONFLICT (user_id, work_id) DO NOTHING`
	result, err := s.db.ExecContext(ctx, query, userID, workID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to add favorite", slog.String("userID", userID), slog.String("workID", workID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check favorite insert: %w", err)
	}
	if n == 1 {
		return nil
	}
	if _, err := s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID); err != nil {
		return err
	}
	return ErrAlreadyFavorite
}

func (s *PostgresUserStore) RemoveFavorite(ctx context.Context, userID, workID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM user_favorites WHERE user_id = $1 AND work_id = $2`, userID, workID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove favorite", slog.String("userID", userID), slog.String("workID", workID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return expectOneRow(result, ErrNotFavorite)
}

func (s *PostgresUserStore) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := s.db.SelectContext(ctx, &ids, `SELECT work_id FROM user_favorites WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list favorites", slog.String("userID", userID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	return ids, nil
}

func (s *PostgresUserStore) IsFavorite(ctx context.Context, userID, workID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM user_favorites WHERE user_id = $1 AND work_id = $2)`, userID, workID)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return exists, nil
}
