package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/media"
	"github.com/devabdallah1411/arabFilmsServer/internal/notify"
	"github.com/devabdallah1411/arabFilmsServer/internal/store"
	"github.com/devabdallah1411/arabFilmsServer/pkg/auth"
)

const resetAckMessage = "If an account with that email exists, a password reset link has been sent"

// AccountConfig - параметры сброса пароля.
type AccountConfig struct {
	ResetTokenTTL time.Duration
	ResetURLBase  string
	// StrictResetDelivery: ошибка отправки письма возвращается клиенту как DEPENDENCY_FAILED.
	StrictResetDelivery bool
	// Now - источник времени; nil означает time.Now.
	Now func() time.Time
}

// AccountService: регистрация, вход, сброс пароля, профиль, избранное и
// администрирование пользователей.
type AccountService struct {
	users    store.UserStore
	works    WorkLookup
	tokens   auth.TokenManager
	media    media.Store
	notifier notify.Notifier
	validate *validator.Validate
	logger   *slog.Logger
	cfg      AccountConfig
}

func NewAccountService(users store.UserStore, works WorkLookup, tokens auth.TokenManager, ms media.Store,
	notifier notify.Notifier, v *validator.Validate, logger *slog.Logger, cfg AccountConfig) *AccountService {
	if cfg.Now == nil {
		cfg.Now = systemNow
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = time.Hour
	}
	return &AccountService{
		users:    users,
		works:    works,
		tokens:   tokens,
		media:    ms,
		notifier: notifier,
		validate: v,
		logger:   logger,
		cfg:      cfg,
	}
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Signup регистрирует пользователя с ролью user. Аватар загружается до создания
// записи: при ошибке загрузки пользователь не создается.
func (s *AccountService) Signup(ctx context.Context, req domain.SignupRequest, avatar *media.Upload) (*domain.UserView, error) {
	if err := validate(ctx, s.validate, req); err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		s.logger.WarnContext(ctx, "Signup with email already in use", slog.String("email", email))
		return nil, domain.ErrEmailInUse
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return nil, translate(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to hash password", slog.String("error", err.Error()))
		return nil, domain.Internal(err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(req.Username),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if avatar.Present() {
		ref, err := s.media.Upload(ctx, *avatar, media.Options{Folder: media.FolderProfiles, ResourceType: media.ResourceImage})
		if err != nil {
			s.logger.ErrorContext(ctx, "Profile image upload failed during signup", slog.String("error", err.Error()))
			return nil, uploadError(err)
		}
		user.ProfileImage = &ref
	}

	if err := s.users.Create(ctx, user); err != nil {
		deleteMediaQuietly(ctx, s.media, s.logger, user.ProfileImage, media.ResourceImage)
		return nil, translate(err)
	}
	s.logger.InfoContext(ctx, "User registered", slog.String("userID", user.ID))
	return user.View(), nil
}

// Signin проверяет учетные данные. Неизвестный email и неверный пароль
// неразличимы для клиента.
func (s *AccountService) Signin(ctx context.Context, req domain.SigninRequest) (*domain.AuthResponse, error) {
	if err := validate(ctx, s.validate, req); err != nil {
		return nil, err
	}
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.WarnContext(ctx, "Signin for unknown email")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, translate(err)
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.logger.WarnContext(ctx, "Signin with wrong password", slog.String("userID", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Role.String())
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate token", slog.String("error", err.Error()))
		return nil, domain.Internal(err)
	}
	s.logger.InfoContext(ctx, "User signed in", slog.String("userID", user.ID))
	return &domain.AuthResponse{Token: token, User: user.View()}, nil
}

// RequestPasswordReset выпускает новый токен сброса (предыдущий перестает действовать)
// и отправляет ссылку. Ответ одинаков для известных и неизвестных адресов.
func (s *AccountService) RequestPasswordReset(ctx context.Context, req domain.ForgotPasswordRequest) (*domain.MessageResponse, error) {
	if err := validate(ctx, s.validate, req); err != nil {
		return nil, err
	}
	ack := &domain.MessageResponse{Message: resetAckMessage}

	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.WarnContext(ctx, "Password reset requested for unknown email")
			return ack, nil
		}
		return nil, translate(err)
	}

	plain, hash, err := auth.NewResetToken()
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate reset token", slog.String("error", err.Error()))
		return nil, domain.Internal(err)
	}
	expires := s.cfg.Now().Add(s.cfg.ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, hash, expires); err != nil {
		return nil, translate(err)
	}

	msg := notify.PasswordResetMessage(user.Email, s.cfg.ResetURLBase+"/"+plain)
	if err := s.notifier.Send(ctx, msg); err != nil {
		if s.cfg.StrictResetDelivery {
			return nil, domain.DependencyFailed("Failed to send password reset email", err)
		}
		s.logger.ErrorContext(ctx, "Password reset email not delivered", slog.String("userID", user.ID), slog.String("error", err.Error()))
		return ack, nil
	}
	s.logger.InfoContext(ctx, "Password reset link issued", slog.String("userID", user.ID), slog.Time("expiresAt", expires))
	return ack, nil
}

// CompletePasswordReset меняет пароль по токену. Токен одноразовый.
func (s *AccountService) CompletePasswordReset(ctx context.Context, token string, req domain.ResetPasswordRequest) (*domain.MessageResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrResetTokenInvalid
	}
	if err := validate(ctx, s.validate, req); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, domain.Internal(err)
	}
	user, err := s.users.ConsumeResetToken(ctx, auth.HashResetToken(token), s.cfg.Now(), hash)
	if err != nil {
		if errors.Is(err, store.ErrResetTokenNotFound) {
			s.logger.WarnContext(ctx, "Invalid or expired reset token used")
		}
		return nil, translate(err)
	}
	s.logger.InfoContext(ctx, "Password reset completed", slog.String("userID", user.ID))
	return &domain.MessageResponse{Message: "Password has been reset successfully"}, nil
}

func (s *AccountService) Profile(ctx context.Context, userID string) (*domain.UserView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	return user.View(), nil
}

// UpdateProfile частично обновляет имя и email. Новый аватар заменяет старый;
// удаление старого объекта не блокирует обновление.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest, avatar *media.Upload) (*domain.UserView, error) {
	if err := validate(ctx, s.validate, req); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
	}

	var uploaded *domain.MediaRef
	if avatar.Present() {
		deleteMediaQuietly(ctx, s.media, s.logger, user.ProfileImage, media.ResourceImage)
		ref, err := s.media.Upload(ctx, *avatar, media.Options{Folder: media.FolderProfiles, ResourceType: media.ResourceImage})
		if err != nil {
			return nil, uploadError(err)
		}
		uploaded = &ref
		user.ProfileImage = uploaded
	}

	if err := s.users.Update(ctx, user); err != nil {
		deleteMediaQuietly(ctx, s.media, s.logger, uploaded, media.ResourceImage)
		return nil, translate(err)
	}
	s.logger.InfoContext(ctx, "Profile updated", slog.String("userID", userID))
	return user.View(), nil
}

// AddFavorite добавляет существующую работу в избранное.
func (s *AccountService) AddFavorite(ctx context.Context, userID string, req domain.FavoriteRequest) (*domain.FavoriteStatus, error) {
	if err := validate(ctx, s.validate, req); err != nil {
		return nil, err
	}
	workID := strings.TrimSpace(req.WorkID)
	exists, err := s.works.WorkExists(ctx, workID)
	if err != nil {
		return nil, domain.DependencyFailed("Failed to check work", err)
	}
	if !exists {
		return nil, domain.ErrWorkNotFound
	}
	if err := s.users.AddFavorite(ctx, userID, workID); err != nil {
		return nil, translate(err)
	}
	return &domain.FavoriteStatus{WorkID: workID, IsFavorite: true}, nil
}

func (s *AccountService) RemoveFavorite(ctx context.Context, userID, workID string) error {
	return translate(s.users.RemoveFavorite(ctx, userID, workID))
}

// Favorites возвращает избранное без ссылок на удаленные работы.
func (s *AccountService) Favorites(ctx context.Context, userID string) (*domain.FavoriteList, error) {
	ids, err := s.users.ListFavorites(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	existing, err := s.works.ExistingWorkIDs(ctx, ids)
	if err != nil {
		return nil, domain.DependencyFailed("Failed to check works", err)
	}
	alive := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		alive[id] = struct{}{}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := alive[id]; ok {
			out = append(out, id)
		}
	}
	if dropped := len(ids) - len(out); dropped > 0 {
		s.logger.DebugContext(ctx, "Dangling favorites filtered", slog.String("userID", userID), slog.Int("dropped", dropped))
	}
	return &domain.FavoriteList{Count: len(out), Favorites: out}, nil
}

func (s *AccountService) IsFavorite(ctx context.Context, userID, workID string) (*domain.FavoriteStatus, error) {
	ok, err := s.users.IsFavorite(ctx, userID, workID)
	if err != nil {
		return nil, translate(err)
	}
	return &domain.FavoriteStatus{WorkID: workID, IsFavorite: ok}, nil
}

// CreateUserByAdmin создает пользователя с заданной ролью (по умолчанию user).
// Совпадение email или имени пользователя - конфликт.
func (s *AccountService) CreateUserByAdmin(ctx context.Context, req domain.CreateUserRequest) (*domain.UserView, error) {
	if err := validate(ctx, s.validate, req); err != nil {
		return nil, err
	}
	role := domain.RoleUser
	if req.Role != "" {
		r, err := domain.ParseRole(req.Role)
		if err != nil {
			return nil, domain.Validation("Invalid role", domain.FieldError{Field: "role", Rule: "oneof"})
		}
		role = r
	}
	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	if _, err := s.users.FindByEmailOrUsername(ctx, email, username); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return nil, translate(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domain.Internal(err)
	}
	user := &domain.User{ID: uuid.NewString(), Username: username, Email: email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrUserAlreadyExists) {
			return nil, domain.ErrUserExists
		}
		return nil, translate(err)
	}
	s.logger.InfoContext(ctx, "User created by admin", slog.String("userID", user.ID), slog.String("role", role.String()))
	return user.View(), nil
}

func (s *AccountService) ListUsers(ctx context.Context) ([]*domain.UserView, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, translate(err)
	}
	out := make([]*domain.UserView, 0, len(users))
	for _, u := range users {
		out = append(out, u.View())
	}
	return out, nil
}

// UpdateUserByAdmin меняет имя, email, пароль и роль пользователя.
func (s *AccountService) UpdateUserByAdmin(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.UserView, error) {
	if err := validate(ctx, s.validate, req); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, translate(err)
	}
	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
	}
	if req.Role != nil {
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			return nil, domain.Validation("Invalid role", domain.FieldError{Field: "role", Rule: "oneof"})
		}
		user.Role = role
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, domain.Internal(err)
		}
		user.PasswordHash = hash
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, translate(err)
	}
	s.logger.InfoContext(ctx, "User updated by admin", slog.String("userID", userID))
	return user.View(), nil
}

// DeleteUser удаляет пользователя и, best-effort, его аватар.
func (s *AccountService) DeleteUser(ctx context.Context, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return translate(err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return translate(err)
	}
	deleteMediaQuietly(ctx, s.media, s.logger, user.ProfileImage, media.ResourceImage)
	s.logger.InfoContext(ctx, "User deleted", slog.String("userID", userID))
	return nil
}

// EnsureAdmin создает администратора или повышает существующего пользователя до admin.
// Возвращает true, если учетная запись была создана.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, username, password string) (*domain.UserView, bool, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Role == domain.RoleAdmin {
			return user.View(), false, nil
		}
		user.Role = domain.RoleAdmin
		if err := s.users.Update(ctx, user); err != nil {
			return nil, false, translate(err)
		}
		s.logger.InfoContext(ctx, "Existing user promoted to admin", slog.String("userID", user.ID))
		return user.View(), false, nil
	case !errors.Is(err, store.ErrUserNotFound):
		return nil, false, translate(err)
	}

	view, err := s.CreateUserByAdmin(ctx, domain.CreateUserRequest{
		Username: username,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin.String(),
	})
	if err != nil {
		return nil, false, err
	}
	return view, true, nil
}
