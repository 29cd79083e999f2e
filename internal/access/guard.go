// Package access реализует аутентификацию по bearer-токену и проверки ролей и владения.
package access

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
	"github.com/devabdallah1411/arabFilmsServer/internal/store"
	"github.com/devabdallah1411/arabFilmsServer/pkg/auth"
)

// OwnerLookup возвращает владельца работы. Реализуется store.WorkStore.
type OwnerLookup interface {
	GetOwner(ctx context.Context, workID string) (string, error)
}

// Guard - слой контроля доступа. Проверки не изменяют состояние.
type Guard struct {
	tokens auth.TokenManager
	works  OwnerLookup
	logger *slog.Logger
}

func NewGuard(tokens auth.TokenManager, works OwnerLookup, logger *slog.Logger) *Guard {
	return &Guard{tokens: tokens, works: works, logger: logger}
}

// ParseBearer извлекает токен из заголовка "Authorization: Bearer <token>".
// Пустая строка означает, что токен не передан.
func ParseBearer(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// Authenticate проверяет подпись и срок действия токена и возвращает Identity.
func (g *Guard) Authenticate(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrAuthRequired
	}
	claims, err := g.tokens.Validate(token)
	if err != nil {
		g.logger.Warn("Invalid or expired token", slog.String("error", err.Error()))
		return domain.Identity{}, domain.ErrTokenInvalid
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil || claims.UserID == "" {
		g.logger.Warn("Token carries unknown role or empty subject", slog.String("role", claims.Role))
		return domain.Identity{}, domain.ErrTokenInvalid
	}
	return domain.Identity{UserID: claims.UserID, Role: role}, nil
}

// AuthorizeRole пропускает, только если роль входит в allowed.
func (g *Guard) AuthorizeRole(id domain.Identity, allowed ...domain.Role) error {
	if id.HasRole(allowed...) {
		return nil
	}
	return domain.ErrForbidden
}

// AuthorizeOwnerOrAdmin пропускает администратора или владельца ресурса.
func (g *Guard) AuthorizeOwnerOrAdmin(id domain.Identity, ownerID string) error {
	if id.IsAdmin() {
		return nil
	}
	if ownerID != "" && id.UserID == ownerID {
		return nil
	}
	return domain.ErrForbidden
}

// AuthorizeWorkOwnerOrAdmin: администратор проходит без обращения к хранилищу,
// иначе загружается владелец работы (NOT_FOUND, если работы нет).
func (g *Guard) AuthorizeWorkOwnerOrAdmin(ctx context.Context, id domain.Identity, workID string) error {
	if id.IsAdmin() {
		return nil
	}
	owner, err := g.works.GetOwner(ctx, workID)
	if err != nil {
		if errors.Is(err, store.ErrWorkNotFound) {
			return domain.ErrWorkNotFound
		}
		g.logger.ErrorContext(ctx, "Failed to load work owner", slog.String("workID", workID), slog.String("error", err.Error()))
		return domain.Internal(err)
	}
	if err := g.AuthorizeOwnerOrAdmin(id, owner); err != nil {
		g.logger.WarnContext(ctx, "Ownership check failed", slog.String("workID", workID), slog.String("userID", id.UserID))
		return err
	}
	return nil
}

type identityKey struct{}

// WithIdentity кладет Identity в контекст запроса.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom достает Identity из контекста.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}
