// internal/store/user_store.go
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// MockUserStore для разработки и тестов
type MockUserStore struct {
	mu           sync.RWMutex
	users        map[string]*domain.User // Ключ: UserID
	usersByEmail map[string]string       // Ключ: Email в нижнем регистре, значение: UserID
}

// NewMockUserStore создает новый экземпляр MockUserStore
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users:        make(map[string]*domain.User),
		usersByEmail: make(map[string]string),
	}
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	if u.ProfileImage != nil {
		img := *u.ProfileImage
		c.ProfileImage = &img
	}
	if u.ResetTokenExpires != nil {
		exp := *u.ResetTokenExpires
		c.ResetTokenExpires = &exp
	}
	c.Favorites = append([]string{}, u.Favorites...)
	return &c
}

func emailKey(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.usersByEmail[emailKey(user.Email)]; exists {
		return ErrUserAlreadyExists
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Favorites == nil {
		user.Favorites = []string{}
	}
	m.users[user.ID] = copyUser(user)
	m.usersByEmail[emailKey(user.Email)] = user.ID
	return nil
}

func (m *MockUserStore) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.users[userID]; ok {
		return copyUser(user), nil
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id, ok := m.usersByEmail[emailKey(email)]; ok {
		return copyUser(m.users[id]), nil
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStore) FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if emailKey(u.Email) == emailKey(email) || u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStore) List(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	if emailKey(existing.Email) != emailKey(user.Email) {
		if ownerID, taken := m.usersByEmail[emailKey(user.Email)]; taken && ownerID != user.ID {
			return ErrUserAlreadyExists
		}
		delete(m.usersByEmail, emailKey(existing.Email))
		m.usersByEmail[emailKey(user.Email)] = user.ID
	}

	existing.Username = user.Username
	existing.Email = user.Email
	existing.PasswordHash = user.PasswordHash
	existing.Role = user.Role
	existing.ProfileImage = nil
	if user.ProfileImage != nil {
		img := *user.ProfileImage
		existing.ProfileImage = &img
	}
	existing.UpdatedAt = time.Now().UTC()
	user.UpdatedAt = existing.UpdatedAt
	return nil
}

func (m *MockUserStore) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	delete(m.usersByEmail, emailKey(u.Email))
	delete(m.users, userID)
	return nil
}

func (m *MockUserStore) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	exp := expiresAt.UTC()
	u.ResetTokenHash = tokenHash
	u.ResetTokenExpires = &exp
	return nil
}

func (m *MockUserStore) ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, newPasswordHash string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tokenHash == "" {
		return nil, ErrResetTokenNotFound
	}
	for _, u := range m.users {
		if u.ResetTokenHash != tokenHash || u.ResetTokenExpires == nil || !u.ResetTokenExpires.After(now) {
			continue
		}
		u.PasswordHash = newPasswordHash
		u.ResetTokenHash = ""
		u.ResetTokenExpires = nil
		u.UpdatedAt = now.UTC()
		return copyUser(u), nil
	}
	return nil, ErrResetTokenNotFound
}

func (m *MockUserStore) AddFavorite(ctx context.Context, userID, workID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	for _, id := range u.Favorites {
		if id == workID {
			return ErrAlreadyFavorite
		}
	}
	u.Favorites = append(u.Favorites, workID)
	return nil
}

func (m *MockUserStore) RemoveFavorite(ctx context.Context, userID, workID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	for i, id := range u.Favorites {
		if id == workID {
			u.Favorites = append(u.Favorites[:i], u.Favorites[i+1:]...)
			return nil
		}
	}
	return ErrNotFavorite
}

func (m *MockUserStore) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return append([]string{}, u.Favorites...), nil
}

func (m *MockUserStore) IsFavorite(ctx context.Context, userID, workID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[userID]
	if !ok {
		return false, ErrUserNotFound
	}
	for _, id := range u.Favorites {
		if id == workID {
			return true, nil
		}
	}
	return false, nil
}
