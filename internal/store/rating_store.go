package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// MockRatingStore: ключ уникальности - пара (userID, workID).
type MockRatingStore struct {
	mu      sync.RWMutex
	ratings map[ratingKey]*domain.Rating
	order   []ratingKey
}

type ratingKey struct {
	userID string
	workID string
}

func NewMockRatingStore() *MockRatingStore {
	return &MockRatingStore{ratings: make(map[ratingKey]*domain.Rating)}
}

func (m *MockRatingStore) Upsert(ctx context.Context, userID, workID string, value int) (*domain.Rating, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	key := ratingKey{userID: userID, workID: workID}
	if r, ok := m.ratings[key]; ok {
		r.Value = value
		r.UpdatedAt = now
		c := *r
		return &c, nil
	}
	r := &domain.Rating{ID: uuid.NewString(), UserID: userID, WorkID: workID, Value: value, CreatedAt: now, UpdatedAt: now}
	m.ratings[key] = r
	m.order = append(m.order, key)
	c := *r
	return &c, nil
}

func (m *MockRatingStore) Aggregate(ctx context.Context, workID string) (*domain.AggregatedRating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	agg := &domain.AggregatedRating{WorkID: workID}
	sum := 0
	for _, r := range m.ratings {
		if r.WorkID == workID {
			sum += r.Value
			agg.Count++
		}
	}
	if agg.Count > 0 {
		agg.Average = float64(sum) / float64(agg.Count)
	}
	return agg, nil
}

func (m *MockRatingStore) ListByWorkIDs(ctx context.Context, workIDs []string) ([]*domain.Rating, error) {
	set := make(map[string]struct{}, len(workIDs))
	for _, id := range workIDs {
		set[id] = struct{}{}
	}
	return m.filter(func(r *domain.Rating) bool {
		_, ok := set[r.WorkID]
		return ok
	}), nil
}

func (m *MockRatingStore) ListAll(ctx context.Context) ([]*domain.Rating, error) {
	return m.filter(func(*domain.Rating) bool { return true }), nil
}

func (m *MockRatingStore) filter(keep func(*domain.Rating) bool) []*domain.Rating {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*domain.Rating{}
	for i := len(m.order) - 1; i >= 0; i-- {
		r := m.ratings[m.order[i]]
		if keep(r) {
			c := *r
			out = append(out, &c)
		}
	}
	return out
}

// MockSiteReviewStore: один отзыв на пользователя.
type MockSiteReviewStore struct {
	mu      sync.RWMutex
	reviews map[string]*domain.SiteReview // Ключ: UserID
	order   []string
}

func NewMockSiteReviewStore() *MockSiteReviewStore {
	return &MockSiteReviewStore{reviews: make(map[string]*domain.SiteReview)}
}

func (m *MockSiteReviewStore) Upsert(ctx context.Context, review *domain.SiteReview) (*domain.SiteReview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := m.reviews[review.UserID]; ok {
		existing.Username = review.Username
		existing.Value = review.Value
		existing.Description = review.Description
		existing.UpdatedAt = now
		c := *existing
		return &c, nil
	}
	stored := *review
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.reviews[review.UserID] = &stored
	m.order = append(m.order, review.UserID)
	c := stored
	return &c, nil
}

func (m *MockSiteReviewStore) List(ctx context.Context) ([]*domain.SiteReview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.SiteReview, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		c := *m.reviews[m.order[i]]
		out = append(out, &c)
	}
	return out, nil
}
