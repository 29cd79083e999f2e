package store

import (
	"context"
	"sync"
	"time"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

type MockCommentStore struct {
	mu       sync.RWMutex
	comments map[string]*domain.Comment
	order    []string
}

func NewMockCommentStore() *MockCommentStore {
	return &MockCommentStore{comments: make(map[string]*domain.Comment)}
}

func (m *MockCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	comment.CreatedAt = time.Now().UTC()
	c := *comment
	m.comments[comment.ID] = &c
	m.order = append(m.order, comment.ID)
	return nil
}

func (m *MockCommentStore) ListByWork(ctx context.Context, workID string) ([]*domain.Comment, error) {
	return m.filter(func(c *domain.Comment) bool { return c.WorkID == workID }), nil
}

func (m *MockCommentStore) ListByWorkIDs(ctx context.Context, workIDs []string) ([]*domain.Comment, error) {
	set := make(map[string]struct{}, len(workIDs))
	for _, id := range workIDs {
		set[id] = struct{}{}
	}
	return m.filter(func(c *domain.Comment) bool {
		_, ok := set[c.WorkID]
		return ok
	}), nil
}

func (m *MockCommentStore) ListAll(ctx context.Context) ([]*domain.Comment, error) {
	return m.filter(func(*domain.Comment) bool { return true }), nil
}

func (m *MockCommentStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.comments[id]; !ok {
		return ErrCommentNotFound
	}
	delete(m.comments, id)
	for i, cid := range m.order {
		if cid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockCommentStore) filter(keep func(*domain.Comment) bool) []*domain.Comment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*domain.Comment{}
	for i := len(m.order) - 1; i >= 0; i-- {
		c := m.comments[m.order[i]]
		if keep(c) {
			cc := *c
			out = append(out, &cc)
		}
	}
	return out
}
