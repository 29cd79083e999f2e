package store

import (
	"context"
	"sync"
	"time"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

type MockContactStore struct {
	mu       sync.RWMutex
	messages map[string]*domain.ContactMessage
	order    []string
}

func NewMockContactStore() *MockContactStore {
	return &MockContactStore{messages: make(map[string]*domain.ContactMessage)}
}

func (m *MockContactStore) Create(ctx context.Context, msg *domain.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	msg.CreatedAt = now
	msg.UpdatedAt = now
	c := *msg
	m.messages[msg.ID] = &c
	m.order = append(m.order, msg.ID)
	return nil
}

func (m *MockContactStore) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if msg, ok := m.messages[id]; ok {
		c := *msg
		return &c, nil
	}
	return nil, ErrContactNotFound
}

func (m *MockContactStore) List(ctx context.Context, unreadOnly bool) ([]*domain.ContactMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*domain.ContactMessage{}
	for i := len(m.order) - 1; i >= 0; i-- {
		msg := m.messages[m.order[i]]
		if unreadOnly && msg.IsRead {
			continue
		}
		c := *msg
		out = append(out, &c)
	}
	return out, nil
}

func (m *MockContactStore) MarkRead(ctx context.Context, id string) (*domain.ContactMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg, ok := m.messages[id]
	if !ok {
		return nil, ErrContactNotFound
	}
	msg.IsRead = true
	msg.UpdatedAt = time.Now().UTC()
	c := *msg
	return &c, nil
}

func (m *MockContactStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.messages[id]; !ok {
		return ErrContactNotFound
	}
	delete(m.messages, id)
	for i, mid := range m.order {
		if mid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
