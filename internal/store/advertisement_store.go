package store

import (
	"context"
	"sync"
	"time"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

type MockAdvertisementStore struct {
	mu    sync.RWMutex
	ads   map[string]*domain.Advertisement
	order []string
}

func NewMockAdvertisementStore() *MockAdvertisementStore {
	return &MockAdvertisementStore{ads: make(map[string]*domain.Advertisement)}
}

func (m *MockAdvertisementStore) Create(ctx context.Context, ad *domain.Advertisement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	ad.CreatedAt = now
	ad.UpdatedAt = now
	c := *ad
	m.ads[ad.ID] = &c
	m.order = append(m.order, ad.ID)
	return nil
}

func (m *MockAdvertisementStore) GetByID(ctx context.Context, id string) (*domain.Advertisement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ad, ok := m.ads[id]; ok {
		c := *ad
		return &c, nil
	}
	return nil, ErrAdvertisementNotFound
}

func (m *MockAdvertisementStore) List(ctx context.Context, activeOnly bool) ([]*domain.Advertisement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*domain.Advertisement{}
	for i := len(m.order) - 1; i >= 0; i-- {
		ad := m.ads[m.order[i]]
		if activeOnly && !ad.IsActive {
			continue
		}
		c := *ad
		out = append(out, &c)
	}
	return out, nil
}

func (m *MockAdvertisementStore) Rename(ctx context.Context, id, name string) (*domain.Advertisement, error) {
	return m.mutate(id, func(ad *domain.Advertisement) { ad.Name = name })
}

func (m *MockAdvertisementStore) ToggleActive(ctx context.Context, id string) (*domain.Advertisement, error) {
	return m.mutate(id, func(ad *domain.Advertisement) { ad.IsActive = !ad.IsActive })
}

func (m *MockAdvertisementStore) mutate(id string, fn func(*domain.Advertisement)) (*domain.Advertisement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ad, ok := m.ads[id]
	if !ok {
		return nil, ErrAdvertisementNotFound
	}
	fn(ad)
	ad.UpdatedAt = time.Now().UTC()
	c := *ad
	return &c, nil
}

func (m *MockAdvertisementStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ads[id]; !ok {
		return ErrAdvertisementNotFound
	}
	delete(m.ads, id)
	for i, aid := range m.order {
		if aid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
