package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/devabdallah1411/arabFilmsServer/internal/domain"
)

// MockWorkStore хранит работы в памяти; порядок вставки задает сортировку по дате создания.
type MockWorkStore struct {
	mu    sync.RWMutex
	works map[string]*domain.Work
	order []string
}

func NewMockWorkStore() *MockWorkStore {
	return &MockWorkStore{works: make(map[string]*domain.Work)}
}

func copyWork(w *domain.Work) *domain.Work {
	c := *w
	c.Cast = append(c.Cast[:0:0], w.Cast...)
	if w.SeasonsCount != nil {
		v := *w.SeasonsCount
		c.SeasonsCount = &v
	}
	if w.EpisodesCount != nil {
		v := *w.EpisodesCount
		c.EpisodesCount = &v
	}
	return &c
}

func (m *MockWorkStore) Create(ctx context.Context, work *domain.Work) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	work.CreatedAt = now
	work.UpdatedAt = now
	m.works[work.ID] = copyWork(work)
	m.order = append(m.order, work.ID)
	return nil
}

func (m *MockWorkStore) GetByID(ctx context.Context, id string) (*domain.Work, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.works[id]; ok {
		return copyWork(w), nil
	}
	return nil, ErrWorkNotFound
}

func (m *MockWorkStore) GetOwner(ctx context.Context, id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if w, ok := m.works[id]; ok {
		return w.CreatedBy, nil
	}
	return "", ErrWorkNotFound
}

func (m *MockWorkStore) Update(ctx context.Context, work *domain.Work) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.works[work.ID]
	if !ok {
		return ErrWorkNotFound
	}
	updated := copyWork(work)
	updated.CreatedBy = existing.CreatedBy
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	m.works[work.ID] = updated
	work.UpdatedAt = updated.UpdatedAt
	return nil
}

func (m *MockWorkStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.works[id]; !ok {
		return ErrWorkNotFound
	}
	delete(m.works, id)
	for i, wid := range m.order {
		if wid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MockWorkStore) List(ctx context.Context, params WorkListParams) ([]*domain.Work, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	search := strings.ToLower(params.Search)
	var matched []*domain.Work
	for i := len(m.order) - 1; i >= 0; i-- {
		w := m.works[m.order[i]]
		if params.CreatedBy != "" && w.CreatedBy != params.CreatedBy {
			continue
		}
		if params.Type != "" && w.Type != params.Type {
			continue
		}
		if params.Genre != "" && !strings.EqualFold(w.Genre, params.Genre) {
			continue
		}
		if params.Year != 0 && w.Year != params.Year {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(w.NameEnglish), search) && !strings.Contains(strings.ToLower(w.NameArabic), search) {
			continue
		}
		matched = append(matched, w)
	}

	total := len(matched)
	start := params.offset()
	if start > total {
		start = total
	}
	end := total
	if params.PageSize > 0 && start+params.PageSize < total {
		end = start + params.PageSize
	}
	out := make([]*domain.Work, 0, end-start)
	for _, w := range matched[start:end] {
		out = append(out, copyWork(w))
	}
	return out, total, nil
}

func (m *MockWorkStore) IDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := []string{}
	for _, id := range m.order {
		if m.works[id].CreatedBy == ownerID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *MockWorkStore) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := m.works[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}
