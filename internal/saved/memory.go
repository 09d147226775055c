package saved

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Store
type Memory struct {
	mu    sync.RWMutex
	items map[string][]Item
	now   func() time.Time
}

// NewMemory creates an empty Memory store
func NewMemory() *Memory {
	return &Memory{
		items: make(map[string][]Item),
		now:   time.Now,
	}
}

func (m *Memory) Save(_ context.Context, item Item) (Item, error) {
	item, err := prepare(item, m.now())
	if err != nil {
		return Item{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.items[item.UserID]
	if i := slices.IndexFunc(list, func(it Item) bool { return it.ID == item.ID }); i >= 0 {
		list[i] = item
	} else {
		list = append(list, item)
	}
	m.items[item.UserID] = list
	return item, nil
}

func (m *Memory) Delete(_ context.Context, userID string, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.items[userID]
	i := slices.IndexFunc(list, func(it Item) bool { return it.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.items[userID] = slices.Delete(list, i, i+1)
	return nil
}

func (m *Memory) List(_ context.Context, userID string) ([]Item, error) {
	m.mu.RLock()
	out := slices.Clone(m.items[userID])
	m.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b Item) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if out == nil {
		out = []Item{}
	}
	return out, nil
}
