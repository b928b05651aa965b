package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"tradelog/api/internal/models"
)

// In-memory implementations of the user and trade stores. The services and
// middleware only depend on the store interfaces, so tests run against
// these instead of postgres.

type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]models.User)}
}

func (m *MemoryUserStore) Create(ctx context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
		user.UpdatedAt = user.CreatedAt
	}
	m.users[user.ID] = user
	return nil
}

func (m *MemoryUserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (m *MemoryUserStore) GetByID(ctx context.Context, id string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

// Delete exists for cleanup paths and for exercising the
// token-for-vanished-user case.
func (m *MemoryUserStore) Delete(ctx context.Context, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

type MemoryTradeStore struct {
	mu      sync.RWMutex
	trades  map[string]models.Trade
	seq     map[string]int
	nextSeq int
}

func NewMemoryTradeStore() *MemoryTradeStore {
	return &MemoryTradeStore{
		trades: make(map[string]models.Trade),
		seq:    make(map[string]int),
	}
}

func (m *MemoryTradeStore) Create(ctx context.Context, trade models.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if trade.CreatedAt.IsZero() {
		trade.CreatedAt = time.Now().UTC()
		trade.UpdatedAt = trade.CreatedAt
	}
	m.nextSeq++
	m.seq[trade.ID] = m.nextSeq
	m.trades[trade.ID] = trade
	return nil
}

func (m *MemoryTradeStore) ListByUser(ctx context.Context, userID string) ([]models.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trades := make([]models.Trade, 0)
	for _, trade := range m.trades {
		if trade.UserID == userID {
			trades = append(trades, trade)
		}
	}
	// Newest first, matching the SQL ordering.
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].CreatedAt.Equal(trades[j].CreatedAt) {
			return m.seq[trades[i].ID] > m.seq[trades[j].ID]
		}
		return trades[i].CreatedAt.After(trades[j].CreatedAt)
	})
	return trades, nil
}

func (m *MemoryTradeStore) GetByID(ctx context.Context, id, userID string) (models.Trade, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trade, ok := m.trades[id]
	if !ok || trade.UserID != userID {
		return models.Trade{}, ErrTradeNotFound
	}
	return trade, nil
}

func (m *MemoryTradeStore) Update(ctx context.Context, trade models.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.trades[trade.ID]
	if !ok || existing.UserID != trade.UserID {
		return ErrTradeNotFound
	}
	m.trades[trade.ID] = trade
	return nil
}

func (m *MemoryTradeStore) Delete(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	trade, ok := m.trades[id]
	if !ok || trade.UserID != userID {
		return ErrTradeNotFound
	}
	delete(m.trades, id)
	return nil
}
