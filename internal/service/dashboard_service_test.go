package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradelog/api/internal/models"
	"tradelog/api/internal/repository"
)

func ptr(v float64) *float64 { return &v }

func closedTrade(direction models.TradeDirection, size, entry, exit float64) models.Trade {
	return models.Trade{Direction: direction, Size: size, EntryPrice: entry, ExitPrice: ptr(exit)}
}

func TestComputeMetrics(t *testing.T) {
	trades := []models.Trade{
		closedTrade(models.TradeDirectionBuy, 10, 100, 110),  // +100
		closedTrade(models.TradeDirectionSell, 5, 50, 40),    // +50
		closedTrade(models.TradeDirectionBuy, 2, 200, 150),   // -100
		{Direction: models.TradeDirectionBuy, Size: 1, EntryPrice: 10}, // open, ignored
	}

	m := ComputeMetrics(trades)

	assert.Equal(t, 4, m.TotalTrades)
	assert.Equal(t, 3, m.CompletedTrades)
	assert.Equal(t, 50.0, m.TotalProfitLoss)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 1, m.LosingTrades)
	assert.Equal(t, 66.67, m.WinRate)
	assert.Equal(t, 75.0, m.AvgWin)
	assert.Equal(t, 100.0, m.AvgLoss)
	assert.Equal(t, 1.5, m.ProfitFactor)
	assert.Equal(t, 100.0, m.MaxDrawdown)
	assert.Equal(t, 16.67, m.Expectancy)
	assert.Equal(t, 100.0, m.BestTrade)
	assert.Equal(t, -100.0, m.WorstTrade)
	assert.Equal(t, 1.5, m.SharpeRatio)
}

func TestComputeMetrics_Empty(t *testing.T) {
	m := ComputeMetrics(nil)

	assert.Equal(t, 0, m.TotalTrades)
	assert.Zero(t, m.WinRate)
	assert.Zero(t, m.ProfitFactor)
	assert.Zero(t, m.Expectancy)
}

// fakeDashboardCache records cache traffic for assertions.
type fakeDashboardCache struct {
	mu      sync.Mutex
	entries map[string]DashboardData
	hits    int
	misses  int
}

func newFakeDashboardCache() *fakeDashboardCache {
	return &fakeDashboardCache{entries: make(map[string]DashboardData)}
}

func (f *fakeDashboardCache) Get(ctx context.Context, userID string) (DashboardData, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.entries[userID]
	if ok {
		f.hits++
	} else {
		f.misses++
	}
	return data, ok, nil
}

func (f *fakeDashboardCache) Set(ctx context.Context, userID string, data DashboardData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[userID] = data
	return nil
}

func (f *fakeDashboardCache) Invalidate(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, userID)
	return nil
}

func TestDashboardService_Summary(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryTradeStore()
	cache := newFakeDashboardCache()
	svc := NewDashboardService(store, cache, zerolog.Nop())

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 7; i++ {
		trade := closedTrade(models.TradeDirectionBuy, 1, 100, 110)
		trade.ID = string(rune('a' + i))
		trade.UserID = "u1"
		trade.Symbol = "AAPL"
		trade.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		trade.UpdatedAt = trade.CreatedAt
		require.NoError(t, store.Create(ctx, trade))
	}

	data, err := svc.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, data.Metrics.TotalTrades)
	assert.Len(t, data.RecentTrades, 5)
	assert.Equal(t, "g", data.RecentTrades[0].ID, "newest trade first")
	assert.Equal(t, 1, cache.misses)

	// Second read is served from cache.
	_, err = svc.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
}

func TestTradeService_MutationsInvalidateDashboard(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryTradeStore()
	cache := newFakeDashboardCache()
	trades := NewTradeService(store, cache, zerolog.Nop())
	dashboard := NewDashboardService(store, cache, zerolog.Nop())

	created, err := trades.Create(ctx, "u1", CreateTradeInput{
		Symbol: "AAPL", Direction: "buy", Size: 1, EntryPrice: 100, ExitPrice: ptr(110),
	})
	require.NoError(t, err)

	data, err := dashboard.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, data.Metrics.TotalTrades)

	_, err = trades.Update(ctx, created.ID, "u1", UpdateTradeInput{ExitPrice: ptr(90)})
	require.NoError(t, err)

	data, err = dashboard.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, -10.0, data.Metrics.TotalProfitLoss, "update invalidated the cached summary")

	require.NoError(t, trades.Delete(ctx, created.ID, "u1"))
	data, err = dashboard.Summary(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, data.Metrics.TotalTrades)
}
