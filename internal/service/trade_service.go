package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tradelog/api/internal/ids"
	"tradelog/api/internal/models"
)

// TradeStore is the journal storage behind the trade and dashboard
// services.
type TradeStore interface {
	Create(ctx context.Context, trade models.Trade) error
	ListByUser(ctx context.Context, userID string) ([]models.Trade, error)
	GetByID(ctx context.Context, id, userID string) (models.Trade, error)
	Update(ctx context.Context, trade models.Trade) error
	Delete(ctx context.Context, id, userID string) error
}

type TradeService struct {
	trades TradeStore
	cache  DashboardCache
	log    zerolog.Logger
}

func NewTradeService(trades TradeStore, cache DashboardCache, log zerolog.Logger) *TradeService {
	return &TradeService{trades: trades, cache: cache, log: log}
}

type CreateTradeInput struct {
	Symbol     string
	Direction  string
	Size       float64
	EntryPrice float64
	ExitPrice  *float64
	Notes      string
}

type UpdateTradeInput struct {
	Symbol     *string
	Direction  *string
	Size       *float64
	EntryPrice *float64
	ExitPrice  *float64
	Notes      *string
}

func (s *TradeService) Create(ctx context.Context, userID string, input CreateTradeInput) (models.Trade, error) {
	now := time.Now().UTC()
	trade := models.Trade{
		ID:         ids.New(),
		UserID:     userID,
		Symbol:     input.Symbol,
		Direction:  models.TradeDirection(input.Direction),
		Size:       input.Size,
		EntryPrice: input.EntryPrice,
		ExitPrice:  input.ExitPrice,
		Notes:      input.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.trades.Create(ctx, trade); err != nil {
		return models.Trade{}, err
	}
	s.invalidate(ctx, userID)
	return trade, nil
}

func (s *TradeService) List(ctx context.Context, userID string) ([]models.Trade, error) {
	return s.trades.ListByUser(ctx, userID)
}

func (s *TradeService) Get(ctx context.Context, id, userID string) (models.Trade, error) {
	return s.trades.GetByID(ctx, id, userID)
}

// Update merges the provided fields over the stored trade; absent fields
// keep their current value.
func (s *TradeService) Update(ctx context.Context, id, userID string, input UpdateTradeInput) (models.Trade, error) {
	trade, err := s.trades.GetByID(ctx, id, userID)
	if err != nil {
		return models.Trade{}, err
	}

	if input.Symbol != nil {
		trade.Symbol = *input.Symbol
	}
	if input.Direction != nil {
		trade.Direction = models.TradeDirection(*input.Direction)
	}
	if input.Size != nil {
		trade.Size = *input.Size
	}
	if input.EntryPrice != nil {
		trade.EntryPrice = *input.EntryPrice
	}
	if input.ExitPrice != nil {
		trade.ExitPrice = input.ExitPrice
	}
	if input.Notes != nil {
		trade.Notes = *input.Notes
	}
	trade.UpdatedAt = time.Now().UTC()

	if err := s.trades.Update(ctx, trade); err != nil {
		return models.Trade{}, err
	}
	s.invalidate(ctx, userID)
	return trade, nil
}

func (s *TradeService) Delete(ctx context.Context, id, userID string) error {
	if err := s.trades.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *TradeService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("dashboard cache invalidation failed")
	}
}
