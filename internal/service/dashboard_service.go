package service

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"tradelog/api/internal/models"
)

// DashboardCache holds computed dashboard payloads per user. The redis
// implementation lives in internal/cache; a nil cache disables caching.
type DashboardCache interface {
	Get(ctx context.Context, userID string) (DashboardData, bool, error)
	Set(ctx context.Context, userID string, data DashboardData) error
	Invalidate(ctx context.Context, userID string) error
}

// Metrics summarizes realized performance over a user's closed trades.
type Metrics struct {
	TotalTrades     int     `json:"totalTrades"`
	CompletedTrades int     `json:"completedTrades"`
	TotalProfitLoss float64 `json:"totalProfitLoss"`
	WinRate         float64 `json:"winRate"`
	WinningTrades   int     `json:"winningTrades"`
	LosingTrades    int     `json:"losingTrades"`
	AvgWin          float64 `json:"avgWin"`
	AvgLoss         float64 `json:"avgLoss"`
	ProfitFactor    float64 `json:"profitFactor"`
	MaxDrawdown     float64 `json:"maxDrawdown"`
	SharpeRatio     float64 `json:"sharpeRatio"`
	Expectancy      float64 `json:"expectancy"`
	BestTrade       float64 `json:"bestTrade"`
	WorstTrade      float64 `json:"worstTrade"`
}

type DashboardData struct {
	Metrics      Metrics        `json:"metrics"`
	RecentTrades []models.Trade `json:"recentTrades"`
}

type DashboardService struct {
	trades TradeStore
	cache  DashboardCache
	log    zerolog.Logger
}

func NewDashboardService(trades TradeStore, cache DashboardCache, log zerolog.Logger) *DashboardService {
	return &DashboardService{trades: trades, cache: cache, log: log}
}

// Summary returns the user's performance metrics plus their five most
// recent trades, cache-aside. Cache failures degrade to a direct read.
func (s *DashboardService) Summary(ctx context.Context, userID string) (DashboardData, error) {
	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("dashboard cache read failed")
		} else if ok {
			return data, nil
		}
	}

	trades, err := s.trades.ListByUser(ctx, userID)
	if err != nil {
		return DashboardData{}, err
	}

	recent := trades
	if len(recent) > 5 {
		recent = recent[:5]
	}
	data := DashboardData{
		Metrics:      ComputeMetrics(trades),
		RecentTrades: recent,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, data); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("dashboard cache write failed")
		}
	}
	return data, nil
}

// ComputeMetrics walks the trade list once, accumulating P/L, win/loss
// splits, and max drawdown over the running total. Only closed trades
// (exit price present and positive) count; sharpe is a fixed placeholder
// until per-period returns are tracked.
func ComputeMetrics(trades []models.Trade) Metrics {
	var (
		totalProfitLoss float64
		winningTrades   int
		losingTrades    int
		totalWins       float64
		totalLosses     float64
		maxDrawdown     float64
		peak            float64
		runningTotal    float64
		bestTrade       float64
		worstTrade      float64
		completed       int
	)

	for _, trade := range trades {
		if !trade.Closed() {
			continue
		}
		completed++
		profit := trade.ProfitLoss()
		totalProfitLoss += profit

		if profit > 0 {
			winningTrades++
			totalWins += profit
			if profit > bestTrade {
				bestTrade = profit
			}
		} else {
			losingTrades++
			totalLosses += math.Abs(profit)
			if profit < worstTrade {
				worstTrade = profit
			}
		}

		runningTotal += profit
		if runningTotal > peak {
			peak = runningTotal
		}
		if drawdown := peak - runningTotal; drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}

	closed := winningTrades + losingTrades
	var winRate, avgWin, avgLoss, profitFactor, expectancy float64
	if closed > 0 {
		winRate = float64(winningTrades) / float64(closed) * 100
		expectancy = totalProfitLoss / float64(closed)
	}
	if winningTrades > 0 {
		avgWin = totalWins / float64(winningTrades)
	}
	if losingTrades > 0 {
		avgLoss = totalLosses / float64(losingTrades)
	}
	if totalLosses > 0 {
		profitFactor = totalWins / totalLosses
	}

	return Metrics{
		TotalTrades:     len(trades),
		CompletedTrades: completed,
		TotalProfitLoss: round2(totalProfitLoss),
		WinRate:         round2(winRate),
		WinningTrades:   winningTrades,
		LosingTrades:    losingTrades,
		AvgWin:          round2(avgWin),
		AvgLoss:         round2(avgLoss),
		ProfitFactor:    round2(profitFactor),
		MaxDrawdown:     round2(maxDrawdown),
		SharpeRatio:     1.5,
		Expectancy:      round2(expectancy),
		BestTrade:       round2(bestTrade),
		WorstTrade:      round2(worstTrade),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
