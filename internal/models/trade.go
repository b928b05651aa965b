package models

import "time"

type TradeDirection string

const (
	TradeDirectionBuy  TradeDirection = "buy"
	TradeDirectionSell TradeDirection = "sell"
)

// Trade is a single journal entry. ExitPrice is nil while the position is
// still open; only closed trades contribute to performance metrics.
type Trade struct {
	ID         string
	UserID     string
	Symbol     string
	Direction  TradeDirection
	Size       float64
	EntryPrice float64
	ExitPrice  *float64
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Closed reports whether the trade has a usable exit price.
func (t Trade) Closed() bool {
	return t.ExitPrice != nil && *t.ExitPrice > 0
}

// ProfitLoss returns the realized P/L for a closed trade, zero otherwise.
func (t Trade) ProfitLoss() float64 {
	if !t.Closed() {
		return 0
	}
	if t.Direction == TradeDirectionSell {
		return (t.EntryPrice - *t.ExitPrice) * t.Size
	}
	return (*t.ExitPrice - t.EntryPrice) * t.Size
}
