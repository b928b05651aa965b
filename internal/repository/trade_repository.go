package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradelog/api/internal/models"
)

var ErrTradeNotFound = errors.New("trade not found")

type TradeRepository struct {
	pool *pgxpool.Pool
}

func NewTradeRepository(pool *pgxpool.Pool) *TradeRepository {
	return &TradeRepository{pool: pool}
}

const tradeColumns = `id, user_id, symbol, direction, size, entry_price, exit_price, notes, created_at, updated_at`

func (r *TradeRepository) Create(ctx context.Context, trade models.Trade) error {
	const query = `
		INSERT INTO trades (
			id, user_id, symbol, direction, size, entry_price, exit_price, notes, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)
	`

	_, err := r.pool.Exec(ctx, query,
		trade.ID,
		trade.UserID,
		trade.Symbol,
		trade.Direction,
		trade.Size,
		trade.EntryPrice,
		trade.ExitPrice,
		trade.Notes,
		trade.CreatedAt,
		trade.UpdatedAt,
	)
	return err
}

// ListByUser returns the user's trades, newest first.
func (r *TradeRepository) ListByUser(ctx context.Context, userID string) ([]models.Trade, error) {
	const query = `
		SELECT ` + tradeColumns + `
		FROM trades WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]models.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	return trades, rows.Err()
}

// GetByID fetches a trade owned by userID. A trade belonging to another
// user is indistinguishable from a missing one.
func (r *TradeRepository) GetByID(ctx context.Context, id, userID string) (models.Trade, error) {
	const query = `
		SELECT ` + tradeColumns + `
		FROM trades WHERE id = $1 AND user_id = $2
	`

	trade, err := scanTrade(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Trade{}, ErrTradeNotFound
		}
		return models.Trade{}, err
	}
	return trade, nil
}

func (r *TradeRepository) Update(ctx context.Context, trade models.Trade) error {
	const query = `
		UPDATE trades
		SET symbol = $3, direction = $4, size = $5, entry_price = $6, exit_price = $7, notes = $8, updated_at = $9
		WHERE id = $1 AND user_id = $2
	`

	cmd, err := r.pool.Exec(ctx, query,
		trade.ID,
		trade.UserID,
		trade.Symbol,
		trade.Direction,
		trade.Size,
		trade.EntryPrice,
		trade.ExitPrice,
		trade.Notes,
		trade.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTradeNotFound
	}
	return nil
}

func (r *TradeRepository) Delete(ctx context.Context, id, userID string) error {
	const query = `DELETE FROM trades WHERE id = $1 AND user_id = $2`

	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTradeNotFound
	}
	return nil
}

func scanTrade(row pgx.Row) (models.Trade, error) {
	var trade models.Trade
	err := row.Scan(
		&trade.ID,
		&trade.UserID,
		&trade.Symbol,
		&trade.Direction,
		&trade.Size,
		&trade.EntryPrice,
		&trade.ExitPrice,
		&trade.Notes,
		&trade.CreatedAt,
		&trade.UpdatedAt,
	)
	return trade, err
}
