package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tradelog/api/internal/ids"
	"tradelog/api/internal/models"
)

// ArchiveStore keeps the raw uploaded import files for audit. The minio
// object store implements it; a nil store disables archival.
type ArchiveStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

type ImportService struct {
	trades  TradeStore
	archive ArchiveStore
	cache   DashboardCache
	log     zerolog.Logger
}

func NewImportService(trades TradeStore, archive ArchiveStore, cache DashboardCache, log zerolog.Logger) *ImportService {
	return &ImportService{trades: trades, archive: archive, cache: cache, log: log}
}

type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

type ImportResult struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

// Expected header: symbol,direction,size,entryPrice[,exitPrice[,notes]].
var csvColumns = []string{"symbol", "direction", "size", "entryprice", "exitprice", "notes"}

// ImportCSV parses a broker CSV export and inserts one trade per valid
// row. Malformed rows are skipped and reported, never fatal. The raw file
// is archived before parsing so a bad upload can be replayed.
func (s *ImportService) ImportCSV(ctx context.Context, userID string, data []byte) (ImportResult, error) {
	if s.archive != nil {
		key := fmt.Sprintf("imports/%s/%s.csv", userID, ids.New())
		if err := s.archive.Put(ctx, key, data, "text/csv"); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("import archive failed")
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, fmt.Errorf("read csv header: %w", err)
	}
	index, err := headerIndex(header)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Errors: []RowError{}}
	now := time.Now().UTC()
	line := 1
	for {
		line++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Line: line, Message: "unreadable row"})
			continue
		}

		input, err := parseRow(record, index)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}

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
			return result, fmt.Errorf("insert trade: %w", err)
		}
		result.Imported++
	}

	if result.Imported > 0 && s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("dashboard cache invalidation failed")
		}
	}
	return result, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range csvColumns[:4] {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("csv missing required column %q", required)
		}
	}
	return index, nil
}

func parseRow(record []string, index map[string]int) (CreateTradeInput, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	symbol := field("symbol")
	if symbol == "" {
		return CreateTradeInput{}, fmt.Errorf("symbol is required")
	}

	direction := strings.ToLower(field("direction"))
	if direction != string(models.TradeDirectionBuy) && direction != string(models.TradeDirectionSell) {
		return CreateTradeInput{}, fmt.Errorf("direction must be buy or sell")
	}

	size, err := strconv.ParseFloat(field("size"), 64)
	if err != nil || size <= 0 {
		return CreateTradeInput{}, fmt.Errorf("size must be a positive number")
	}

	entryPrice, err := strconv.ParseFloat(field("entryprice"), 64)
	if err != nil || entryPrice <= 0 {
		return CreateTradeInput{}, fmt.Errorf("entry price must be a positive number")
	}

	var exitPrice *float64
	if raw := field("exitprice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			return CreateTradeInput{}, fmt.Errorf("exit price must be a positive number")
		}
		exitPrice = &v
	}

	return CreateTradeInput{
		Symbol:     symbol,
		Direction:  direction,
		Size:       size,
		EntryPrice: entryPrice,
		ExitPrice:  exitPrice,
		Notes:      field("notes"),
	}, nil
}
