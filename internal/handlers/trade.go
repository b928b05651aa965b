package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tradelog/api/internal/middleware"
	"tradelog/api/internal/models"
	"tradelog/api/internal/repository"
	"tradelog/api/internal/service"
	"tradelog/api/internal/validate"
)

// maxImportSize bounds uploaded CSV files at 5 MiB.
const maxImportSize = 5 << 20

type createTradeRequest struct {
	Symbol     string   `json:"symbol" binding:"required"`
	Direction  string   `json:"direction" binding:"required,oneof=buy sell"`
	Size       float64  `json:"size" binding:"required,gt=0"`
	EntryPrice float64  `json:"entryPrice" binding:"required,gt=0"`
	ExitPrice  *float64 `json:"exitPrice" binding:"omitempty,gt=0"`
	Notes      string   `json:"notes"`
}

type updateTradeRequest struct {
	Symbol     *string  `json:"symbol" binding:"omitempty,min=1"`
	Direction  *string  `json:"direction" binding:"omitempty,oneof=buy sell"`
	Size       *float64 `json:"size" binding:"omitempty,gt=0"`
	EntryPrice *float64 `json:"entryPrice" binding:"omitempty,gt=0"`
	ExitPrice  *float64 `json:"exitPrice" binding:"omitempty,gt=0"`
	Notes      *string  `json:"notes"`
}

type tradeResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Symbol     string    `json:"symbol"`
	Direction  string    `json:"direction"`
	Size       float64   `json:"size"`
	EntryPrice float64   `json:"entryPrice"`
	ExitPrice  *float64  `json:"exitPrice"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (h HandlerSet) CreateTrade(c *gin.Context) {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	var req createTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, validate.Fields(err))
		return
	}

	trade, err := h.trades.Create(c.Request.Context(), identity.ID, service.CreateTradeInput{
		Symbol:     req.Symbol,
		Direction:  req.Direction,
		Size:       req.Size,
		EntryPrice: req.EntryPrice,
		ExitPrice:  req.ExitPrice,
		Notes:      req.Notes,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("create trade failed")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondData(c, http.StatusCreated, toTradeResponse(trade))
}

func (h HandlerSet) ListTrades(c *gin.Context) {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	trades, err := h.trades.List(c.Request.Context(), identity.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("list trades failed")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondData(c, http.StatusOK, toTradeResponses(trades))
}

func (h HandlerSet) GetTrade(c *gin.Context) {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	trade, err := h.trades.Get(c.Request.Context(), c.Param("id"), identity.ID)
	if err != nil {
		h.respondTradeError(c, err)
		return
	}

	respondData(c, http.StatusOK, toTradeResponse(trade))
}

func (h HandlerSet) UpdateTrade(c *gin.Context) {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	var req updateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, validate.Fields(err))
		return
	}

	trade, err := h.trades.Update(c.Request.Context(), c.Param("id"), identity.ID, service.UpdateTradeInput{
		Symbol:     req.Symbol,
		Direction:  req.Direction,
		Size:       req.Size,
		EntryPrice: req.EntryPrice,
		ExitPrice:  req.ExitPrice,
		Notes:      req.Notes,
	})
	if err != nil {
		h.respondTradeError(c, err)
		return
	}

	respondData(c, http.StatusOK, toTradeResponse(trade))
}

func (h HandlerSet) DeleteTrade(c *gin.Context) {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	if err := h.trades.Delete(c.Request.Context(), c.Param("id"), identity.ID); err != nil {
		h.respondTradeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) UploadTrades(c *gin.Context) {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "CSV file is required")
		return
	}
	if fileHeader.Size > maxImportSize {
		respondError(c, http.StatusBadRequest, "File too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "CSV file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		respondError(c, http.StatusBadRequest, "CSV file is unreadable")
		return
	}

	result, err := h.importer.ImportCSV(c.Request.Context(), identity.ID, data)
	if err != nil {
		h.log.Error().Err(err).Msg("trade import failed")
		respondError(c, http.StatusBadRequest, "Could not import trades from file")
		return
	}

	respondData(c, http.StatusOK, result)
}

func (h HandlerSet) respondTradeError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrTradeNotFound) {
		respondError(c, http.StatusNotFound, "Trade not found")
		return
	}
	h.log.Error().Err(err).Msg("trade operation failed")
	respondError(c, http.StatusInternalServerError, "Internal server error")
}

func toTradeResponse(trade models.Trade) tradeResponse {
	return tradeResponse{
		ID:         trade.ID,
		UserID:     trade.UserID,
		Symbol:     trade.Symbol,
		Direction:  string(trade.Direction),
		Size:       trade.Size,
		EntryPrice: trade.EntryPrice,
		ExitPrice:  trade.ExitPrice,
		Notes:      trade.Notes,
		CreatedAt:  trade.CreatedAt,
		UpdatedAt:  trade.UpdatedAt,
	}
}

func toTradeResponses(trades []models.Trade) []tradeResponse {
	out := make([]tradeResponse, 0, len(trades))
	for _, trade := range trades {
		out = append(out, toTradeResponse(trade))
	}
	return out
}
