package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tradelog/api/internal/middleware"
)

func (h HandlerSet) Dashboard(c *gin.Context) {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Not authorized, no token")
		return
	}

	data, err := h.dashboard.Summary(c.Request.Context(), identity.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("dashboard summary failed")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"metrics":      data.Metrics,
		"recentTrades": toTradeResponses(data.RecentTrades),
	})
}
