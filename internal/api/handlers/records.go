package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/msmahdinejad/smart-monitoring-system/internal/store"
)

type RecordsHandler struct {
	store *store.Store
}

func NewRecordsHandler(s *store.Store) *RecordsHandler {
	return &RecordsHandler{store: s}
}

// List returns the most recent monitoring records, newest first.
func (h *RecordsHandler) List(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	records, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list records")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(records),
		"records": records,
	})
}
