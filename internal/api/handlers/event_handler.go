package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/repository"
)

const (
	defaultEventPage = 100
	maxEventPage     = 500
)

// EventHistory reads journaled events of one workspace in id order.
type EventHistory interface {
	FindByWorkspace(ctx context.Context, workspaceID string, afterID int64, limit int) ([]*repository.EventRecord, error)
}

// ============================================
// Event Handler
// ============================================

type EventHandler struct {
	history EventHistory
}

func NewEventHandler(history EventHistory) *EventHandler {
	return &EventHandler{history: history}
}

// List pages through the journal with ?after=<event id>&limit=<n>.
func (h *EventHandler) List(c *gin.Context) {
	var after int64
	if raw := c.Query("after"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			respondError(c, apperr.Validation("after", "must be a non-negative event id"))
			return
		}
		after = n
	}
	limit, err := intQuery(c, "limit", defaultEventPage)
	if err != nil {
		respondError(c, err)
		return
	}
	if limit <= 0 || limit > maxEventPage {
		limit = defaultEventPage
	}

	records, err := h.history.FindByWorkspace(c.Request.Context(), c.Param("id"), after, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if records == nil {
		records = []*repository.EventRecord{}
	}
	c.JSON(http.StatusOK, records)
}
