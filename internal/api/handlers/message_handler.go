package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-casework/internal/api/middleware"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

// ============================================
// Message Handler
// ============================================

type MessageHandler struct {
	store *workspace.Store
}

// List returns the thread grouped by day, or flat with ?view=flat.
func (h *MessageHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Query("view") == "flat" {
		msgs, err := h.store.Messages(ctx, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, msgs)
		return
	}

	groups, err := h.store.MessagesGroupedByDay(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// Send posts a message authored by the caller.
func (h *MessageHandler) Send(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.AuthorID = memberID

	msg, err := h.store.SendMessage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) Pinned(c *gin.Context) {
	msgs, err := h.store.PinnedMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *MessageHandler) TogglePin(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	msg, err := h.store.TogglePin(c.Request.Context(), c.Param("id"), memberID, c.Param("messageId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// Chain returns the ancestry of a message, root first.
func (h *MessageHandler) Chain(c *gin.Context) {
	msgs, err := h.store.ReplyChain(c.Request.Context(), c.Param("id"), c.Param("messageId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *MessageHandler) Replies(c *gin.Context) {
	msgs, err := h.store.Replies(c.Request.Context(), c.Param("id"), c.Param("messageId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}
