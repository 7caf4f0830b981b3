package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-casework/internal/api/middleware"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

// ============================================
// Evidence Handler
// ============================================

type EvidenceHandler struct {
	store *workspace.Store
}

type connectEvidenceRequest struct {
	TargetID string `json:"targetId"`
}

// List filters evidence by ?type, ?status and ?q.
func (h *EvidenceHandler) List(c *gin.Context) {
	var f models.EvidenceFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}

	items, err := h.store.FilteredEvidence(c.Request.Context(), c.Param("id"), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *EvidenceHandler) Stats(c *gin.Context) {
	stats, err := h.store.EvidenceStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *EvidenceHandler) Get(c *gin.Context) {
	ev, err := h.store.Evidence(c.Request.Context(), c.Param("id"), c.Param("evidenceId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

// Create records evidence added by the caller.
func (h *EvidenceHandler) Create(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.CreateEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.AddedBy = memberID

	ev, err := h.store.AddEvidence(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ev)
}

func (h *EvidenceHandler) UpdateStatus(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.UpdateEvidenceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ev, err := h.store.SetEvidenceStatus(c.Request.Context(), c.Param("id"), memberID, c.Param("evidenceId"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (h *EvidenceHandler) Delete(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteEvidence(c.Request.Context(), c.Param("id"), memberID, c.Param("evidenceId")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EvidenceHandler) Connect(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req connectEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ev, err := h.store.ConnectEvidence(c.Request.Context(), c.Param("id"), memberID, c.Param("evidenceId"), req.TargetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (h *EvidenceHandler) Disconnect(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	err := h.store.DisconnectEvidence(c.Request.Context(), c.Param("id"), memberID, c.Param("evidenceId"), c.Param("targetId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Related walks the link graph; ?depth=0 (default) follows every link.
// Neighbors lists items one link away.
func (h *EvidenceHandler) Neighbors(c *gin.Context) {
	items, err := h.store.EvidenceNeighbors(c.Request.Context(), c.Param("id"), c.Param("evidenceId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *EvidenceHandler) Related(c *gin.Context) {
	depth, err := intQuery(c, "depth", 0)
	if err != nil {
		respondError(c, err)
		return
	}

	items, err := h.store.RelatedEvidence(c.Request.Context(), c.Param("id"), c.Param("evidenceId"), depth)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}
