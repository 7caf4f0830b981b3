package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-casework/internal/api/middleware"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

// ============================================
// Milestone Handler
// ============================================

type MilestoneHandler struct {
	store *workspace.Store
}

type updateMilestoneRequest struct {
	IsCompleted bool `json:"isCompleted"`
}

type milestonesResponse struct {
	Milestones []models.Milestone `json:"milestones"`
	Progress   models.Progress    `json:"progress"`
}

func (h *MilestoneHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	milestones, err := h.store.Milestones(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	progress, err := h.store.Progress(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, milestonesResponse{Milestones: milestones, Progress: progress})
}

func (h *MilestoneHandler) Create(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	m, err := h.store.AddMilestone(c.Request.Context(), c.Param("id"), memberID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *MilestoneHandler) Update(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req updateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	m, err := h.store.CompleteMilestone(c.Request.Context(), c.Param("id"), memberID, c.Param("milestoneId"), req.IsCompleted)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
