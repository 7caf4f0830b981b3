package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-casework/internal/api/middleware"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/types"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

// ============================================
// Workspace Handler
// ============================================

type WorkspaceHandler struct {
	store *workspace.Store
}

// List returns the workspaces the caller can read.
func (h *WorkspaceHandler) List(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	response := []models.Workspace{}
	for _, ws := range h.store.ListWorkspaces(ctx) {
		if ws.Visibility == types.VisibilityPublic {
			response = append(response, ws)
			continue
		}
		if m, err := h.store.Member(ctx, ws.ID, memberID); err == nil && m.IsActive() {
			response = append(response, ws)
		}
	}
	c.JSON(http.StatusOK, response)
}

// Create opens a workspace owned by the caller.
func (h *WorkspaceHandler) Create(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	req.Owner.ID = memberID

	ws, err := h.store.CreateWorkspace(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ws)
}

// Get returns a consistent snapshot of the whole workspace.
func (h *WorkspaceHandler) Get(c *gin.Context) {
	snap, err := h.store.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Versions returns the optimistic counters so clients can detect staleness.
func (h *WorkspaceHandler) Versions(c *gin.Context) {
	v, err := h.store.Versions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// RecordView counts a view of the workspace page.
func (h *WorkspaceHandler) RecordView(c *gin.Context) {
	ws, err := h.store.RecordView(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}
