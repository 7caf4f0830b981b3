package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-casework/internal/api/middleware"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

// ============================================
// Member Handler
// ============================================

type MemberHandler struct {
	store *workspace.Store
}

type transferOwnershipRequest struct {
	MemberID string `json:"memberId"`
}

type presenceRequest struct {
	Online bool `json:"online"`
}

// Roster lists active members in roster order.
func (h *MemberHandler) Roster(c *gin.Context) {
	roster, err := h.store.Roster(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, roster)
}

// Get returns one member, removed ones included.
func (h *MemberHandler) Get(c *gin.Context) {
	m, err := h.store.Member(c.Request.Context(), c.Param("id"), c.Param("memberId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MemberHandler) Add(c *gin.Context) {
	actorID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	m, err := h.store.AddMember(c.Request.Context(), c.Param("id"), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *MemberHandler) Remove(c *gin.Context) {
	actorID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	m, err := h.store.RemoveMember(c.Request.Context(), c.Param("id"), actorID, c.Param("memberId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MemberHandler) UpdateRole(c *gin.Context) {
	actorID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req models.UpdateMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	m, err := h.store.ChangeRole(c.Request.Context(), c.Param("id"), actorID, c.Param("memberId"), req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *MemberHandler) TransferOwnership(c *gin.Context) {
	actorID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req transferOwnershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	owner, err := h.store.TransferOwnership(c.Request.Context(), c.Param("id"), actorID, req.MemberID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, owner)
}

// Presence records a heartbeat for the caller in all of its workspaces.
func (h *MemberHandler) Presence(c *gin.Context) {
	memberID, ok := middleware.RequireMemberID(c)
	if !ok {
		return
	}

	var req presenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	results, err := h.store.UpdatePresence(c.Request.Context(), memberID, req.Online, time.Time{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
