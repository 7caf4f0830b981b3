package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-casework/internal/api/middleware"
	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/types"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Workspace *WorkspaceHandler
	Member    *MemberHandler
	Message   *MessageHandler
	Evidence  *EvidenceHandler
	Document  *DocumentHandler
	Milestone *MilestoneHandler

	// Events is nil when the journal is disabled.
	Events *EventHandler
	// Presence is nil when no socket hub is running.
	Presence *PresenceHandler

	store *workspace.Store
}

// NewHandlers creates all handlers on top of one store.
func NewHandlers(store *workspace.Store) *Handlers {
	return &Handlers{
		Workspace: &WorkspaceHandler{store: store},
		Member:    &MemberHandler{store: store},
		Message:   &MessageHandler{store: store},
		Evidence:  &EvidenceHandler{store: store},
		Document:  &DocumentHandler{store: store},
		Milestone: &MilestoneHandler{store: store},
		store:     store,
	}
}

// ============================================
// Access
// ============================================

// RequireReader lets a request through when the caller is an active member
// of the workspace in :id, or the workspace is public. Other callers get a
// 404 so private workspaces stay invisible.
func (h *Handlers) RequireReader() gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := middleware.RequireMemberID(c)
		if !ok {
			return
		}
		wsID := c.Param("id")
		ws, err := h.store.Workspace(c.Request.Context(), wsID)
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}
		if ws.Visibility == types.VisibilityPublic {
			c.Next()
			return
		}
		m, err := h.store.Member(c.Request.Context(), wsID, memberID)
		if err != nil || !m.IsActive() {
			respondError(c, apperr.NotFound("workspace", wsID))
			c.Abort()
			return
		}
		c.Next()
	}
}

// ============================================
// Responses
// ============================================

// respondError maps workspace errors to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		verr *apperr.ValidationError
		nerr *apperr.NotFoundError
		ierr *apperr.InvariantViolation
	)
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.As(err, &nerr):
		c.JSON(http.StatusNotFound, gin.H{"error": nerr.Error()})
	case errors.As(err, &ierr):
		c.JSON(http.StatusConflict, gin.H{"error": ierr.Error(), "rule": ierr.Rule})
	case apperr.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": "Not allowed"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(key, "must be an integer")
	}
	return n, nil
}
