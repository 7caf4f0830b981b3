package handlers

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

// ConnectionIndex reports members holding a socket on this process.
type ConnectionIndex interface {
	OnlineMembers() []string
	IsMemberOnline(memberID string) bool
}

// PresenceMirror reads presence written by every process sharing the cache.
type PresenceMirror interface {
	GetPresence(ctx context.Context, workspaceID, memberID string) (models.WorkspaceMember, bool, error)
	OnlinePresence(ctx context.Context, workspaceID string) ([]models.WorkspaceMember, error)
}

// ============================================
// Presence Handler
// ============================================

type PresenceHandler struct {
	store  *workspace.Store
	conns  ConnectionIndex
	mirror PresenceMirror
}

// NewPresenceHandler creates the live presence endpoints. mirror may be nil
// when no shared cache is configured.
func NewPresenceHandler(store *workspace.Store, conns ConnectionIndex, mirror PresenceMirror) *PresenceHandler {
	return &PresenceHandler{store: store, conns: conns, mirror: mirror}
}

type workspacePresence struct {
	Online    []string  `json:"online"`
	Connected []string  `json:"connected"`
	// Mirrored is omitted without a shared cache.
	Mirrored  *[]string `json:"mirrored,omitempty"`
}

type memberPresence struct {
	MemberID     string                  `json:"memberId"`
	Online       bool                    `json:"online"`
	LastActiveAt time.Time               `json:"lastActiveAt"`
	Connected    bool                    `json:"connected"`
	Mirrored     *models.WorkspaceMember `json:"mirrored,omitempty"`
}

// Workspace lists online members as the store sees them, those connected to
// this process, and those any process has mirrored.
func (h *PresenceHandler) Workspace(c *gin.Context) {
	ctx := c.Request.Context()
	wsID := c.Param("id")

	roster, err := h.store.Roster(ctx, wsID)
	if err != nil {
		respondError(c, err)
		return
	}
	members := make(map[string]bool, len(roster))
	out := workspacePresence{Online: []string{}, Connected: []string{}}
	for _, m := range roster {
		members[m.ID] = true
		if m.IsOnline {
			out.Online = append(out.Online, m.ID)
		}
	}
	for _, id := range h.conns.OnlineMembers() {
		if members[id] {
			out.Connected = append(out.Connected, id)
		}
	}
	slices.Sort(out.Connected)

	if h.mirror != nil {
		mirrored, err := h.mirror.OnlinePresence(ctx, wsID)
		if err != nil {
			respondError(c, err)
			return
		}
		ids := []string{}
		for _, m := range mirrored {
			ids = append(ids, m.ID)
		}
		slices.Sort(ids)
		out.Mirrored = &ids
	}
	c.JSON(http.StatusOK, out)
}

// Member reports one member's presence from every source.
func (h *PresenceHandler) Member(c *gin.Context) {
	ctx := c.Request.Context()
	wsID, memberID := c.Param("id"), c.Param("memberId")

	m, err := h.store.Member(ctx, wsID, memberID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := memberPresence{
		MemberID:     m.ID,
		Online:       m.IsOnline,
		LastActiveAt: m.LastActiveAt,
		Connected:    h.conns.IsMemberOnline(m.ID),
	}
	if h.mirror != nil {
		mirrored, ok, err := h.mirror.GetPresence(ctx, wsID, m.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		if ok {
			out.Mirrored = &mirrored
		}
	}
	c.JSON(http.StatusOK, out)
}
