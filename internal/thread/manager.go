// Package thread manages the message log of a workspace: append, reply
// resolution, pinning and the per-day grouped view.
package thread

import (
	"time"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/models"
)

// Manager holds messages in append order.
type Manager struct {
	workspaceID string
	messages    []*models.WorkspaceMessage
	byID        map[string]*models.WorkspaceMessage
	nextSeq     int64
}

func NewManager(workspaceID string) *Manager {
	return &Manager{
		workspaceID: workspaceID,
		byID:        make(map[string]*models.WorkspaceMessage),
	}
}

// Len returns the number of messages.
func (m *Manager) Len() int {
	return len(m.messages)
}

// LastCreatedAt returns the timestamp of the newest message, or the zero time.
func (m *Manager) LastCreatedAt() time.Time {
	if len(m.messages) == 0 {
		return time.Time{}
	}
	return m.messages[len(m.messages)-1].CreatedAt
}

// CheckReply verifies that a message created at createdAt in this workspace
// may reply to replyToID.
func (m *Manager) CheckReply(replyToID string, createdAt time.Time) error {
	target, ok := m.byID[replyToID]
	if !ok {
		return apperr.NotFound("message", replyToID)
	}
	if target.WorkspaceID != m.workspaceID {
		return apperr.Invariant("reply_same_workspace",
			"message "+replyToID+" belongs to workspace "+target.WorkspaceID)
	}
	if target.CreatedAt.After(createdAt) {
		return apperr.Invariant("reply_not_forward",
			"message "+replyToID+" was created after the reply")
	}
	return nil
}

// Append stores msg, assigning its sequence number. The reply reference is
// re-checked so a bad record can never enter the log.
func (m *Manager) Append(msg models.WorkspaceMessage) (models.WorkspaceMessage, error) {
	if msg.WorkspaceID != m.workspaceID {
		return models.WorkspaceMessage{}, apperr.Invariant("message_workspace",
			"message targets workspace "+msg.WorkspaceID)
	}
	if _, dup := m.byID[msg.ID]; dup {
		return models.WorkspaceMessage{}, apperr.Invariant("message_id_unique", "duplicate message id "+msg.ID)
	}
	if msg.ReplyToID != nil {
		if err := m.CheckReply(*msg.ReplyToID, msg.CreatedAt); err != nil {
			return models.WorkspaceMessage{}, err
		}
	}
	stored := msg.Clone()
	stored.Seq = m.nextSeq
	m.nextSeq++
	m.messages = append(m.messages, &stored)
	m.byID[stored.ID] = &stored
	return stored.Clone(), nil
}

func (m *Manager) Get(id string) (models.WorkspaceMessage, error) {
	msg, ok := m.byID[id]
	if !ok {
		return models.WorkspaceMessage{}, apperr.NotFound("message", id)
	}
	return msg.Clone(), nil
}

// TogglePin flips the pinned flag.
func (m *Manager) TogglePin(id string) (models.WorkspaceMessage, error) {
	msg, ok := m.byID[id]
	if !ok {
		return models.WorkspaceMessage{}, apperr.NotFound("message", id)
	}
	msg.IsPinned = !msg.IsPinned
	return msg.Clone(), nil
}

// All returns every message in append order.
func (m *Manager) All() []models.WorkspaceMessage {
	out := make([]models.WorkspaceMessage, 0, len(m.messages))
	for _, msg := range m.messages {
		out = append(out, msg.Clone())
	}
	return out
}

// Pinned returns pinned messages in append order.
func (m *Manager) Pinned() []models.WorkspaceMessage {
	out := []models.WorkspaceMessage{}
	for _, msg := range m.messages {
		if msg.IsPinned {
			out = append(out, msg.Clone())
		}
	}
	return out
}
