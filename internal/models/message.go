package models

import (
	"time"

	"github.com/Marga-Ghale/ora-casework/internal/types"
)

// WorkspaceMessage is a chat message. Content is immutable; only IsPinned changes.
type WorkspaceMessage struct {
	ID          string            `json:"id"`
	WorkspaceID string            `json:"workspaceId"`
	AuthorID    string            `json:"authorId"`
	Content     string            `json:"content"`
	CreatedAt   time.Time         `json:"createdAt"`
	Kind        types.MessageKind `json:"kind"`
	ReplyToID   *string           `json:"replyToId,omitempty"`
	IsPinned    bool              `json:"isPinned"`

	// Seq is the append position; it breaks timestamp ties.
	Seq int64 `json:"seq"`
}

func (m WorkspaceMessage) Clone() WorkspaceMessage {
	m.ReplyToID = cloneStringPtr(m.ReplyToID)
	return m
}

type SendMessageRequest struct {
	AuthorID  string            `json:"authorId" yaml:"authorId" validate:"required"`
	Content   string            `json:"content" yaml:"content" validate:"max=10000"`
	Kind      types.MessageKind `json:"kind,omitempty" yaml:"kind" validate:"omitempty,oneof=text system"`
	ReplyToID *string           `json:"replyToId,omitempty" yaml:"replyToId"`
}

// DayGroup holds the messages of one calendar day in append order.
type DayGroup struct {
	Day      string             `json:"day"`
	Date     time.Time          `json:"date"`
	Messages []WorkspaceMessage `json:"messages"`
}
