package socket

import (
	"context"
	"errors"
	"fmt"

	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

// Broadcaster forwards committed workspace events to the workspace room.
// It implements workspace.Sink.
type Broadcaster struct {
	hub    *Hub
	onDrop func()
}

// NewBroadcaster creates a new Broadcaster. onDrop, if set, is called for
// every event that could not be queued.
func NewBroadcaster(hub *Hub, onDrop func()) *Broadcaster {
	return &Broadcaster{hub: hub, onDrop: onDrop}
}

// Publish implements workspace.Sink.
func (b *Broadcaster) Publish(ev workspace.Event) {
	msg := Message{
		Type:        MessageType(ev.Type),
		WorkspaceID: ev.WorkspaceID,
		Version:     ev.Version,
		Payload:     ev.Payload,
		Timestamp:   ev.At,
	}
	if !b.hub.SendToRoom(WorkspaceRoom(ev.WorkspaceID), msg, "") && b.onDrop != nil {
		b.onDrop()
	}
}

var errNotWorkspaceRoom = errors.New("only workspace rooms can be joined")

// MemberLookup resolves a member of a workspace.
type MemberLookup func(ctx context.Context, workspaceID, memberID string) (models.WorkspaceMember, error)

// WorkspaceGuard admits a member to workspace:<id> only while it is an
// active member of that workspace.
func WorkspaceGuard(lookup MemberLookup) RoomGuard {
	return func(memberID, room string) error {
		workspaceID, ok := WorkspaceFromRoom(room)
		if !ok {
			return errNotWorkspaceRoom
		}
		m, err := lookup(context.Background(), workspaceID, memberID)
		if err != nil {
			return fmt.Errorf("join %s: %w", room, err)
		}
		if !m.IsActive() {
			return fmt.Errorf("join %s: member %s was removed", room, memberID)
		}
		return nil
	}
}
