package workspace

import (
	"time"
)

// EventType names a committed change.
type EventType string

const (
	EventWorkspaceCreated      EventType = "workspace_created"
	EventWorkspaceViewed       EventType = "workspace_viewed"
	EventMemberAdded           EventType = "member_added"
	EventMemberRemoved         EventType = "member_removed"
	EventMemberRoleUpdated     EventType = "member_role_updated"
	EventOwnershipTransferred  EventType = "ownership_transferred"
	EventPresenceChanged       EventType = "presence_changed"
	EventMessageSent           EventType = "message_sent"
	EventMessagePinToggled     EventType = "message_pin_toggled"
	EventEvidenceAdded         EventType = "evidence_added"
	EventEvidenceStatusChanged EventType = "evidence_status_changed"
	EventEvidenceConnected     EventType = "evidence_connected"
	EventEvidenceDisconnected  EventType = "evidence_disconnected"
	EventEvidenceDeleted       EventType = "evidence_deleted"
	EventDocumentUploaded      EventType = "document_uploaded"
	EventDocumentDeleted       EventType = "document_deleted"
	EventDocumentDownloaded    EventType = "document_downloaded"
	EventMilestoneAdded        EventType = "milestone_added"
	EventMilestoneUpdated      EventType = "milestone_updated"
)

// Event describes one committed mutation. Payload holds a copy of the
// affected entity and is safe to retain.
type Event struct {
	ID          int64       `json:"id"`
	Type        EventType   `json:"type"`
	WorkspaceID string      `json:"workspaceId"`
	ActorID     string      `json:"actorId,omitempty"`
	Version     uint64      `json:"version"`
	At          time.Time   `json:"at"`
	Payload     interface{} `json:"payload"`
}

// IsPresence reports whether the event only concerns member presence.
func (e Event) IsPresence() bool {
	return e.Type == EventPresenceChanged
}

// Sink receives events after the aggregate lock is released, in commit
// order per workspace. Implementations must not block.
type Sink interface {
	Publish(ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev Event)

func (f SinkFunc) Publish(ev Event) { f(ev) }

// IntentRecorder observes the outcome of every intent.
type IntentRecorder interface {
	RecordIntent(intent, result string, d time.Duration)
}
