package notification

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/socket"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

// Notification types
const (
	TypeMention              = "MENTION"
	TypeReply                = "REPLY"
	TypeEvidenceReviewed     = "EVIDENCE_REVIEWED"
	TypeRoleChanged          = "ROLE_CHANGED"
	TypeOwnershipReceived    = "OWNERSHIP_RECEIVED"
	TypeAddedToWorkspace     = "ADDED_TO_WORKSPACE"
	TypeRemovedFromWorkspace = "REMOVED_FROM_WORKSPACE"
)

// Matches @member-id mentions; ids are the opaque member ids.
var mentionRegex = regexp.MustCompile(`(?:^|[^\w@])@([A-Za-z0-9._-]+)`)

// Notification is the payload of a direct notification frame.
type Notification struct {
	Type        string                 `json:"type"`
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	WorkspaceID string                 `json:"workspaceId"`
	ActorID     string                 `json:"actorId,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// Sender delivers a frame to every connection of a member.
type Sender interface {
	SendToMember(memberID string, msg socket.Message) bool
}

// MemberLookup resolves a member of a workspace, removed ones included.
type MemberLookup func(ctx context.Context, workspaceID, memberID string) (models.WorkspaceMember, error)

// MessageLookup resolves a message of a workspace.
type MessageLookup func(ctx context.Context, workspaceID, messageID string) (models.WorkspaceMessage, error)

// Service turns committed workspace events into direct notifications for
// the members they concern. It implements workspace.Sink.
type Service struct {
	sender  Sender
	members MemberLookup
	message MessageLookup
	logger  zerolog.Logger
}

func NewService(sender Sender, members MemberLookup, message MessageLookup, logger zerolog.Logger) *Service {
	return &Service{
		sender:  sender,
		members: members,
		message: message,
		logger:  logger.With().Str("component", "notification").Logger(),
	}
}

// Publish implements workspace.Sink.
func (s *Service) Publish(ev workspace.Event) {
	ctx := context.Background()
	switch ev.Type {
	case workspace.EventMessageSent:
		if msg, ok := ev.Payload.(models.WorkspaceMessage); ok {
			s.onMessage(ctx, ev, msg)
		}
	case workspace.EventEvidenceStatusChanged:
		if item, ok := ev.Payload.(models.Evidence); ok && item.AddedBy != ev.ActorID {
			s.send(ev, item.AddedBy, TypeEvidenceReviewed, "Evidence reviewed",
				fmt.Sprintf("%q is now %s", item.Title, item.VerificationStatus),
				map[string]interface{}{"evidenceId": item.ID, "status": item.VerificationStatus})
		}
	case workspace.EventMemberRoleUpdated:
		if m, ok := ev.Payload.(models.WorkspaceMember); ok && m.ID != ev.ActorID {
			s.send(ev, m.ID, TypeRoleChanged, "Role changed",
				fmt.Sprintf("Your role is now %s", m.Role),
				map[string]interface{}{"role": m.Role})
		}
	case workspace.EventOwnershipTransferred:
		if m, ok := ev.Payload.(models.WorkspaceMember); ok && m.ID != ev.ActorID {
			s.send(ev, m.ID, TypeOwnershipReceived, "Ownership transferred",
				"You are now the owner of this workspace", nil)
		}
	case workspace.EventMemberAdded:
		if m, ok := ev.Payload.(models.WorkspaceMember); ok && m.ID != ev.ActorID {
			s.send(ev, m.ID, TypeAddedToWorkspace, "Added to workspace",
				fmt.Sprintf("You joined as %s", m.Role), map[string]interface{}{"role": m.Role})
		}
	case workspace.EventMemberRemoved:
		if m, ok := ev.Payload.(models.WorkspaceMember); ok && m.ID != ev.ActorID {
			s.send(ev, m.ID, TypeRemovedFromWorkspace, "Removed from workspace",
				"You no longer have access to this workspace", nil)
		}
	}
}

// onMessage notifies the author of the replied-to message and every
// mentioned active member. Each member gets at most one notification.
func (s *Service) onMessage(ctx context.Context, ev workspace.Event, msg models.WorkspaceMessage) {
	notified := map[string]bool{msg.AuthorID: true}

	if msg.ReplyToID != nil && s.message != nil {
		parent, err := s.message(ctx, ev.WorkspaceID, *msg.ReplyToID)
		if err == nil && !notified[parent.AuthorID] {
			notified[parent.AuthorID] = true
			s.send(ev, parent.AuthorID, TypeReply, "New reply",
				preview(msg.Content), map[string]interface{}{"messageId": msg.ID, "replyToId": parent.ID})
		}
	}

	for _, id := range ParseMentions(msg.Content) {
		if notified[id] {
			continue
		}
		m, err := s.members(ctx, ev.WorkspaceID, id)
		if err != nil || !m.IsActive() {
			continue
		}
		notified[id] = true
		s.send(ev, id, TypeMention, "You were mentioned",
			preview(msg.Content), map[string]interface{}{"messageId": msg.ID})
	}
}

func (s *Service) send(ev workspace.Event, memberID, kind, title, message string, data map[string]interface{}) {
	n := Notification{
		Type:        kind,
		Title:       title,
		Message:     message,
		WorkspaceID: ev.WorkspaceID,
		ActorID:     ev.ActorID,
		Data:        data,
		CreatedAt:   ev.At,
	}
	ok := s.sender.SendToMember(memberID, socket.Message{
		Type:        socket.MessageNotification,
		WorkspaceID: ev.WorkspaceID,
		Version:     ev.Version,
		Payload:     n,
		Timestamp:   ev.At,
	})
	if !ok {
		s.logger.Warn().Str("member_id", memberID).Str("type", kind).Msg("notification dropped")
	}
}

// ParseMentions returns the distinct member ids mentioned in content, in
// order of first appearance.
func ParseMentions(content string) []string {
	var ids []string
	seen := map[string]bool{}
	for _, match := range mentionRegex.FindAllStringSubmatch(content, -1) {
		id := strings.TrimRight(match[1], "._-")
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func preview(content string) string {
	const max = 120
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "…"
}
