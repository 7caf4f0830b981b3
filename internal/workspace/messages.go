package workspace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/types"
	"github.com/Marga-Ghale/ora-casework/internal/validate"
)

// SendMessage appends a message to the workspace thread and credits the
// author.
func (s *Store) SendMessage(ctx context.Context, workspaceID string, req models.SendMessageRequest) (models.WorkspaceMessage, error) {
	if req.Kind == "" {
		req.Kind = types.MessageText
	}
	var out models.WorkspaceMessage
	err := s.mutate("send_message", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		if err := validate.Struct(req); err != nil {
			return nil, err
		}
		if err := validate.Required("content", req.Content); err != nil {
			return nil, err
		}
		if _, err := s.actor(ctx, a, req.AuthorID, ""); err != nil {
			return nil, err
		}

		// Timestamps never go backwards inside a thread, even if the clock does.
		createdAt := now
		if last := a.thread.LastCreatedAt(); last.After(createdAt) {
			createdAt = last
		}
		if req.ReplyToID != nil {
			if err := s.checkReply(a, *req.ReplyToID, createdAt); err != nil {
				return nil, err
			}
		}

		msg, err := a.thread.Append(models.WorkspaceMessage{
			ID:          s.newID(),
			WorkspaceID: a.ws.ID,
			AuthorID:    req.AuthorID,
			Content:     strings.TrimSpace(req.Content),
			CreatedAt:   createdAt,
			Kind:        req.Kind,
			ReplyToID:   req.ReplyToID,
		})
		if err != nil {
			return nil, err
		}
		s.homes.Store(msg.ID, a.ws.ID)
		a.members.Credit(req.AuthorID)
		a.members.Touch(req.AuthorID, createdAt)
		touchActivity(a, createdAt)
		out = msg
		return []Event{{Type: EventMessageSent, ActorID: req.AuthorID, Payload: msg.Clone()}}, nil
	})
	return out, err
}

func (s *Store) checkReply(a *aggregate, replyToID string, createdAt time.Time) error {
	err := a.thread.CheckReply(replyToID, createdAt)
	if !apperr.IsNotFound(err) {
		return err
	}
	if home, ok := s.homes.Load(replyToID); ok && home != a.ws.ID {
		return apperr.Invariant("reply_same_workspace",
			fmt.Sprintf("message %s belongs to workspace %s", replyToID, home))
	}
	return err
}

// TogglePin flips the pinned flag of a message.
func (s *Store) TogglePin(ctx context.Context, workspaceID, actorID, messageID string) (models.WorkspaceMessage, error) {
	var out models.WorkspaceMessage
	err := s.mutate("toggle_pin", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		if _, err := s.actor(ctx, a, actorID, ActionPinMessage); err != nil {
			return nil, err
		}
		msg, err := a.thread.TogglePin(messageID)
		if err != nil {
			return nil, err
		}
		a.members.Touch(actorID, now)
		touchActivity(a, now)
		out = msg
		return []Event{{Type: EventMessagePinToggled, ActorID: actorID, Payload: msg.Clone()}}, nil
	})
	return out, err
}

// Messages returns the thread in append order.
func (s *Store) Messages(ctx context.Context, workspaceID string) ([]models.WorkspaceMessage, error) {
	var out []models.WorkspaceMessage
	err := s.read(workspaceID, func(a *aggregate) error {
		out = a.thread.All()
		return nil
	})
	return out, err
}

// MessagesGroupedByDay returns the thread partitioned by calendar day in the
// store's time zone.
func (s *Store) MessagesGroupedByDay(ctx context.Context, workspaceID string) ([]models.DayGroup, error) {
	var out []models.DayGroup
	err := s.read(workspaceID, func(a *aggregate) error {
		out = a.thread.GroupByDay(s.location)
		return nil
	})
	return out, err
}

// PinnedMessages returns pinned messages in append order.
func (s *Store) PinnedMessages(ctx context.Context, workspaceID string) ([]models.WorkspaceMessage, error) {
	var out []models.WorkspaceMessage
	err := s.read(workspaceID, func(a *aggregate) error {
		out = a.thread.Pinned()
		return nil
	})
	return out, err
}

// Message returns one message.
func (s *Store) Message(ctx context.Context, workspaceID, messageID string) (models.WorkspaceMessage, error) {
	var out models.WorkspaceMessage
	err := s.read(workspaceID, func(a *aggregate) error {
		var err error
		out, err = a.thread.Get(messageID)
		return err
	})
	return out, err
}

// ReplyChain returns the ancestry of a message, root first.
func (s *Store) ReplyChain(ctx context.Context, workspaceID, messageID string) ([]models.WorkspaceMessage, error) {
	var out []models.WorkspaceMessage
	err := s.read(workspaceID, func(a *aggregate) error {
		var err error
		out, err = a.thread.ReplyChain(messageID)
		return err
	})
	return out, err
}

// Replies returns the direct replies to a message.
func (s *Store) Replies(ctx context.Context, workspaceID, messageID string) ([]models.WorkspaceMessage, error) {
	var out []models.WorkspaceMessage
	err := s.read(workspaceID, func(a *aggregate) error {
		var err error
		out, err = a.thread.Replies(messageID)
		return err
	})
	return out, err
}
