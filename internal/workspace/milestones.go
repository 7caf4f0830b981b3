package workspace

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/validate"
)

// AddMilestone appends a milestone to the workspace plan.
func (s *Store) AddMilestone(ctx context.Context, workspaceID, actorID string, req models.CreateMilestoneRequest) (models.Milestone, error) {
	var out models.Milestone
	err := s.mutate("add_milestone", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		if err := validate.Required("title", req.Title); err != nil {
			return nil, err
		}
		if err := validate.Struct(req); err != nil {
			return nil, err
		}
		if _, err := s.actor(ctx, a, actorID, ""); err != nil {
			return nil, err
		}
		m := models.Milestone{
			ID:    s.newID(),
			Title: strings.TrimSpace(req.Title),
			DueAt: req.DueAt,
		}.Clone()
		a.milestones = append(a.milestones, &m)
		a.members.Touch(actorID, now)
		touchActivity(a, now)
		out = m.Clone()
		return []Event{{Type: EventMilestoneAdded, ActorID: actorID, Payload: m.Clone()}}, nil
	})
	return out, err
}

// CompleteMilestone sets the completion flag. Setting the current value is
// a no-op.
func (s *Store) CompleteMilestone(ctx context.Context, workspaceID, actorID, milestoneID string, completed bool) (models.Milestone, error) {
	var out models.Milestone
	err := s.mutate("complete_milestone", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		if _, err := s.actor(ctx, a, actorID, ""); err != nil {
			return nil, err
		}
		m := findMilestone(a.milestones, milestoneID)
		if m == nil {
			return nil, apperr.NotFound("milestone", milestoneID)
		}
		out = m.Clone()
		if m.IsCompleted == completed {
			return nil, nil
		}
		m.IsCompleted = completed
		out = m.Clone()
		a.members.Touch(actorID, now)
		touchActivity(a, now)
		return []Event{{Type: EventMilestoneUpdated, ActorID: actorID, Payload: m.Clone()}}, nil
	})
	return out, err
}

// Milestones returns the plan in insertion order.
func (s *Store) Milestones(ctx context.Context, workspaceID string) ([]models.Milestone, error) {
	var out []models.Milestone
	err := s.read(workspaceID, func(a *aggregate) error {
		out = cloneMilestones(a.milestones)
		return nil
	})
	return out, err
}

// Progress returns completed / total milestones.
func (s *Store) Progress(ctx context.Context, workspaceID string) (models.Progress, error) {
	var out models.Progress
	err := s.read(workspaceID, func(a *aggregate) error {
		out = progressOf(a.milestones)
		return nil
	})
	return out, err
}

func progressOf(milestones []*models.Milestone) models.Progress {
	p := models.Progress{Total: len(milestones), Ratio: decimal.Zero}
	for _, m := range milestones {
		if m.IsCompleted {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Ratio = decimal.NewFromInt(int64(p.Completed)).DivRound(decimal.NewFromInt(int64(p.Total)), 4)
	}
	return p
}

func findMilestone(milestones []*models.Milestone, id string) *models.Milestone {
	for _, m := range milestones {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func cloneMilestones(in []*models.Milestone) []models.Milestone {
	out := make([]models.Milestone, 0, len(in))
	for _, m := range in {
		out = append(out, m.Clone())
	}
	return out
}
