package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Marga-Ghale/ora-casework/internal/types"
)

// Workspace is the header of one case workspace. The collections it owns
// are held by the workspace aggregate and exposed through Snapshot.
type Workspace struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	Tags         []string         `json:"tags"`
	Priority     types.Priority   `json:"priority"`
	Visibility   types.Visibility `json:"visibility"`
	LastActivity time.Time        `json:"lastActivity"`
	ViewCount    int              `json:"viewCount"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// Clone returns a deep copy.
func (w Workspace) Clone() Workspace {
	w.Tags = cloneStrings(w.Tags)
	return w
}

// Request models
type CreateWorkspaceRequest struct {
	Name        string           `json:"name" yaml:"name" validate:"required,max=200"`
	Description string           `json:"description" yaml:"description" validate:"max=5000"`
	Tags        []string         `json:"tags" yaml:"tags" validate:"dive,required,max=64"`
	Priority    types.Priority   `json:"priority" yaml:"priority" validate:"omitempty,priority"`
	Visibility  types.Visibility `json:"visibility" yaml:"visibility" validate:"omitempty,visibility"`
	Owner       AddMemberRequest `json:"owner" yaml:"owner" validate:"required"`
}

// Milestone tracks case progress; only completion counts are derived from it.
type Milestone struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	IsCompleted bool       `json:"isCompleted"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
}

func (m Milestone) Clone() Milestone {
	if m.DueAt != nil {
		due := *m.DueAt
		m.DueAt = &due
	}
	return m
}

type CreateMilestoneRequest struct {
	Title string     `json:"title" yaml:"title" validate:"required,max=200"`
	DueAt *time.Time `json:"dueAt,omitempty" yaml:"dueAt"`
}

// Versions exposes the optimistic counters of an aggregate. Version moves on
// every content mutation, PresenceRevision only on heartbeat updates.
// Progress is the share of completed milestones. Ratio is 0 when there are
// no milestones.
type Progress struct {
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
	Ratio     decimal.Decimal `json:"ratio"`
}

// Percent returns the ratio as a percentage rounded to two places.
func (p Progress) Percent() decimal.Decimal {
	return p.Ratio.Mul(decimal.NewFromInt(100)).Round(2)
}

type Versions struct {
	Version          uint64 `json:"version"`
	PresenceRevision uint64 `json:"presenceRevision"`
}

// Snapshot is a consistent, deep-copied view of one workspace.
type Snapshot struct {
	Workspace  Workspace           `json:"workspace"`
	Members    []WorkspaceMember   `json:"members"`
	Messages   []WorkspaceMessage  `json:"messages"`
	Evidence   []Evidence          `json:"evidence"`
	Documents  []WorkspaceDocument `json:"documents"`
	Milestones []Milestone         `json:"milestones"`
	Versions   Versions            `json:"versions"`
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneStringPtr(in *string) *string {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}
