// Package presence tracks workspace members: roles, soft removal,
// online state and activity recency, and the canonical roster order.
package presence

import (
	"slices"
	"time"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/types"
)

// Registry holds the members of one workspace in join order.
// It is not safe for concurrent use; the owning aggregate serializes access.
type Registry struct {
	members []*models.WorkspaceMember
	byID    map[string]*models.WorkspaceMember
	nextSeq int64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]*models.WorkspaceMember)}
}

// CheckAdd validates that req could be added without changing state.
func (r *Registry) CheckAdd(req models.AddMemberRequest) error {
	if existing, ok := r.byID[req.ID]; ok {
		if existing.IsActive() {
			return apperr.Validation("id", "member "+req.ID+" already belongs to the workspace")
		}
	}
	if req.Role == types.RoleOwner {
		if owner, ok := r.Owner(); ok && owner.ID != req.ID {
			return apperr.Invariant("single_owner", "workspace already has owner "+owner.ID)
		}
	}
	return nil
}

// Add registers a member, or reactivates a previously removed one.
// Reactivated members keep their join position and contribution history.
func (r *Registry) Add(req models.AddMemberRequest, at time.Time) (models.WorkspaceMember, error) {
	if err := r.CheckAdd(req); err != nil {
		return models.WorkspaceMember{}, err
	}

	if existing, ok := r.byID[req.ID]; ok {
		existing.DisplayName = req.DisplayName
		existing.Role = req.Role
		existing.Status = types.MemberActive
		existing.ExpertiseTags = slices.Clone(req.ExpertiseTags)
		existing.LastActiveAt = latest(existing.LastActiveAt, at)
		return existing.Clone(), nil
	}

	m := &models.WorkspaceMember{
		ID:            req.ID,
		DisplayName:   req.DisplayName,
		Role:          req.Role,
		Status:        types.MemberActive,
		LastActiveAt:  at,
		JoinedAt:      at,
		ExpertiseTags: slices.Clone(req.ExpertiseTags),
		Seq:           r.nextSeq,
	}
	r.nextSeq++
	r.members = append(r.members, m)
	r.byID[m.ID] = m
	return m.Clone(), nil
}

// Get returns a member regardless of status, for historical authorship.
func (r *Registry) Get(id string) (models.WorkspaceMember, bool) {
	m, ok := r.byID[id]
	if !ok {
		return models.WorkspaceMember{}, false
	}
	return m.Clone(), true
}

// Resolve returns the active member with id, or a NotFoundError.
// Removed members cannot issue new intents.
func (r *Registry) Resolve(id string) (models.WorkspaceMember, error) {
	m, ok := r.byID[id]
	if !ok || !m.IsActive() {
		return models.WorkspaceMember{}, apperr.NotFound("member", id)
	}
	return m.Clone(), nil
}

// Owner returns the active owner, if any.
func (r *Registry) Owner() (models.WorkspaceMember, bool) {
	for _, m := range r.members {
		if m.IsActive() && m.Role == types.RoleOwner {
			return m.Clone(), true
		}
	}
	return models.WorkspaceMember{}, false
}

// Remove soft-removes a member. The owner must transfer ownership first.
func (r *Registry) Remove(id string) (models.WorkspaceMember, error) {
	m, ok := r.byID[id]
	if !ok || !m.IsActive() {
		return models.WorkspaceMember{}, apperr.NotFound("member", id)
	}
	if m.Role == types.RoleOwner {
		return models.WorkspaceMember{}, apperr.Invariant("single_owner", "owner "+id+" must transfer ownership before leaving")
	}
	m.Status = types.MemberRemoved
	m.IsOnline = false
	return m.Clone(), nil
}

// SetRole changes a non-owner role. Ownership only moves through TransferOwnership.
func (r *Registry) SetRole(id string, role types.Role) (models.WorkspaceMember, error) {
	if !types.IsValidRole(role) {
		return models.WorkspaceMember{}, apperr.Validation("role", "unknown role "+string(role))
	}
	m, ok := r.byID[id]
	if !ok || !m.IsActive() {
		return models.WorkspaceMember{}, apperr.NotFound("member", id)
	}
	if role == types.RoleOwner {
		return models.WorkspaceMember{}, apperr.Invariant("single_owner", "use ownership transfer to promote "+id)
	}
	if m.Role == types.RoleOwner {
		return models.WorkspaceMember{}, apperr.Invariant("single_owner", "owner "+id+" cannot be demoted without a transfer")
	}
	m.Role = role
	return m.Clone(), nil
}

// TransferOwnership makes id the owner and demotes the previous owner to admin.
func (r *Registry) TransferOwnership(id string) (newOwner, previous models.WorkspaceMember, err error) {
	m, ok := r.byID[id]
	if !ok || !m.IsActive() {
		return models.WorkspaceMember{}, models.WorkspaceMember{}, apperr.NotFound("member", id)
	}
	if m.Role == types.RoleOwner {
		return m.Clone(), models.WorkspaceMember{}, nil
	}
	for _, other := range r.members {
		if other.IsActive() && other.Role == types.RoleOwner {
			other.Role = types.RoleAdmin
			previous = other.Clone()
		}
	}
	m.Role = types.RoleOwner
	return m.Clone(), previous, nil
}

// Heartbeat applies a presence signal observed at the given time.
// LastActiveAt only moves forward and stale signals cannot override newer
// ones, so repeated or reordered heartbeats converge on the same state.
// It reports whether anything observable changed.
func (r *Registry) Heartbeat(id string, online bool, at time.Time) (models.WorkspaceMember, bool) {
	m, ok := r.byID[id]
	if !ok || !m.IsActive() {
		return models.WorkspaceMember{}, false
	}
	before := *m
	// The newest signal decides the flag; on a timestamp tie offline wins,
	// which keeps the result independent of delivery order.
	if at.After(m.PresenceAt) || (at.Equal(m.PresenceAt) && !online) {
		m.IsOnline = online
		m.PresenceAt = at
	}
	m.LastActiveAt = latest(m.LastActiveAt, at)
	changed := before.IsOnline != m.IsOnline || !before.LastActiveAt.Equal(m.LastActiveAt)
	return m.Clone(), changed
}

// Touch records activity from an intent issued by the member.
func (r *Registry) Touch(id string, at time.Time) {
	if m, ok := r.byID[id]; ok {
		m.LastActiveAt = latest(m.LastActiveAt, at)
	}
}

// Credit increments the contribution count of an author.
func (r *Registry) Credit(id string) {
	if m, ok := r.byID[id]; ok {
		m.ContributionCount++
	}
}

// Stale returns ids of online members idle since before cutoff.
func (r *Registry) Stale(cutoff time.Time) []string {
	var ids []string
	for _, m := range r.members {
		if m.IsActive() && m.IsOnline && m.LastActiveAt.Before(cutoff) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Expire marks an idle member offline without refreshing LastActiveAt.
func (r *Registry) Expire(id string) (models.WorkspaceMember, bool) {
	m, ok := r.byID[id]
	if !ok || !m.IsOnline {
		return models.WorkspaceMember{}, false
	}
	m.IsOnline = false
	return m.Clone(), true
}

// All returns every member, removed ones included, in join order.
func (r *Registry) All() []models.WorkspaceMember {
	out := make([]models.WorkspaceMember, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m.Clone())
	}
	return out
}

// Roster returns active members in canonical roster order.
func (r *Registry) Roster() []models.WorkspaceMember {
	out := make([]models.WorkspaceMember, 0, len(r.members))
	for _, m := range r.members {
		if m.IsActive() {
			out = append(out, m.Clone())
		}
	}
	SortRoster(out)
	return out
}

// OnlineCount returns the number of active online members.
func (r *Registry) OnlineCount() int {
	n := 0
	for _, m := range r.members {
		if m.IsActive() && m.IsOnline {
			n++
		}
	}
	return n
}

func latest(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
