package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/types"
	"github.com/Marga-Ghale/ora-casework/internal/validate"
)

// AddMember adds a member, or reactivates one that was removed earlier.
func (s *Store) AddMember(ctx context.Context, workspaceID, actorID string, req models.AddMemberRequest) (models.WorkspaceMember, error) {
	var out models.WorkspaceMember
	err := s.mutate("add_member", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		if err := validate.Struct(req); err != nil {
			return nil, err
		}
		if _, err := s.actor(ctx, a, actorID, ActionManageMembers); err != nil {
			return nil, err
		}
		m, err := a.members.Add(req, now)
		if err != nil {
			return nil, err
		}
		touchActivity(a, now)
		out = m
		return []Event{{Type: EventMemberAdded, ActorID: actorID, Payload: m.Clone()}}, nil
	})
	return out, err
}

// RemoveMember soft-removes a member. Members may always remove themselves;
// removing someone else needs the manage_members action.
func (s *Store) RemoveMember(ctx context.Context, workspaceID, actorID, memberID string) (models.WorkspaceMember, error) {
	var out models.WorkspaceMember
	err := s.mutate("remove_member", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		action := ActionManageMembers
		if actorID == memberID {
			action = ""
		}
		if _, err := s.actor(ctx, a, actorID, action); err != nil {
			return nil, err
		}
		m, err := a.members.Remove(memberID)
		if err != nil {
			return nil, err
		}
		touchActivity(a, now)
		out = m
		return []Event{{Type: EventMemberRemoved, ActorID: actorID, Payload: m.Clone()}}, nil
	})
	return out, err
}

// ChangeRole sets a non-owner role on a non-owner member.
func (s *Store) ChangeRole(ctx context.Context, workspaceID, actorID, memberID string, role types.Role) (models.WorkspaceMember, error) {
	var out models.WorkspaceMember
	err := s.mutate("change_role", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		if !types.IsValidRole(role) {
			return nil, apperr.Validation("role", "unknown role "+string(role))
		}
		if _, err := s.actor(ctx, a, actorID, ActionManageMembers); err != nil {
			return nil, err
		}
		before, _ := a.members.Get(memberID)
		m, err := a.members.SetRole(memberID, role)
		if err != nil {
			return nil, err
		}
		out = m
		if before.Role == m.Role {
			return nil, nil
		}
		return []Event{{Type: EventMemberRoleUpdated, ActorID: actorID, Payload: m.Clone()}}, nil
	})
	return out, err
}

// TransferOwnership hands the workspace to another active member. Only the
// current owner may do this; the previous owner becomes an admin.
func (s *Store) TransferOwnership(ctx context.Context, workspaceID, actorID, newOwnerID string) (models.WorkspaceMember, error) {
	var out models.WorkspaceMember
	err := s.mutate("transfer_ownership", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		actor, err := s.actor(ctx, a, actorID, "")
		if err != nil {
			return nil, err
		}
		if actor.Role != types.RoleOwner {
			return nil, fmt.Errorf("%s is not the owner of workspace %s: %w", actorID, a.ws.ID, apperr.ErrForbidden)
		}
		if _, err := a.members.Resolve(newOwnerID); err != nil {
			return nil, err
		}
		owner, previous, err := a.members.TransferOwnership(newOwnerID)
		if err != nil {
			return nil, err
		}
		out = owner
		if previous.ID == "" {
			return nil, nil
		}
		touchActivity(a, now)
		return []Event{
			{Type: EventOwnershipTransferred, ActorID: actorID, Payload: owner.Clone()},
			{Type: EventMemberRoleUpdated, ActorID: actorID, Payload: previous},
		}, nil
	})
	return out, err
}

// PresenceResult reports the member state after a heartbeat in one workspace.
type PresenceResult struct {
	WorkspaceID string                 `json:"workspaceId"`
	Member      models.WorkspaceMember `json:"member"`
	Changed     bool                   `json:"changed"`
}

// UpdatePresence applies a heartbeat to the member in every workspace where
// it is active. Content state is never touched. It returns NotFoundError when
// the member belongs to no workspace.
//
// at is when the signal was observed; zero means now. It is clamped to the
// store clock so a caller cannot push presence into the future.
func (s *Store) UpdatePresence(ctx context.Context, memberID string, online bool, at time.Time) ([]PresenceResult, error) {
	if err := validate.Required("memberId", memberID); err != nil {
		s.observe("update_presence", "", err, time.Now())
		return nil, err
	}
	var results []PresenceResult
	for _, a := range s.aggregates() {
		a.mu.RLock()
		_, err := a.members.Resolve(memberID)
		a.mu.RUnlock()
		if err != nil {
			continue
		}
		err = s.apply("update_presence", a, func(a *aggregate, now time.Time) ([]Event, error) {
			observed := at
			if observed.IsZero() || observed.After(now) {
				observed = now
			}
			m, changed := a.members.Heartbeat(memberID, online, observed)
			if m.ID == "" {
				// Removed between the check and the lock.
				return nil, nil
			}
			results = append(results, PresenceResult{WorkspaceID: a.ws.ID, Member: m, Changed: changed})
			if !changed {
				return nil, nil
			}
			return []Event{{Type: EventPresenceChanged, ActorID: memberID, Payload: m.Clone()}}, nil
		})
		if err != nil {
			return results, err
		}
	}
	if len(results) == 0 {
		return nil, apperr.NotFound("member", memberID)
	}
	return results, nil
}

// ExpireIdle marks members offline whose last activity is older than
// cutoff. It returns how many member entries went offline.
func (s *Store) ExpireIdle(ctx context.Context, cutoff time.Time) int {
	expired := 0
	for _, a := range s.aggregates() {
		a.mu.RLock()
		stale := a.members.Stale(cutoff)
		a.mu.RUnlock()
		if len(stale) == 0 {
			continue
		}
		_ = s.apply("expire_presence", a, func(a *aggregate, now time.Time) ([]Event, error) {
			var events []Event
			// Re-check under the write lock: a heartbeat may have landed.
			for _, id := range a.members.Stale(cutoff) {
				m, changed := a.members.Expire(id)
				if !changed {
					continue
				}
				expired++
				events = append(events, Event{Type: EventPresenceChanged, ActorID: id, Payload: m})
			}
			return events, nil
		})
	}
	return expired
}

// Roster returns active members in canonical roster order.
func (s *Store) Roster(ctx context.Context, workspaceID string) ([]models.WorkspaceMember, error) {
	var out []models.WorkspaceMember
	err := s.read(workspaceID, func(a *aggregate) error {
		out = a.members.Roster()
		return nil
	})
	return out, err
}

// Member returns a member, including removed ones, so historical authorship
// stays resolvable.
func (s *Store) Member(ctx context.Context, workspaceID, memberID string) (models.WorkspaceMember, error) {
	var out models.WorkspaceMember
	err := s.read(workspaceID, func(a *aggregate) error {
		m, ok := a.members.Get(memberID)
		if !ok {
			return apperr.NotFound("member", memberID)
		}
		out = m
		return nil
	})
	return out, err
}

// OnlineCount returns the number of active online members.
func (s *Store) OnlineCount(ctx context.Context, workspaceID string) (int, error) {
	var n int
	err := s.read(workspaceID, func(a *aggregate) error {
		n = a.members.OnlineCount()
		return nil
	})
	return n, err
}
