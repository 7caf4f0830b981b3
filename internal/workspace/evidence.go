package workspace

import (
	"context"
	"strings"
	"time"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/types"
	"github.com/Marga-Ghale/ora-casework/internal/validate"
)

// AddEvidence records a new evidence item. It always starts pending.
func (s *Store) AddEvidence(ctx context.Context, workspaceID string, req models.CreateEvidenceRequest) (models.Evidence, error) {
	var out models.Evidence
	err := s.mutate("add_evidence", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		if err := validate.Required("title", req.Title); err != nil {
			return nil, err
		}
		if err := validate.Struct(req); err != nil {
			return nil, err
		}
		if _, err := s.actor(ctx, a, req.AddedBy, ""); err != nil {
			return nil, err
		}

		id := s.newID()
		if err := a.board.CheckConnections(id, req.Connections); err != nil {
			return nil, err
		}
		ev, err := a.board.Add(models.Evidence{
			ID:          id,
			WorkspaceID: a.ws.ID,
			Title:       strings.TrimSpace(req.Title),
			Description: req.Description,
			Type:        req.Type,
			Source:      req.Source,
			SourceURL:   req.SourceURL,
			Tags:        normalizeTags(req.Tags),
			AddedBy:     req.AddedBy,
			AddedAt:     now,
			Connections: req.Connections,
		})
		if err != nil {
			return nil, err
		}
		a.members.Credit(req.AddedBy)
		a.members.Touch(req.AddedBy, now)
		touchActivity(a, now)
		out = ev
		return []Event{{Type: EventEvidenceAdded, ActorID: req.AddedBy, Payload: ev.Clone()}}, nil
	})
	return out, err
}

// SetEvidenceStatus moves an item through the verification lifecycle.
// Setting the current status succeeds without producing an event.
func (s *Store) SetEvidenceStatus(ctx context.Context, workspaceID, actorID, evidenceID string, status types.VerificationStatus) (models.Evidence, error) {
	var out models.Evidence
	err := s.mutate("set_evidence_status", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		if !types.IsValidVerificationStatus(status) {
			return nil, apperr.Validation("status", "unknown verification status "+string(status))
		}
		if _, err := s.actor(ctx, a, actorID, ActionVerifyEvidence); err != nil {
			return nil, err
		}
		ev, changed, err := a.board.SetStatus(evidenceID, status)
		if err != nil {
			return nil, err
		}
		out = ev
		if !changed {
			return nil, nil
		}
		a.members.Touch(actorID, now)
		touchActivity(a, now)
		return []Event{{Type: EventEvidenceStatusChanged, ActorID: actorID, Payload: ev.Clone()}}, nil
	})
	return out, err
}

// ConnectEvidence links two items. Linking an already linked pair is a no-op.
func (s *Store) ConnectEvidence(ctx context.Context, workspaceID, actorID, fromID, toID string) (models.Evidence, error) {
	var out models.Evidence
	err := s.mutate("connect_evidence", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		if _, err := s.actor(ctx, a, actorID, ""); err != nil {
			return nil, err
		}
		added, err := a.board.Connect(fromID, toID)
		if err != nil {
			return nil, err
		}
		out, _ = a.board.Get(fromID)
		if !added {
			return nil, nil
		}
		a.members.Touch(actorID, now)
		touchActivity(a, now)
		return []Event{{Type: EventEvidenceConnected, ActorID: actorID, Payload: linkPayload(fromID, toID)}}, nil
	})
	return out, err
}

// DisconnectEvidence removes the link between two items, whichever side
// stores it.
func (s *Store) DisconnectEvidence(ctx context.Context, workspaceID, actorID, fromID, toID string) error {
	return s.mutate("disconnect_evidence", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		if _, err := s.actor(ctx, a, actorID, ""); err != nil {
			return nil, err
		}
		removed, err := a.board.Disconnect(fromID, toID)
		if err != nil || !removed {
			return nil, err
		}
		a.members.Touch(actorID, now)
		touchActivity(a, now)
		return []Event{{Type: EventEvidenceDisconnected, ActorID: actorID, Payload: linkPayload(fromID, toID)}}, nil
	})
}

// DeleteEvidence hard-deletes an item and every link pointing at it.
func (s *Store) DeleteEvidence(ctx context.Context, workspaceID, actorID, evidenceID string) error {
	return s.mutate("delete_evidence", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		if _, err := s.actor(ctx, a, actorID, ActionDeleteEvidence); err != nil {
			return nil, err
		}
		ev, err := a.board.Remove(evidenceID)
		if err != nil {
			return nil, err
		}
		touchActivity(a, now)
		return []Event{{Type: EventEvidenceDeleted, ActorID: actorID, Payload: ev}}, nil
	})
}

// FilteredEvidence returns items matching every criterion set in f.
func (s *Store) FilteredEvidence(ctx context.Context, workspaceID string, f models.EvidenceFilter) ([]models.Evidence, error) {
	if f.Type != "" && !types.IsValidEvidenceType(f.Type) {
		return nil, apperr.Validation("type", "unknown evidence type "+string(f.Type))
	}
	if f.Status != "" && !types.IsValidVerificationStatus(f.Status) {
		return nil, apperr.Validation("status", "unknown verification status "+string(f.Status))
	}
	var out []models.Evidence
	err := s.read(workspaceID, func(a *aggregate) error {
		out = a.board.Filter(f)
		return nil
	})
	return out, err
}

// Evidence returns one item.
func (s *Store) Evidence(ctx context.Context, workspaceID, evidenceID string) (models.Evidence, error) {
	var out models.Evidence
	err := s.read(workspaceID, func(a *aggregate) error {
		var err error
		out, err = a.board.Get(evidenceID)
		return err
	})
	return out, err
}

// EvidenceNeighbors returns items linked to evidenceID directly, whichever
// side stored the link.
func (s *Store) EvidenceNeighbors(ctx context.Context, workspaceID, evidenceID string) ([]models.Evidence, error) {
	var out []models.Evidence
	err := s.read(workspaceID, func(a *aggregate) error {
		var err error
		out, err = a.board.Neighbors(evidenceID)
		return err
	})
	return out, err
}

// RelatedEvidence returns items reachable within depth links. depth <= 0
// walks the whole connected component.
func (s *Store) RelatedEvidence(ctx context.Context, workspaceID, evidenceID string, depth int) ([]models.Evidence, error) {
	var out []models.Evidence
	err := s.read(workspaceID, func(a *aggregate) error {
		var err error
		out, err = a.board.Related(evidenceID, depth)
		return err
	})
	return out, err
}

// EvidenceStats counts items per verification status.
func (s *Store) EvidenceStats(ctx context.Context, workspaceID string) (models.EvidenceStats, error) {
	var out models.EvidenceStats
	err := s.read(workspaceID, func(a *aggregate) error {
		out = a.board.Stats()
		return nil
	})
	return out, err
}

func linkPayload(from, to string) map[string]string {
	return map[string]string{"from": from, "to": to}
}
