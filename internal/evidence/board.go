// Package evidence maintains evidence items, their verification lifecycle
// and the cross-reference graph between them.
//
// Connections are stored on the item where the link was made and are
// traversed in both directions. They are informational: filtering and
// ordering never look at them.
package evidence

import (
	"slices"
	"strings"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/types"
)

// Board holds the evidence of one workspace in insertion order.
type Board struct {
	items []*models.Evidence
	byID  map[string]*models.Evidence
}

func NewBoard() *Board {
	return &Board{byID: make(map[string]*models.Evidence)}
}

// CheckConnections validates outgoing links for a new or existing item.
func (b *Board) CheckConnections(fromID string, targets []string) error {
	for _, target := range targets {
		if target == fromID {
			return apperr.Invariant("evidence_no_self_loop", "evidence "+fromID+" cannot connect to itself")
		}
		if _, ok := b.byID[target]; !ok {
			return apperr.NotFound("evidence", target)
		}
	}
	return nil
}

// Add stores a new item. Whatever status the caller set, the item enters
// the board as pending.
func (b *Board) Add(item models.Evidence) (models.Evidence, error) {
	if _, dup := b.byID[item.ID]; dup {
		return models.Evidence{}, apperr.Invariant("evidence_id_unique", "duplicate evidence id "+item.ID)
	}
	if err := b.CheckConnections(item.ID, item.Connections); err != nil {
		return models.Evidence{}, err
	}

	stored := item.Clone()
	stored.VerificationStatus = types.StatusPending
	stored.Connections = dedupe(stored.Connections)
	b.items = append(b.items, &stored)
	b.byID[stored.ID] = &stored
	return stored.Clone(), nil
}

func (b *Board) Get(id string) (models.Evidence, error) {
	e, ok := b.byID[id]
	if !ok {
		return models.Evidence{}, apperr.NotFound("evidence", id)
	}
	return e.Clone(), nil
}

// SetStatus moves an item through the verification lifecycle. It reports
// whether the stored status changed; setting the current status is a no-op.
func (b *Board) SetStatus(id string, status types.VerificationStatus) (models.Evidence, bool, error) {
	e, ok := b.byID[id]
	if !ok {
		return models.Evidence{}, false, apperr.NotFound("evidence", id)
	}
	if err := CheckTransition(e.VerificationStatus, status); err != nil {
		return models.Evidence{}, false, err
	}
	if e.VerificationStatus == status {
		return e.Clone(), false, nil
	}
	e.VerificationStatus = status
	return e.Clone(), true, nil
}

// Connect links from → to. Linking an already linked pair, in either
// direction, changes nothing and reports false.
func (b *Board) Connect(from, to string) (bool, error) {
	src, ok := b.byID[from]
	if !ok {
		return false, apperr.NotFound("evidence", from)
	}
	if err := b.CheckConnections(from, []string{to}); err != nil {
		return false, err
	}
	if b.linked(from, to) {
		return false, nil
	}
	src.Connections = append(src.Connections, to)
	return true, nil
}

// Disconnect removes the link between a and b whichever side stores it.
func (b *Board) Disconnect(a, c string) (bool, error) {
	for _, id := range []string{a, c} {
		if _, ok := b.byID[id]; !ok {
			return false, apperr.NotFound("evidence", id)
		}
	}
	removed := false
	for _, pair := range [][2]string{{a, c}, {c, a}} {
		src := b.byID[pair[0]]
		before := len(src.Connections)
		src.Connections = slices.DeleteFunc(src.Connections, func(id string) bool { return id == pair[1] })
		removed = removed || len(src.Connections) != before
	}
	return removed, nil
}

// Remove hard-deletes an item and drops every link pointing at it.
func (b *Board) Remove(id string) (models.Evidence, error) {
	e, ok := b.byID[id]
	if !ok {
		return models.Evidence{}, apperr.NotFound("evidence", id)
	}
	delete(b.byID, id)
	b.items = slices.DeleteFunc(b.items, func(candidate *models.Evidence) bool { return candidate.ID == id })
	for _, other := range b.items {
		other.Connections = slices.DeleteFunc(other.Connections, func(target string) bool { return target == id })
	}
	return e.Clone(), nil
}

// Neighbors returns items linked to id in either direction, in board order.
func (b *Board) Neighbors(id string) ([]models.Evidence, error) {
	if _, ok := b.byID[id]; !ok {
		return nil, apperr.NotFound("evidence", id)
	}
	adj := b.adjacency()
	out := []models.Evidence{}
	for _, e := range b.items {
		if adj[id][e.ID] {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

// Related returns every item reachable from id within depth hops, treating
// links as undirected, in board order. depth <= 0 means unbounded.
func (b *Board) Related(id string, depth int) ([]models.Evidence, error) {
	if _, ok := b.byID[id]; !ok {
		return nil, apperr.NotFound("evidence", id)
	}
	adj := b.adjacency()
	dist := map[string]int{id: 0}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if depth > 0 && dist[cur] >= depth {
			continue
		}
		for next := range adj[cur] {
			if _, seen := dist[next]; !seen {
				dist[next] = dist[cur] + 1
				queue = append(queue, next)
			}
		}
	}

	out := []models.Evidence{}
	for _, e := range b.items {
		if _, ok := dist[e.ID]; ok && e.ID != id {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

// Filter returns items matching every set criterion, in board order.
func (b *Board) Filter(f models.EvidenceFilter) []models.Evidence {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := []models.Evidence{}
	for _, e := range b.items {
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.Status != "" && e.VerificationStatus != f.Status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(e.Title), q) &&
			!strings.Contains(strings.ToLower(e.Description), q) {
			continue
		}
		out = append(out, e.Clone())
	}
	return out
}

// All returns every item in board order.
func (b *Board) All() []models.Evidence {
	return b.Filter(models.EvidenceFilter{})
}

// Stats counts items per status.
func (b *Board) Stats() models.EvidenceStats {
	var s models.EvidenceStats
	for _, e := range b.items {
		s.Total++
		switch e.VerificationStatus {
		case types.StatusPending:
			s.Pending++
		case types.StatusVerified:
			s.Verified++
		case types.StatusDisputed:
			s.Disputed++
		}
	}
	return s
}

func (b *Board) linked(a, c string) bool {
	return slices.Contains(b.byID[a].Connections, c) || slices.Contains(b.byID[c].Connections, a)
}

func (b *Board) adjacency() map[string]map[string]bool {
	adj := make(map[string]map[string]bool, len(b.items))
	link := func(x, y string) {
		if adj[x] == nil {
			adj[x] = make(map[string]bool)
		}
		adj[x][y] = true
	}
	for _, e := range b.items {
		for _, target := range e.Connections {
			if _, ok := b.byID[target]; !ok {
				continue
			}
			link(e.ID, target)
			link(target, e.ID)
		}
	}
	return adj
}

func dedupe(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
