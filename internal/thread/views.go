package thread

import (
	"cmp"
	"slices"
	"time"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/models"
)

const dayLayout = "2006-01-02"

// GroupByDay partitions messages by calendar day in loc. Days are returned
// oldest first; inside a day messages keep append order even when their
// timestamps collide.
func GroupByDay(messages []models.WorkspaceMessage, loc *time.Location) []models.DayGroup {
	if loc == nil {
		loc = time.UTC
	}
	ordered := slices.Clone(messages)
	slices.SortStableFunc(ordered, func(a, b models.WorkspaceMessage) int {
		return cmp.Compare(a.Seq, b.Seq)
	})

	groups := []models.DayGroup{}
	index := make(map[string]int)
	for _, msg := range ordered {
		local := msg.CreatedAt.In(loc)
		key := local.Format(dayLayout)
		i, ok := index[key]
		if !ok {
			y, mo, d := local.Date()
			groups = append(groups, models.DayGroup{
				Day:  key,
				Date: time.Date(y, mo, d, 0, 0, 0, 0, loc),
			})
			i = len(groups) - 1
			index[key] = i
		}
		groups[i].Messages = append(groups[i].Messages, msg)
	}

	slices.SortStableFunc(groups, func(a, b models.DayGroup) int {
		return a.Date.Compare(b.Date)
	})
	return groups
}

// GroupByDay groups the manager's messages.
func (m *Manager) GroupByDay(loc *time.Location) []models.DayGroup {
	return GroupByDay(m.All(), loc)
}

// ReplyChain returns the ancestry of id, root first and id last. The
// id→message index is built once for the walk.
func (m *Manager) ReplyChain(id string) ([]models.WorkspaceMessage, error) {
	index := buildIndex(m.messages)
	current, ok := index[id]
	if !ok {
		return nil, apperr.NotFound("message", id)
	}

	var chain []models.WorkspaceMessage
	visited := make(map[string]bool)
	for current != nil {
		if visited[current.ID] {
			return nil, apperr.Invariant("reply_acyclic", "reply cycle at message "+current.ID)
		}
		visited[current.ID] = true
		chain = append(chain, current.Clone())
		if current.ReplyToID == nil {
			break
		}
		next, ok := index[*current.ReplyToID]
		if !ok {
			return nil, apperr.Invariant("reply_resolves", "message "+current.ID+" replies to a missing message")
		}
		current = next
	}
	slices.Reverse(chain)
	return chain, nil
}

// Replies returns the direct replies to id in append order.
func (m *Manager) Replies(id string) ([]models.WorkspaceMessage, error) {
	if _, ok := m.byID[id]; !ok {
		return nil, apperr.NotFound("message", id)
	}
	out := []models.WorkspaceMessage{}
	for _, msg := range m.messages {
		if msg.ReplyToID != nil && *msg.ReplyToID == id {
			out = append(out, msg.Clone())
		}
	}
	return out, nil
}

func buildIndex(messages []*models.WorkspaceMessage) map[string]*models.WorkspaceMessage {
	index := make(map[string]*models.WorkspaceMessage, len(messages))
	for _, msg := range messages {
		index[msg.ID] = msg
	}
	return index
}
