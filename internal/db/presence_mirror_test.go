package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/types"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

type memoryPresence struct {
	mu      sync.Mutex
	entries map[string]models.WorkspaceMember
	ttls    map[string]time.Duration
	fail    error
}

func newMemoryPresence() *memoryPresence {
	return &memoryPresence{
		entries: map[string]models.WorkspaceMember{},
		ttls:    map[string]time.Duration{},
	}
}

func (m *memoryPresence) SetPresence(_ context.Context, workspaceID string, member models.WorkspaceMember, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	key := presenceKey(workspaceID, member.ID)
	m.entries[key] = member
	m.ttls[key] = ttl
	return nil
}

func (m *memoryPresence) get(key string) (models.WorkspaceMember, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	member, ok := m.entries[key]
	return member, ok
}

func TestPresenceMirror_WritesPresenceOnly(t *testing.T) {
	cache := newMemoryPresence()
	mirror := NewPresenceMirror(cache, time.Minute, 8, zerolog.Nop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mirror.Run(ctx)

	mirror.Publish(workspace.Event{Type: workspace.EventMessageSent, WorkspaceID: "w1"})
	mirror.Publish(workspace.Event{
		Type:        workspace.EventPresenceChanged,
		WorkspaceID: "w1",
		Payload:     models.WorkspaceMember{ID: "u1", IsOnline: true, Status: types.MemberActive},
	})
	mirror.Publish(workspace.Event{
		Type:        workspace.EventMemberRemoved,
		WorkspaceID: "w1",
		Payload:     models.WorkspaceMember{ID: "u2", IsOnline: true, Status: types.MemberRemoved},
	})

	require.Eventually(t, func() bool {
		_, ok := cache.get("presence:w1:u2")
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	u1, ok := cache.get("presence:w1:u1")
	require.True(t, ok)
	assert.True(t, u1.IsOnline)
	assert.Equal(t, time.Minute, cache.ttls["presence:w1:u1"])

	u2, _ := cache.get("presence:w1:u2")
	assert.False(t, u2.IsOnline)
}

func TestPresenceMirror_CountsFailures(t *testing.T) {
	cache := newMemoryPresence()
	cache.fail = errors.New("READONLY")
	dropped := 0
	mirror := NewPresenceMirror(cache, time.Minute, 1, zerolog.Nop(), func(n int) { dropped += n })

	ev := workspace.Event{
		Type:        workspace.EventPresenceChanged,
		WorkspaceID: "w1",
		Payload:     models.WorkspaceMember{ID: "u1", Status: types.MemberActive},
	}
	mirror.Publish(ev)
	mirror.Publish(ev)
	assert.Equal(t, 1, dropped)

	mirror.write(context.Background(), <-mirror.queue)
	assert.Equal(t, 2, dropped)
}
