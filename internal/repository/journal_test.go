package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

type memoryEvents struct {
	mu      sync.Mutex
	records []EventRecord
	fail    error
	// failures, when positive, fails that many appends before fail applies.
	failures int
	calls    int
}

func (m *memoryEvents) Append(_ context.Context, records []EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failures > 0 {
		m.failures--
		return errors.New("connection reset by peer")
	}
	if m.fail != nil {
		return m.fail
	}
	m.records = append(m.records, records...)
	return nil
}

func (m *memoryEvents) FindByWorkspace(_ context.Context, workspaceID string, afterID int64, limit int) ([]*EventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*EventRecord
	for i := range m.records {
		rec := m.records[i]
		if rec.WorkspaceID == workspaceID && rec.ID > afterID && len(out) < limit {
			out = append(out, &rec)
		}
	}
	return out, nil
}

func (m *memoryEvents) DeleteOlderThan(context.Context, time.Time) (int, error) { return 0, nil }

func (m *memoryEvents) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func event(id int64) workspace.Event {
	return workspace.Event{
		ID:          id,
		Type:        workspace.EventMessageSent,
		WorkspaceID: "w1",
		Version:     uint64(id),
		At:          time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Payload:     map[string]string{"content": "hello"},
	}
}

func TestNewEventRecord(t *testing.T) {
	rec, err := NewEventRecord(event(7))
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, "message_sent", rec.Type)
	assert.JSONEq(t, `{"content":"hello"}`, string(rec.Payload))

	bad := event(8)
	bad.Payload = make(chan int)
	_, err = NewEventRecord(bad)
	assert.Error(t, err)
}

func TestJournal_WritesQueuedEvents(t *testing.T) {
	repo := &memoryEvents{}
	j := NewJournal(repo, 16, zerolog.Nop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	for i := int64(1); i <= 3; i++ {
		j.Publish(event(i))
	}
	assert.Eventually(t, func() bool { return repo.Len() == 3 }, 2*time.Second, 10*time.Millisecond)

	j.Publish(event(4))
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, 4, repo.Len())

	recs, err := repo.FindByWorkspace(context.Background(), "w1", 2, 10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(3), recs[0].ID)
}

func TestJournal_CountsDrops(t *testing.T) {
	dropped := 0
	repo := &memoryEvents{fail: errors.New("connection refused")}
	j := NewJournal(repo, 2, zerolog.Nop(), func(n int) { dropped += n })

	// Queue full: the third publish is dropped immediately.
	j.Publish(event(1))
	j.Publish(event(2))
	j.Publish(event(3))
	assert.Equal(t, 1, dropped)

	// The failed write drops the two queued events.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, j.Run(ctx))
	assert.Equal(t, 3, dropped)
	assert.Zero(t, repo.Len())
}

func TestJournal_RetriesTransientFailures(t *testing.T) {
	dropped := 0
	repo := &memoryEvents{failures: 2}
	j := NewJournal(repo, 4, zerolog.Nop(), func(n int) { dropped += n })

	j.Publish(event(1))
	j.Publish(event(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, j.Run(ctx))

	assert.Equal(t, 2, repo.Len())
	assert.Equal(t, 3, repo.calls)
	assert.Zero(t, dropped)
}

func TestJournal_DoesNotRetryCancelledWrites(t *testing.T) {
	dropped := 0
	repo := &memoryEvents{fail: context.Canceled}
	j := NewJournal(repo, 4, zerolog.Nop(), func(n int) { dropped += n })

	j.Publish(event(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, j.Run(ctx))

	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 1, dropped)
}
