package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

type expirerFunc func(ctx context.Context, cutoff time.Time) int

func (f expirerFunc) ExpireIdle(ctx context.Context, cutoff time.Time) int { return f(ctx, cutoff) }

type prunerFunc func(ctx context.Context, olderThan time.Time) (int, error)

func (f prunerFunc) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int, error) {
	return f(ctx, olderThan)
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestSweepPresence(t *testing.T) {
	var gotCutoff time.Time
	expired := 0
	s := NewScheduler(Config{PresenceTimeout: 2 * time.Minute},
		expirerFunc(func(_ context.Context, cutoff time.Time) int {
			gotCutoff = cutoff
			return 3
		}),
		nil,
		func(n int) { expired += n },
		zerolog.Nop(),
	)
	s.now = func() time.Time { return fixedNow }

	assert.Equal(t, 3, s.SweepPresence(context.Background()))
	assert.Equal(t, fixedNow.Add(-2*time.Minute), gotCutoff)
	assert.Equal(t, 3, expired)
}

func TestPruneJournal(t *testing.T) {
	var gotCutoff time.Time
	s := NewScheduler(Config{JournalRetention: 24 * time.Hour},
		expirerFunc(func(context.Context, time.Time) int { return 0 }),
		prunerFunc(func(_ context.Context, olderThan time.Time) (int, error) {
			gotCutoff = olderThan
			return 0, errors.New("timeout")
		}),
		nil,
		zerolog.Nop(),
	)
	s.now = func() time.Time { return fixedNow }

	s.PruneJournal(context.Background())
	assert.Equal(t, fixedNow.Add(-24*time.Hour), gotCutoff)
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler(Config{PresenceSweep: "every tuesday"},
		expirerFunc(func(context.Context, time.Time) int { return 0 }), nil, nil, zerolog.Nop())
	assert.Error(t, s.Start())
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := NewScheduler(Config{PresenceSweep: "@every 1h", JournalPrune: "0 3 * * *"},
		expirerFunc(func(context.Context, time.Time) int { return 0 }),
		prunerFunc(func(context.Context, time.Time) (int, error) { return 0, nil }),
		nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
