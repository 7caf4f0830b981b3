package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

const (
	journalBatchSize    = 100
	journalFlushEvery   = 500 * time.Millisecond
	journalDrainLimit   = 5 * time.Second
	journalAttempts     = 3
	journalRetryBackoff = 100 * time.Millisecond
)

// Journal appends committed events to an EventRepository. Publish only
// enqueues; Run owns the database writes. It implements workspace.Sink.
type Journal struct {
	repo   EventRepository
	queue  chan workspace.Event
	onDrop func(n int)
	logger zerolog.Logger
}

// NewJournal creates a journal with a queue of buffer events. onDrop, if
// set, is told how many events were lost to a full queue or a failed write.
func NewJournal(repo EventRepository, buffer int, logger zerolog.Logger, onDrop func(n int)) *Journal {
	if buffer <= 0 {
		buffer = 1
	}
	return &Journal{
		repo:   repo,
		queue:  make(chan workspace.Event, buffer),
		onDrop: onDrop,
		logger: logger.With().Str("component", "journal").Logger(),
	}
}

// Publish implements workspace.Sink.
func (j *Journal) Publish(ev workspace.Event) {
	select {
	case j.queue <- ev:
	default:
		j.logger.Warn().Str("type", string(ev.Type)).Str("workspace_id", ev.WorkspaceID).Msg("journal queue full, event dropped")
		j.dropped(1)
	}
}

// Run writes queued events in batches until ctx is cancelled, then drains
// what is left.
func (j *Journal) Run(ctx context.Context) error {
	ticker := time.NewTicker(journalFlushEvery)
	defer ticker.Stop()

	batch := make([]workspace.Event, 0, journalBatchSize)
	for {
		select {
		case <-ctx.Done():
			j.drain(batch)
			return nil
		case ev := <-j.queue:
			batch = append(batch, ev)
			if len(batch) >= journalBatchSize {
				j.flush(ctx, batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				j.flush(ctx, batch)
				batch = batch[:0]
			}
		}
	}
}

func (j *Journal) drain(batch []workspace.Event) {
loop:
	for {
		select {
		case ev := <-j.queue:
			batch = append(batch, ev)
		default:
			break loop
		}
	}
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), journalDrainLimit)
	defer cancel()
	j.flush(ctx, batch)
}

func (j *Journal) flush(ctx context.Context, batch []workspace.Event) {
	records := make([]EventRecord, 0, len(batch))
	for _, ev := range batch {
		rec, err := NewEventRecord(ev)
		if err != nil {
			j.logger.Error().Err(err).Int64("event_id", ev.ID).Msg("skipping unencodable event")
			j.dropped(1)
			continue
		}
		records = append(records, rec)
	}

	if err := j.append(ctx, records); err != nil {
		j.logger.Error().Err(err).Int("events", len(records)).Msg("journal write failed")
		j.dropped(len(records))
		return
	}
	j.logger.Debug().Int("events", len(records)).Msg("journal batch written")
}

// append retries transient write failures with a linear backoff. The insert
// ignores ids already written, so a retried batch never duplicates rows.
func (j *Journal) append(ctx context.Context, records []EventRecord) error {
	var err error
	for attempt := 1; attempt <= journalAttempts; attempt++ {
		if err = j.repo.Append(ctx, records); err == nil || !apperr.IsRetryable(err) {
			return err
		}
		if attempt == journalAttempts {
			break
		}
		j.logger.Warn().Err(err).Int("attempt", attempt).Msg("journal write failed, retrying")
		select {
		case <-ctx.Done():
			return err
		case <-time.After(time.Duration(attempt) * journalRetryBackoff):
		}
	}
	return err
}

func (j *Journal) dropped(n int) {
	if j.onDrop != nil {
		j.onDrop(n)
	}
}
