package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

// EventRecord is one journaled workspace event.
type EventRecord struct {
	ID          int64           `json:"id"`
	WorkspaceID string          `json:"workspaceId"`
	Type        string          `json:"type"`
	ActorID     string          `json:"actorId,omitempty"`
	Version     uint64          `json:"version"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Payload     json.RawMessage `json:"payload"`
}

// NewEventRecord encodes a committed event for storage.
func NewEventRecord(ev workspace.Event) (EventRecord, error) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return EventRecord{}, fmt.Errorf("encode %s payload: %w", ev.Type, err)
	}
	return EventRecord{
		ID:          ev.ID,
		WorkspaceID: ev.WorkspaceID,
		Type:        string(ev.Type),
		ActorID:     ev.ActorID,
		Version:     ev.Version,
		OccurredAt:  ev.At,
		Payload:     payload,
	}, nil
}

type EventRepository interface {
	Append(ctx context.Context, records []EventRecord) error
	FindByWorkspace(ctx context.Context, workspaceID string, afterID int64, limit int) ([]*EventRecord, error)
	DeleteOlderThan(ctx context.Context, olderThan time.Time) (int, error)
}

type pgEventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &pgEventRepository{pool: pool}
}

// Append inserts records in one round trip. Ids already stored are skipped
// so a retried batch does not duplicate rows.
func (r *pgEventRepository) Append(ctx context.Context, records []EventRecord) error {
	if len(records) == 0 {
		return nil
	}
	query := `
		INSERT INTO workspace_events (id, workspace_id, type, actor_id, version, occurred_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(query,
			rec.ID, rec.WorkspaceID, rec.Type, rec.ActorID,
			int64(rec.Version), rec.OccurredAt, []byte(rec.Payload),
		)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

func (r *pgEventRepository) FindByWorkspace(ctx context.Context, workspaceID string, afterID int64, limit int) ([]*EventRecord, error) {
	query := `
		SELECT id, workspace_id, type, actor_id, version, occurred_at, payload
		FROM workspace_events WHERE workspace_id = $1 AND id > $2
		ORDER BY id ASC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, workspaceID, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*EventRecord
	for rows.Next() {
		rec := &EventRecord{}
		var version int64
		var payload []byte
		if err := rows.Scan(
			&rec.ID, &rec.WorkspaceID, &rec.Type, &rec.ActorID,
			&version, &rec.OccurredAt, &payload,
		); err != nil {
			return nil, err
		}
		rec.Version = uint64(version)
		rec.Payload = payload
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *pgEventRepository) DeleteOlderThan(ctx context.Context, olderThan time.Time) (int, error) {
	query := `DELETE FROM workspace_events WHERE occurred_at < $1`
	result, err := r.pool.Exec(ctx, query, olderThan)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}
