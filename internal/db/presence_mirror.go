package db

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/workspace"
)

// PresenceCache stores presence records for other processes to read.
type PresenceCache interface {
	SetPresence(ctx context.Context, workspaceID string, member models.WorkspaceMember, ttl time.Duration) error
}

// PresenceMirror copies presence changes to a PresenceCache. Only
// presence_changed and member_removed events are queued; the rest are
// ignored. It implements workspace.Sink.
type PresenceMirror struct {
	cache  PresenceCache
	ttl    time.Duration
	queue  chan workspace.Event
	onDrop func(n int)
	logger zerolog.Logger
}

func NewPresenceMirror(cache PresenceCache, ttl time.Duration, buffer int, logger zerolog.Logger, onDrop func(n int)) *PresenceMirror {
	if buffer <= 0 {
		buffer = 1
	}
	return &PresenceMirror{
		cache:  cache,
		ttl:    ttl,
		queue:  make(chan workspace.Event, buffer),
		onDrop: onDrop,
		logger: logger.With().Str("component", "presence_mirror").Logger(),
	}
}

// Publish implements workspace.Sink.
func (p *PresenceMirror) Publish(ev workspace.Event) {
	if ev.Type != workspace.EventPresenceChanged && ev.Type != workspace.EventMemberRemoved {
		return
	}
	select {
	case p.queue <- ev:
	default:
		p.dropped(1)
	}
}

// Run writes queued presence records until ctx is cancelled.
func (p *PresenceMirror) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-p.queue:
			p.write(ctx, ev)
		}
	}
}

func (p *PresenceMirror) write(ctx context.Context, ev workspace.Event) {
	member, ok := ev.Payload.(models.WorkspaceMember)
	if !ok {
		p.logger.Warn().Str("type", string(ev.Type)).Msg("unexpected presence payload")
		return
	}
	// Removed members are mirrored offline.
	if !member.IsActive() {
		member.IsOnline = false
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.cache.SetPresence(ctx, ev.WorkspaceID, member, p.ttl); err != nil {
		p.logger.Error().Err(err).
			Str("workspace_id", ev.WorkspaceID).
			Str("member_id", member.ID).
			Msg("presence mirror write failed")
		p.dropped(1)
	}
}

func (p *PresenceMirror) dropped(n int) {
	if p.onDrop != nil {
		p.onDrop(n)
	}
}
