// Package workspace is the single point of mutation for case workspaces.
//
// Each workspace is an aggregate guarded by its own lock: intents on one
// workspace are applied one at a time, intents on different workspaces run
// independently. Every intent validates before it mutates, so a rejected
// intent leaves no trace. Reads return deep copies taken under the lock.
package workspace

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Marga-Ghale/ora-casework/internal/apperr"
	"github.com/Marga-Ghale/ora-casework/internal/evidence"
	"github.com/Marga-Ghale/ora-casework/internal/library"
	"github.com/Marga-Ghale/ora-casework/internal/models"
	"github.com/Marga-Ghale/ora-casework/internal/presence"
	"github.com/Marga-Ghale/ora-casework/internal/thread"
	"github.com/Marga-Ghale/ora-casework/internal/types"
	"github.com/Marga-Ghale/ora-casework/internal/validate"
)

// Store owns every workspace aggregate of the process.
type Store struct {
	mu         sync.RWMutex
	workspaces map[string]*aggregate
	order      []string
	// homes maps message id to workspace id so a reply aimed at another
	// workspace can be told apart from a dangling one.
	homes sync.Map

	authz    Authorizer
	logger   zerolog.Logger
	now      func() time.Time
	newID    func() string
	eventID  func() int64
	location *time.Location
	sinks    []Sink
	recorder IntentRecorder
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the uuid entity id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithEventIDs sets the generator for event ids.
func WithEventIDs(next func() int64) Option {
	return func(s *Store) { s.eventID = next }
}

// WithLocation sets the time zone used for calendar-day grouping.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithSinks registers event sinks.
func WithSinks(sinks ...Sink) Option {
	return func(s *Store) { s.sinks = append(s.sinks, sinks...) }
}

// WithRecorder registers an intent recorder.
func WithRecorder(r IntentRecorder) Option {
	return func(s *Store) { s.recorder = r }
}

// NewStore creates an empty store. authz is required.
func NewStore(authz Authorizer, logger zerolog.Logger, opts ...Option) *Store {
	var seq int64
	var seqMu sync.Mutex
	s := &Store{
		workspaces: make(map[string]*aggregate),
		authz:      authz,
		logger:     logger.With().Str("component", "workspace.store").Logger(),
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
		eventID: func() int64 {
			seqMu.Lock()
			defer seqMu.Unlock()
			seq++
			return seq
		},
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// aggregate is the in-memory state of one workspace.
type aggregate struct {
	mu          sync.RWMutex
	ws          models.Workspace
	members     *presence.Registry
	thread      *thread.Manager
	board       *evidence.Board
	library     *library.Index
	milestones  []*models.Milestone
	version     uint64
	presenceRev uint64
	turn        turnstile
}

func newAggregate(ws models.Workspace) *aggregate {
	a := &aggregate{
		ws:      ws,
		members: presence.NewRegistry(),
		thread:  thread.NewManager(ws.ID),
		board:   evidence.NewBoard(),
		library: library.NewIndex(),
	}
	a.turn.cond = sync.NewCond(&a.turn.mu)
	return a
}

// turnstile lets event batches of one aggregate through in the order their
// tickets were drawn. Tickets are drawn under the aggregate write lock, so
// sinks see commit order without publishing under that lock.
type turnstile struct {
	mu      sync.Mutex
	cond    *sync.Cond
	next    uint64
	serving uint64
}

func (t *turnstile) draw() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.next
	t.next++
	return n
}

func (t *turnstile) wait(ticket uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.serving != ticket {
		t.cond.Wait()
	}
}

func (t *turnstile) done() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.serving++
	t.cond.Broadcast()
}

// actor resolves an active member and authorizes action for it.
func (s *Store) actor(ctx context.Context, a *aggregate, actorID string, action Action) (models.WorkspaceMember, error) {
	m, err := a.members.Resolve(actorID)
	if err != nil {
		return models.WorkspaceMember{}, err
	}
	if action != "" {
		subject := Subject{WorkspaceID: a.ws.ID, ActorID: actorID, Role: m.Role}
		if err := s.authz.Authorize(ctx, action, subject); err != nil {
			return models.WorkspaceMember{}, err
		}
	}
	return m, nil
}

func (s *Store) lookup(id string) (*aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.workspaces[id]
	if !ok {
		return nil, apperr.NotFound("workspace", id)
	}
	return a, nil
}

// mutate runs fn under the aggregate write lock, stamps the events it
// returns, and publishes them in commit order once the lock is released.
func (s *Store) mutate(intent, workspaceID string, fn func(a *aggregate, now time.Time) ([]Event, error)) error {
	a, err := s.lookup(workspaceID)
	if err != nil {
		s.observe(intent, workspaceID, err, time.Now())
		return err
	}
	return s.apply(intent, a, fn)
}

// apply is mutate for an aggregate the caller already holds a reference to.
func (s *Store) apply(intent string, a *aggregate, fn func(a *aggregate, now time.Time) ([]Event, error)) error {
	start := time.Now()
	workspaceID := a.ws.ID

	a.mu.Lock()
	now := s.now()
	events, err := fn(a, now)
	var ticket uint64
	if err == nil {
		events = s.stamp(a, events, now)
		if len(events) > 0 {
			ticket = a.turn.draw()
		}
	}
	a.mu.Unlock()

	s.observe(intent, workspaceID, err, start)
	if err != nil {
		return err
	}
	if len(events) > 0 {
		s.publish(a, ticket, events)
	}
	return nil
}

// read runs fn under the aggregate read lock.
func (s *Store) read(workspaceID string, fn func(a *aggregate) error) error {
	a, err := s.lookup(workspaceID)
	if err != nil {
		return err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return fn(a)
}

func (s *Store) stamp(a *aggregate, events []Event, now time.Time) []Event {
	if len(events) == 0 {
		return nil
	}
	content := false
	for _, ev := range events {
		if !ev.IsPresence() {
			content = true
		}
	}
	if content {
		a.version++
	} else {
		a.presenceRev++
	}
	for i := range events {
		events[i].ID = s.eventID()
		events[i].WorkspaceID = a.ws.ID
		events[i].Version = a.version
		events[i].At = now
	}
	return events
}

// publish waits for the batch's turn, then hands it to every sink. Sinks may
// read the aggregate but must not issue intents against it.
func (s *Store) publish(a *aggregate, ticket uint64, events []Event) {
	a.turn.wait(ticket)
	defer a.turn.done()
	for _, ev := range events {
		for _, sink := range s.sinks {
			sink.Publish(ev)
		}
	}
}

func (s *Store) observe(intent, workspaceID string, err error, start time.Time) {
	d := time.Since(start)
	if s.recorder != nil {
		s.recorder.RecordIntent(intent, apperr.Kind(err), d)
	}
	switch {
	case err == nil:
		s.logger.Debug().Str("intent", intent).Str("workspace_id", workspaceID).Dur("took", d).Msg("intent applied")
	case apperr.IsInvariant(err):
		s.logger.Warn().Err(err).Str("intent", intent).Str("workspace_id", workspaceID).Msg("intent violated a workspace invariant")
	default:
		s.logger.Debug().Err(err).Str("intent", intent).Str("workspace_id", workspaceID).Msg("intent rejected")
	}
}

// ============================================
// Workspace lifecycle
// ============================================

// CreateWorkspace creates a workspace with req.Owner as its owner.
func (s *Store) CreateWorkspace(ctx context.Context, req models.CreateWorkspaceRequest) (models.Workspace, error) {
	start := time.Now()
	req.Owner.Role = types.RoleOwner
	if req.Priority == "" {
		req.Priority = types.PriorityMedium
	}
	if req.Visibility == "" {
		req.Visibility = types.VisibilityPrivate
	}
	if err := validate.Struct(req); err != nil {
		s.observe("create_workspace", "", err, start)
		return models.Workspace{}, err
	}
	if err := validate.Required("name", req.Name); err != nil {
		s.observe("create_workspace", "", err, start)
		return models.Workspace{}, err
	}

	now := s.now()
	ws := models.Workspace{
		ID:           s.newID(),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Tags:         normalizeTags(req.Tags),
		Priority:     req.Priority,
		Visibility:   req.Visibility,
		LastActivity: now,
		CreatedAt:    now,
	}
	a := newAggregate(ws)
	owner, err := a.members.Add(req.Owner, now)
	if err != nil {
		s.observe("create_workspace", ws.ID, err, start)
		return models.Workspace{}, err
	}

	events := s.stamp(a, []Event{
		{Type: EventWorkspaceCreated, ActorID: owner.ID, Payload: ws.Clone()},
		{Type: EventMemberAdded, ActorID: owner.ID, Payload: owner},
	}, now)
	// Drawn before the aggregate is visible, so creation is published first.
	ticket := a.turn.draw()

	s.mu.Lock()
	s.workspaces[ws.ID] = a
	s.order = append(s.order, ws.ID)
	s.mu.Unlock()

	s.observe("create_workspace", ws.ID, nil, start)
	s.logger.Info().Str("workspace_id", ws.ID).Str("owner_id", owner.ID).Msg("workspace created")
	s.publish(a, ticket, events)
	return ws.Clone(), nil
}

// Workspace returns the workspace header.
func (s *Store) Workspace(ctx context.Context, workspaceID string) (models.Workspace, error) {
	var ws models.Workspace
	err := s.read(workspaceID, func(a *aggregate) error {
		ws = a.ws.Clone()
		return nil
	})
	return ws, err
}

// ListWorkspaces returns every workspace header in creation order.
func (s *Store) ListWorkspaces(ctx context.Context) []models.Workspace {
	aggs := s.aggregates()
	out := make([]models.Workspace, 0, len(aggs))
	for _, a := range aggs {
		a.mu.RLock()
		out = append(out, a.ws.Clone())
		a.mu.RUnlock()
	}
	return out
}

// aggregates snapshots the aggregate list so callers can lock each one
// without holding the map lock.
func (s *Store) aggregates() []*aggregate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	aggs := make([]*aggregate, 0, len(s.order))
	for _, id := range s.order {
		aggs = append(aggs, s.workspaces[id])
	}
	return aggs
}

// Count returns the number of workspaces.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}

// RecordView increments the view counter.
func (s *Store) RecordView(ctx context.Context, workspaceID string) (models.Workspace, error) {
	var ws models.Workspace
	err := s.mutate("record_view", workspaceID, func(a *aggregate, now time.Time) ([]Event, error) {
		a.ws.ViewCount++
		ws = a.ws.Clone()
		return []Event{{Type: EventWorkspaceViewed, Payload: map[string]interface{}{"viewCount": ws.ViewCount}}}, nil
	})
	return ws, err
}

// Snapshot returns a consistent deep copy of the whole aggregate.
func (s *Store) Snapshot(ctx context.Context, workspaceID string) (models.Snapshot, error) {
	var snap models.Snapshot
	err := s.read(workspaceID, func(a *aggregate) error {
		snap = models.Snapshot{
			Workspace:  a.ws.Clone(),
			Members:    a.members.All(),
			Messages:   a.thread.All(),
			Evidence:   a.board.All(),
			Documents:  a.library.All(),
			Milestones: cloneMilestones(a.milestones),
			Versions:   models.Versions{Version: a.version, PresenceRevision: a.presenceRev},
		}
		return nil
	})
	return snap, err
}

// Versions returns the optimistic counters of a workspace.
func (s *Store) Versions(ctx context.Context, workspaceID string) (models.Versions, error) {
	var v models.Versions
	err := s.read(workspaceID, func(a *aggregate) error {
		v = models.Versions{Version: a.version, PresenceRevision: a.presenceRev}
		return nil
	})
	return v, err
}

func normalizeTags(tags []string) []string {
	out := []string{}
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" && !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}

func touchActivity(a *aggregate, at time.Time) {
	if at.After(a.ws.LastActivity) {
		a.ws.LastActivity = at
	}
}
