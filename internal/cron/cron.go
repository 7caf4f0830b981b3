package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// PresenceExpirer takes idle members offline.
type PresenceExpirer interface {
	ExpireIdle(ctx context.Context, cutoff time.Time) int
}

// JournalPruner deletes journaled events older than a cutoff.
type JournalPruner interface {
	DeleteOlderThan(ctx context.Context, olderThan time.Time) (int, error)
}

// Config holds the schedules. An empty JournalPrune disables pruning.
type Config struct {
	PresenceSweep    string
	PresenceTimeout  time.Duration
	JournalPrune     string
	JournalRetention time.Duration
}

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron      *cron.Cron
	cfg       Config
	presence  PresenceExpirer
	journal   JournalPruner
	onExpired func(n int)
	now       func() time.Time
	logger    zerolog.Logger
}

// NewScheduler creates a new scheduler. journal may be nil when the
// journal is disabled.
func NewScheduler(cfg Config, presence PresenceExpirer, journal JournalPruner, onExpired func(n int), logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		cfg:       cfg,
		presence:  presence,
		journal:   journal,
		onExpired: onExpired,
		now:       time.Now,
		logger:    logger.With().Str("component", "cron").Logger(),
	}
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.PresenceSweep, func() {
		s.logger.Debug().Msg("running presence sweep")
		s.SweepPresence(context.Background())
	}); err != nil {
		return fmt.Errorf("presence sweep schedule %q: %w", s.cfg.PresenceSweep, err)
	}

	if s.journal != nil && s.cfg.JournalPrune != "" {
		if _, err := s.cron.AddFunc(s.cfg.JournalPrune, func() {
			s.logger.Debug().Msg("running journal prune")
			s.PruneJournal(context.Background())
		}); err != nil {
			return fmt.Errorf("journal prune schedule %q: %w", s.cfg.JournalPrune, err)
		}
	}

	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// Run starts the scheduler and stops it when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.Stop()
	return nil
}

// SweepPresence marks members offline whose last activity is older than
// the presence timeout.
func (s *Scheduler) SweepPresence(ctx context.Context) int {
	cutoff := s.now().Add(-s.cfg.PresenceTimeout)
	n := s.presence.ExpireIdle(ctx, cutoff)
	if n > 0 {
		s.logger.Info().Int("members", n).Time("cutoff", cutoff).Msg("members went offline")
		if s.onExpired != nil {
			s.onExpired(n)
		}
	}
	return n
}

// PruneJournal deletes events past the retention window.
func (s *Scheduler) PruneJournal(ctx context.Context) {
	if s.journal == nil {
		return
	}
	cutoff := s.now().Add(-s.cfg.JournalRetention)
	n, err := s.journal.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("journal prune failed")
		return
	}
	s.logger.Info().Int("events", n).Time("cutoff", cutoff).Msg("journal pruned")
}
