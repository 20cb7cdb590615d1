// Package scheduler runs the roster sync on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/arena/go/internal/authz"
	"github.com/mcdev12/arena/go/internal/rostersync"
)

// Syncer triggers one roster sync run
type Syncer interface {
	Trigger(ctx context.Context) (*rostersync.Result, error)
}

// Scheduler triggers the roster sync as the system principal
type Scheduler struct {
	spec   string
	syncer Syncer
	cron   *cron.Cron
}

// New creates a scheduler that runs syncer on spec (standard 5-field cron)
func New(spec string, syncer Syncer) *Scheduler {
	return &Scheduler{
		spec:   spec,
		syncer: syncer,
		cron:   cron.New(),
	}
}

// Start registers the job and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule roster sync: %w", err)
	}

	s.cron.Start()
	log.Info().Str("schedule", s.spec).Msg("Roster sync scheduled")
	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	ctx = authz.WithPrincipal(ctx, authz.System())

	result, err := s.syncer.Trigger(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Scheduled roster sync failed")
		return
	}
	log.Info().
		Bool("success", result.Success).
		Int("teams_processed", result.Summary.TeamsProcessed).
		Msg("Scheduled roster sync finished")
}
