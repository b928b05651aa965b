package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"tradelog/api/internal/storage"
)

// Scheduler runs the nightly retention sweep over archived trade-import
// files.
type Scheduler struct {
	cron      *cron.Cron
	store     *storage.ObjectStore
	retention time.Duration
	log       zerolog.Logger
}

func NewScheduler(store *storage.ObjectStore, retention time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithSeconds()),
		store:     store,
		retention: retention,
		log:       log,
	}
}

func (s *Scheduler) Start() error {
	if s.store == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 0 * * *", s.sweepImports); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) sweepImports() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-s.retention)
	removed, err := s.store.RemoveOlderThan(ctx, "imports/", cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("import archive sweep failed")
		return
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("import archives pruned")
	}
}
