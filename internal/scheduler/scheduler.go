// Package scheduler runs unattended collections on a cron schedule, so
// the corpus keeps growing without the operator opening the dashboard.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/akshara-labs/akshara/internal/scraping"
	"github.com/akshara-labs/akshara/pkg/corpus"
	"github.com/akshara-labs/akshara/pkg/logging"
	pipecfg "github.com/akshara-labs/akshara/pkg/pipeline"
)

// Scheduler triggers collection runs over the stored URL list on a
// cron expression, optionally cleaning each fresh raw artifact.
type Scheduler struct {
	cron          *cron.Cron
	service       *scraping.Service
	cfg           *pipecfg.SchedulerConfig
	collectionCfg *corpus.CollectionConfig
}

// New creates a scheduler. Nothing runs until Start.
func New(service *scraping.Service, cfg *pipecfg.SchedulerConfig, collectionCfg *corpus.CollectionConfig) *Scheduler {
	return &Scheduler{
		cron:          cron.New(),
		service:       service,
		cfg:           cfg,
		collectionCfg: collectionCfg,
	}
}

// Start registers the schedule and starts the cron loop. A disabled
// config is a no-op.
func (s *Scheduler) Start() error {
	if s.cfg == nil || !s.cfg.Enabled {
		logger := logging.GetLogger("scheduler")
		logger.Info().Msg("Scheduler disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.runOnce); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.cfg.Schedule, err)
	}
	s.cron.Start()
	logger := logging.GetLogger("scheduler")
	logger.Info().
		Str("schedule", s.cfg.Schedule).
		Bool("clean_after_collect", s.cfg.CleanAfterCollect).
		Msg("Scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger := logging.GetLogger("scheduler")
	logger.Info().Msg("Scheduler stopped")
}

func (s *Scheduler) runOnce() {
	logger := logging.GetLogger("scheduler")
	ctx := context.Background()

	run, err := s.service.CollectStored(ctx, s.collectionCfg)
	if err != nil {
		logger.Error().Err(err).Msg("Scheduled collection failed")
		return
	}
	if run == nil {
		logger.Info().Msg("Scheduled collection skipped, URL list is empty")
		return
	}
	logger.Info().
		Str("raw", run.RawArtifact).
		Int("successful", run.Metadata.SuccessfulURLs).
		Int("failed", run.Metadata.FailedURLs).
		Msg("Scheduled collection completed")

	if !s.cfg.CleanAfterCollect {
		return
	}
	cleaning, err := s.service.Clean(ctx, run.RawArtifact, s.collectionCfg)
	if err != nil {
		logger.Error().Err(err).Str("raw", run.RawArtifact).Msg("Scheduled cleaning failed")
		return
	}
	logger.Info().
		Str("clean", cleaning.CleanArtifact).
		Int("final_lines", cleaning.Stats.FinalLines).
		Msg("Scheduled cleaning completed")
}
