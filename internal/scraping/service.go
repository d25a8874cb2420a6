package scraping

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	events "github.com/akshara-labs/akshara/internal/pipeline"
	"github.com/akshara-labs/akshara/internal/processing"
	"github.com/akshara-labs/akshara/internal/storage"
	"github.com/akshara-labs/akshara/pkg/corpus"
)

// CollectionRun is one finished collection with its artifacts.
type CollectionRun struct {
	ID          string                     `json:"id"`
	StartedAt   time.Time                  `json:"started_at"`
	CompletedAt time.Time                  `json:"completed_at"`
	RawArtifact string                     `json:"raw_artifact"`
	RawPath     string                     `json:"raw_path"`
	Metadata    *corpus.CollectionMetadata `json:"metadata"`
}

// CleaningRun is one finished cleaning with its artifacts.
type CleaningRun struct {
	ID            string                `json:"id"`
	CompletedAt   time.Time             `json:"completed_at"`
	RawArtifact   string                `json:"raw_artifact"`
	CleanArtifact string                `json:"clean_artifact"`
	CleanPath     string                `json:"clean_path"`
	Stats         *corpus.CleaningStats `json:"stats"`
}

// Service ties collector and cleaner together for the API, CLI, and
// scheduler, and remembers the last run of each so the dashboard can
// redisplay it. The core stages themselves stay stateless.
type Service struct {
	collector *Collector
	cleaner   *processing.CorpusCleaner
	store     storage.ArtifactStore
	bus       *events.EventBus

	mu             sync.RWMutex
	lastCollection *CollectionRun
	lastCleaning   *CleaningRun
}

// NewService creates the pipeline service. The event bus is optional.
func NewService(collector *Collector, cleaner *processing.CorpusCleaner, store storage.ArtifactStore, bus *events.EventBus) *Service {
	return &Service{
		collector: collector,
		cleaner:   cleaner,
		store:     store,
		bus:       bus,
	}
}

// Collect runs one collection over the given URLs. An empty list
// returns (nil, nil): no artifacts, no error.
func (s *Service) Collect(ctx context.Context, urls []string, cfg *corpus.CollectionConfig) (*CollectionRun, error) {
	runID := uuid.New().String()
	started := time.Now()

	rawPath, metadata, err := s.collector.collect(ctx, runID, urls, cfg)
	if err != nil {
		return nil, err
	}
	if metadata == nil {
		return nil, nil
	}

	run := &CollectionRun{
		ID:          runID,
		StartedAt:   started,
		CompletedAt: time.Now(),
		RawArtifact: filepath.Base(rawPath),
		RawPath:     rawPath,
		Metadata:    metadata,
	}
	s.mu.Lock()
	s.lastCollection = run
	s.mu.Unlock()
	return run, nil
}

// CollectStored runs a collection over the saved URL list.
func (s *Service) CollectStored(ctx context.Context, cfg *corpus.CollectionConfig) (*CollectionRun, error) {
	content, err := s.store.LoadURLList(ctx)
	if err != nil {
		return nil, err
	}
	return s.Collect(ctx, corpus.ParseURLList(content), cfg)
}

// Clean runs the cleaner over one raw artifact by name.
func (s *Service) Clean(ctx context.Context, rawName string, cfg *corpus.CollectionConfig) (*CleaningRun, error) {
	runID := uuid.New().String()
	s.publish(events.NewEvent(events.EventCleaningStarted, runID).WithArtifact(rawName))

	cleanPath, stats, err := s.cleaner.CleanFile(ctx, rawName, cfg)
	if err != nil {
		s.publish(events.NewEvent(events.EventCleaningCompleted, runID).
			WithArtifact(rawName).
			WithError(err.Error()))
		return nil, err
	}

	run := &CleaningRun{
		ID:            runID,
		CompletedAt:   time.Now(),
		RawArtifact:   rawName,
		CleanArtifact: filepath.Base(cleanPath),
		CleanPath:     cleanPath,
		Stats:         stats,
	}
	s.mu.Lock()
	s.lastCleaning = run
	s.mu.Unlock()

	s.publish(events.NewEvent(events.EventCleaningCompleted, runID).WithArtifact(run.CleanArtifact))
	return run, nil
}

// LastCollection returns the most recent collection run, or nil.
func (s *Service) LastCollection() *CollectionRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastCollection
}

// LastCleaning returns the most recent cleaning run, or nil.
func (s *Service) LastCleaning() *CleaningRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastCleaning
}

// Store exposes the artifact store for callers that list artifacts.
func (s *Service) Store() storage.ArtifactStore {
	return s.store
}

func (s *Service) publish(event *events.Event) {
	if s.bus == nil {
		return
	}
	_ = s.bus.Publish(event)
}
