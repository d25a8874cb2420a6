package scraping

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	events "github.com/akshara-labs/akshara/internal/pipeline"
	"github.com/akshara-labs/akshara/internal/storage"
	"github.com/akshara-labs/akshara/pkg/corpus"
	"github.com/akshara-labs/akshara/pkg/logging"
	"github.com/akshara-labs/akshara/pkg/ratelimit"
	"github.com/akshara-labs/akshara/pkg/script"
)

// Collector runs one collection over an ordered URL list: fetch each
// URL in turn with a politeness pause between requests, then persist
// the raw artifact and its metadata sidecar under one shared timestamp.
type Collector struct {
	fetcher *Fetcher
	store   storage.ArtifactStore
	bus     *events.EventBus
	archive *storage.GitArchive
}

// NewCollector creates a collector. The event bus is optional.
func NewCollector(fetcher *Fetcher, store storage.ArtifactStore, bus *events.EventBus) *Collector {
	return &Collector{fetcher: fetcher, store: store, bus: bus}
}

// SetArchive enables commit-per-run git archiving of the artifacts.
func (c *Collector) SetArchive(archive *storage.GitArchive) {
	c.archive = archive
}

// Collect fetches every URL in order and persists the run's artifacts.
// It returns the raw artifact path and the run metadata. An empty URL
// list returns ("", nil, nil) without creating any file. Duplicate URLs
// are fetched and counted as many times as they appear.
func (c *Collector) Collect(ctx context.Context, urls []string, cfg *corpus.CollectionConfig) (string, *corpus.CollectionMetadata, error) {
	return c.collect(ctx, uuid.New().String(), urls, cfg)
}

func (c *Collector) collect(ctx context.Context, runID string, urls []string, cfg *corpus.CollectionConfig) (string, *corpus.CollectionMetadata, error) {
	if cfg == nil {
		cfg = corpus.DefaultCollectionConfig()
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}
	logger := logging.GetRunLogger("collector", runID)

	if len(urls) == 0 {
		logger.Info().Msg("Empty URL list, nothing to collect")
		return "", nil, nil
	}

	classifier, err := script.NewClassifier(cfg.Script)
	if err != nil {
		return "", nil, err
	}
	scriptName := classifier.Block.Name

	logger.Info().
		Int("urls", len(urls)).
		Str("script", scriptName).
		Float64("min_ratio", cfg.MinScriptRatio).
		Msg("Collection started")
	started := events.NewEvent(events.EventCollectionStarted, runID)
	started.Metadata["total_urls"] = len(urls)
	c.publish(started)

	// One limiter per run: the first fetch is immediate, each later
	// fetch waits out the configured delay, and nothing waits after
	// the last URL.
	limiter := ratelimit.NewPoliteLimiter(cfg.Delay())

	results := make([]corpus.FetchResult, 0, len(urls))
	for _, u := range urls {
		if err := limiter.Wait(ctx); err != nil {
			return "", nil, fmt.Errorf("collection aborted: %w", err)
		}

		result := c.fetcher.Fetch(ctx, u, cfg)
		results = append(results, result)

		if result.Success {
			logger.Info().
				Str("url", u).
				Int("paragraphs", len(result.Paragraphs)).
				Int("headings", len(result.Headings)).
				Msg("URL collected")
			c.publish(events.NewEvent(events.EventURLFetched, runID).WithURL(u))
		} else {
			logger.Warn().
				Str("url", u).
				Str("error", result.Error).
				Msg("URL failed")
			c.publish(events.NewEvent(events.EventURLFailed, runID).WithURL(u).WithError(result.Error))
		}
	}

	now := time.Now()
	metadata := corpus.BuildCollectionMetadata(results, *cfg, now)
	if err := metadata.Validate(); err != nil {
		return "", nil, fmt.Errorf("collection metadata failed validation: %w", err)
	}

	rawName := corpus.RawFileName(scriptName, now)
	rawPath, err := c.store.Save(ctx, storage.KindRaw, rawName,
		[]byte(corpus.RenderRawArtifact(results, scriptName, now)))
	if err != nil {
		return "", nil, err
	}

	sidecar, err := corpus.EncodeSidecar(metadata)
	if err != nil {
		return "", nil, err
	}
	metaPath, err := c.store.Save(ctx, storage.KindRaw, corpus.MetadataFileName(now), sidecar)
	if err != nil {
		return "", nil, err
	}

	if c.archive != nil {
		message := fmt.Sprintf("collect: %d/%d urls, %d text items",
			metadata.SuccessfulURLs, metadata.TotalURLs, metadata.TotalTextItems)
		if _, err := c.archive.ArchiveRun(ctx, runID, []string{rawPath, metaPath}, message); err != nil {
			// Archiving is provenance, not persistence; the run succeeded.
			logger.Warn().Err(err).Msg("Git archive failed")
		}
	}

	logger.Info().
		Str("raw", rawName).
		Int("successful", metadata.SuccessfulURLs).
		Int("failed", metadata.FailedURLs).
		Int("text_items", metadata.TotalTextItems).
		Int("characters", metadata.TotalCharacters).
		Msg("Collection completed")
	c.publish(events.NewEvent(events.EventCollectionCompleted, runID).WithArtifact(rawName))

	return rawPath, metadata, nil
}

func (c *Collector) publish(event *events.Event) {
	if c.bus == nil {
		return
	}
	// Best effort; a full buffer must not stall the run.
	_ = c.bus.Publish(event)
}
