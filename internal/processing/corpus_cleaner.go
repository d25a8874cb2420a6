package processing

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/akshara-labs/akshara/internal/storage"
	"github.com/akshara-labs/akshara/pkg/corpus"
	"github.com/akshara-labs/akshara/pkg/logging"
	"github.com/akshara-labs/akshara/pkg/script"
)

// Lines shorter than this after normalization are noise, not corpus
// material.
const minCleanLineLength = 10

// CorpusCleaner turns a raw collection artifact into a deduplicated
// cleaned artifact plus a stats sidecar. It re-reads persisted files,
// never in-memory collection state, so it can run on any past artifact.
type CorpusCleaner struct {
	store      storage.ArtifactStore
	normalizer *Normalizer
}

// NewCorpusCleaner creates a cleaner over the given artifact store.
func NewCorpusCleaner(store storage.ArtifactStore) *CorpusCleaner {
	return &CorpusCleaner{
		store:      store,
		normalizer: NewNormalizer(),
	}
}

// CleanFile cleans one raw artifact by name. Only MinScriptRatio and
// Script are consulted from the config. A read failure aborts the whole
// operation with no partial output; write failures propagate.
func (c *CorpusCleaner) CleanFile(ctx context.Context, rawName string, cfg *corpus.CollectionConfig) (string, *corpus.CleaningStats, error) {
	if cfg == nil {
		cfg = corpus.DefaultCollectionConfig()
	}
	runID := uuid.New().String()
	logger := logging.GetRunLogger("cleaner", runID)

	classifier, err := script.NewClassifier(cfg.Script)
	if err != nil {
		return "", nil, err
	}

	data, err := c.store.Read(ctx, storage.KindRaw, rawName)
	if err != nil {
		logger.Error().Err(err).Str("raw", rawName).Msg("Raw artifact unreadable")
		return "", nil, fmt.Errorf("cannot clean %s: %w", rawName, err)
	}

	logger.Info().Str("raw", rawName).Msg("Cleaning started")

	now := time.Now()
	lines, stats := c.cleanContent(string(data), classifier, cfg.MinScriptRatio)
	stats.CleaningDate = now

	if err := stats.Validate(); err != nil {
		return "", nil, fmt.Errorf("cleaning stats failed validation: %w", err)
	}

	scriptName := classifier.Block.Name
	cleanName := corpus.CleanFileName(scriptName, now)
	cleanPath, err := c.store.Save(ctx, storage.KindClean, cleanName, []byte(strings.Join(lines, "\n")))
	if err != nil {
		return "", nil, err
	}

	sidecar, err := corpus.EncodeSidecar(stats)
	if err != nil {
		return "", nil, err
	}
	if _, err := c.store.Save(ctx, storage.KindClean, corpus.StatsFileName(scriptName, now), sidecar); err != nil {
		return "", nil, err
	}

	logger.Info().
		Str("clean", cleanName).
		Int("original_lines", stats.OriginalLines).
		Int("final_lines", stats.FinalLines).
		Int("duplicates_removed", stats.DuplicatesRemoved).
		Float64("reduction_pct", stats.ReductionPercentage).
		Msg("Cleaning completed")

	return cleanPath, stats, nil
}

// cleanContent filters and deduplicates raw artifact content. Structural
// marker lines (block delimiters, heading sub-labels, comments) are
// format, not text, and are dropped before filtering. Deduplication is
// case-insensitive but keeps the casing and position of the first
// occurrence.
func (c *CorpusCleaner) cleanContent(content string, classifier *script.Classifier, minRatio float64) ([]string, *corpus.CleaningStats) {
	var rawLines []string
	if content != "" {
		rawLines = strings.Split(content, "\n")
	}
	stats := &corpus.CleaningStats{OriginalLines: len(rawLines)}

	kept := make([]string, 0, len(rawLines))
	for _, line := range rawLines {
		line = strings.TrimSpace(line)
		if line == "" || isMarkerLine(line) {
			continue
		}
		line = c.normalizer.Normalize(line)
		if utf8.RuneCountInString(line) < minCleanLineLength {
			continue
		}
		if !classifier.Accepts(line, minRatio) {
			continue
		}
		kept = append(kept, line)
	}
	stats.CleanedLines = len(kept)

	seen := make(map[string]struct{}, len(kept))
	final := make([]string, 0, len(kept))
	for _, line := range kept {
		key := strings.ToLower(line)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		final = append(final, line)
	}
	stats.FinalLines = len(final)
	stats.DuplicatesRemoved = stats.CleanedLines - stats.FinalLines

	if stats.OriginalLines > 0 {
		stats.ReductionPercentage = (1 - float64(stats.FinalLines)/float64(stats.OriginalLines)) * 100
	}

	return final, stats
}

func isMarkerLine(line string) bool {
	return strings.HasPrefix(line, corpus.BlockMarkerPrefix) ||
		strings.HasPrefix(line, corpus.HeadingMarkerPrefix) ||
		strings.HasPrefix(line, corpus.CommentPrefix)
}
