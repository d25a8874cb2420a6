// Package integration exercises the whole pipeline end to end: fetch
// real HTTP responses, persist a raw artifact and its metadata sidecar,
// clean it, and check the stats line up.
package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	events "github.com/akshara-labs/akshara/internal/pipeline"
	"github.com/akshara-labs/akshara/internal/processing"
	"github.com/akshara-labs/akshara/internal/scraping"
	"github.com/akshara-labs/akshara/internal/storage"
	"github.com/akshara-labs/akshara/pkg/corpus"
	pipecfg "github.com/akshara-labs/akshara/pkg/pipeline"
)

const pageOne = `<html><head><title>తెలుగు</title></head><body>
<h1>తెలుగు భాష చరిత్ర</h1>
<p>తెలుగు భారతదేశంలో అధికంగా మాట్లాడే ద్రావిడ భాషలలో ఒకటి మరియు రెండు రాష్ట్రాల అధికార భాష</p>
<p>Pure English paragraphs never reach the corpus regardless of length.</p>
</body></html>`

const pageTwo = `<html><head><title>హైదరాబాదు</title></head><body>
<p>హైదరాబాదు తెలంగాణ రాష్ట్ర రాజధాని మరియు అతిపెద్ద నగరం అని అందరికీ తెలుసు</p>
<p>తెలుగు భారతదేశంలో అధికంగా మాట్లాడే ద్రావిడ భాషలలో ఒకటి మరియు రెండు రాష్ట్రాల అధికార భాష</p>
</body></html>`

func TestCollectThenCleanEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/one", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(pageOne))
	})
	mux.HandleFunc("/two", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(pageTwo))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	store, err := storage.NewFilesystemStore(&storage.Config{DataDir: t.TempDir()}, nil)
	require.NoError(t, err)

	bus := events.NewEventBus(128, 1)
	defer bus.Close()

	fetcher := scraping.NewFetcher(&pipecfg.ScrapingConfig{
		UserAgent:   "akshara-test/1.0",
		MaxBodySize: 1 << 20,
	})
	collector := scraping.NewCollector(fetcher, store, bus)
	cleaner := processing.NewCorpusCleaner(store)
	service := scraping.NewService(collector, cleaner, store, bus)

	cfg := corpus.DefaultCollectionConfig()
	cfg.DelaySeconds = 0
	cfg.TimeoutSeconds = 2
	cfg.MaxRetries = 0
	cfg.MinParagraphLength = 10

	ctx := context.Background()
	urls := []string{server.URL + "/one", server.URL + "/two", server.URL + "/gone"}

	run, err := service.Collect(ctx, urls, cfg)
	require.NoError(t, err)
	require.NotNil(t, run)

	md := run.Metadata
	assert.Equal(t, 3, md.TotalURLs)
	assert.Equal(t, 2, md.SuccessfulURLs)
	assert.Equal(t, 1, md.FailedURLs)
	assert.Equal(t, md.SuccessfulURLs+md.FailedURLs, md.TotalURLs)
	assert.Equal(t, md.TotalParagraphs+md.TotalHeadings, md.TotalTextItems)
	require.NoError(t, md.Validate())

	// The raw artifact holds one block per successful source.
	rawData, err := os.ReadFile(run.RawPath)
	require.NoError(t, err)
	raw := string(rawData)
	assert.Equal(t, 2, strings.Count(raw, "=== SOURCE:"))
	assert.NotContains(t, raw, "/gone")

	// Artifact plus metadata sidecar on disk.
	infos, err := store.List(ctx, storage.KindRaw)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	cleaning, err := service.Clean(ctx, run.RawArtifact, cfg)
	require.NoError(t, err)
	stats := cleaning.Stats

	assert.LessOrEqual(t, stats.FinalLines, stats.CleanedLines)
	assert.LessOrEqual(t, stats.CleanedLines, stats.OriginalLines)
	assert.Equal(t, stats.CleanedLines-stats.FinalLines, stats.DuplicatesRemoved)
	require.NoError(t, stats.Validate())

	// Page two repeats page one's paragraph; dedup keeps one copy.
	assert.Equal(t, 1, stats.DuplicatesRemoved)

	cleanData, err := os.ReadFile(cleaning.CleanPath)
	require.NoError(t, err)
	cleanLines := strings.Split(string(cleanData), "\n")
	assert.Equal(t, stats.FinalLines, len(cleanLines))
	for _, line := range cleanLines {
		assert.NotContains(t, line, "===")
		assert.NotEmpty(t, strings.TrimSpace(line))
	}

	// The stats sidecar round-trips with the same numbers.
	var cleanStats corpus.CleaningStats
	statsName := strings.TrimSuffix(cleaning.CleanArtifact, ".txt") + ".json"
	statsData, err := store.Read(ctx, storage.KindClean, statsName)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(statsData, &cleanStats))
	assert.Equal(t, stats.FinalLines, cleanStats.FinalLines)

	// The service remembers both runs.
	assert.Equal(t, run.ID, service.LastCollection().ID)
	assert.Equal(t, cleaning.ID, service.LastCleaning().ID)
}

func TestEmptyURLListProducesNothing(t *testing.T) {
	store, err := storage.NewFilesystemStore(&storage.Config{DataDir: t.TempDir()}, nil)
	require.NoError(t, err)

	fetcher := scraping.NewFetcher(nil)
	collector := scraping.NewCollector(fetcher, store, nil)
	cleaner := processing.NewCorpusCleaner(store)
	service := scraping.NewService(collector, cleaner, store, nil)

	run, err := service.Collect(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, run)

	infos, err := store.List(context.Background(), storage.KindRaw)
	require.NoError(t, err)
	assert.Empty(t, infos)
}
