package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akshara-labs/akshara/internal/pipeline"
	"github.com/akshara-labs/akshara/internal/processing"
	"github.com/akshara-labs/akshara/internal/scraping"
	"github.com/akshara-labs/akshara/internal/storage"
	"github.com/akshara-labs/akshara/pkg/corpus"
	pipecfg "github.com/akshara-labs/akshara/pkg/pipeline"
)

const teluguTestPage = `<html><head><title>పరీక్ష</title></head><body>
<h1>తెలుగు భాష చరిత్ర</h1>
<p>తెలుగు భారతదేశంలో అధికంగా మాట్లాడే ద్రావిడ భాషలలో ఒకటి మరియు రెండు రాష్ట్రాల అధికార భాష</p>
</body></html>`

type testEnv struct {
	app   *fiber.App
	store *storage.FilesystemStore
	bus   *pipeline.EventBus
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	metrics := storage.NewSimpleMetricsCollector()
	store, err := storage.NewFilesystemStore(&storage.Config{DataDir: t.TempDir()}, metrics)
	require.NoError(t, err)

	bus := pipeline.NewEventBus(64, 1)
	t.Cleanup(bus.Close)
	recorder := pipeline.NewRecorder(bus, 50)

	fetcher := scraping.NewFetcher(&pipecfg.ScrapingConfig{
		UserAgent:   "akshara-test/1.0",
		MaxBodySize: 1 << 20,
	})
	collector := scraping.NewCollector(fetcher, store, bus)
	cleaner := processing.NewCorpusCleaner(store)
	service := scraping.NewService(collector, cleaner, store, bus)

	defaults := corpus.DefaultCollectionConfig()
	defaults.DelaySeconds = 0
	defaults.TimeoutSeconds = 2
	defaults.MaxRetries = 0
	defaults.MinParagraphLength = 10

	app := fiber.New()
	NewHandlers(service, store, recorder, metrics, defaults).SetupRoutes(app)
	return &testEnv{app: app, store: store, bus: bus}
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, 10000)
	require.NoError(t, err)

	decoded := map[string]interface{}{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 && json.Valid(data) {
		require.NoError(t, json.Unmarshal(data, &decoded))
	}
	return resp, decoded
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := doJSON(t, env.app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "akshara", body["service"])
}

func TestURLListLifecycle(t *testing.T) {
	env := newTestEnv(t)

	// Empty to start.
	resp, body := doJSON(t, env.app, http.MethodGet, "/api/v1/urls", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["count"])

	// Add two, one invalid.
	resp, body = doJSON(t, env.app, http.MethodPost, "/api/v1/urls", map[string]interface{}{
		"urls": []string{"https://te.wikipedia.org/wiki/తెలుగు", "not-a-url", "http://example.com/a"},
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(2), body["added"])
	assert.Equal(t, float64(2), body["count"])

	// Single-URL form appends.
	resp, body = doJSON(t, env.app, http.MethodPost, "/api/v1/urls", map[string]interface{}{
		"url": "https://example.com/b",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(3), body["count"])

	// Clear.
	resp, body = doJSON(t, env.app, http.MethodDelete, "/api/v1/urls", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["count"])
}

func TestAddURLsRejectsInvalid(t *testing.T) {
	env := newTestEnv(t)

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/urls", map[string]interface{}{
		"urls": []string{"ftp://example.com", "plain text"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "No valid http(s) URLs")
}

func TestSeedURLs(t *testing.T) {
	env := newTestEnv(t)

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/urls/seed", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(len(corpus.SampleURLs)), body["count"])

	_, body = doJSON(t, env.app, http.MethodGet, "/api/v1/urls", nil)
	assert.Equal(t, float64(len(corpus.SampleURLs)), body["count"])
}

func TestRunCollectionEmptyList(t *testing.T) {
	env := newTestEnv(t)

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/collections", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, body["run"])
	assert.Contains(t, body["message"], "URL list is empty")

	// No run to show yet.
	resp, _ = doJSON(t, env.app, http.MethodGet, "/api/v1/collections/latest", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRunCollectionAndCleaning(t *testing.T) {
	env := newTestEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(teluguTestPage))
	}))
	defer server.Close()

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/collections", map[string]interface{}{
		"urls": []string{server.URL},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	run, ok := body["run"].(map[string]interface{})
	require.True(t, ok)
	rawArtifact, _ := run["raw_artifact"].(string)
	require.NotEmpty(t, rawArtifact)

	metadata, ok := run["metadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1), metadata["total_urls"])
	assert.Equal(t, float64(1), metadata["successful_urls"])

	// The latest endpoint replays the same run.
	resp, body = doJSON(t, env.app, http.MethodGet, "/api/v1/collections/latest", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	latest := body["run"].(map[string]interface{})
	assert.Equal(t, run["id"], latest["id"])

	// Clean the fresh raw artifact.
	resp, body = doJSON(t, env.app, http.MethodPost, "/api/v1/cleanings", map[string]interface{}{
		"artifact": rawArtifact,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cleaning := body["run"].(map[string]interface{})
	assert.Equal(t, rawArtifact, cleaning["raw_artifact"])
	stats := cleaning["stats"].(map[string]interface{})
	assert.Greater(t, stats["final_lines"], float64(0))

	resp, _ = doJSON(t, env.app, http.MethodGet, "/api/v1/cleanings/latest", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRunCleaningValidation(t *testing.T) {
	env := newTestEnv(t)

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/cleanings", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "artifact is required")

	resp, _ = doJSON(t, env.app, http.MethodPost, "/api/v1/cleanings", map[string]interface{}{
		"artifact": "raw_telugu_19990101_000000.txt",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestArtifactEndpoints(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.store.Save(context.Background(), storage.KindRaw, "raw_telugu_20260830_100000.txt", []byte("తెలుగు పాఠ్యం"))
	require.NoError(t, err)

	resp, body := doJSON(t, env.app, http.MethodGet, "/api/v1/artifacts?kind=raw", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])

	resp, body = doJSON(t, env.app, http.MethodGet, "/api/v1/artifacts?kind=clean", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["count"])

	resp, _ = doJSON(t, env.app, http.MethodGet, "/api/v1/artifacts?kind=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/artifacts/raw/raw_telugu_20260830_100000.txt", nil)
	raw, err := env.app.Test(req, 10000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, raw.StatusCode)
	assert.Contains(t, raw.Header.Get("Content-Type"), "text/plain")
	data, err := io.ReadAll(raw.Body)
	require.NoError(t, err)
	assert.Equal(t, "తెలుగు పాఠ్యం", string(data))

	resp, _ = doJSON(t, env.app, http.MethodGet, "/api/v1/artifacts/raw/missing.txt", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := doJSON(t, env.app, http.MethodGet, "/api/v1/stats", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	artifacts, ok := body["artifacts"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, artifacts, "raw")
	assert.Contains(t, artifacts, "clean")
}

func TestEventsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, body := doJSON(t, env.app, http.MethodGet, "/api/v1/events", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["count"])
}
