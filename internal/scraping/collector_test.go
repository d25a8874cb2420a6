package scraping

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	events "github.com/akshara-labs/akshara/internal/pipeline"
	"github.com/akshara-labs/akshara/internal/storage"
	"github.com/akshara-labs/akshara/pkg/corpus"
)

func newCollectorStore(t *testing.T) *storage.FilesystemStore {
	t.Helper()
	store, err := storage.NewFilesystemStore(&storage.Config{DataDir: t.TempDir()}, nil)
	require.NoError(t, err)
	return store
}

func newContentServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/telugu", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(teluguPage))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestCollectWritesArtifactAndMetadata(t *testing.T) {
	server := newContentServer(t)
	store := newCollectorStore(t)
	collector := NewCollector(testFetcher(), store, nil)

	urls := []string{server.URL + "/telugu", server.URL + "/missing"}
	rawPath, metadata, err := collector.Collect(context.Background(), urls, testConfig())
	require.NoError(t, err)
	require.NotNil(t, metadata)

	assert.Equal(t, 2, metadata.TotalURLs)
	assert.Equal(t, 1, metadata.SuccessfulURLs)
	assert.Equal(t, 1, metadata.FailedURLs)
	assert.Equal(t, metadata.TotalParagraphs+metadata.TotalHeadings, metadata.TotalTextItems)
	require.Len(t, metadata.FailedURLDetails, 1)
	assert.Equal(t, server.URL+"/missing", metadata.FailedURLDetails[0].URL)
	assert.Contains(t, metadata.FailedURLDetails[0].Error, "HTTP 404")
	require.NoError(t, metadata.Validate())

	// Raw artifact: header comments plus one block per successful URL.
	data, err := os.ReadFile(rawPath)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "# Telugu Corpus Collection"))
	assert.Contains(t, content, "# Total sources: 1")
	assert.Contains(t, content, "=== SOURCE: "+server.URL+"/telugu ===")
	assert.NotContains(t, content, "/missing")
	assert.Contains(t, content, "--- HEADINGS ---")

	// Metadata sidecar shares the raw artifact's timestamp stamp.
	base := filepath.Base(rawPath)
	stamp := strings.TrimSuffix(strings.TrimPrefix(base, "raw_telugu_"), ".txt")
	sidecar, err := store.Read(context.Background(), storage.KindRaw, "metadata_"+stamp+".json")
	require.NoError(t, err)

	var decoded corpus.CollectionMetadata
	require.NoError(t, json.Unmarshal(sidecar, &decoded))
	assert.Equal(t, metadata.TotalURLs, decoded.TotalURLs)
	assert.Equal(t, metadata.TotalCharacters, decoded.TotalCharacters)
	assert.Equal(t, testConfig().MinScriptRatio, decoded.ConfigUsed.MinScriptRatio)
}

func TestCollectEmptyURLList(t *testing.T) {
	store := newCollectorStore(t)
	collector := NewCollector(testFetcher(), store, nil)

	rawPath, metadata, err := collector.Collect(context.Background(), nil, testConfig())
	require.NoError(t, err)
	assert.Empty(t, rawPath)
	assert.Nil(t, metadata)

	// No artifacts of either kind were created.
	for _, kind := range []storage.ArtifactKind{storage.KindRaw, storage.KindClean} {
		infos, err := store.List(context.Background(), kind)
		require.NoError(t, err)
		assert.Empty(t, infos)
	}
}

func TestCollectCountsDuplicateURLs(t *testing.T) {
	server := newContentServer(t)
	store := newCollectorStore(t)
	collector := NewCollector(testFetcher(), store, nil)

	url := server.URL + "/telugu"
	_, metadata, err := collector.Collect(context.Background(), []string{url, url}, testConfig())
	require.NoError(t, err)

	assert.Equal(t, 2, metadata.TotalURLs)
	assert.Equal(t, 2, metadata.SuccessfulURLs)
}

func TestCollectPublishesEvents(t *testing.T) {
	server := newContentServer(t)
	store := newCollectorStore(t)

	bus := events.NewEventBus(64, 1)
	defer bus.Close()
	recorder := events.NewRecorder(bus, 50)

	collector := NewCollector(testFetcher(), store, bus)
	urls := []string{server.URL + "/telugu", server.URL + "/missing"}
	_, _, err := collector.Collect(context.Background(), urls, testConfig())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(recorder.Recent()) == 4
	}, 2*time.Second, 10*time.Millisecond)

	types := make([]events.EventType, 0, 4)
	for _, e := range recorder.Recent() {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, events.EventCollectionStarted)
	assert.Contains(t, types, events.EventURLFetched)
	assert.Contains(t, types, events.EventURLFailed)
	assert.Contains(t, types, events.EventCollectionCompleted)
}

func TestCollectArchivesRun(t *testing.T) {
	server := newContentServer(t)
	store := newCollectorStore(t)

	archive, err := storage.NewGitArchive(t.TempDir(), nil)
	require.NoError(t, err)

	collector := NewCollector(testFetcher(), store, nil)
	collector.SetArchive(archive)

	_, _, err = collector.Collect(context.Background(), []string{server.URL + "/telugu"}, testConfig())
	require.NoError(t, err)

	messages, err := archive.Log(5)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "collect: 1/1 urls")
}

func TestCollectInvalidConfig(t *testing.T) {
	store := newCollectorStore(t)
	collector := NewCollector(testFetcher(), store, nil)

	cfg := testConfig()
	cfg.MinScriptRatio = 1.5

	_, _, err := collector.Collect(context.Background(), []string{"https://example.com"}, cfg)
	require.Error(t, err)
}
