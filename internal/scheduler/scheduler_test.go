package scheduler

import (
	"context"
	"net/http"
	"net/http/httptest"
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

func newTestService(t *testing.T) (*scraping.Service, *storage.FilesystemStore) {
	t.Helper()
	store, err := storage.NewFilesystemStore(&storage.Config{DataDir: t.TempDir()}, nil)
	require.NoError(t, err)

	bus := events.NewEventBus(64, 1)
	t.Cleanup(bus.Close)

	fetcher := scraping.NewFetcher(&pipecfg.ScrapingConfig{
		UserAgent:   "akshara-test/1.0",
		MaxBodySize: 1 << 20,
	})
	collector := scraping.NewCollector(fetcher, store, bus)
	cleaner := processing.NewCorpusCleaner(store)
	return scraping.NewService(collector, cleaner, store, bus), store
}

func fastConfig() *corpus.CollectionConfig {
	cfg := corpus.DefaultCollectionConfig()
	cfg.DelaySeconds = 0
	cfg.TimeoutSeconds = 2
	cfg.MaxRetries = 0
	cfg.MinParagraphLength = 10
	return cfg
}

func TestSchedulerDisabledIsNoop(t *testing.T) {
	service, _ := newTestService(t)

	s := New(service, &pipecfg.SchedulerConfig{Enabled: false}, fastConfig())
	require.NoError(t, s.Start())
	s.Stop()
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	service, _ := newTestService(t)

	s := New(service, &pipecfg.SchedulerConfig{Enabled: true, Schedule: "not a cron"}, fastConfig())
	err := s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")
}

func TestSchedulerStartStop(t *testing.T) {
	service, _ := newTestService(t)

	s := New(service, &pipecfg.SchedulerConfig{Enabled: true, Schedule: "0 3 * * *"}, fastConfig())
	require.NoError(t, s.Start())
	s.Stop()
}

func TestRunOnceCollectsAndCleans(t *testing.T) {
	service, store := newTestService(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body>
<p>తెలుగు భారతదేశంలో అధికంగా మాట్లాడే ద్రావిడ భాషలలో ఒకటి అని అందరికీ తెలుసు</p>
</body></html>`))
	}))
	defer server.Close()

	require.NoError(t, store.SaveURLList(context.Background(),
		corpus.FormatURLList([]string{server.URL})))

	s := New(service, &pipecfg.SchedulerConfig{
		Enabled:           true,
		Schedule:          "0 3 * * *",
		CleanAfterCollect: true,
	}, fastConfig())
	s.runOnce()

	require.NotNil(t, service.LastCollection())
	assert.Equal(t, 1, service.LastCollection().Metadata.SuccessfulURLs)

	require.NotNil(t, service.LastCleaning())
	assert.Positive(t, service.LastCleaning().Stats.FinalLines)
}

func TestRunOnceEmptyURLList(t *testing.T) {
	service, _ := newTestService(t)

	s := New(service, &pipecfg.SchedulerConfig{Enabled: true, Schedule: "@daily"}, fastConfig())
	s.runOnce()

	assert.Nil(t, service.LastCollection())
	assert.Nil(t, service.LastCleaning())
}
