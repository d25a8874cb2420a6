// Package api exposes the pipeline to the dashboard: URL list
// management, collection and cleaning runs, artifact listings, and run
// progress events. The dashboard itself is an external caller; this is
// the whole surface it needs.
package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/akshara-labs/akshara/internal/pipeline"
	"github.com/akshara-labs/akshara/internal/scraping"
	"github.com/akshara-labs/akshara/internal/storage"
	"github.com/akshara-labs/akshara/pkg/corpus"
)

// Handlers holds the HTTP handlers and their collaborators.
type Handlers struct {
	service  *scraping.Service
	store    *storage.FilesystemStore
	recorder *pipeline.Recorder
	metrics  *storage.SimpleMetricsCollector
	defaults *corpus.CollectionConfig
}

// NewHandlers creates the handler set. defaults supplies the collection
// config used when a request carries none.
func NewHandlers(service *scraping.Service, store *storage.FilesystemStore, recorder *pipeline.Recorder, metrics *storage.SimpleMetricsCollector, defaults *corpus.CollectionConfig) *Handlers {
	if defaults == nil {
		defaults = corpus.DefaultCollectionConfig()
	}
	return &Handlers{
		service:  service,
		store:    store,
		recorder: recorder,
		metrics:  metrics,
		defaults: defaults,
	}
}

// SetupRoutes registers all routes on the app.
func (h *Handlers) SetupRoutes(app *fiber.App) {
	app.Get("/health", h.Health)

	v1 := app.Group("/api/v1")

	urls := v1.Group("/urls")
	urls.Get("/", h.ListURLs)
	urls.Post("/", h.AddURLs)
	urls.Delete("/", h.ClearURLs)
	urls.Post("/seed", h.SeedURLs)

	collections := v1.Group("/collections")
	collections.Post("/", h.RunCollection)
	collections.Get("/latest", h.LatestCollection)

	v1.Post("/cleanings", h.RunCleaning)
	v1.Get("/cleanings/latest", h.LatestCleaning)

	artifacts := v1.Group("/artifacts")
	artifacts.Get("/", h.ListArtifacts)
	artifacts.Get("/:kind/:name", h.GetArtifact)

	v1.Get("/stats", h.Stats)
	v1.Get("/events", h.Events)
}

// Health reports service and storage health.
func (h *Handlers) Health(c *fiber.Ctx) error {
	status := "healthy"
	code := fiber.StatusOK
	var storageErr string
	if err := h.store.Health(c.Context()); err != nil {
		status = "degraded"
		code = fiber.StatusServiceUnavailable
		storageErr = err.Error()
	}
	return c.Status(code).JSON(fiber.Map{
		"status":        status,
		"service":       "akshara",
		"version":       "0.1.0",
		"storage_error": storageErr,
		"timestamp":     time.Now().UTC(),
	})
}

// ListURLs returns the stored URL list.
func (h *Handlers) ListURLs(c *fiber.Ctx) error {
	content, err := h.store.LoadURLList(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load URL list", "details": err.Error(),
		})
	}
	urls := corpus.ParseURLList(content)
	return c.JSON(fiber.Map{"urls": urls, "count": len(urls)})
}

// AddURLsRequest accepts one URL or several.
type AddURLsRequest struct {
	URL  string   `json:"url"`
	URLs []string `json:"urls"`
}

// AddURLs appends URLs to the stored list.
func (h *Handlers) AddURLs(c *fiber.Ctx) error {
	var req AddURLsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body", "details": err.Error(),
		})
	}
	added := req.URLs
	if req.URL != "" {
		added = append(added, req.URL)
	}
	var valid []string
	for _, u := range added {
		u = strings.TrimSpace(u)
		if u != "" && (strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")) {
			valid = append(valid, u)
		}
	}
	if len(valid) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No valid http(s) URLs in request",
		})
	}

	content, err := h.store.LoadURLList(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load URL list", "details": err.Error(),
		})
	}
	urls := append(corpus.ParseURLList(content), valid...)
	if err := h.store.SaveURLList(c.Context(), corpus.FormatURLList(urls)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save URL list", "details": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"urls": urls, "count": len(urls), "added": len(valid)})
}

// ClearURLs empties the stored list.
func (h *Handlers) ClearURLs(c *fiber.Ctx) error {
	if err := h.store.SaveURLList(c.Context(), corpus.FormatURLList(nil)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to clear URL list", "details": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"urls": []string{}, "count": 0})
}

// SeedURLs replaces the list with the sample Telugu Wikipedia set.
func (h *Handlers) SeedURLs(c *fiber.Ctx) error {
	if err := h.store.SaveURLList(c.Context(), corpus.FormatURLList(corpus.SampleURLs)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to seed URL list", "details": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"urls": corpus.SampleURLs, "count": len(corpus.SampleURLs),
	})
}

// RunCollectionRequest optionally overrides the URL list and config
// for one run.
type RunCollectionRequest struct {
	URLs   []string                 `json:"urls"`
	Config *corpus.CollectionConfig `json:"config"`
}

// RunCollection executes a collection over the request's URLs, or the
// stored list when the request names none.
func (h *Handlers) RunCollection(c *fiber.Ctx) error {
	var req RunCollectionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body", "details": err.Error(),
			})
		}
	}
	cfg := req.Config
	if cfg == nil {
		cfg = h.defaults
	}
	if err := cfg.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid collection config", "details": err.Error(),
		})
	}

	urls := req.URLs
	if len(urls) == 0 {
		content, err := h.store.LoadURLList(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to load URL list", "details": err.Error(),
			})
		}
		urls = corpus.ParseURLList(content)
	}

	run, err := h.service.Collect(c.Context(), urls, cfg)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Collection failed", "details": err.Error(),
		})
	}
	if run == nil {
		return c.JSON(fiber.Map{"run": nil, "message": "URL list is empty, no artifacts created"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"run": run})
}

// LatestCollection returns the last collection run of this process.
func (h *Handlers) LatestCollection(c *fiber.Ctx) error {
	run := h.service.LastCollection()
	if run == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No collection has run yet",
		})
	}
	return c.JSON(fiber.Map{"run": run})
}

// RunCleaningRequest names the raw artifact to clean.
type RunCleaningRequest struct {
	Artifact string                   `json:"artifact"`
	Config   *corpus.CollectionConfig `json:"config"`
}

// RunCleaning cleans one raw artifact.
func (h *Handlers) RunCleaning(c *fiber.Ctx) error {
	var req RunCleaningRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body", "details": err.Error(),
		})
	}
	if req.Artifact == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "artifact is required",
		})
	}
	cfg := req.Config
	if cfg == nil {
		cfg = h.defaults
	}

	run, err := h.service.Clean(c.Context(), req.Artifact, cfg)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Cleaning failed", "details": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"run": run})
}

// LatestCleaning returns the last cleaning run of this process.
func (h *Handlers) LatestCleaning(c *fiber.Ctx) error {
	run := h.service.LastCleaning()
	if run == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No cleaning has run yet",
		})
	}
	return c.JSON(fiber.Map{"run": run})
}

// ListArtifacts lists stored artifacts, newest first. kind defaults to
// raw.
func (h *Handlers) ListArtifacts(c *fiber.Ctx) error {
	kind, err := parseKind(c.Query("kind", "raw"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	infos, err := h.store.List(c.Context(), kind)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list artifacts", "details": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"artifacts": infos, "count": len(infos), "kind": kind})
}

// GetArtifact returns one artifact's content as UTF-8 text.
func (h *Handlers) GetArtifact(c *fiber.Ctx) error {
	kind, err := parseKind(c.Params("kind"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	data, err := h.store.Read(c.Context(), kind, c.Params("name"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Artifact not found", "details": err.Error(),
		})
	}
	c.Set(fiber.HeaderContentType, "text/plain; charset=utf-8")
	return c.Send(data)
}

// Stats reports corpus totals and storage operation metrics.
func (h *Handlers) Stats(c *fiber.Ctx) error {
	summary := fiber.Map{}
	for _, kind := range []storage.ArtifactKind{storage.KindRaw, storage.KindClean} {
		infos, err := h.store.List(c.Context(), kind)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to scan artifacts", "details": err.Error(),
			})
		}
		var bytes int64
		for _, info := range infos {
			bytes += info.Size
		}
		summary[string(kind)] = fiber.Map{"files": len(infos), "bytes": bytes}
	}
	return c.JSON(fiber.Map{
		"artifacts":          summary,
		"storage_operations": h.metrics.TotalOperations(),
		"storage_metrics":    h.metrics.Summary(),
	})
}

// Events returns recent pipeline events for run-progress polling.
func (h *Handlers) Events(c *fiber.Ctx) error {
	events := h.recorder.Recent()
	return c.JSON(fiber.Map{"events": events, "count": len(events)})
}

func parseKind(value string) (storage.ArtifactKind, error) {
	switch storage.ArtifactKind(value) {
	case storage.KindRaw:
		return storage.KindRaw, nil
	case storage.KindClean:
		return storage.KindClean, nil
	}
	return "", fiber.NewError(fiber.StatusBadRequest, "kind must be raw or clean")
}
