package scraping

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"github.com/akshara-labs/akshara/internal/processing"
	"github.com/akshara-labs/akshara/pkg/corpus"
	"github.com/akshara-labs/akshara/pkg/extractor"
	"github.com/akshara-labs/akshara/pkg/logging"
	pipecfg "github.com/akshara-labs/akshara/pkg/pipeline"
	"github.com/akshara-labs/akshara/pkg/script"
)

// FetchError is one URL's fetch failure. Status is zero for transport
// errors.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves one URL and reduces it to in-script paragraphs and
// headings. Per-URL failures are data, never panics or returned errors:
// the collector keeps going.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxBody    int64
	compliance *ComplianceEngine
	engine     *extractor.Engine
	normalizer *processing.Normalizer
}

// NewFetcher creates a fetcher. A nil config gets the default user
// agent and limits with robots.txt checks off.
func NewFetcher(cfg *pipecfg.ScrapingConfig) *Fetcher {
	if cfg == nil {
		cfg = pipecfg.DefaultPipelineConfig().Scraping
	}
	f := &Fetcher{
		client:     &http.Client{},
		userAgent:  cfg.UserAgent,
		maxBody:    cfg.MaxBodySize,
		engine:     extractor.NewEngine(),
		normalizer: processing.NewNormalizer(),
	}
	if cfg.RespectRobots {
		f.compliance = NewComplianceEngine(cfg.UserAgent)
	}
	return f
}

// Fetch retrieves one URL. The returned FetchResult always has non-nil
// slices; on any failure Success is false, the slices are empty, and
// Error holds a human-readable message.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, cfg *corpus.CollectionConfig) corpus.FetchResult {
	result := corpus.FetchResult{
		URL:        rawURL,
		Paragraphs: []string{},
		Headings:   []string{},
	}
	logger := logging.GetLogger("fetcher")

	classifier, err := script.NewClassifier(cfg.Script)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if f.compliance != nil && !f.compliance.Allowed(ctx, rawURL) {
		result.Error = fmt.Sprintf("disallowed by robots.txt: %s", rawURL)
		logger.Warn().Str("url", rawURL).Msg("Skipped by robots.txt")
		return result
	}

	page, err := f.download(ctx, rawURL, cfg)
	if err != nil {
		result.Error = err.Error()
		logger.Warn().Err(err).Str("url", rawURL).Msg("Fetch failed")
		return result
	}

	extracted, err := f.engine.Extract(ctx, page.body, page.format)
	if err != nil {
		result.Error = err.Error()
		logger.Warn().Err(err).Str("url", rawURL).Str("format", page.format).Msg("Extraction failed")
		return result
	}

	for _, p := range extracted.Paragraphs {
		trimmed := strings.TrimSpace(p)
		if utf8.RuneCountInString(trimmed) < cfg.MinParagraphLength {
			continue
		}
		if !classifier.Accepts(trimmed, cfg.MinScriptRatio) {
			continue
		}
		result.Paragraphs = append(result.Paragraphs, f.normalizer.Normalize(trimmed))
	}

	if cfg.ExtractHeadings {
		for _, h := range extracted.Headings {
			trimmed := strings.TrimSpace(h)
			if trimmed == "" || !classifier.Accepts(trimmed, cfg.MinScriptRatio) {
				continue
			}
			result.Headings = append(result.Headings, f.normalizer.Normalize(trimmed))
		}
	}

	result.Success = true
	logger.Debug().
		Str("url", rawURL).
		Str("format", page.format).
		Int("paragraphs", len(result.Paragraphs)).
		Int("headings", len(result.Headings)).
		Msg("Fetch completed")
	return result
}

type fetchedPage struct {
	body   []byte
	format string
}

// download retrieves the URL body, retrying transport errors, HTTP 429
// and 5xx with exponential backoff up to MaxRetries extra attempts.
// MaxRetries of zero means one attempt, take it or leave it.
func (f *Fetcher) download(ctx context.Context, rawURL string, cfg *corpus.CollectionConfig) (*fetchedPage, error) {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(500*(1<<(attempt-1))) * time.Millisecond
			logger := logging.GetLogger("fetcher")
			logger.Debug().
				Str("url", rawURL).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying fetch")
			if err := sleepWithContext(ctx, backoff); err != nil {
				return nil, err
			}
		}
		page, retryable, err := f.downloadOnce(ctx, rawURL, cfg)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func (f *Fetcher) downloadOnce(ctx context.Context, rawURL string, cfg *corpus.CollectionConfig) (*fetchedPage, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, &FetchError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "te,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, &FetchError{URL: rawURL, Status: resp.StatusCode}
	}

	contentType := resp.Header.Get("Content-Type")
	format, ok := extractor.FormatForContentType(contentType)
	if !ok {
		return nil, false, &FetchError{URL: rawURL, Err: fmt.Errorf("unsupported content type %q", contentType)}
	}

	var reader io.Reader = io.LimitReader(resp.Body, f.maxBody+1)
	if format == "html" || format == "text" {
		// Telugu pages still come in legacy encodings; decode to UTF-8
		// before parsing or every ratio check would fail.
		reader, err = charset.NewReader(reader, contentType)
		if err != nil {
			return nil, false, &FetchError{URL: rawURL, Err: fmt.Errorf("charset detection: %w", err)}
		}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, true, &FetchError{URL: rawURL, Err: err}
	}
	if int64(len(body)) > f.maxBody {
		return nil, false, &FetchError{URL: rawURL, Err: fmt.Errorf("body exceeds %d byte limit", f.maxBody)}
	}

	return &fetchedPage{body: body, format: format}, false, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
