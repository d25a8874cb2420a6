package scraping

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/akshara-labs/akshara/pkg/logging"
)

// ComplianceEngine answers "may I fetch this URL" from robots.txt,
// cached per host. It fails open: an unreachable or malformed
// robots.txt never blocks collection, only an explicit disallow does.
type ComplianceEngine struct {
	userAgent string
	client    *http.Client

	mu    sync.Mutex
	cache map[string]*robotstxt.RobotsData
}

// NewComplianceEngine creates an engine for the given user agent.
func NewComplianceEngine(userAgent string) *ComplianceEngine {
	return &ComplianceEngine{
		userAgent: userAgent,
		client:    &http.Client{Timeout: 10 * time.Second},
		cache:     make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether robots.txt permits fetching rawURL.
func (e *ComplianceEngine) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return true // let the fetcher produce the real error
	}

	data, err := e.robotsFor(ctx, u)
	if err != nil {
		logger := logging.GetLogger("compliance")
		logger.Debug().
			Err(err).
			Str("host", u.Host).
			Msg("robots.txt unavailable, allowing")
		return true
	}

	group := data.FindGroup(e.userAgent)
	if group == nil {
		group = data.FindGroup("*")
	}
	if group == nil {
		return true
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return group.Test(path)
}

func (e *ComplianceEngine) robotsFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	host := u.Hostname()
	e.mu.Lock()
	if data, ok := e.cache[host]; ok {
		e.mu.Unlock()
		return data, nil
	}
	e.mu.Unlock()

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[host] = data
	e.mu.Unlock()
	return data, nil
}
