package corpus

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// FetchResult holds everything extracted from one URL. One result is
// produced per input URL, failed or not, and is never mutated after the
// fetcher returns it.
type FetchResult struct {
	URL        string   `json:"url"`
	Paragraphs []string `json:"paragraphs"`
	Headings   []string `json:"headings"`
	Success    bool     `json:"success"`
	Error      string   `json:"error,omitempty"`
}

// HasContent reports whether the result contributes a block to the raw
// artifact: it must have succeeded and carry at least one paragraph or
// heading.
func (r *FetchResult) HasContent() bool {
	return r.Success && (len(r.Paragraphs) > 0 || len(r.Headings) > 0)
}

// TextItems returns the number of stored strings (paragraphs plus
// headings).
func (r *FetchResult) TextItems() int {
	return len(r.Paragraphs) + len(r.Headings)
}

// Characters returns the rune count over all stored strings. Rune
// count, not bytes: Telugu runes are three bytes each in UTF-8.
func (r *FetchResult) Characters() int {
	n := 0
	for _, p := range r.Paragraphs {
		n += utf8.RuneCountInString(p)
	}
	for _, h := range r.Headings {
		n += utf8.RuneCountInString(h)
	}
	return n
}

// CollectionConfig configures one collection run. Timeout and delay are
// kept as plain numbers so the config embeds into the metadata sidecar
// the way the dashboard expects to read it back.
type CollectionConfig struct {
	TimeoutSeconds     int     `json:"timeout" yaml:"timeout"`
	DelaySeconds       float64 `json:"delay_between_requests" yaml:"delay_between_requests"`
	MaxRetries         int     `json:"max_retries" yaml:"max_retries"`
	MinParagraphLength int     `json:"min_paragraph_length" yaml:"min_paragraph_length"`
	MinScriptRatio     float64 `json:"min_script_ratio" yaml:"min_script_ratio"`
	ExtractHeadings    bool    `json:"extract_headings" yaml:"extract_headings"`
	Script             string  `json:"script" yaml:"script"`
}

// DefaultCollectionConfig returns the collection defaults.
func DefaultCollectionConfig() *CollectionConfig {
	return &CollectionConfig{
		TimeoutSeconds:     15,
		DelaySeconds:       1.0,
		MaxRetries:         3,
		MinParagraphLength: 20,
		MinScriptRatio:     0.6,
		ExtractHeadings:    true,
		Script:             "telugu",
	}
}

// Timeout returns the per-request timeout as a duration.
func (c *CollectionConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Delay returns the inter-request delay as a duration.
func (c *CollectionConfig) Delay() time.Duration {
	return time.Duration(c.DelaySeconds * float64(time.Second))
}

// Validate checks the config for values the pipeline cannot run with.
func (c *CollectionConfig) Validate() error {
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.TimeoutSeconds)
	}
	if c.DelaySeconds < 0 {
		return fmt.Errorf("delay cannot be negative, got %f", c.DelaySeconds)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative, got %d", c.MaxRetries)
	}
	if c.MinParagraphLength < 0 {
		return fmt.Errorf("min paragraph length cannot be negative, got %d", c.MinParagraphLength)
	}
	if c.MinScriptRatio <= 0 || c.MinScriptRatio > 1 {
		return fmt.Errorf("min script ratio must be in (0,1], got %f", c.MinScriptRatio)
	}
	return nil
}

// FailedURL records one failed fetch for the metadata sidecar.
type FailedURL struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// CollectionMetadata summarizes one collection run. Derived entirely
// from the result set; written once as a JSON sidecar next to the raw
// text artifact.
type CollectionMetadata struct {
	CollectionDate   time.Time        `json:"collection_date"`
	TotalURLs        int              `json:"total_urls"`
	SuccessfulURLs   int              `json:"successful_urls"`
	FailedURLs       int              `json:"failed_urls"`
	TotalParagraphs  int              `json:"total_paragraphs"`
	TotalHeadings    int              `json:"total_headings"`
	TotalTextItems   int              `json:"total_text_items"`
	TotalCharacters  int              `json:"total_characters"`
	ConfigUsed       CollectionConfig `json:"config_used"`
	FailedURLDetails []FailedURL      `json:"failed_url_details"`
}

// BuildCollectionMetadata aggregates a result set into metadata.
// Paragraph, heading, and character totals count successful results
// only; failed results appear in the counts and the failure details.
func BuildCollectionMetadata(results []FetchResult, cfg CollectionConfig, when time.Time) *CollectionMetadata {
	md := &CollectionMetadata{
		CollectionDate:   when,
		TotalURLs:        len(results),
		ConfigUsed:       cfg,
		FailedURLDetails: []FailedURL{},
	}
	for i := range results {
		r := &results[i]
		if r.Success {
			md.SuccessfulURLs++
			md.TotalParagraphs += len(r.Paragraphs)
			md.TotalHeadings += len(r.Headings)
			md.TotalCharacters += r.Characters()
		} else {
			md.FailedURLs++
			md.FailedURLDetails = append(md.FailedURLDetails, FailedURL{URL: r.URL, Error: r.Error})
		}
	}
	md.TotalTextItems = md.TotalParagraphs + md.TotalHeadings
	return md
}

// Validate checks the aggregation invariants. Used by tests and the
// collector's sanity pass before persisting.
func (m *CollectionMetadata) Validate() error {
	if m.SuccessfulURLs+m.FailedURLs != m.TotalURLs {
		return fmt.Errorf("url counts do not add up: %d + %d != %d",
			m.SuccessfulURLs, m.FailedURLs, m.TotalURLs)
	}
	if m.TotalTextItems != m.TotalParagraphs+m.TotalHeadings {
		return fmt.Errorf("text item count %d != paragraphs %d + headings %d",
			m.TotalTextItems, m.TotalParagraphs, m.TotalHeadings)
	}
	if len(m.FailedURLDetails) != m.FailedURLs {
		return fmt.Errorf("failure detail count %d != failed url count %d",
			len(m.FailedURLDetails), m.FailedURLs)
	}
	return nil
}

// CleaningStats summarizes one cleaning run over a raw artifact.
type CleaningStats struct {
	OriginalLines       int       `json:"original_lines"`
	CleanedLines        int       `json:"cleaned_lines"`
	FinalLines          int       `json:"final_lines"`
	DuplicatesRemoved   int       `json:"duplicates_removed"`
	ReductionPercentage float64   `json:"reduction_percentage"`
	CleaningDate        time.Time `json:"cleaning_date"`
}

// Validate checks the cleaning invariants: final <= cleaned <= original
// and duplicates_removed == cleaned - final.
func (s *CleaningStats) Validate() error {
	if s.FinalLines < 0 || s.FinalLines > s.CleanedLines || s.CleanedLines > s.OriginalLines {
		return fmt.Errorf("line counts out of order: final %d, cleaned %d, original %d",
			s.FinalLines, s.CleanedLines, s.OriginalLines)
	}
	if s.DuplicatesRemoved != s.CleanedLines-s.FinalLines {
		return fmt.Errorf("duplicates removed %d != cleaned %d - final %d",
			s.DuplicatesRemoved, s.CleanedLines, s.FinalLines)
	}
	return nil
}
