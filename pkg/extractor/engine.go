// Package extractor turns fetched bytes into candidate corpus text.
// Extractors are format-specific and deliberately unfiltered: they
// report every paragraph and heading they find, and the fetcher applies
// the script-ratio and length filters afterwards.
package extractor

import (
	"context"
	"fmt"
	"strings"
)

// Result is the structured output of one extraction.
type Result struct {
	Title      string            `json:"title,omitempty"`
	Paragraphs []string          `json:"paragraphs"`
	Headings   []string          `json:"headings"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// Extractor extracts text from one content format.
type Extractor interface {
	Extract(ctx context.Context, content []byte) (*Result, error)
}

// ExtractionError is a non-retryable extraction failure: the bytes are
// not what the format promised, or hold no text.
type ExtractionError struct {
	Format  string
	Message string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s extraction failed: %s", e.Format, e.Message)
}

// Engine dispatches content to the right extractor by format name.
type Engine struct {
	extractors map[string]Extractor
}

// NewEngine creates an engine with all supported formats registered.
func NewEngine() *Engine {
	return &Engine{
		extractors: map[string]Extractor{
			"text": &TextExtractor{},
			"txt":  &TextExtractor{},
			"html": NewHTMLExtractor(),
			"pdf":  &PDFExtractor{MaxPages: 1000},
			"docx": &DOCXExtractor{},
			"doc":  &DOCXExtractor{}, // best effort, same parser
			"png":  NewOCRExtractor(),
			"jpg":  NewOCRExtractor(),
			"jpeg": NewOCRExtractor(),
			"tiff": NewOCRExtractor(),
		},
	}
}

// Extract runs the extractor registered for the format.
func (e *Engine) Extract(ctx context.Context, content []byte, format string) (*Result, error) {
	ex, ok := e.extractors[strings.ToLower(format)]
	if !ok {
		return nil, &ExtractionError{Format: format, Message: "unsupported format"}
	}
	return ex.Extract(ctx, content)
}

// FormatForContentType maps an HTTP Content-Type header to a
// registered format name.
func FormatForContentType(contentType string) (string, bool) {
	mediaType := strings.ToLower(contentType)
	if idx := strings.Index(mediaType, ";"); idx != -1 {
		mediaType = mediaType[:idx]
	}
	mediaType = strings.TrimSpace(mediaType)

	switch mediaType {
	case "text/html", "application/xhtml+xml":
		return "html", true
	case "text/plain", "":
		return "text", true
	case "application/pdf":
		return "pdf", true
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return "docx", true
	case "application/msword":
		return "doc", true
	case "image/png":
		return "png", true
	case "image/jpeg":
		return "jpeg", true
	case "image/tiff":
		return "tiff", true
	}
	return "", false
}

// TextExtractor treats content as plain UTF-8 text; blank-line-separated
// runs become paragraphs.
type TextExtractor struct{}

func (t *TextExtractor) Extract(ctx context.Context, content []byte) (*Result, error) {
	paragraphs := splitParagraphs(string(content))
	return &Result{
		Paragraphs: paragraphs,
		Headings:   []string{},
		Metadata: map[string]string{
			"type":       "text",
			"paragraphs": fmt.Sprintf("%d", len(paragraphs)),
		},
	}, nil
}

// splitParagraphs breaks extracted text into candidate paragraphs on
// line boundaries, dropping blanks.
func splitParagraphs(text string) []string {
	paragraphs := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return paragraphs
}
