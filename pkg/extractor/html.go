package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Boilerplate containers removed before any text is read. These carry
// navigation and chrome, not content.
var boilerplateSelector = "script, style, nav, footer, header, aside"

// HTMLExtractor extracts paragraph and heading text from HTML using a
// real DOM, not regexes.
type HTMLExtractor struct{}

func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

func (h *HTMLExtractor) Extract(ctx context.Context, content []byte) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, &ExtractionError{Format: "html", Message: fmt.Sprintf("parse failed: %v", err)}
	}

	doc.Find(boilerplateSelector).Remove()

	result := &Result{
		Title:      strings.TrimSpace(doc.Find("title").First().Text()),
		Paragraphs: []string{},
		Headings:   []string{},
	}

	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			result.Paragraphs = append(result.Paragraphs, text)
		}
	})

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			result.Headings = append(result.Headings, text)
		}
	})

	result.Metadata = map[string]string{
		"type":       "html",
		"paragraphs": fmt.Sprintf("%d", len(result.Paragraphs)),
		"headings":   fmt.Sprintf("%d", len(result.Headings)),
	}
	return result, nil
}
