package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor pulls plain text out of PDF documents page by page.
type PDFExtractor struct {
	MaxPages int
}

func (p *PDFExtractor) Extract(ctx context.Context, content []byte) (*Result, error) {
	if len(content) < 4 || string(content[:4]) != "%PDF" {
		return nil, &ExtractionError{Format: "pdf", Message: "missing %PDF header"}
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, &ExtractionError{Format: "pdf", Message: fmt.Sprintf("parse failed: %v", err)}
	}

	var textBuilder strings.Builder
	extracted := 0
	for i := 1; i <= reader.NumPage(); i++ {
		if p.MaxPages > 0 && extracted >= p.MaxPages {
			break
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// A torn page should not lose the rest of the document.
			continue
		}
		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
		extracted++
	}

	paragraphs := splitParagraphs(textBuilder.String())
	if len(paragraphs) == 0 {
		return nil, &ExtractionError{Format: "pdf", Message: "no extractable text"}
	}

	return &Result{
		Paragraphs: paragraphs,
		Headings:   []string{},
		Metadata: map[string]string{
			"type":            "pdf",
			"pages":           fmt.Sprintf("%d", reader.NumPage()),
			"extracted_pages": fmt.Sprintf("%d", extracted),
		},
	}, nil
}
