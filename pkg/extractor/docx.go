package extractor

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

// DOCXExtractor pulls text out of Word documents.
type DOCXExtractor struct{}

func (d *DOCXExtractor) Extract(ctx context.Context, content []byte) (*Result, error) {
	// DOCX is a ZIP container; check the signature before parsing.
	if len(content) < 4 || content[0] != 0x50 || content[1] != 0x4B {
		return nil, &ExtractionError{Format: "docx", Message: "missing ZIP signature"}
	}

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, &ExtractionError{Format: "docx", Message: fmt.Sprintf("parse failed: %v", err)}
	}

	text := doc.Editable().GetContent()
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil, &ExtractionError{Format: "docx", Message: "no extractable text"}
	}

	return &Result{
		Paragraphs: paragraphs,
		Headings:   []string{},
		Metadata: map[string]string{
			"type":       "docx",
			"paragraphs": fmt.Sprintf("%d", len(paragraphs)),
		},
	}, nil
}
