// +build ocr

package extractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// OCRExtractor reads text out of scanned page images with Tesseract.
// Built only with the "ocr" tag; the default build uses the fallback.
type OCRExtractor struct {
	Language             string
	PageSegmentationMode gosseract.PageSegMode
}

// NewOCRExtractor creates an OCR extractor tuned for Telugu scans.
func NewOCRExtractor() *OCRExtractor {
	return &OCRExtractor{
		Language:             "tel",
		PageSegmentationMode: gosseract.PSM_AUTO,
	}
}

func (o *OCRExtractor) Extract(ctx context.Context, content []byte) (*Result, error) {
	if len(content) == 0 {
		return nil, &ExtractionError{Format: "ocr", Message: "no image content"}
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(o.Language); err != nil {
		return nil, &ExtractionError{Format: "ocr", Message: fmt.Sprintf("language %q unavailable: %v", o.Language, err)}
	}
	if err := client.SetPageSegMode(o.PageSegmentationMode); err != nil {
		return nil, &ExtractionError{Format: "ocr", Message: fmt.Sprintf("page segmentation mode: %v", err)}
	}
	if err := client.SetImageFromBytes(content); err != nil {
		return nil, &ExtractionError{Format: "ocr", Message: fmt.Sprintf("image rejected: %v", err)}
	}

	text, err := client.Text()
	if err != nil {
		return nil, &ExtractionError{Format: "ocr", Message: fmt.Sprintf("recognition failed: %v", err)}
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil, &ExtractionError{Format: "ocr", Message: "no recognizable text"}
	}

	metadata := map[string]string{
		"type":     "ocr",
		"language": o.Language,
		"engine":   "tesseract",
	}
	if confidence, err := client.GetMeanConfidence(); err == nil {
		metadata["confidence"] = fmt.Sprintf("%.2f", confidence)
	}

	return &Result{
		Paragraphs: paragraphs,
		Headings:   []string{},
		Metadata:   metadata,
	}, nil
}
