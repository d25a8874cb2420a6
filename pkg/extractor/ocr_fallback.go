// +build !ocr

package extractor

import (
	"context"
)

// OCRExtractor is the no-Tesseract fallback. Image sources fail with a
// clear message instead of a missing-cgo build error.
type OCRExtractor struct {
	Language string
}

func NewOCRExtractor() *OCRExtractor {
	return &OCRExtractor{Language: "tel"}
}

func (o *OCRExtractor) Extract(ctx context.Context, content []byte) (*Result, error) {
	return nil, &ExtractionError{
		Format:  "ocr",
		Message: "built without OCR support; rebuild with -tags ocr and install tesseract-ocr plus the tel language pack",
	}
}
