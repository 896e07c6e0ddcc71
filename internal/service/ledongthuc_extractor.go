package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"pdf-extract-server/internal/domain"

	"github.com/ledongthuc/pdf"
)

// LedongthucExtractor extracts page text with the pure Go ledongthuc/pdf reader.
type LedongthucExtractor struct {
	pageTimeout time.Duration
	classify    ClassifyFunc
	logger      domain.Logger
}

var _ domain.TextExtractor = (*LedongthucExtractor)(nil)

// NewLedongthucExtractor creates a cgo-free extractor
func NewLedongthucExtractor(pageTimeout time.Duration, logger domain.Logger) *LedongthucExtractor {
	return &LedongthucExtractor{
		pageTimeout: pageTimeout,
		classify:    ClassifyOpenFailure,
		logger:      logger,
	}
}

// Name returns the backend name
func (e *LedongthucExtractor) Name() string { return "ledongthuc" }

// ExtractPages opens the PDF at path and returns the text of each page in order.
// Pages without a page object yield empty text so numbering stays aligned.
func (e *LedongthucExtractor) ExtractPages(ctx context.Context, path string) ([]domain.PageText, error) {
	f, r, err := openLedongthuc(path)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, domain.NewExtractionError(domain.ReasonEncrypted, err)
		}
		return nil, e.classify(path, err)
	}

	reader := newPageReader(e.pageTimeout)
	defer reader.release(func() { _ = f.Close() })

	numPages := r.NumPage()
	if numPages <= 0 {
		return nil, domain.NewExtractionError(domain.ReasonNoPages, fmt.Errorf("document has no pages"))
	}

	pages := make([]domain.PageText, 0, numPages)
	for i := 1; i <= numPages; i++ {
		e.logger.Debug("PDF processing page", "backend", e.Name(), "page", i, "total", numPages)
		num := i
		text, err := reader.read(ctx, i, func() (string, error) {
			page := r.Page(num)
			if page.V.IsNull() {
				return "", nil
			}
			return page.GetPlainText(nil)
		})
		if err != nil {
			e.logger.Warn("Failed to extract text from page", "backend", e.Name(), "page", i, "total", numPages, "error", err)
			return nil, err
		}
		pages = append(pages, domain.PageText{Number: i, Text: text})
	}
	return pages, nil
}

// openLedongthuc recovers from the panics the reader raises on malformed xref tables.
func openLedongthuc(path string) (f *os.File, r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if f != nil {
				f.Close()
			}
			f, r, err = nil, nil, fmt.Errorf("panic opening document: %v", rec)
		}
	}()
	return pdf.Open(path)
}
