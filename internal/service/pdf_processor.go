package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pdf-extract-server/internal/domain"

	"github.com/gen2brain/go-fitz"
)

// FitzExtractor extracts page text with MuPDF through go-fitz.
type FitzExtractor struct {
	pageTimeout time.Duration
	classify    ClassifyFunc
	logger      domain.Logger
}

var _ domain.TextExtractor = (*FitzExtractor)(nil)

// NewFitzExtractor creates a MuPDF-backed extractor
func NewFitzExtractor(pageTimeout time.Duration, logger domain.Logger) *FitzExtractor {
	return &FitzExtractor{
		pageTimeout: pageTimeout,
		classify:    ClassifyOpenFailure,
		logger:      logger,
	}
}

// Name returns the backend name
func (e *FitzExtractor) Name() string { return "fitz" }

// ExtractPages opens the PDF at path and returns the text of each page in order.
func (e *FitzExtractor) ExtractPages(ctx context.Context, path string) ([]domain.PageText, error) {
	doc, err := openFitz(path)
	if err != nil {
		if errors.Is(err, fitz.ErrNeedsPassword) {
			return nil, domain.NewExtractionError(domain.ReasonEncrypted, err)
		}
		return nil, e.classify(path, err)
	}

	reader := newPageReader(e.pageTimeout)
	defer reader.release(func() { _ = doc.Close() })

	numPages := doc.NumPage()
	if numPages <= 0 {
		return nil, domain.NewExtractionError(domain.ReasonNoPages, fmt.Errorf("document has no pages"))
	}

	pages := make([]domain.PageText, 0, numPages)
	for pageNum := 0; pageNum < numPages; pageNum++ {
		e.logger.Debug("PDF processing page", "backend", e.Name(), "page", pageNum+1, "total", numPages)
		idx := pageNum
		text, err := reader.read(ctx, pageNum+1, func() (string, error) {
			return doc.Text(idx)
		})
		if err != nil {
			e.logger.Warn("Failed to extract text from page", "backend", e.Name(), "page", pageNum+1, "total", numPages, "error", err)
			return nil, err
		}
		pages = append(pages, domain.PageText{Number: pageNum + 1, Text: text})
	}
	return pages, nil
}

// openFitz guards against panics raised while MuPDF parses a damaged file.
func openFitz(path string) (doc *fitz.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("panic opening document: %v", r)
		}
	}()
	return fitz.New(path)
}
