package service

import (
	"fmt"
	"time"

	"pdf-extract-server/internal/domain"
)

// NewTextExtractor returns the backend registered under name
func NewTextExtractor(name string, pageTimeout time.Duration, logger domain.Logger) (domain.TextExtractor, error) {
	switch name {
	case "", "fitz", "mupdf":
		return NewFitzExtractor(pageTimeout, logger), nil
	case "ledongthuc", "pure-go":
		return NewLedongthucExtractor(pageTimeout, logger), nil
	default:
		return nil, fmt.Errorf("unknown extractor %q", name)
	}
}
