package service

import (
	"fmt"
	"strings"
	"sync"

	"pdf-extract-server/internal/domain"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ClassifyFunc turns a backend open failure into a classified extraction error
type ClassifyFunc func(path string, cause error) *domain.ExtractionError

var disablePdfcpuConfig sync.Once

// ClassifyOpenFailure asks pdfcpu whether the file is a readable PDF at all.
// If pdfcpu cannot read it either the file is corrupt (or encrypted); if pdfcpu
// can, the selected backend just does not support it.
func ClassifyOpenFailure(path string, cause error) *domain.ExtractionError {
	disablePdfcpuConfig.Do(api.DisableConfigDir)

	count, err := pdfcpuPageCount(path)
	switch {
	case err != nil:
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "encrypt") || strings.Contains(msg, "password") {
			return domain.NewExtractionError(domain.ReasonEncrypted, cause)
		}
		return domain.NewExtractionError(domain.ReasonCorrupt, cause)
	case count == 0:
		return domain.NewExtractionError(domain.ReasonNoPages, cause)
	default:
		return domain.NewExtractionError(domain.ReasonUnsupported, cause)
	}
}

func pdfcpuPageCount(path string) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			count, err = 0, fmt.Errorf("pdfcpu: %v", r)
		}
	}()
	return api.PageCountFile(path)
}
