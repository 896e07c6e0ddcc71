package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"pdf-extract-server/internal/domain"
	apperrors "pdf-extract-server/pkg/errors"

	"golang.org/x/sync/singleflight"
)

// ExtractionService implements the upload -> extract -> deliver workflow
type ExtractionService struct {
	store     domain.ArtifactStore
	extractor domain.TextExtractor
	mirror    domain.ArtifactMirror
	metrics   *ExtractionMetrics
	logger    domain.Logger

	// sharedMu serializes whole requests in the shared layout, where every
	// request writes the same output file.
	sharedMu sync.Mutex
	// inflight collapses concurrent extractions of identical content.
	inflight singleflight.Group

	now func() time.Time
}

var _ domain.ExtractionService = (*ExtractionService)(nil)

// NewExtractionService creates a new extraction service instance.
// mirror and metrics may be nil.
func NewExtractionService(
	store domain.ArtifactStore,
	extractor domain.TextExtractor,
	mirror domain.ArtifactMirror,
	metrics *ExtractionMetrics,
	logger domain.Logger,
) *ExtractionService {
	if mirror == nil {
		mirror = NoopMirror{}
	}
	return &ExtractionService{
		store:     store,
		extractor: extractor,
		mirror:    mirror,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Layout returns the storage layout of the underlying workspace
func (s *ExtractionService) Layout() domain.StorageLayout {
	return s.store.Layout()
}

// Extract stores the upload, extracts every page and writes the joined text.
func (s *ExtractionService) Extract(ctx context.Context, upload *domain.Upload) (*domain.Extraction, error) {
	if upload == nil || upload.Reader == nil {
		return nil, domain.ErrNoFileUploaded
	}
	if upload.Filename == "" {
		return nil, domain.ErrNoSelectedFile
	}

	if s.store.Layout() == domain.LayoutShared {
		s.sharedMu.Lock()
		defer s.sharedMu.Unlock()
	}

	src, err := s.store.Save(ctx, upload.Filename, upload.Reader)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Upload received", "id", src.Key, "filename", src.OriginalName, "size", src.Size)

	if s.store.Layout() == domain.LayoutShared {
		return s.run(ctx, src)
	}

	// One client dropping must not fail the others waiting on the same flight.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := s.inflight.Do(src.Key, func() (interface{}, error) {
		return s.run(flightCtx, src)
	})
	if err != nil {
		return nil, err
	}
	ext := v.(*domain.Extraction)
	if !shared {
		return ext, nil
	}

	s.logger.Debug("Joined in-flight extraction", "id", src.Key)
	cp := *ext
	srcCopy := *ext.Source
	srcCopy.OriginalName = src.OriginalName
	cp.Source = &srcCopy
	return &cp, nil
}

func (s *ExtractionService) run(ctx context.Context, src *domain.Source) (*domain.Extraction, error) {
	backend := s.extractor.Name()
	start := s.now()

	pages, err := s.extractor.ExtractPages(ctx, src.Path)
	if err != nil {
		result := "error"
		if reason, ok := domain.ReasonOf(err); ok {
			result = string(reason)
		}
		s.metrics.observeFailure(backend, result)
		s.logger.Warn("Extraction failed", "id", src.Key, "backend", backend, "result", result, "error", err)
		return nil, err
	}

	text := domain.JoinPages(pages)
	path, err := s.store.WriteText(ctx, src.Key, text)
	if err != nil {
		s.metrics.observeFailure(backend, "storage")
		return nil, err
	}

	took := s.now().Sub(start)
	ext := &domain.Extraction{
		Source:    src,
		TextPath:  path,
		Text:      text,
		PageCount: len(pages),
		Backend:   backend,
		Duration:  took,
		CreatedAt: s.now().UTC(),
	}
	s.metrics.observeSuccess(backend, len(pages), took)
	s.logger.Info("Extraction finished",
		"id", src.Key,
		"backend", backend,
		"page_count", len(pages),
		"text_bytes", len(text),
		"duration_ms", took.Milliseconds(),
	)

	if err := s.mirror.Mirror(ctx, ext); err != nil {
		s.metrics.observeMirrorFailure()
		s.logger.Error("Failed to mirror artifact", err,
			"id", src.Key,
			"retryable", apperrors.IsType(err, apperrors.ErrorTypeNetwork),
			"cause", errors.Unwrap(err),
		)
	}
	return ext, nil
}

// Get returns the stored text of a previous extraction
func (s *ExtractionService) Get(ctx context.Context, key string) (io.ReadSeekCloser, *domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return s.store.Open(key)
}

// Delete removes a previous extraction
func (s *ExtractionService) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.Remove(key)
}

// List returns all stored extractions
func (s *ExtractionService) List(ctx context.Context) ([]*domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	artifacts, err := s.store.List()
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	return artifacts, nil
}

// NoopMirror is used when no secondary storage is configured
type NoopMirror struct{}

// Mirror does nothing
func (NoopMirror) Mirror(context.Context, *domain.Extraction) error { return nil }
