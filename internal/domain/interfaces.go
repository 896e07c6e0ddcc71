package domain

import (
	"context"
	"io"
	"time"
)

// TextExtractor defines the strategy interface for text extraction
type TextExtractor interface {
	// Name identifies the backend in logs and metrics
	Name() string
	// ExtractPages returns the plain text of every page, in page order
	ExtractPages(ctx context.Context, path string) ([]PageText, error)
}

// ArtifactStore defines the interface for the on-disk artifact workspace
type ArtifactStore interface {
	Layout() StorageLayout
	Save(ctx context.Context, filename string, r io.Reader) (*Source, error)
	WriteText(ctx context.Context, key string, text []byte) (string, error)
	Open(key string) (io.ReadSeekCloser, *Artifact, error)
	Remove(key string) error
	List() ([]*Artifact, error)
}

// ArtifactMirror copies finished artifacts to secondary storage
type ArtifactMirror interface {
	Mirror(ctx context.Context, extraction *Extraction) error
}

// ExtractionService defines the extraction use cases
type ExtractionService interface {
	Extract(ctx context.Context, upload *Upload) (*Extraction, error)
	Get(ctx context.Context, key string) (io.ReadSeekCloser, *Artifact, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]*Artifact, error)
	Layout() StorageLayout
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetUploadPath() string
	GetMaxFileSize() int64
	GetLogLevel() string
	GetLogFormat() string
	GetStorageLayout() StorageLayout
	GetExtractor() string
	GetPageTimeout() time.Duration
	GetAllowedOrigins() []string
	GetSupabaseURL() string
	GetSupabaseKey() string
	GetSupabaseBucket() string
}
