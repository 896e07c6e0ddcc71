package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"pdf-extract-server/internal/domain"
	apperrors "pdf-extract-server/pkg/errors"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
	"golang.org/x/sync/errgroup"
)

const (
	sourceObject   = "source.pdf"
	pdfContentType = "application/pdf"
	txtContentType = "text/plain; charset=utf-8"
)

// objectUploader is the slice of the storage client the mirror needs
type objectUploader interface {
	UploadFile(bucketID string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
}

// StorageMirror copies each finished extraction into a Supabase Storage bucket
// under "<id>/source.pdf" and "<id>/extracted_text.txt".
type StorageMirror struct {
	uploader objectUploader
	bucket   string
	logger   domain.Logger
}

var _ domain.ArtifactMirror = (*StorageMirror)(nil)

// NewStorageMirror creates a mirror backed by the configured Supabase project
func NewStorageMirror(config domain.Config, logger domain.Logger) (*StorageMirror, error) {
	supabaseURL := config.GetSupabaseURL()
	supabaseKey := config.GetSupabaseKey()
	bucket := config.GetSupabaseBucket()

	if supabaseURL == "" || supabaseKey == "" || bucket == "" {
		return nil, fmt.Errorf("supabase URL, key and bucket must be provided")
	}

	client, err := supabase.NewClient(supabaseURL, supabaseKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}

	logger.Info("Supabase storage mirror initialized", "url", supabaseURL, "bucket", bucket)
	return newStorageMirror(client.Storage, bucket, logger), nil
}

func newStorageMirror(uploader objectUploader, bucket string, logger domain.Logger) *StorageMirror {
	return &StorageMirror{
		uploader: uploader,
		bucket:   bucket,
		logger:   logger,
	}
}

// Mirror uploads the source document and its text concurrently.
func (m *StorageMirror) Mirror(ctx context.Context, extraction *domain.Extraction) error {
	if extraction == nil || extraction.Source == nil {
		return fmt.Errorf("mirror: missing extraction source")
	}
	key := extraction.Source.Key

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := os.Open(extraction.Source.Path)
		if err != nil {
			return fmt.Errorf("open source: %w", err)
		}
		defer f.Close()
		return m.upload(gctx, path.Join(key, sourceObject), f, pdfContentType)
	})
	g.Go(func() error {
		return m.upload(gctx, path.Join(key, domain.TextFileName), bytes.NewReader(extraction.Text), txtContentType)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	m.logger.Debug("Extraction mirrored", "id", key, "bucket", m.bucket)
	return nil
}

func (m *StorageMirror) upload(ctx context.Context, objectPath string, data io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	upsert := true
	_, err := m.uploader.UploadFile(m.bucket, objectPath, data, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return apperrors.NewNetworkError("upload "+objectPath, err)
	}
	return nil
}
