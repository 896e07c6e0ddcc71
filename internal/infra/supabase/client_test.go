package supabase

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"pdf-extract-server/internal/domain"
	apperrors "pdf-extract-server/pkg/errors"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Error(string, error, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})         {}

type uploadedObject struct {
	bucket      string
	body        string
	contentType string
	upsert      bool
}

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string]uploadedObject
	failOn  string
}

func (f *fakeUploader) UploadFile(bucketID string, relativePath string, data io.Reader, opts ...storage_go.FileOptions) (storage_go.FileUploadResponse, error) {
	if relativePath == f.failOn {
		return storage_go.FileUploadResponse{}, errors.New("bucket not found")
	}
	body, err := io.ReadAll(data)
	if err != nil {
		return storage_go.FileUploadResponse{}, err
	}
	obj := uploadedObject{bucket: bucketID, body: string(body)}
	if len(opts) > 0 {
		if opts[0].ContentType != nil {
			obj.contentType = *opts[0].ContentType
		}
		if opts[0].Upsert != nil {
			obj.upsert = *opts[0].Upsert
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects == nil {
		f.objects = make(map[string]uploadedObject)
	}
	f.objects[relativePath] = obj
	return storage_go.FileUploadResponse{}, nil
}

func testExtraction(t *testing.T) *domain.Extraction {
	t.Helper()
	src := filepath.Join(t.TempDir(), "source.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4 body"), 0o644))
	return &domain.Extraction{
		Source:    &domain.Source{Key: "abc123", OriginalName: "report.pdf", Path: src},
		Text:      []byte("Hello\n\n"),
		PageCount: 1,
		CreatedAt: time.Now(),
	}
}

func TestStorageMirror_UploadsBothArtifacts(t *testing.T) {
	up := &fakeUploader{}
	m := newStorageMirror(up, "extractions", nopLogger{})

	require.NoError(t, m.Mirror(context.Background(), testExtraction(t)))

	var paths []string
	for p := range up.objects {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{"abc123/extracted_text.txt", "abc123/source.pdf"}, paths)

	src := up.objects["abc123/source.pdf"]
	assert.Equal(t, "extractions", src.bucket)
	assert.Equal(t, "%PDF-1.4 body", src.body)
	assert.Equal(t, "application/pdf", src.contentType)
	assert.True(t, src.upsert)

	txt := up.objects["abc123/extracted_text.txt"]
	assert.Equal(t, "Hello\n\n", txt.body)
	assert.Equal(t, "text/plain; charset=utf-8", txt.contentType)
}

func TestStorageMirror_UploadFailure(t *testing.T) {
	up := &fakeUploader{failOn: "abc123/extracted_text.txt"}
	m := newStorageMirror(up, "extractions", nopLogger{})

	err := m.Mirror(context.Background(), testExtraction(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "abc123/extracted_text.txt")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNetwork))
	assert.EqualError(t, errors.Unwrap(err), "bucket not found")
}

func TestStorageMirror_MissingSource(t *testing.T) {
	m := newStorageMirror(&fakeUploader{}, "extractions", nopLogger{})
	ext := testExtraction(t)
	ext.Source.Path = filepath.Join(t.TempDir(), "gone.pdf")

	assert.Error(t, m.Mirror(context.Background(), ext))
	assert.Error(t, m.Mirror(context.Background(), nil))
}

func TestStorageMirror_CanceledContext(t *testing.T) {
	up := &fakeUploader{}
	m := newStorageMirror(up, "extractions", nopLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Mirror(ctx, testExtraction(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, up.objects)
}

type stubConfig struct {
	url, key, bucket string
}

func (stubConfig) GetServerPort() string                  { return "5000" }
func (stubConfig) GetUploadPath() string                  { return "uploads" }
func (stubConfig) GetMaxFileSize() int64                  { return 0 }
func (stubConfig) GetLogLevel() string                    { return "info" }
func (stubConfig) GetLogFormat() string                   { return "json" }
func (stubConfig) GetStorageLayout() domain.StorageLayout { return domain.LayoutScoped }
func (stubConfig) GetExtractor() string                   { return "fitz" }
func (stubConfig) GetPageTimeout() time.Duration          { return time.Second }
func (stubConfig) GetAllowedOrigins() []string            { return []string{"*"} }
func (c stubConfig) GetSupabaseURL() string               { return c.url }
func (c stubConfig) GetSupabaseKey() string               { return c.key }
func (c stubConfig) GetSupabaseBucket() string            { return c.bucket }

func TestNewStorageMirror_RequiresSettings(t *testing.T) {
	_, err := NewStorageMirror(stubConfig{url: "http://localhost:54321", key: "k"}, nopLogger{})
	assert.Error(t, err)

	_, err = NewStorageMirror(stubConfig{bucket: "extractions"}, nopLogger{})
	assert.Error(t, err)
}
