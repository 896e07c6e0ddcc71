package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pdf-extract-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Error(string, error, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})         {}

func newRepo(t *testing.T, layout domain.StorageLayout) *FileArtifactRepository {
	t.Helper()
	root := filepath.Join(t.TempDir(), "uploads")
	repo, err := NewFileArtifactRepository(root, layout, nopLogger{})
	require.NoError(t, err)
	return repo
}

func sum(b string) string {
	h := sha256.Sum256([]byte(b))
	return hex.EncodeToString(h[:])
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestNewFileArtifactRepository_CreatesRoot(t *testing.T) {
	repo := newRepo(t, domain.LayoutScoped)
	st, err := os.Stat(repo.Root())
	require.NoError(t, err)
	assert.True(t, st.IsDir())

	_, err = NewFileArtifactRepository(t.TempDir(), domain.StorageLayout("flat"), nopLogger{})
	assert.Error(t, err)
}

func TestSave_Scoped(t *testing.T) {
	repo := newRepo(t, domain.LayoutScoped)
	ctx := context.Background()

	src, err := repo.Save(ctx, "../../report.pdf", strings.NewReader("pdf-bytes"))
	require.NoError(t, err)

	assert.Equal(t, sum("pdf-bytes"), src.Key)
	assert.Equal(t, src.Key, src.SHA256)
	assert.Equal(t, "../../report.pdf", src.OriginalName)
	assert.Equal(t, int64(9), src.Size)
	assert.Equal(t, filepath.Join(repo.Root(), src.Key, "source.pdf"), src.Path)

	data, err := os.ReadFile(src.Path)
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(data))

	// only the artifact directory, no leftover temp file
	assert.Equal(t, []string{src.Key}, dirEntries(t, repo.Root()))
}

func TestSave_SharedUsesBaseName(t *testing.T) {
	repo := newRepo(t, domain.LayoutShared)
	ctx := context.Background()

	src, err := repo.Save(ctx, "../../etc/report.pdf", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repo.Root(), "report.pdf"), src.Path)

	// same name overwrites
	_, err = repo.Save(ctx, "report.pdf", strings.NewReader("second"))
	require.NoError(t, err)
	data, err := os.ReadFile(src.Path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
	assert.Equal(t, []string{"report.pdf"}, dirEntries(t, repo.Root()))
}

func TestSave_SharedRejectsEmptyName(t *testing.T) {
	repo := newRepo(t, domain.LayoutShared)
	for _, name := range []string{"", ".", "..", "/", "a/.."} {
		_, err := repo.Save(context.Background(), name, strings.NewReader("x"))
		assert.ErrorIs(t, err, domain.ErrNoSelectedFile, name)
	}
	assert.Empty(t, dirEntries(t, repo.Root()))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestSave_FailedCopyLeavesNothing(t *testing.T) {
	repo := newRepo(t, domain.LayoutShared)
	_, err := repo.Save(context.Background(), "a.pdf", failingReader{})
	require.Error(t, err)
	assert.Empty(t, dirEntries(t, repo.Root()))
}

func TestSave_CanceledContext(t *testing.T) {
	repo := newRepo(t, domain.LayoutScoped)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.Save(ctx, "a.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteText_SharedFixedFile(t *testing.T) {
	repo := newRepo(t, domain.LayoutShared)
	ctx := context.Background()

	p1, err := repo.WriteText(ctx, sum("a"), []byte("A\n\n"))
	require.NoError(t, err)
	p2, err := repo.WriteText(ctx, sum("b"), []byte("B\n\n"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(repo.Root(), domain.TextFileName), p1)
	assert.Equal(t, p1, p2)
	data, err := os.ReadFile(p1)
	require.NoError(t, err)
	assert.Equal(t, "B\n\n", string(data))
}

func TestScopedRoundTrip(t *testing.T) {
	repo := newRepo(t, domain.LayoutScoped)
	ctx := context.Background()

	src, err := repo.Save(ctx, "doc.pdf", strings.NewReader("doc"))
	require.NoError(t, err)
	path, err := repo.WriteText(ctx, src.Key, []byte("Hello\n\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repo.Root(), src.Key, domain.TextFileName), path)

	f, art, err := repo.Open(src.Key)
	require.NoError(t, err)
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Equal(t, "Hello\n\n", string(data))
	assert.Equal(t, src.Key, art.ID)
	assert.Equal(t, int64(7), art.Size)

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, src.Key, list[0].ID)

	require.NoError(t, repo.Remove(src.Key))
	_, _, err = repo.Open(src.Key)
	assert.ErrorIs(t, err, domain.ErrExtractionNotFound)
	assert.ErrorIs(t, repo.Remove(src.Key), domain.ErrExtractionNotFound)
}

func TestScoped_ListSkipsIncomplete(t *testing.T) {
	repo := newRepo(t, domain.LayoutScoped)
	_, err := repo.Save(context.Background(), "doc.pdf", strings.NewReader("no text yet"))
	require.NoError(t, err)
	require.NoError(t, os.Mkdir(filepath.Join(repo.Root(), "not-a-key"), 0o755))

	list, err := repo.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestScoped_InvalidKey(t *testing.T) {
	repo := newRepo(t, domain.LayoutScoped)

	_, _, err := repo.Open("../etc")
	assert.ErrorIs(t, err, domain.ErrInvalidExtraction)
	assert.ErrorIs(t, repo.Remove("ABC"), domain.ErrInvalidExtraction)
	_, err = repo.WriteText(context.Background(), "nope", []byte("x"))
	assert.ErrorIs(t, err, domain.ErrInvalidExtraction)
}

func TestShared_RetrievalUnsupported(t *testing.T) {
	repo := newRepo(t, domain.LayoutShared)

	_, _, err := repo.Open(sum("x"))
	assert.ErrorIs(t, err, domain.ErrLayoutUnsupported)
	assert.ErrorIs(t, repo.Remove(sum("x")), domain.ErrLayoutUnsupported)
	_, err = repo.List()
	assert.ErrorIs(t, err, domain.ErrLayoutUnsupported)
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"report.pdf":           "report.pdf",
		"dir/report.pdf":       "report.pdf",
		"../../etc/passwd":     "passwd",
		`C:\Users\me\scan.pdf`: "scan.pdf",
	}
	for in, want := range cases {
		got, err := SanitizeFilename(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}
