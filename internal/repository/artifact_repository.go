package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"pdf-extract-server/internal/domain"
)

const sourceFileName = "source.pdf"

var artifactKeyPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// FileArtifactRepository implements domain.ArtifactStore on the local filesystem.
type FileArtifactRepository struct {
	root   string
	layout domain.StorageLayout
	logger domain.Logger
}

// NewFileArtifactRepository creates the upload directory if absent.
func NewFileArtifactRepository(root string, layout domain.StorageLayout, logger domain.Logger) (*FileArtifactRepository, error) {
	if !layout.Valid() {
		return nil, fmt.Errorf("unknown storage layout %q", layout)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	logger.Info("Artifact workspace ready", "root", root, "layout", string(layout))
	return &FileArtifactRepository{root: root, layout: layout, logger: logger}, nil
}

// Layout returns the configured storage layout
func (r *FileArtifactRepository) Layout() domain.StorageLayout {
	return r.layout
}

// Root returns the upload directory
func (r *FileArtifactRepository) Root() string {
	return r.root
}

// Save streams the upload into the workspace and returns where it landed.
// The bytes go to a temporary file first so a failed copy never leaves a
// partial file under its final name.
func (r *FileArtifactRepository) Save(ctx context.Context, filename string, src io.Reader) (*domain.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var target string
	if r.layout == domain.LayoutShared {
		name, err := SanitizeFilename(filename)
		if err != nil {
			return nil, err
		}
		target = filepath.Join(r.root, name)
	}

	tmp, err := os.CreateTemp(r.root, ".upload-*.part")
	if err != nil {
		return nil, fmt.Errorf("create temp upload: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}
	sum := hex.EncodeToString(hasher.Sum(nil))

	if r.layout == domain.LayoutScoped {
		dir := filepath.Join(r.root, sum)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create artifact directory: %w", err)
		}
		target = filepath.Join(dir, sourceFileName)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	r.logger.Debug("Upload stored", "path", target, "size", size)
	return &domain.Source{
		Key:          sum,
		OriginalName: filename,
		Path:         target,
		Size:         size,
		SHA256:       sum,
	}, nil
}

// WriteText overwrites the extraction result for key and returns its path.
// In the shared layout every key maps to the same fixed file.
func (r *FileArtifactRepository) WriteText(ctx context.Context, key string, text []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target, err := r.textPath(key)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".text-*.part")
	if err != nil {
		return "", fmt.Errorf("create temp text file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, err = tmp.Write(text)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write text file: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		return "", fmt.Errorf("store text file: %w", err)
	}
	return target, nil
}

// Open returns the stored text of a scoped artifact
func (r *FileArtifactRepository) Open(key string) (io.ReadSeekCloser, *domain.Artifact, error) {
	if r.layout != domain.LayoutScoped {
		return nil, nil, domain.ErrLayoutUnsupported
	}
	path, err := r.textPath(key)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, domain.ErrExtractionNotFound
		}
		return nil, nil, fmt.Errorf("open text file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat text file: %w", err)
	}
	return f, &domain.Artifact{ID: key, Size: st.Size(), CreatedAt: st.ModTime().UTC()}, nil
}

// Remove deletes a scoped artifact directory
func (r *FileArtifactRepository) Remove(key string) error {
	if r.layout != domain.LayoutScoped {
		return domain.ErrLayoutUnsupported
	}
	if !artifactKeyPattern.MatchString(key) {
		return domain.ErrInvalidExtraction
	}
	dir := filepath.Join(r.root, key)
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.ErrExtractionNotFound
		}
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove artifact: %w", err)
	}
	r.logger.Info("Artifact removed", "id", key)
	return nil
}

// List returns every scoped artifact that has a text result, newest first
func (r *FileArtifactRepository) List() ([]*domain.Artifact, error) {
	if r.layout != domain.LayoutScoped {
		return nil, domain.ErrLayoutUnsupported
	}
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("read upload directory: %w", err)
	}

	artifacts := make([]*domain.Artifact, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || !artifactKeyPattern.MatchString(e.Name()) {
			continue
		}
		st, err := os.Stat(filepath.Join(r.root, e.Name(), domain.TextFileName))
		if err != nil {
			continue
		}
		artifacts = append(artifacts, &domain.Artifact{
			ID:        e.Name(),
			Size:      st.Size(),
			CreatedAt: st.ModTime().UTC(),
		})
	}
	sort.Slice(artifacts, func(i, j int) bool {
		if artifacts[i].CreatedAt.Equal(artifacts[j].CreatedAt) {
			return artifacts[i].ID < artifacts[j].ID
		}
		return artifacts[i].CreatedAt.After(artifacts[j].CreatedAt)
	})
	return artifacts, nil
}

func (r *FileArtifactRepository) textPath(key string) (string, error) {
	if r.layout == domain.LayoutShared {
		return filepath.Join(r.root, domain.TextFileName), nil
	}
	if !artifactKeyPattern.MatchString(key) {
		return "", domain.ErrInvalidExtraction
	}
	return filepath.Join(r.root, key, domain.TextFileName), nil
}

// SanitizeFilename reduces a client-supplied name to a single path element.
func SanitizeFilename(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "" || base == "." || base == ".." || base == "/" {
		return "", domain.ErrNoSelectedFile
	}
	return base, nil
}
