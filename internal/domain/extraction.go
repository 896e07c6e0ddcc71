package domain

import (
	"io"
	"time"
)

// PageSeparator is appended after the text of every page
const PageSeparator = "\n\n"

// TextFileName is the name of the extraction result inside the workspace
const TextFileName = "extracted_text.txt"

// StorageLayout selects how artifacts are laid out in the upload directory
type StorageLayout string

const (
	// LayoutScoped keys every artifact by the SHA-256 of the uploaded bytes
	LayoutScoped StorageLayout = "scoped"
	// LayoutShared keeps uploads under their own name and one fixed text file
	LayoutShared StorageLayout = "shared"
)

// Valid reports whether the layout is a known one
func (l StorageLayout) Valid() bool {
	return l == LayoutScoped || l == LayoutShared
}

// Upload is a document received over the wire
type Upload struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// Source is an upload persisted in the workspace
type Source struct {
	Key          string `json:"id"`
	OriginalName string `json:"original_name"`
	Path         string `json:"-"`
	Size         int64  `json:"size"`
	SHA256       string `json:"sha256"`
}

// PageText is the plain text of a single page (1-indexed)
type PageText struct {
	Number int
	Text   string
}

// Extraction is the result of one successful upload
type Extraction struct {
	Source    *Source       `json:"source"`
	TextPath  string        `json:"-"`
	Text      []byte        `json:"-"`
	PageCount int           `json:"page_count"`
	Backend   string        `json:"backend"`
	Duration  time.Duration `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}

// Artifact describes a stored extraction result
type Artifact struct {
	ID        string    `json:"id"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// JoinPages concatenates page texts in order, each followed by PageSeparator
func JoinPages(pages []PageText) []byte {
	n := 0
	for _, p := range pages {
		n += len(p.Text) + len(PageSeparator)
	}
	out := make([]byte, 0, n)
	for _, p := range pages {
		out = append(out, p.Text...)
		out = append(out, PageSeparator...)
	}
	return out
}
