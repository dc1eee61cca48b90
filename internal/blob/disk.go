// Package blob stores uploaded payloads on the local file system and
// exposes them through a public base URL.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStore writes blobs under a single directory. Stored names carry a
// UUID prefix, so two uploads with the same client filename never
// overwrite each other.
type DiskStore struct {
	root    string
	baseURL string
}

// NewDiskStore creates the root directory if needed.
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &DiskStore{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Dir returns the directory blobs are stored under.
func (s *DiskStore) Dir() string {
	return s.root
}

// Store writes the payload through a temporary file and renames it into
// place, then returns the URL it will be served at.
func (s *DiskStore) Store(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.New().String() + "_" + sanitize(filename)
	destination := filepath.Join(s.root, name)

	tmp, err := os.CreateTemp(s.root, "pending-")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	if err := os.Rename(tmp.Name(), destination); err != nil {
		return "", fmt.Errorf("rename blob: %w", err)
	}

	return s.baseURL + "/" + name, nil
}

// sanitize strips path components and whitespace from a client filename.
func sanitize(filename string) string {
	name := filepath.Base(strings.TrimSpace(filename))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == ".." || name == "/" || name == "" {
		return "upload"
	}
	return name
}
