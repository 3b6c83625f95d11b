// Package uploads stores product images on local disk. The returned path is
// an opaque reference; nothing in the core interprets it.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxImageSize caps uploaded images at 2 MiB.
const MaxImageSize = 2 << 20

// Store persists uploads under a base directory.
type Store struct {
	baseDir string
}

// NewStore creates the base directory if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(baseDir, "products"), 0o755); err != nil {
		return nil, fmt.Errorf("uploads: mkdir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// SaveProductImage writes the image and returns its opaque reference path.
func (s *Store) SaveProductImage(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
	default:
		return "", fmt.Errorf("uploads: unsupported image type %q", ext)
	}

	ref := filepath.Join("products", uuid.NewString()+ext)
	f, err := os.Create(filepath.Join(s.baseDir, ref))
	if err != nil {
		return "", fmt.Errorf("uploads: create: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(r, MaxImageSize)); err != nil {
		return "", fmt.Errorf("uploads: write: %w", err)
	}
	return ref, nil
}

// Remove deletes a previously stored reference. Missing files are ignored.
func (s *Store) Remove(ref string) error {
	if ref == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.baseDir, ref))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("uploads: remove: %w", err)
	}
	return nil
}
