// Package objectstore keeps uploaded images on a local directory and maps
// object keys to public URLs.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidKey     = errors.New("invalid object key")
	ErrObjectNotFound = errors.New("object not found")
)

// Object describes a stored file.
type Object struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Store is a directory-backed object store. Keys are slash-separated paths
// relative to the root directory.
type Store struct {
	root      string
	publicURL string
}

// New creates the root directory if needed and returns a store serving
// objects under publicURL.
func New(root, publicURL string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &Store{root: root, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Root returns the directory objects are written to.
func (s *Store) Root() string {
	return s.root
}

// NewKey returns a fresh key under the owner's prefix, keeping ext.
func NewKey(ownerID uuid.UUID, ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ownerID.String() + "/" + uuid.NewString() + ext
}

// ValidateKey rejects absolute keys and keys escaping the root.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrInvalidKey
	}
	if path.Clean(key) != key {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." || part == "" {
			return ErrInvalidKey
		}
	}
	return nil
}

func (s *Store) path(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// Put writes r to key, replacing any existing object.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}

// Delete removes key. Missing objects return ErrObjectNotFound.
func (s *Store) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrObjectNotFound
		}
		return err
	}
	return nil
}

// List walks every object in the store.
func (s *Store) List(ctx context.Context) ([]Object, error) {
	var objects []Object
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		objects = append(objects, Object{
			Key:     filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	return objects, err
}

// URL returns the public URL of key.
func (s *Store) URL(key string) string {
	return s.publicURL + "/" + key
}

// KeyFromURL returns the key for one of this store's public URLs.
func (s *Store) KeyFromURL(url string) (string, bool) {
	prefix := s.publicURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if ValidateKey(key) != nil {
		return "", false
	}
	return key, true
}
