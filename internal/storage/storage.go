package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

var ErrFileNotFound = errors.New("stored file not found")

// BlobStore keeps uploaded document files
type BlobStore interface {
	Save(name string, r io.Reader) (int64, error)
	Open(name string) (io.ReadCloser, error)
	Delete(name string) error
	Exists(name string) (bool, error)
}

// FileStore stores blobs under a root directory of an afero filesystem
type FileStore struct {
	fs afero.Fs
}

// NewFileStore roots fs at root. Use afero.NewOsFs in production and
// afero.NewMemMapFs in tests.
func NewFileStore(fs afero.Fs, root string) (*FileStore, error) {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root %s: %w", root, err)
	}
	return &FileStore{fs: afero.NewBasePathFs(fs, root)}, nil
}

// clean rejects paths that escape the root
func clean(name string) (string, error) {
	name = filepath.ToSlash(name)
	cleaned := path.Clean("/" + name)
	if cleaned == "/" || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid storage path %q", name)
	}
	return cleaned, nil
}

func (s *FileStore) Save(name string, r io.Reader) (int64, error) {
	p, err := clean(name)
	if err != nil {
		return 0, err
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return 0, err
	}

	f, err := s.fs.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(p)
		return 0, err
	}
	return n, nil
}

func (s *FileStore) Open(name string) (io.ReadCloser, error) {
	p, err := clean(name)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrFileNotFound
	}
	return f, err
}

// Delete removes the file. A missing file is not an error.
func (s *FileStore) Delete(name string) error {
	p, err := clean(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStore) Exists(name string) (bool, error) {
	p, err := clean(name)
	if err != nil {
		return false, err
	}
	return afero.Exists(s.fs, p)
}
