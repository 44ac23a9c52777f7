package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local writes uploads below dir; they are served from urlPrefix.
type Local struct {
	dir       string
	urlPrefix string
}

func NewLocal(dir, urlPrefix string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, urlPrefix: urlPrefix}, nil
}

func (s *Local) Dir() string { return s.dir }

func (s *Local) Save(_ context.Context, folder, filename, _ string, body io.Reader) (string, error) {
	name := objectName(folder, filename)
	path := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return s.urlPrefix + "/" + name, nil
}

// Delete removes a file saved by Save. A file that is already gone is not an
// error.
func (s *Local) Delete(_ context.Context, url string) error {
	name, err := keyFromURL(s.urlPrefix, url)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.dir, filepath.FromSlash(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
