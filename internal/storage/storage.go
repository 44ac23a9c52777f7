// Package storage keeps uploaded post media and voice messages.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"civic-backend/internal/config"
)

// Store saves an upload and returns the URL clients fetch it from. Delete
// takes a URL returned by Save.
type Store interface {
	Save(ctx context.Context, folder, filename, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// ErrForeignURL is returned by Delete for a URL the store did not hand out.
var ErrForeignURL = errors.New("url does not belong to this store")

// New builds the store selected by STORAGE_DRIVER.
func New(cfg config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case config.StorageLocal, "":
		return NewLocal(cfg.UploadDir, "/uploads")
	case config.StorageS3:
		return NewS3(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// objectName keeps the extension of the client's file name and nothing else
// from it.
func objectName(folder, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	name := uuid.NewString() + ext
	if folder = strings.Trim(folder, "/"); folder != "" {
		return folder + "/" + name
	}
	return name
}

// keyFromURL strips prefix from url and rejects anything that could escape it.
func keyFromURL(prefix, url string) (string, error) {
	key, ok := strings.CutPrefix(url, strings.TrimRight(prefix, "/")+"/")
	if !ok || key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, url)
	}
	return key, nil
}
