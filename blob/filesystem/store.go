package filesystem

import (
	"context"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

// fsStore writes uploaded blobs to a local directory. The stored name is a
// fresh ULID plus the sanitized original extension; the returned URL is
// relative ("/uploads/<name>") so the HTTP layer can serve the directory.
type fsStore struct {
	basePath string
}

// NewStore creates a new filesystem-based blob store.
func NewStore(basePath string) *fsStore {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		log.Fatalf("failed to create uploads directory: %v", err)
	}
	return &fsStore{basePath: basePath}
}

// BasePath is the directory blobs are written to, for mounting a file server.
func (s *fsStore) BasePath() string {
	return s.basePath
}

func (s *fsStore) Put(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	name := ulid.Make().String() + safeExtension(filename)
	filePath := filepath.Join(s.basePath, name)
	log := logrus.WithFields(logrus.Fields{
		"blob_name": name,
		"file_path": filePath,
	})

	// Write through a temp file and rename so a half-written blob is never
	// visible under its final name.
	tmp, err := os.CreateTemp(s.basePath, ".upload-*")
	if err != nil {
		log.WithError(err).Error("Failed to create temp file")
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		log.WithError(err).Error("Failed to write blob")
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), filePath); err != nil {
		log.WithError(err).Error("Failed to finalize blob")
		return "", err
	}

	log.Info("Blob stored")
	return "/uploads/" + name, nil
}

// safeExtension keeps a plain extension like ".png" and drops anything that
// could escape the uploads directory.
func safeExtension(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(filename)))
	if ext == "." || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	for _, r := range ext {
		if r != '.' && (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	if len(ext) > 10 {
		return ""
	}
	return ext
}
