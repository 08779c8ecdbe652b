package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/raushankrgupta/product-page-extractor/models"
)

// FileStore writes artifacts below a local directory, creating it as needed
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Name() string { return "file" }

// Dir is the root directory
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) Put(ctx context.Context, _ *models.PageReport, artifacts []Artifact) error {
	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return eris.Wrap(err, "file: write artifacts")
		}

		path := filepath.Join(s.dir, filepath.FromSlash(a.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return eris.Wrapf(err, "file: create directory for %s", a.Name)
		}
		if err := os.WriteFile(path, a.Data, 0o644); err != nil {
			return eris.Wrapf(err, "file: write %s", a.Name)
		}

		zap.L().Info("saved artifact", zap.String("path", path), zap.Int("bytes", len(a.Data)))
	}
	return nil
}
