// Package postservice exposes the document tree and its index to the HTTP and
// MCP front ends.
package postservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/starford/postdex/internal/apperr"
	"github.com/starford/postdex/internal/checksum"
	"github.com/starford/postdex/internal/index"
	"github.com/starford/postdex/internal/models"
	"github.com/starford/postdex/internal/sse"
	"github.com/starford/postdex/internal/storage"
)

// Notifier receives the outcome of every successful rebuild.
type Notifier interface {
	PublishRebuild(sse.Rebuild)
}

// Post is a raw document as stored on disk.
type Post struct {
	Path     string
	Content  []byte
	Checksum string
}

// Service coordinates storage and index operations.
type Service struct {
	store    storage.Provider
	builder  *index.Builder
	ext      string
	notifier Notifier
	logger   *slog.Logger
}

// NewService creates a post service. notifier may be nil.
func NewService(store storage.Provider, builder *index.Builder, ext string, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, builder: builder, ext: ext, notifier: notifier, logger: logger}
}

// IndexJSON returns the persisted index bytes. It fails with
// apperr.ErrNotFound when no index has been written yet.
func (s *Service) IndexJSON(_ context.Context) ([]byte, error) {
	data, err := s.store.Read(s.builder.IndexPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("index %s: %w", s.builder.IndexPath(), apperr.ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

// Refresh rebuilds the index and notifies subscribers.
func (s *Service) Refresh(ctx context.Context, preview bool) (*index.Result, error) {
	res, err := s.builder.Build(ctx, preview)
	if err != nil {
		s.logger.ErrorContext(ctx, "postservice: refresh failed", slog.String("error", err.Error()))
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.PublishRebuild(sse.Rebuild{
			DryRun:   res.Preview,
			Count:    len(res.Summaries),
			Changed:  res.Changed,
			Checksum: res.Checksum,
		})
	}
	return res, nil
}

// ListFiles scans the tree and returns every document with its URL.
func (s *Service) ListFiles(_ context.Context) ([]models.FileEntry, error) {
	paths, err := s.store.List(s.ext)
	if err != nil {
		return nil, err
	}
	files := make([]models.FileEntry, 0, len(paths))
	for _, p := range paths {
		if p == s.builder.IndexPath() {
			continue
		}
		files = append(files, models.FileEntry{Name: p, URL: models.PostsURLPrefix + p})
	}
	return files, nil
}

// ReadPost returns the raw bytes of any file under the root. Missing files,
// directories and paths escaping the root all map to apperr.ErrNotFound.
func (s *Service) ReadPost(_ context.Context, path string) (*Post, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, storage.ErrOutsideRoot) {
			return nil, fmt.Errorf("post %s: %w", path, apperr.ErrNotFound)
		}
		return nil, err
	}
	return &Post{Path: path, Content: data, Checksum: checksum.Sum(data)}, nil
}
