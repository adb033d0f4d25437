// Package index rebuilds the document index: it scans the tree, normalizes
// every document header, rewrites documents whose header gained fields, and
// persists the aggregate index as a single JSON file.
package index

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/starford/postdex/internal/apperr"
	"github.com/starford/postdex/internal/checksum"
	"github.com/starford/postdex/internal/models"
	"github.com/starford/postdex/internal/normalize"
	"github.com/starford/postdex/internal/parser"
	"github.com/starford/postdex/internal/storage"
)

// Failure is a per-document error that did not abort the rebuild.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Result is the outcome of one rebuild.
type Result struct {
	Summaries []models.Summary
	// Changed lists documents whose header was rewritten, or would have been
	// in preview mode.
	Changed  []string
	Failures []Failure
	Preview  bool
	// Checksum is the SHA-256 of the encoded index, persisted or not.
	Checksum string
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the time source used for defaulted dates.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// Builder runs rebuilds. At most one rebuild executes at a time; concurrent
// callers asking for the same mode share the in-flight run.
type Builder struct {
	store     storage.Provider
	ext       string
	indexPath string
	now       func() time.Time
	logger    *slog.Logger

	mu    sync.Mutex
	group singleflight.Group
}

// NewBuilder creates a Builder for documents ending in ext, persisting the
// index at indexPath (relative to the store root). indexPath is cleaned to the
// slash-separated form List returns.
func NewBuilder(store storage.Provider, ext, indexPath string, opts ...Option) *Builder {
	b := &Builder{
		store:     store,
		ext:       ext,
		indexPath: path.Clean(filepath.ToSlash(indexPath)),
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IndexPath returns the cleaned, slash-separated index location relative to
// the store root.
func (b *Builder) IndexPath() string {
	return b.indexPath
}

// Build rescans the whole tree. In preview mode no document and no index is
// written, but the returned result is the same a real run would produce.
//
// A read or header parse error aborts the rebuild and nothing is persisted.
// A failed document rewrite is reported in Result.Failures and the document
// still appears in the index with its normalized metadata.
func (b *Builder) Build(ctx context.Context, preview bool) (*Result, error) {
	key := "write"
	if preview {
		key = "preview"
	}

	v, err, shared := b.group.Do(key, func() (any, error) {
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.build(ctx, preview)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		b.logger.DebugContext(ctx, "index: shared in-flight rebuild", slog.String("mode", key))
	}
	return v.(*Result), nil
}

func (b *Builder) build(ctx context.Context, preview bool) (*Result, error) {
	started := time.Now()

	paths, err := b.store.List(b.ext)
	if err != nil {
		return nil, fmt.Errorf("index: scan: %w", err)
	}

	now := b.now()
	res := &Result{
		Summaries: make([]models.Summary, 0, len(paths)),
		Changed:   []string{},
		Failures:  []Failure{},
		Preview:   preview,
	}

	// Every document is parsed before any is rewritten, so a malformed
	// header aborts the rebuild with the tree untouched.
	type loaded struct {
		path    string
		body    string
		meta    models.Metadata
		changed bool
	}
	docs := make([]loaded, 0, len(paths))
	for _, p := range paths {
		if p == b.indexPath {
			continue
		}
		doc, meta, changed, err := b.load(p, now)
		if err != nil {
			return nil, err
		}
		docs = append(docs, loaded{path: p, body: doc.Body, meta: meta, changed: changed})
	}

	for _, d := range docs {
		switch {
		case !d.changed:
		case preview:
			res.Changed = append(res.Changed, d.path)
		default:
			if err := b.rewrite(d.path, d.meta, d.body); err != nil {
				b.logger.WarnContext(ctx, "index: rewrite failed",
					slog.String("path", d.path), slog.String("error", err.Error()))
				res.Failures = append(res.Failures, Failure{Path: d.path, Error: err.Error()})
			} else {
				res.Changed = append(res.Changed, d.path)
			}
		}

		res.Summaries = append(res.Summaries, Summarize(d.path, d.meta, d.body))
	}

	data, err := Encode(res.Summaries)
	if err != nil {
		return nil, err
	}
	res.Checksum = checksum.Sum(data)

	if !preview {
		if err := b.store.Write(b.indexPath, data); err != nil {
			return nil, fmt.Errorf("index: persist %s: %w: %w", b.indexPath, apperr.ErrSerialization, err)
		}
		for _, p := range res.Changed {
			b.logger.InfoContext(ctx, "index: updated header", slog.String("path", p))
		}
	}

	b.logger.InfoContext(ctx, "index: rebuilt",
		slog.Bool("preview", preview),
		slog.Int("documents", len(res.Summaries)),
		slog.Int("changed", len(res.Changed)),
		slog.Int("failures", len(res.Failures)),
		slog.Duration("took", time.Since(started)))

	return res, nil
}

// load reads, parses and normalizes one document.
func (b *Builder) load(relPath string, now time.Time) (*parser.Document, models.Metadata, bool, error) {
	data, err := b.store.Read(relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, false, fmt.Errorf("index: read %s: %w", relPath, apperr.ErrNotFound)
		}
		return nil, nil, false, fmt.Errorf("index: read %s: %w", relPath, err)
	}

	doc, err := parser.Parse(data)
	if err != nil {
		return nil, nil, false, fmt.Errorf("index: parse %s: %w", relPath, err)
	}

	meta, changed := normalize.Normalize(doc.Meta, relPath, now)
	return doc, meta, changed, nil
}
