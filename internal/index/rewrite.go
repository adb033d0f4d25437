package index

import (
	"fmt"

	"github.com/starford/postdex/internal/apperr"
	"github.com/starford/postdex/internal/models"
	"github.com/starford/postdex/internal/parser"
)

// rewrite replaces the document at relPath with meta rendered as its header
// followed by body.
func (b *Builder) rewrite(relPath string, meta models.Metadata, body string) error {
	data, err := parser.Render(meta, body)
	if err != nil {
		return fmt.Errorf("index: rewrite %s: %w: %w", relPath, apperr.ErrWrite, err)
	}
	if err := b.store.Write(relPath, data); err != nil {
		return fmt.Errorf("index: rewrite %s: %w: %w", relPath, apperr.ErrWrite, err)
	}
	return nil
}
