// Package normalize fills in missing document metadata from the document's
// path and the processing time.
package normalize

import (
	"maps"
	"path"
	"strings"
	"time"

	"github.com/starford/postdex/internal/models"
)

// Recognized metadata fields.
const (
	FieldTitle    = "title"
	FieldDate     = "date"
	FieldSummary  = "summary"
	FieldCategory = "category"
	FieldTags     = "tags"
)

// DateLayout is the format of defaulted dates.
const DateLayout = time.RFC3339

// Normalize returns meta with every missing recognized field filled in and
// reports whether anything was added. It never overwrites or removes a
// present field, and meta itself is left untouched.
//
// category and tags are checked together: when either is missing, both
// absence checks run against the path-derived values.
func Normalize(meta models.Metadata, relPath string, now time.Time) (models.Metadata, bool) {
	changed := false

	out := models.Metadata{}
	if len(meta) == 0 {
		changed = true
	} else {
		out = maps.Clone(meta)
	}

	if !out.Has(FieldTitle) {
		out[FieldTitle] = Stem(relPath)
		changed = true
	}
	if !out.Has(FieldDate) {
		out[FieldDate] = now.Format(DateLayout)
		changed = true
	}
	if !out.Has(FieldSummary) {
		out[FieldSummary] = ""
		changed = true
	}

	if !out.Has(FieldCategory) || !out.Has(FieldTags) {
		parts := Segments(Slug(relPath))

		if !out.Has(FieldCategory) {
			out[FieldCategory] = Category(parts)
			changed = true
		}
		if !out.Has(FieldTags) {
			out[FieldTags] = Tags(parts)
			changed = true
		}
	}

	return out, changed
}

// Slug returns relPath without its extension, with forward slashes.
func Slug(relPath string) string {
	p := strings.ReplaceAll(relPath, `\`, "/")
	return strings.TrimSuffix(p, path.Ext(p))
}

// Segments splits a slug on "/".
func Segments(slug string) []string {
	return strings.Split(slug, "/")
}

// Stem returns the file name of relPath without its extension.
func Stem(relPath string) string {
	return path.Base(Slug(relPath))
}

// Category is the first segment of a multi-segment slug, or nil.
func Category(parts []string) any {
	if len(parts) > 1 {
		return parts[0]
	}
	return nil
}

// Tags are the segments strictly between the first and the last.
func Tags(parts []string) []any {
	tags := []any{}
	if len(parts) > 2 {
		for _, p := range parts[1 : len(parts)-1] {
			tags = append(tags, p)
		}
	}
	return tags
}
