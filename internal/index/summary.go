package index

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/starford/postdex/internal/apperr"
	"github.com/starford/postdex/internal/models"
	"github.com/starford/postdex/internal/normalize"
)

// ContentLimit is the number of characters of body kept in a Summary.
const ContentLimit = 1000

// Summarize builds the index record for one normalized document.
func Summarize(relPath string, meta models.Metadata, body string) models.Summary {
	slug := normalize.Slug(relPath)
	parts := normalize.Segments(slug)

	title, ok := scalar(meta[normalize.FieldTitle])
	if !ok {
		title = parts[len(parts)-1]
	}

	var category *string
	if c, ok := scalar(meta[normalize.FieldCategory]); ok {
		category = &c
	}

	summary, _ := scalar(meta[normalize.FieldSummary])
	date, _ := scalar(meta[normalize.FieldDate])

	return models.Summary{
		Category: category,
		Tags:     stringList(meta[normalize.FieldTags]),
		Content:  truncate(body, ContentLimit),
		Summary:  summary,
		Title:    title,
		Created:  date,
		Updated:  date,
		URL:      models.PostsURLPrefix + strings.ReplaceAll(relPath, `\`, "/"),
	}
}

// Encode serializes summaries as indented UTF-8 JSON with non-ASCII and
// HTML characters left unescaped.
func Encode(summaries []models.Summary) ([]byte, error) {
	if summaries == nil {
		summaries = []models.Summary{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(summaries); err != nil {
		return nil, fmt.Errorf("index: encode: %w: %w", apperr.ErrSerialization, err)
	}
	return buf.Bytes(), nil
}

func scalar(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case time.Time:
		return x.Format(time.RFC3339), true
	default:
		return fmt.Sprint(x), true
	}
}

func stringList(v any) []string {
	out := []string{}
	switch x := v.(type) {
	case nil:
	case []any:
		for _, item := range x {
			if s, ok := scalar(item); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, x...)
	default:
		if s, ok := scalar(x); ok {
			out = append(out, s)
		}
	}
	return out
}

// truncate keeps the first n characters (not bytes) of s.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
