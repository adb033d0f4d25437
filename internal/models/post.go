// Package models defines the domain types for postdex.
package models

// PostsURLPrefix is the root-relative URL prefix under which raw documents
// are served.
const PostsURLPrefix = "/posts/"

// Metadata is the decoded header of a document. A key that exists with a
// nil value counts as present.
type Metadata map[string]any

// Has reports whether key is present, regardless of its value.
func (m Metadata) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Summary is the per-document record stored in the index.
// Field order here is the serialized field order.
type Summary struct {
	Category *string  `json:"category"`
	Tags     []string `json:"tags"`
	Content  string   `json:"content"`
	Summary  string   `json:"summary"`
	Title    string   `json:"title"`
	Created  string   `json:"created"`
	Updated  string   `json:"updated"`
	URL      string   `json:"url"`
}

// FileEntry is one item of the raw document listing.
type FileEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
