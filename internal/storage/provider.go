// Package storage defines the document tree file-system abstraction.
package storage

import "errors"

// ErrOutsideRoot is returned for paths that resolve outside the tree root.
var ErrOutsideRoot = errors.New("storage: path escapes root")

// Provider is the interface for document tree file operations.
type Provider interface {
	// List returns the slash-separated relative paths of every file ending in
	// ext, depth-first, sorted lexically within each directory.
	List(ext string) ([]string, error)
	// Read returns the raw bytes of the file at path (relative to root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to root).
	Write(path string, content []byte) error
}
