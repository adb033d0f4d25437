// Package apperr defines the error kinds shared across postdex.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrHeaderParse   = errors.New("malformed header")
	ErrWrite         = errors.New("write failed")
	ErrSerialization = errors.New("index serialization failed")
)
