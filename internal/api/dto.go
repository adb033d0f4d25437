package api

import (
	"github.com/starford/postdex/internal/index"
	"github.com/starford/postdex/internal/models"
)

// StatusResponse is returned by GET /.
type StatusResponse struct {
	Code    int    `json:"code" example:"0"`
	Message string `json:"message" example:"service is running" validate:"required"`
}

// RefreshResponse is returned by GET /api/refresh.
type RefreshResponse struct {
	Message  string          `json:"message" example:"index refreshed (dry-run: false)" validate:"required"`
	DryRun   bool            `json:"dry_run" example:"false"`
	Count    int             `json:"count" example:"42"`
	Changed  []string        `json:"changed" validate:"required"`
	Failures []index.Failure `json:"failures" validate:"required"`
}

// FileEntry is one item of the document listing (aliased from the domain layer).
type FileEntry = models.FileEntry

// FileListResponse is returned by GET /posts/.
type FileListResponse struct {
	Count int         `json:"count" example:"2"`
	Files []FileEntry `json:"files" validate:"required"`
}
