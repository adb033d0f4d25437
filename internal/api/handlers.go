package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/starford/postdex/internal/apperr"
	"github.com/starford/postdex/internal/checksum"
	"github.com/starford/postdex/internal/postservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *postservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *postservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Status handles GET /.
//
//	@Summary		Service status
//	@Tags			status
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Router			/ [get]
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Code: 0, Message: "service is running"})
}

// Index handles GET /api/posts and GET /index.json.
//
//	@Summary		Get the persisted index
//	@Tags			posts
//	@Produce		json
//	@Success		200	{array}		models.Summary
//	@Failure		404	{object}	errResponse
//	@Router			/api/posts [get]
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.IndexJSON(r.Context())
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("index not built yet"))
		} else {
			slog.Error("read index failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("ETag", checksum.ETag(data))
	http.ServeContent(w, r, "index.json", time.Time{}, bytes.NewReader(data))
}

// Refresh handles GET /api/refresh.
//
//	@Summary		Rebuild the index
//	@Tags			posts
//	@Produce		json
//	@Param			dryrun	query		bool	false	"Report changes without writing anything"
//	@Success		200		{object}	RefreshResponse
//	@Failure		500		{object}	errResponse
//	@Router			/api/refresh [get]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	preview := strings.EqualFold(r.URL.Query().Get("dryrun"), "true")

	res, err := h.svc.Refresh(r.Context(), preview)
	if err != nil {
		body := errorBody("refresh failed")
		if errors.Is(err, apperr.ErrHeaderParse) {
			body.Detail = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, body)
		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{
		Message:  fmt.Sprintf("index refreshed (dry-run: %t)", preview),
		DryRun:   preview,
		Count:    len(res.Summaries),
		Changed:  res.Changed,
		Failures: res.Failures,
	})
}

// ListPosts handles GET /posts/.
//
//	@Summary		List every document with its URL
//	@Tags			posts
//	@Produce		json
//	@Success		200	{object}	FileListResponse
//	@Router			/posts/ [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.ListFiles(r.Context())
	if err != nil {
		slog.Error("list posts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, FileListResponse{Count: len(files), Files: files})
}
