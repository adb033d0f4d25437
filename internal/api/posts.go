package api

import (
	"bytes"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/postdex/internal/apperr"
)

// postPath extracts the document path from the URL (everything after /posts/).
// Encoded slashes and non-ASCII names are decoded.
func postPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func contentType(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	switch ext {
	case ".md", ".markdown":
		return "text/markdown; charset=utf-8"
	}
	return ""
}

// GetPost handles GET /posts/*. Any file under the root is served as is.
//
//	@Summary		Get the raw content of a document
//	@Tags			posts
//	@Param			path	path	string	true	"Document path"
//	@Success		200		{file}	file
//	@Failure		404		{object}	errResponse
//	@Router			/posts/{path} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	p := postPath(r)
	if p == "" {
		h.ListPosts(w, r)
		return
	}

	post, err := h.svc.ReadPost(r.Context(), p)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("file not found"))
		} else {
			slog.Error("read post failed", slog.String("path", p), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	if ct := contentType(p); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("ETag", `"`+post.Checksum+`"`)
	http.ServeContent(w, r, path.Base(p), time.Time{}, bytes.NewReader(post.Content))
}
