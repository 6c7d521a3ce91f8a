package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/vidforge/internal/api/response"
)

// MediaStore resolves published media names to local files.
type MediaStore interface {
	MediaPath(name string) (string, error)
}

// NewMediaHandler returns an http.HandlerFunc for GET /media/{name}.
func NewMediaHandler(ms MediaStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := ms.MediaPath(chi.URLParam(r, "name"))
		if err != nil {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Media not found", nil)
			return
		}
		http.ServeFile(w, r, path)
	}
}
