package handler

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/YannKr/invitation/internal/gallery"
	"github.com/YannKr/invitation/internal/lightbox"
)

// GalleryNavigate applies one lightbox action to the state named by ?photo
// and redirects to the page showing the result.
func (h *Handler) GalleryNavigate(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")

	nav := lightbox.New(h.Content.Gallery.Images, nil)
	if i, ok := photoParam(r); ok {
		nav.Open(i)
	}

	switch action {
	case "open":
	case "next":
		nav.Next()
	case "prev":
		nav.Prev()
	case "close":
		nav.Close()
	default:
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, stateURL(nav.State()), http.StatusSeeOther)
}

// GalleryThumb serves a resized preview of image {index}. Remote images are
// not proxied; the client is sent to the original.
func (h *Handler) GalleryThumb(w http.ResponseWriter, r *http.Request) {
	images := h.Content.Gallery.Images
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 || i >= len(images) {
		http.NotFound(w, r)
		return
	}
	locator := images[i]

	if gallery.IsRemote(locator) || h.Thumbs == nil {
		http.Redirect(w, r, locator, http.StatusFound)
		return
	}

	data, err := h.Thumbs.Thumbnail(locator)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		slog.Error("gallery thumbnail", "index", i, "locator", locator, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
