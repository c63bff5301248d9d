package handler

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"

	"github.com/YannKr/invitation/internal/gallery"
)

func (h *Handler) Routes(staticFS, photosFS fs.FS, rsvpRL *RateLimiter) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Use(csrf.Protect(
		[]byte(h.Cfg.SessionSecret),
		csrf.Secure(strings.HasPrefix(h.Cfg.BaseURL, "https")),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	))

	r.Handle("/static/*", http.StripPrefix("/static/",
		http.FileServer(http.FS(staticFS))))
	if photosFS != nil {
		r.Handle(gallery.PhotoPrefix+"*", http.StripPrefix(gallery.PhotoPrefix,
			http.FileServer(http.FS(photosFS))))
	}

	r.Get("/healthz", h.Healthz)

	r.Get("/", h.Invitation)
	r.Get("/calendar.ics", h.Calendar)

	r.Get("/countdown", h.CountdownJSON)
	r.Get("/countdown/events", h.CountdownSSE)

	r.Get("/gallery/thumb/{index}", h.GalleryThumb)
	r.Get("/gallery/{action}", h.GalleryNavigate)

	r.With(rsvpRL.Middleware).Post("/rsvp", h.RSVPSubmit)

	return r
}
