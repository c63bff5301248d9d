package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/YannKr/invitation/internal/config"
	"github.com/YannKr/invitation/internal/content"
	"github.com/YannKr/invitation/internal/countdown"
	"github.com/YannKr/invitation/internal/gallery"
	"github.com/YannKr/invitation/internal/rsvp"
	"github.com/YannKr/invitation/internal/sse"
)

type Handler struct {
	Cfg       *config.Config
	Content   *content.Document
	Target    time.Time
	Location  *time.Location
	Clock     countdown.Clock
	Submitter rsvp.Submitter
	SSE       *sse.Hub
	Thumbs    *gallery.Thumbnailer
	templates map[string]*template.Template

	icsOnce sync.Once
	ics     *calendarFile
	icsErr  error
}

func New(cfg *config.Config, doc *content.Document, target time.Time, loc *time.Location, templateFS fs.FS, submitter rsvp.Submitter, sseHub *sse.Hub, thumbs *gallery.Thumbnailer) *Handler {
	funcMap := template.FuncMap{
		"pad2": func(n int64) string {
			return fmt.Sprintf("%02d", n)
		},
		"inc": func(i int) int {
			return i + 1
		},
		"thumbURL": func(i int) string {
			return "/gallery/thumb/" + strconv.Itoa(i)
		},
		"openURL": func(i int) string {
			return "/gallery/open?photo=" + strconv.Itoa(i)
		},
		"selected": func(a, b string) template.HTMLAttr {
			if a == b {
				return "selected"
			}
			return ""
		},
	}

	// Parse layout template as the base
	layoutTmpl := template.Must(
		template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "layout.html"),
	)

	// Build per-page template sets: clone layout + parse page
	templates := make(map[string]*template.Template)
	entries, err := fs.ReadDir(templateFS, ".")
	if err != nil {
		panic("read template dir: " + err.Error())
	}
	for _, e := range entries {
		name := e.Name()
		if name == "layout.html" || e.IsDir() {
			continue
		}
		t := template.Must(template.Must(layoutTmpl.Clone()).ParseFS(templateFS, name))
		templates[name] = t
	}

	if loc == nil {
		loc = time.Local
	}

	return &Handler{
		Cfg:       cfg,
		Content:   doc,
		Target:    target,
		Location:  loc,
		Clock:     countdown.RealClock{},
		Submitter: submitter,
		SSE:       sseHub,
		Thumbs:    thumbs,
		templates: templates,
	}
}

type PageData struct {
	Title        string
	Description  string
	ScrollLocked bool
	CSRFField    template.HTML
	Data         interface{}
}

// render executes the page into a buffer first so a template error still
// produces a clean 500.
func (h *Handler) render(w http.ResponseWriter, status int, name string, data PageData) {
	t, ok := h.templates[name]
	if !ok {
		slog.Error("template not found", "name", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		slog.Error("render template", "name", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func jsonOK(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
