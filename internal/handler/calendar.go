package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/YannKr/invitation/internal/calendar"
)

type calendarFile struct {
	data []byte
	etag string
}

// Calendar serves the wedding events as an .ics file. The document never
// changes while the process runs, so it is built once.
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	h.icsOnce.Do(func() {
		data, err := calendar.Build(h.Content, h.Location, h.Cfg.BaseURL, h.Clock.Now())
		if err != nil {
			h.icsErr = err
			return
		}
		sum := sha256.Sum256(data)
		h.ics = &calendarFile{data: data, etag: `"` + hex.EncodeToString(sum[:8]) + `"`}
	})
	if h.icsErr != nil {
		slog.Error("build calendar", "error", h.icsErr)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", h.ics.etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == h.ics.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="wedding.ics"`)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Write(h.ics.data)
}
