package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/YannKr/invitation/internal/countdown"
	"github.com/YannKr/invitation/internal/sse"
)

type countdownSnapshot struct {
	countdown.Remaining
	Reached bool   `json:"reached"`
	Target  string `json:"target,omitempty"`
}

func (h *Handler) snapshot(r countdown.Remaining) countdownSnapshot {
	s := countdownSnapshot{Remaining: r, Reached: r.Reached()}
	if !h.Target.IsZero() {
		s.Target = h.Target.UTC().Format(time.RFC3339)
	}
	return s
}

// PublishCountdown is the countdown ticker's sink: it broadcasts r to every
// open countdown stream.
func (h *Handler) PublishCountdown(r countdown.Remaining) {
	data, err := json.Marshal(h.snapshot(r))
	if err != nil {
		slog.Error("countdown marshal", "error", err)
		return
	}
	h.SSE.Publish(sse.Event{Type: "tick", Data: string(data)})
}

func (h *Handler) CountdownJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	jsonOK(w, h.snapshot(countdown.Compute(h.Target, h.Clock.Now())))
}

func (h *Handler) CountdownSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsub := h.SSE.Subscribe()
	defer unsub()

	// Send initial keepalive
	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if _, err := evt.WriteTo(w); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
