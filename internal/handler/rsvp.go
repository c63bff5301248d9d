package handler

import (
	"log/slog"
	"net/http"

	"github.com/YannKr/invitation/internal/rsvp"
)

const maxRSVPBody = 64 << 10

// RSVPSubmit handles POST /rsvp. Only a successful submit leads to the
// submitted state; validation problems and backend failures re-render the
// form with what the guest typed.
func (h *Handler) RSVPSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRSVPBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := rsvp.FormFrom(r.PostForm)
	sub, errs := form.Validate(h.Clock.Now())
	if len(errs) > 0 {
		h.renderInvitation(w, r, http.StatusUnprocessableEntity, rsvpView{Form: form, Errors: errs})
		return
	}

	if err := h.Submitter.Submit(r.Context(), sub); err != nil {
		slog.Error("rsvp submit", "id", sub.ID, "error", err)
		h.renderInvitation(w, r, http.StatusBadGateway, rsvpView{Form: form, Failed: true})
		return
	}

	slog.Info("rsvp submitted", "id", sub.ID, "attendance", sub.Attendance, "guests", sub.Guests)
	http.Redirect(w, r, "/?rsvp=submitted#rsvp", http.StatusSeeOther)
}
