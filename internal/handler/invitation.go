package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"

	"github.com/YannKr/invitation/internal/content"
	"github.com/YannKr/invitation/internal/countdown"
	"github.com/YannKr/invitation/internal/lightbox"
	"github.com/YannKr/invitation/internal/rsvp"
)

type invitationView struct {
	Doc        *content.Document
	FirstName  string
	SecondName string
	Remaining  countdown.Remaining
	Target     string
	Images     []galleryImage
	Lightbox   *lightboxView
	RSVP       rsvpView
}

type galleryImage struct {
	Index int
	Src   string
}

type lightboxView struct {
	Index    int
	Total    int
	Src      string
	PrevURL  string
	NextURL  string
	CloseURL string
}

type rsvpView struct {
	Submitted    bool
	Failed       bool
	Form         rsvp.Form
	Errors       rsvp.FieldErrors
	GuestOptions []int
}

// pageScroll is the ScrollLock for a server-rendered page: while held, the
// body is rendered with scrolling disabled.
type pageScroll struct {
	locked bool
}

func (p *pageScroll) Acquire() { p.locked = true }
func (p *pageScroll) Release() { p.locked = false }

// Invitation renders the whole page. ?photo=<i> opens the lightbox and
// ?rsvp=submitted shows the RSVP thank-you card.
func (h *Handler) Invitation(w http.ResponseWriter, r *http.Request) {
	h.renderInvitation(w, r, http.StatusOK, rsvpView{
		Submitted: r.URL.Query().Get("rsvp") == "submitted",
		Form:      rsvp.DefaultForm(),
	})
}

func (h *Handler) renderInvitation(w http.ResponseWriter, r *http.Request, status int, rv rsvpView) {
	doc := h.Content

	scroll := &pageScroll{}
	nav := lightbox.New(doc.Gallery.Images, scroll)
	if i, ok := photoParam(r); ok {
		nav.Open(i)
	}

	images := make([]galleryImage, len(doc.Gallery.Images))
	for i, src := range doc.Gallery.Images {
		images[i] = galleryImage{Index: i, Src: src}
	}

	for n := rsvp.MinGuests; n <= rsvp.MaxGuests; n++ {
		rv.GuestOptions = append(rv.GuestOptions, n)
	}

	first, second := doc.Hero.Names()
	view := invitationView{
		Doc:        doc,
		FirstName:  first,
		SecondName: second,
		Remaining:  countdown.Compute(h.Target, h.Clock.Now()),
		Images:     images,
		Lightbox:   lightboxFor(nav),
		RSVP:       rv,
	}
	if !h.Target.IsZero() {
		view.Target = h.Target.UTC().Format(time.RFC3339)
	}

	h.render(w, status, "invitation.html", PageData{
		Title:        doc.Site.Title,
		Description:  doc.Site.Description,
		ScrollLocked: scroll.locked,
		CSRFField:    csrf.TemplateField(r),
		Data:         view,
	})
}

func lightboxFor(nav *lightbox.Navigator) *lightboxView {
	state := nav.State()
	i, ok := state.Index()
	if !ok {
		return nil
	}
	src, _ := nav.Current()
	return &lightboxView{
		Index:    i,
		Total:    nav.Len(),
		Src:      src,
		PrevURL:  actionURL("prev", i),
		NextURL:  actionURL("next", i),
		CloseURL: actionURL("close", i),
	}
}

func actionURL(action string, i int) string {
	return "/gallery/" + action + "?photo=" + strconv.Itoa(i)
}

// stateURL is the page location that shows state.
func stateURL(state lightbox.State) string {
	if i, ok := state.Index(); ok {
		return "/?photo=" + strconv.Itoa(i) + "#gallery"
	}
	return "/#gallery"
}

func photoParam(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("photo")
	if raw == "" {
		return 0, false
	}
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return i, true
}
