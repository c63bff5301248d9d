package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YannKr/invitation"
	"github.com/YannKr/invitation/internal/config"
	"github.com/YannKr/invitation/internal/content"
	"github.com/YannKr/invitation/internal/countdown"
	"github.com/YannKr/invitation/internal/rsvp"
	"github.com/YannKr/invitation/internal/sse"
)

var testTarget = time.Date(2025, 10, 18, 8, 0, 0, 0, time.UTC)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type stubSubmitter struct {
	mu   sync.Mutex
	err  error
	subs []rsvp.Submission
}

func (s *stubSubmitter) Submit(ctx context.Context, sub rsvp.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, sub)
	return s.err
}

func (s *stubSubmitter) calls() []rsvp.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]rsvp.Submission(nil), s.subs...)
}

// twoDaysOut is 2d 3h 4m 5s before the target.
var twoDaysOut = testTarget.Add(-(2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second))

func newTestHandler(t *testing.T, sub rsvp.Submitter) *Handler {
	t.Helper()

	doc, err := content.LoadFS(invitation.ContentFS, "content/default.json")
	require.NoError(t, err)
	templateFS, err := fs.Sub(invitation.TemplateFS, "templates")
	require.NoError(t, err)

	cfg := &config.Config{
		BaseURL:       "http://localhost:8080",
		SessionSecret: "test-secret-0123456789abcdef0123",
	}
	h := New(cfg, doc, testTarget, time.UTC, templateFS, sub, sse.New(), nil)
	h.Clock = fixedClock{now: twoDaysOut}
	return h
}

func newTestRouter(t *testing.T, h *Handler) http.Handler {
	t.Helper()
	staticFS, err := fs.Sub(invitation.StaticFS, "static")
	require.NoError(t, err)
	rl := NewRateLimiter(PerMinute(600), 100)
	t.Cleanup(rl.Stop)
	return h.Routes(staticFS, nil, rl)
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestInvitationRendersCountdown(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{})
	rec := get(http.HandlerFunc(h.Invitation), "/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>")
	assert.Contains(t, body, `data-unit="days">02<`)
	assert.Contains(t, body, `data-unit="hours">03<`)
	assert.Contains(t, body, `data-unit="minutes">04<`)
	assert.Contains(t, body, `data-unit="seconds">05<`)
	assert.Contains(t, body, `data-target="2025-10-18T08:00:00Z"`)
	assert.Contains(t, body, "<span>Linh</span>")
	assert.Contains(t, body, "<span>Nam</span>")
	assert.NotContains(t, body, `class="lightbox"`)
	assert.NotContains(t, body, "scroll-locked")
	assert.Contains(t, body, `<form class="card" method="post"`)
}

func TestInvitationCountdownAfterTarget(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{})
	h.Clock = fixedClock{now: testTarget.Add(time.Hour)}
	body := get(http.HandlerFunc(h.Invitation), "/").Body.String()

	for _, unit := range []string{"days", "hours", "minutes", "seconds"} {
		assert.Contains(t, body, `data-unit="`+unit+`">00<`)
	}
}

func TestInvitationLightbox(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{})

	t.Run("open", func(t *testing.T) {
		body := get(http.HandlerFunc(h.Invitation), "/?photo=2").Body.String()
		assert.Contains(t, body, `class="lightbox"`)
		assert.Contains(t, body, `<body class="scroll-locked">`)
		assert.Contains(t, body, "3 / 6")
		assert.Contains(t, body, `href="/gallery/prev?photo=2"`)
		assert.Contains(t, body, `href="/gallery/next?photo=2"`)
		assert.Contains(t, body, `href="/gallery/close?photo=2"`)
	})

	for _, q := range []string{"/?photo=6", "/?photo=-1", "/?photo=abc"} {
		t.Run(q, func(t *testing.T) {
			body := get(http.HandlerFunc(h.Invitation), q).Body.String()
			assert.NotContains(t, body, `class="lightbox"`)
			assert.NotContains(t, body, "scroll-locked")
		})
	}
}

func TestInvitationSubmittedCard(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{})
	body := get(http.HandlerFunc(h.Invitation), "/?rsvp=submitted").Body.String()

	assert.Contains(t, body, "Your RSVP has been received successfully.")
	assert.NotContains(t, body, `<form class="card" method="post"`)
}

func TestGalleryNavigate(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{})
	router := newTestRouter(t, h)

	tests := []struct {
		path     string
		location string
	}{
		{"/gallery/open?photo=1", "/?photo=1#gallery"},
		{"/gallery/next?photo=1", "/?photo=2#gallery"},
		{"/gallery/next?photo=5", "/?photo=0#gallery"},
		{"/gallery/prev?photo=0", "/?photo=5#gallery"},
		{"/gallery/prev?photo=3", "/?photo=2#gallery"},
		{"/gallery/close?photo=3", "/#gallery"},
		{"/gallery/next", "/#gallery"},
		{"/gallery/open?photo=42", "/#gallery"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rec := get(router, tc.path)
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, tc.location, rec.Header().Get("Location"))
		})
	}

	assert.Equal(t, http.StatusNotFound, get(router, "/gallery/zoom?photo=1").Code)
}

func TestGalleryThumbRemote(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{})
	router := newTestRouter(t, h)

	rec := get(router, "/gallery/thumb/0")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, h.Content.Gallery.Images[0], rec.Header().Get("Location"))

	assert.Equal(t, http.StatusNotFound, get(router, "/gallery/thumb/6").Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/gallery/thumb/x").Code)
}

func TestCountdownJSON(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{})
	rec := get(http.HandlerFunc(h.CountdownJSON), "/countdown")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got struct {
		Days    int64  `json:"days"`
		Hours   int64  `json:"hours"`
		Minutes int64  `json:"minutes"`
		Seconds int64  `json:"seconds"`
		Reached bool   `json:"reached"`
		Target  string `json:"target"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(2), got.Days)
	assert.Equal(t, int64(3), got.Hours)
	assert.Equal(t, int64(4), got.Minutes)
	assert.Equal(t, int64(5), got.Seconds)
	assert.False(t, got.Reached)
	assert.Equal(t, "2025-10-18T08:00:00Z", got.Target)
}

func TestPublishCountdown(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{})
	h.PublishCountdown(countdown.Remaining{})

	evt, ok := h.SSE.Last()
	require.True(t, ok)
	assert.Equal(t, "tick", evt.Type)
	assert.Contains(t, evt.Data, `"reached":true`)
	assert.Contains(t, evt.Data, `"days":0`)
}

func TestCountdownSSE(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{})
	srv := httptest.NewServer(newTestRouter(t, h))
	defer srv.Close()
	defer h.SSE.Close()

	h.PublishCountdown(countdown.Remaining{})

	resp, err := http.Get(srv.URL + "/countdown/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
		if strings.HasPrefix(sc.Text(), "data: ") {
			break
		}
	}
	require.NoError(t, sc.Err())
	assert.Contains(t, lines, "event: tick")
	assert.Contains(t, lines[len(lines)-1], `"reached":true`)
}

func postForm(h http.HandlerFunc, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/rsvp", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func validForm() url.Values {
	return url.Values{
		"name":       {"Minh Anh"},
		"email":      {"minh@example.com"},
		"attendance": {"yes"},
		"guests":     {"2"},
		"message":    {"Congratulations!"},
	}
}

func TestRSVPSubmitSuccess(t *testing.T) {
	sub := &stubSubmitter{}
	h := newTestHandler(t, sub)

	rec := postForm(h.RSVPSubmit, validForm())

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?rsvp=submitted#rsvp", rec.Header().Get("Location"))
	calls := sub.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Minh Anh", calls[0].Name)
	assert.Equal(t, 2, calls[0].Guests)
	assert.Equal(t, twoDaysOut.UTC(), calls[0].SubmittedAt)
	assert.NotEmpty(t, calls[0].ID)
}

func TestRSVPSubmitValidationError(t *testing.T) {
	sub := &stubSubmitter{}
	h := newTestHandler(t, sub)

	form := validForm()
	form.Set("email", "")
	rec := postForm(h.RSVPSubmit, form)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `value="Minh Anh"`)
	assert.Contains(t, body, "Please enter your email address.")
	assert.NotContains(t, body, "try again")
	assert.Empty(t, sub.calls())
}

func TestRSVPSubmitBackendFailure(t *testing.T) {
	sub := &stubSubmitter{err: errors.New("backend down")}
	h := newTestHandler(t, sub)

	rec := postForm(h.RSVPSubmit, validForm())

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Please try again.")
	assert.Contains(t, body, `value="minh@example.com"`)
	assert.NotContains(t, body, "Your RSVP has been received successfully.")
	assert.Len(t, sub.calls(), 1)
}

func TestRSVPRequiresCSRFToken(t *testing.T) {
	sub := &stubSubmitter{}
	h := newTestHandler(t, sub)
	router := newTestRouter(t, h)

	req := httptest.NewRequest(http.MethodPost, "/rsvp", strings.NewReader(validForm().Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, sub.calls())
}

func TestCalendarETag(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{})
	router := newTestRouter(t, h)

	rec := get(router, "/calendar.ics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/calendar.ics", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestHealthzAndStatic(t *testing.T) {
	h := newTestHandler(t, &stubSubmitter{})
	router := newTestRouter(t, h)

	rec := get(router, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	assert.Equal(t, http.StatusOK, get(router, "/static/countdown.js").Code)
	assert.Equal(t, http.StatusOK, get(router, "/").Code)
}
