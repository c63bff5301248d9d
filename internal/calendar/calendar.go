package calendar

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"github.com/YannKr/invitation/internal/content"
)

const (
	productID = "-//invitation//Wedding Invitation//EN"

	// DefaultDuration is used for events that only give a start time.
	DefaultDuration = 3 * time.Hour
)

// Build renders the ceremony and reception as an iCalendar document. An
// event without a usable start time is left out; the ceremony falls back to
// the countdown target.
func Build(doc *content.Document, loc *time.Location, baseURL string, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropCalendarScale, "GREGORIAN")
	cal.Props.SetText(ical.PropMethod, "PUBLISH")
	cal.Props.SetText("X-WR-CALNAME", doc.Hero.CoupleName)

	fallback, _ := doc.Countdown.Target(loc)

	for _, item := range []struct {
		key      string
		ev       content.Event
		fallback time.Time
	}{
		{"ceremony", doc.EventDetails.Ceremony, fallback},
		{"reception", doc.EventDetails.Reception, time.Time{}},
	} {
		start, end, ok := span(item.ev, loc, item.fallback)
		if !ok {
			slog.Debug("calendar: skipping event without start", "event", item.key)
			continue
		}
		cal.Children = append(cal.Children, newEvent(doc, item.key, item.ev, baseURL, start, end, now).Component)
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func span(ev content.Event, loc *time.Location, fallback time.Time) (start, end time.Time, ok bool) {
	start, err := content.ParseTime(ev.StartsAt, loc)
	if err != nil {
		if fallback.IsZero() {
			return time.Time{}, time.Time{}, false
		}
		start = fallback
	}
	end, err = content.ParseTime(ev.EndsAt, loc)
	if err != nil || !end.After(start) {
		end = start.Add(DefaultDuration)
	}
	return start, end, true
}

func newEvent(doc *content.Document, key string, ev content.Event, baseURL string, start, end, now time.Time) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, UID(baseURL, key))
	event.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, start.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, end.UTC())

	summary := doc.Hero.CoupleName
	if ev.Title != "" {
		summary = ev.Title + " - " + doc.Hero.CoupleName
	}
	event.Props.SetText(ical.PropSummary, summary)

	if where := joinNonEmpty(", ", ev.Location, ev.Address); where != "" {
		event.Props.SetText(ical.PropLocation, where)
	}
	if desc := joinNonEmpty("\n", ev.DateTime, doc.EventDetails.DressCode, doc.EventDetails.DressCodeDescription); desc != "" {
		event.Props.SetText(ical.PropDescription, desc)
	}
	if ev.MapURL != "" {
		// Set directly so the value is not tagged VALUE=TEXT.
		urlProp := ical.NewProp(ical.PropURL)
		urlProp.Value = ev.MapURL
		event.Props.Set(urlProp)
	}
	return event
}

// UID is stable per site and event so calendar clients update rather than
// duplicate on re-import.
func UID(baseURL, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(strings.TrimRight(baseURL, "/")+"/#"+key)).String() + "@invitation"
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
