package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"
)

var ErrInvalidTargetDate = errors.New("invalid countdown target date")

// Document is the static content blob that drives every section of the page.
type Document struct {
	Site         Site         `json:"site"`
	Hero         Hero         `json:"hero"`
	LoveStory    LoveStory    `json:"loveStory"`
	EventDetails EventDetails `json:"eventDetails"`
	Countdown    Countdown    `json:"countdown"`
	Gallery      Gallery      `json:"gallery"`
	RSVP         RSVP         `json:"rsvp"`
	ThankYou     ThankYou     `json:"thankYou"`
}

type Site struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Hero struct {
	CoupleName      string `json:"coupleName"`
	WeddingDate     string `json:"weddingDate"`
	BackgroundImage string `json:"backgroundImage"`
	CTAText         string `json:"ctaText"`
	Subtitle        string `json:"subtitle"`
}

// Names splits the couple name around "&" for the two-line heading. A name
// without "&" comes back whole in the first slot.
func (h Hero) Names() (first, second string) {
	a, b, found := strings.Cut(h.CoupleName, "&")
	if !found {
		return strings.TrimSpace(h.CoupleName), ""
	}
	return strings.TrimSpace(a), strings.TrimSpace(b)
}

type LoveStory struct {
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle"`
	Timeline []Milestone `json:"timeline"`
}

type Milestone struct {
	Year        string `json:"year"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type EventDetails struct {
	Title                string `json:"title"`
	Ceremony             Event  `json:"ceremony"`
	Reception            Event  `json:"reception"`
	DressCode            string `json:"dressCode"`
	DressCodeDescription string `json:"dressCodeDescription"`
}

// Event is one venue card. DateTime is display text; StartsAt and EndsAt are
// optional machine readable times used for the calendar export.
type Event struct {
	Title    string `json:"title"`
	DateTime string `json:"dateTime"`
	Location string `json:"location"`
	Address  string `json:"address"`
	MapURL   string `json:"mapUrl"`
	StartsAt string `json:"startsAt,omitempty"`
	EndsAt   string `json:"endsAt,omitempty"`
}

type Countdown struct {
	Title      string `json:"title"`
	TargetDate string `json:"targetDate"`
}

// Target parses TargetDate. Timestamps without an offset are read in loc.
func (c Countdown) Target(loc *time.Location) (time.Time, error) {
	t, err := ParseTime(c.TargetDate, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidTargetDate, err)
	}
	return t, nil
}

type Gallery struct {
	Title  string   `json:"title"`
	Images []string `json:"images"`
}

type RSVP struct {
	Title      string     `json:"title"`
	Subtitle   string     `json:"subtitle"`
	FormTitle  string     `json:"formTitle"`
	Fields     FormLabels `json:"fields"`
	SubmitText string     `json:"submitText"`
	Deadline   string     `json:"deadline"`
}

type FormLabels struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Guests     string `json:"guests"`
	Attendance string `json:"attendance"`
	Message    string `json:"message"`
}

type ThankYou struct {
	Title     string `json:"title"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
	Names     string `json:"names"`
}

var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 or one of the zone-less layouts above.
func ParseTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", value)
}

// Parse decodes and validates a content document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the fields the page cannot render without. A bad countdown
// target is reported by Countdown.Target instead.
func (d *Document) Validate() error {
	if strings.TrimSpace(d.Hero.CoupleName) == "" {
		return errors.New("content: hero.coupleName is required")
	}
	for i, img := range d.Gallery.Images {
		if strings.TrimSpace(img) == "" {
			return fmt.Errorf("content: gallery.images[%d] is empty", i)
		}
	}
	return nil
}

// Load reads a document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", path, err)
	}
	return Parse(data)
}

// LoadFS reads a document from an embedded or virtual filesystem.
func LoadFS(fsys fs.FS, name string) (*Document, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read content %s: %w", name, err)
	}
	return Parse(data)
}
