package rsvp

import (
	"net/mail"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	AttendanceYes = "yes"
	AttendanceNo  = "no"

	MinGuests     = 1
	MaxGuests     = 4
	MaxMessageLen = 2000
)

// Submission is one guest's reply. Guests is zero when the guest declines.
type Submission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Attendance  string    `json:"attendance"`
	Guests      int       `json:"guests"`
	Message     string    `json:"message,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Attending reports whether the guest accepted.
func (s Submission) Attending() bool { return s.Attendance == AttendanceYes }

// FieldErrors maps form field names to a user facing message.
type FieldErrors map[string]string

func (fe FieldErrors) Has(field string) bool {
	_, ok := fe[field]
	return ok
}

// Form is the raw form as typed, kept so a failed post can be re-rendered
// without losing input.
type Form struct {
	Name       string
	Email      string
	Attendance string
	Guests     string
	Message    string
}

// DefaultForm matches the initial state of a fresh form.
func DefaultForm() Form {
	return Form{Attendance: AttendanceYes, Guests: "1"}
}

// FormFrom reads the posted values.
func FormFrom(values url.Values) Form {
	return Form{
		Name:       strings.TrimSpace(values.Get("name")),
		Email:      strings.TrimSpace(values.Get("email")),
		Attendance: strings.TrimSpace(values.Get("attendance")),
		Guests:     strings.TrimSpace(values.Get("guests")),
		Message:    strings.TrimSpace(values.Get("message")),
	}
}

// Validate turns a form into a Submission. Any problems are reported per
// field and the returned submission must then be ignored.
func (f Form) Validate(now time.Time) (Submission, FieldErrors) {
	errs := FieldErrors{}
	sub := Submission{
		Name:       f.Name,
		Attendance: f.Attendance,
		Message:    f.Message,
	}

	if sub.Name == "" {
		errs["name"] = "Please tell us your name."
	}

	if f.Email == "" {
		errs["email"] = "Please enter your email address."
	} else if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Name != "" {
		errs["email"] = "That email address doesn't look right."
	} else {
		sub.Email = addr.Address
	}

	switch f.Attendance {
	case AttendanceYes:
		n, err := strconv.Atoi(f.Guests)
		if err != nil || n < MinGuests || n > MaxGuests {
			errs["guests"] = "Please choose between 1 and 4 guests."
		} else {
			sub.Guests = n
		}
	case AttendanceNo:
		sub.Guests = 0
	default:
		errs["attendance"] = "Please let us know if you can attend."
	}

	if utf8.RuneCountInString(sub.Message) > MaxMessageLen {
		errs["message"] = "Your message is a little too long."
	}

	if len(errs) > 0 {
		return Submission{}, errs
	}
	sub.ID = uuid.New().String()
	sub.SubmittedAt = now.UTC()
	return sub, nil
}

// ParseForm is FormFrom followed by Validate.
func ParseForm(values url.Values, now time.Time) (Submission, FieldErrors) {
	return FormFrom(values).Validate(now)
}
