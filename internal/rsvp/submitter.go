package rsvp

import (
	"context"
	"log/slog"
	"time"
)

// Submitter hands a validated submission to whatever records it. A nil error
// means the guest may be shown the submitted state.
type Submitter interface {
	Submit(ctx context.Context, s Submission) error
}

// DelaySubmitter waits for Delay and then reports success. It stands in for a
// real backend.
type DelaySubmitter struct {
	Delay time.Duration
}

func (d DelaySubmitter) Submit(ctx context.Context, s Submission) error {
	timer := time.NewTimer(d.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	slog.Info("rsvp accepted", "id", s.ID, "attendance", s.Attendance, "guests", s.Guests)
	return nil
}
