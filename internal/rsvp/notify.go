package rsvp

import (
	"context"
	"log/slog"

	"github.com/YannKr/invitation/internal/email"
)

type Mailer interface {
	SendRSVPNotice(to string, n email.RSVPNotice) error
}

// Notifier wraps a Submitter and emails the couple after each successful
// submission. Mail failures are logged and never change the outcome.
type Notifier struct {
	Next   Submitter
	Mailer Mailer
	To     string
	Couple string
}

func (n *Notifier) Submit(ctx context.Context, s Submission) error {
	if err := n.Next.Submit(ctx, s); err != nil {
		return err
	}
	if n.Mailer == nil || n.To == "" {
		return nil
	}

	notice := email.RSVPNotice{
		Couple:    n.Couple,
		GuestName: s.Name,
		Email:     s.Email,
		Attending: s.Attending(),
		Guests:    s.Guests,
		Message:   s.Message,
	}
	go func() {
		if err := n.Mailer.SendRSVPNotice(n.To, notice); err != nil {
			slog.Error("rsvp notice email", "id", s.ID, "error", err)
		}
	}()
	return nil
}
