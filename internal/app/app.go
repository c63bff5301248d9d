package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/YannKr/invitation"
	"github.com/YannKr/invitation/internal/config"
	"github.com/YannKr/invitation/internal/content"
	"github.com/YannKr/invitation/internal/countdown"
	"github.com/YannKr/invitation/internal/email"
	"github.com/YannKr/invitation/internal/gallery"
	"github.com/YannKr/invitation/internal/handler"
	"github.com/YannKr/invitation/internal/rsvp"
	"github.com/YannKr/invitation/internal/sse"
)

const (
	defaultContent  = "content/default.json"
	rsvpBurst       = 3
	shutdownTimeout = 10 * time.Second
)

func Run(ctx context.Context, cfg *config.Config) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	doc, err := loadContent(cfg.ContentPath)
	if err != nil {
		return err
	}
	slog.Info("content loaded", "couple", doc.Hero.CoupleName, "images", len(doc.Gallery.Images))

	// A bad target date degrades to a countdown of zero instead of refusing
	// to serve the rest of the page.
	target, err := doc.Countdown.Target(loc)
	if err != nil {
		slog.Warn("countdown disabled", "target_date", doc.Countdown.TargetDate, "error", err)
		target = time.Time{}
	}

	submitter := newSubmitter(cfg, doc)

	var photosFS fs.FS
	if info, err := os.Stat(cfg.PhotosDir); err == nil && info.IsDir() {
		photosFS = os.DirFS(cfg.PhotosDir)
		slog.Info("serving local photos", "dir", cfg.PhotosDir)
	}
	var thumbs *gallery.Thumbnailer
	if photosFS != nil {
		thumbs = gallery.NewThumbnailer(photosFS, cfg.ThumbSize)
	}

	templateFS, err := fs.Sub(invitation.TemplateFS, "templates")
	if err != nil {
		return err
	}
	staticFS, err := fs.Sub(invitation.StaticFS, "static")
	if err != nil {
		return err
	}

	sseHub := sse.New()
	h := handler.New(cfg, doc, target, loc, templateFS, submitter, sseHub, thumbs)

	ticker := &countdown.Ticker{
		Target:   target,
		Clock:    h.Clock,
		Interval: cfg.CountdownInterval,
		Publish:  h.PublishCountdown,
	}
	ticker.Start(ctx)
	defer ticker.Stop()

	rsvpRL := handler.NewRateLimiter(handler.PerMinute(cfg.RSVPRatePerMin), rsvpBurst)
	defer rsvpRL.Stop()

	router := h.Routes(staticFS, photosFS, rsvpRL)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		// Countdown streams never end on their own.
		sseHub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", cfg.ListenAddr, "base_url", cfg.BaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func loadContent(path string) (*content.Document, error) {
	if path == "" {
		return content.LoadFS(invitation.ContentFS, defaultContent)
	}
	doc, err := content.Load(path)
	if err != nil {
		return nil, fmt.Errorf("content %s: %w", path, err)
	}
	return doc, nil
}

// newSubmitter picks the RSVP backend: a signed webhook when one is
// configured, the simulated delay otherwise, optionally followed by an email
// to the couple.
func newSubmitter(cfg *config.Config, doc *content.Document) rsvp.Submitter {
	var s rsvp.Submitter = rsvp.DelaySubmitter{Delay: cfg.RSVPDelay}
	if cfg.RSVPWebhookURL != "" {
		s = &rsvp.WebhookSubmitter{
			URL:    cfg.RSVPWebhookURL,
			Secret: cfg.RSVPWebhookSecret,
			Client: &http.Client{Timeout: 10 * time.Second},
		}
		slog.Info("rsvp webhook enabled", "url", cfg.RSVPWebhookURL)
	}

	mailer := &email.Mailer{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.SMTPFrom,
	}
	if mailer.Enabled() && cfg.NotifyEmail != "" {
		slog.Info("rsvp email notices enabled", "host", cfg.SMTPHost, "to", cfg.NotifyEmail)
		s = &rsvp.Notifier{
			Next:   s,
			Mailer: mailer,
			To:     cfg.NotifyEmail,
			Couple: doc.Hero.CoupleName,
		}
	}
	return s
}
