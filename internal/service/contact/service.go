// Package contact turns a verified contact form submission into one email.
package contact

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/nativeschema/site-api/internal/apperr"
	"github.com/nativeschema/site-api/internal/mailer"
	"github.com/nativeschema/site-api/internal/metrics"
	"github.com/nativeschema/site-api/internal/model"
	"github.com/nativeschema/site-api/internal/turnstile"
	"github.com/nativeschema/site-api/internal/util"
	"go.uber.org/zap"
)

const (
	MsgRequired           = "Name, email, and message are required"
	MsgInvalidEmail       = "Invalid email format"
	MsgChallengeMissing   = "Please complete the security check"
	MsgVerificationFailed = "Security verification failed. Please try again."
)

//go:embed templates/*
var templateFS embed.FS

var (
	htmlTmpl = htmltemplate.Must(htmltemplate.New("contact.html").
			Funcs(htmltemplate.FuncMap{"nl2br": nl2br}).
			ParseFS(templateFS, "templates/contact.html"))
	textTmpl = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/contact.txt"))
)

func nl2br(s string) htmltemplate.HTML {
	return htmltemplate.HTML(strings.ReplaceAll(htmltemplate.HTMLEscapeString(s), "\n", "<br />"))
}

type Config struct {
	From string // sender shown on the notification
	To   string // internal inbox receiving submissions
}

// Service validates, verifies and forwards contact submissions. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	cfg      Config
	verifier turnstile.Verifier
	mail     mailer.Sender
	log      *zap.Logger
}

func New(cfg Config, verifier turnstile.Verifier, mail mailer.Sender, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cfg: cfg, verifier: verifier, mail: mail, log: log}
}

// Submit sends exactly one email for a valid, verified submission.
// Errors are *apperr.ValidationError or *apperr.DeliveryError.
func (s *Service) Submit(ctx context.Context, sub model.ContactSubmission) error {
	sub = sub.Normalize()

	if err := validate(sub); err != nil {
		metrics.ContactSubmissions.WithLabelValues("invalid").Inc()
		return err
	}

	ok, err := s.verifier.Verify(ctx, sub.TurnstileToken, sub.RemoteIP)
	if err != nil || !ok {
		metrics.ContactSubmissions.WithLabelValues("rejected").Inc()
		s.log.Info("contact challenge rejected",
			zap.String("email", sub.Email),
			zap.String("remote_ip", sub.RemoteIP),
			zap.Error(err),
		)
		return apperr.Validation("turnstileToken", MsgVerificationFailed)
	}

	msg, err := s.compose(sub)
	if err != nil {
		metrics.ContactSubmissions.WithLabelValues("failed").Inc()
		return apperr.Delivery(err)
	}

	if err := s.mail.Send(ctx, msg); err != nil {
		metrics.ContactSubmissions.WithLabelValues("failed").Inc()
		s.log.Error("contact email failed", zap.String("email", sub.Email), zap.Error(err))
		return apperr.Delivery(err)
	}

	metrics.ContactSubmissions.WithLabelValues("sent").Inc()
	s.log.Info("contact email sent", zap.String("email", sub.Email), zap.String("company", sub.Company))
	return nil
}

func validate(sub model.ContactSubmission) error {
	switch {
	case sub.Name == "":
		return apperr.Validation("name", MsgRequired)
	case sub.Email == "":
		return apperr.Validation("email", MsgRequired)
	case sub.Message == "":
		return apperr.Validation("message", MsgRequired)
	}

	if !util.ValidEmail(sub.Email) {
		return apperr.Validation("email", MsgInvalidEmail)
	}

	if sub.TurnstileToken == "" {
		return apperr.Validation("turnstileToken", MsgChallengeMissing)
	}
	return nil
}

// Subject is "New Contact: <name>" with " from <company>" when a company was given.
func Subject(sub model.ContactSubmission) string {
	if sub.Company != "" {
		return fmt.Sprintf("New Contact: %s from %s", sub.Name, sub.Company)
	}
	return "New Contact: " + sub.Name
}

func (s *Service) compose(sub model.ContactSubmission) (model.Email, error) {
	if s.cfg.To == "" {
		return model.Email{}, errors.New("contact: recipient not configured")
	}

	var html, text bytes.Buffer
	if err := htmlTmpl.Execute(&html, sub); err != nil {
		return model.Email{}, fmt.Errorf("render html: %w", err)
	}
	if err := textTmpl.Execute(&text, sub); err != nil {
		return model.Email{}, fmt.Errorf("render text: %w", err)
	}

	return model.Email{
		From:    s.cfg.From,
		To:      []string{s.cfg.To},
		ReplyTo: sub.Email,
		Subject: Subject(sub),
		Text:    strings.TrimSpace(text.String()),
		HTML:    strings.TrimSpace(html.String()),
	}, nil
}
