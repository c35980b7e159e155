package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/nativeschema/site-api/internal/model"
)

type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string
}

type sendFunc func(e *email.Email, addr string, a smtp.Auth) error

// SMTPProvider relays through a plain SMTP submission server.
type SMTPProvider struct {
	addr string
	auth smtp.Auth
	send sendFunc
}

func NewSMTPProvider(opts SMTPOptions) *SMTPProvider {
	if opts.Port <= 0 {
		opts.Port = 587
	}

	var auth smtp.Auth
	if opts.Username != "" {
		auth = smtp.PlainAuth("", opts.Username, opts.Password, opts.Host)
	}

	return &SMTPProvider{
		addr: fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		auth: auth,
		send: func(e *email.Email, addr string, a smtp.Auth) error { return e.Send(addr, a) },
	}
}

func (p *SMTPProvider) Name() string { return "smtp" }

// Send builds the MIME message with jordan-wright/email. net/smtp has no
// context support, so cancellation only stops the caller from waiting.
func (p *SMTPProvider) Send(ctx context.Context, msg model.Email) error {
	e := email.NewEmail()
	e.From = msg.From
	e.To = msg.To
	e.Subject = msg.Subject
	if msg.ReplyTo != "" {
		e.ReplyTo = []string{msg.ReplyTo}
	}
	if msg.Text != "" {
		e.Text = []byte(msg.Text)
	}
	if msg.HTML != "" {
		e.HTML = []byte(msg.HTML)
	}

	done := make(chan error, 1)
	go func() { done <- p.send(e, p.addr, p.auth) }()

	select {
	case <-ctx.Done():
		return fmt.Errorf("smtp: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp: %w", err)
		}
		return nil
	}
}
