package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/jordan-wright/email"
)

func TestSMTP_Send(t *testing.T) {
	t.Parallel()

	p := NewSMTPProvider(SMTPOptions{Host: "mail.example.com", Username: "u", Password: "p"})

	var gotAddr string
	var got *email.Email
	p.send = func(e *email.Email, addr string, a smtp.Auth) error {
		gotAddr = addr
		got = e
		if a == nil {
			t.Error("expected PLAIN auth when username is set")
		}
		return nil
	}

	msg := testMsg
	msg.ReplyTo = "jane@x.com"
	msg.HTML = "<p>body</p>"
	if err := p.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotAddr != "mail.example.com:587" {
		t.Errorf("addr: got %q", gotAddr)
	}
	if got.From != msg.From || got.Subject != "hello" {
		t.Errorf("email: got from=%q subject=%q", got.From, got.Subject)
	}
	if len(got.ReplyTo) != 1 || got.ReplyTo[0] != "jane@x.com" {
		t.Errorf("ReplyTo: got %v", got.ReplyTo)
	}
	if string(got.Text) != "body" || string(got.HTML) != "<p>body</p>" {
		t.Errorf("bodies: got text=%q html=%q", got.Text, got.HTML)
	}
}

func TestSMTP_ContextCancelled(t *testing.T) {
	t.Parallel()

	p := NewSMTPProvider(SMTPOptions{Host: "mail.example.com", Port: 25})
	release := make(chan struct{})
	defer close(release)
	p.send = func(*email.Email, string, smtp.Auth) error {
		<-release
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := p.Send(ctx, testMsg); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Send: got %v, want deadline exceeded", err)
	}
}
