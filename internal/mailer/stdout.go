package mailer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/nativeschema/site-api/internal/model"
)

// StdoutProvider prints messages instead of sending them (local development).
type StdoutProvider struct {
	mu sync.Mutex
	w  io.Writer
}

func NewStdoutProvider(w io.Writer) *StdoutProvider {
	if w == nil {
		w = os.Stdout
	}
	return &StdoutProvider{w: w}
}

func (p *StdoutProvider) Name() string { return "stdout" }

func (p *StdoutProvider) Send(_ context.Context, msg model.Email) error {
	var b strings.Builder

	b.WriteString("========================================\n")
	fmt.Fprintf(&b, "From: %s\n", msg.From)
	fmt.Fprintf(&b, "To: %s\n", strings.Join(msg.To, ", "))
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\n", msg.ReplyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\n", msg.Subject)

	body := msg.Text
	if body == "" {
		body = msg.HTML
	}
	b.WriteString("\n" + body + "\n")
	b.WriteString("========================================\n")

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := io.WriteString(p.w, b.String())
	return err
}
