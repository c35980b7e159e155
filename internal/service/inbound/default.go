package inbound

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"

	"github.com/nativeschema/site-api/internal/mailer"
	"github.com/nativeschema/site-api/internal/model"
	"github.com/nativeschema/site-api/internal/util"
	"go.uber.org/zap"
)

//go:embed templates/*
var templateFS embed.FS

var (
	forwardTmpl   = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/forward.html"))
	replyHTMLTmpl = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/reply.html"))
	replyTextTmpl = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/reply.txt"))
)

// DefaultConfig controls the catch-all forward and auto-reply.
type DefaultConfig struct {
	ForwardTo     []string
	ForwardFrom   string
	ReplyFrom     string
	SchedulingURL string
	Company       string
	SignerName    string
	SignerTitle   string
	LogoURL       string
	Address       string
}

// Default forwards the email to the team and answers the sender. The two
// sends are independent: a failed forward still sends the reply.
type Default struct {
	cfg  DefaultConfig
	mail mailer.Sender
	log  *zap.Logger
}

func NewDefault(cfg DefaultConfig, mail mailer.Sender, log *zap.Logger) *Default {
	return &Default{cfg: cfg, mail: mail, log: orNop(log)}
}

func (d *Default) Name() string { return RouteDefault }

// Handle returns the joined forward and reply errors after both were attempted.
func (d *Default) Handle(ctx context.Context, msg model.InboundEmail) error {
	var fwdErr, replyErr error

	if fwd, err := d.Forward(msg); err != nil {
		fwdErr = fmt.Errorf("forward: %w", err)
	} else if err := d.mail.Send(ctx, fwd); err != nil {
		fwdErr = fmt.Errorf("forward: %w", err)
	}
	if fwdErr != nil {
		d.log.Error("inbound forward failed", zap.String("email_id", msg.EmailID), zap.Error(fwdErr))
	} else {
		d.log.Info("inbound email forwarded", zap.String("email_id", msg.EmailID), zap.Strings("to", d.cfg.ForwardTo))
	}

	if reply, err := d.Reply(msg); err != nil {
		replyErr = fmt.Errorf("auto-reply: %w", err)
	} else if err := d.mail.Send(ctx, reply); err != nil {
		replyErr = fmt.Errorf("auto-reply: %w", err)
	}
	if replyErr != nil {
		d.log.Error("inbound auto-reply failed", zap.String("email_id", msg.EmailID), zap.Error(replyErr))
	} else {
		d.log.Info("inbound auto-reply sent", zap.String("email_id", msg.EmailID), zap.String("to", util.BareAddress(msg.From)))
	}

	return errors.Join(fwdErr, replyErr)
}

type forwardView struct {
	Recipient string
	From      string
	Subject   string
	Body      htmltemplate.HTML
	FirstName string
	ReplyURL  htmltemplate.URL
}

// Forward builds the team notification for msg.
func (d *Default) Forward(msg model.InboundEmail) (model.Email, error) {
	if len(d.cfg.ForwardTo) == 0 {
		return model.Email{}, errors.New("no forward recipients configured")
	}

	sender := util.BareAddress(msg.From)
	view := forwardView{
		Recipient: msg.Recipient(),
		From:      msg.From,
		Subject:   msg.Subject,
		Body:      forwardBody(msg),
		FirstName: util.FirstName(msg.From),
		ReplyURL:  htmltemplate.URL("mailto:" + sender + "?subject=" + mailtoEscape("Re: "+msg.Subject)),
	}

	var html bytes.Buffer
	if err := forwardTmpl.Execute(&html, view); err != nil {
		return model.Email{}, fmt.Errorf("render forward: %w", err)
	}

	text := msg.Text
	if text == "" {
		text = "No text content"
	}

	return model.Email{
		From:    d.cfg.ForwardFrom,
		To:      append([]string(nil), d.cfg.ForwardTo...),
		ReplyTo: sender,
		Subject: "[Inbound] " + msg.Subject,
		Text:    fmt.Sprintf("New email from %s\n\nSubject: %s\n\n%s", msg.From, msg.Subject, text),
		HTML:    strings.TrimSpace(html.String()),
	}, nil
}

// mailtoEscape percent-encodes a header value for a mailto query; spaces
// become %20 because mail clients do not decode '+'.
func mailtoEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// forwardBody passes provider HTML through as-is; plain text is escaped.
func forwardBody(msg model.InboundEmail) htmltemplate.HTML {
	switch {
	case msg.HTML != "":
		return htmltemplate.HTML(msg.HTML)
	case msg.Text != "":
		escaped := htmltemplate.HTMLEscapeString(msg.Text)
		return htmltemplate.HTML(strings.ReplaceAll(escaped, "\n", "<br />"))
	default:
		return htmltemplate.HTML("<em>No message content</em>")
	}
}

type replyView struct {
	FirstName     string
	Company       string
	SignerName    string
	SignerTitle   string
	SchedulingURL string
	LogoURL       string
	Address       string
}

// Reply builds the auto-reply to msg's sender.
func (d *Default) Reply(msg model.InboundEmail) (model.Email, error) {
	to := util.BareAddress(msg.From)
	if to == "" {
		return model.Email{}, errors.New("sender address missing")
	}

	view := replyView{
		FirstName:     util.FirstName(msg.From),
		Company:       d.cfg.Company,
		SignerName:    d.cfg.SignerName,
		SignerTitle:   d.cfg.SignerTitle,
		SchedulingURL: d.cfg.SchedulingURL,
		LogoURL:       d.cfg.LogoURL,
		Address:       d.cfg.Address,
	}

	var html, text bytes.Buffer
	if err := replyHTMLTmpl.Execute(&html, view); err != nil {
		return model.Email{}, fmt.Errorf("render reply html: %w", err)
	}
	if err := replyTextTmpl.Execute(&text, view); err != nil {
		return model.Email{}, fmt.Errorf("render reply text: %w", err)
	}

	return model.Email{
		From:    d.cfg.ReplyFrom,
		To:      []string{to},
		Subject: "Re: " + msg.Subject,
		Text:    strings.TrimSpace(text.String()),
		HTML:    strings.TrimSpace(html.String()),
	}, nil
}
