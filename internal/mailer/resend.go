package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nativeschema/site-api/internal/model"
	"github.com/resend/resend-go/v2"
)

const DefaultResendBaseURL = "https://api.resend.com/"

var ErrMissingAPIKey = errors.New("resend: api key not configured")

// ResendProvider sends through the Resend API.
type ResendProvider struct {
	apiKey string
	client *resend.Client
}

func NewResendProvider(apiKey, baseURL string, timeout time.Duration) (*ResendProvider, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return NewResendWithClient(apiKey, baseURL, &http.Client{Timeout: timeout})
}

// NewResendWithClient is used by tests to point the provider at an httptest server.
func NewResendWithClient(apiKey, baseURL string, httpClient *http.Client) (*ResendProvider, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultResendBaseURL
	}
	// relative "emails" must resolve under the base path
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("resend: base url: %w", err)
	}

	client := resend.NewCustomClient(httpClient, apiKey)
	client.BaseURL = u
	return &ResendProvider{apiKey: apiKey, client: client}, nil
}

func (p *ResendProvider) Name() string { return "resend" }

func (p *ResendProvider) Send(ctx context.Context, msg model.Email) error {
	if p.apiKey == "" {
		return ErrMissingAPIKey
	}

	_, err := p.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}
