// Package turnstile redeems Cloudflare Turnstile challenge tokens.
package turnstile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

var ErrMissingSecret = errors.New("turnstile: secret key not configured")

// Verifier is what the contact service depends on.
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (bool, error)
}

type Client struct {
	secret    string
	verifyURL string
	client    *http.Client
}

func New(secret, verifyURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return NewWithClient(secret, verifyURL, &http.Client{Timeout: timeout})
}

func NewWithClient(secret, verifyURL string, client *http.Client) *Client {
	if strings.TrimSpace(verifyURL) == "" {
		verifyURL = DefaultVerifyURL
	}
	return &Client{secret: secret, verifyURL: verifyURL, client: client}
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
	Hostname   string   `json:"hostname"`
}

// Verify reports whether the token was accepted. A transport or decoding
// problem is returned as an error; callers treat that as a failed check.
func (c *Client) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if c.secret == "" {
		return false, ErrMissingSecret
	}

	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("turnstile: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode/100 != 2 {
		return false, fmt.Errorf("turnstile: status=%d", res.StatusCode)
	}

	var out siteverifyResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 64<<10)).Decode(&out); err != nil {
		return false, fmt.Errorf("turnstile: decode: %w", err)
	}
	if !out.Success && len(out.ErrorCodes) > 0 {
		return false, fmt.Errorf("turnstile: rejected: %s", strings.Join(out.ErrorCodes, ","))
	}

	return out.Success, nil
}
