package model

import "time"

// EventEmailReceived is the only webhook event type that is routed.
const EventEmailReceived = "email.received"

// WebhookEvent is the payload posted by the email provider for inbound mail.
type WebhookEvent struct {
	Type      string       `json:"type"`
	CreatedAt string       `json:"created_at"`
	Data      InboundEmail `json:"data"`
}

// OccurredAt parses CreatedAt; the zero time is returned when it is absent or unparseable.
func (e WebhookEvent) OccurredAt() time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999-07", "2006-01-02 15:04:05.999999Z07:00"} {
		if t, err := time.Parse(layout, e.CreatedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// InboundEmail is the message part of a WebhookEvent.
type InboundEmail struct {
	EmailID string            `json:"email_id"`
	From    string            `json:"from"`
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	Text    string            `json:"text,omitempty"`
	HTML    string            `json:"html,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Raw     string            `json:"raw,omitempty"`
}

// Recipient is the first To address, or "" when there is none.
func (m InboundEmail) Recipient() string {
	if len(m.To) == 0 {
		return ""
	}
	return m.To[0]
}
