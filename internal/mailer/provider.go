// Package mailer sends outbound email through one of several configured providers.
package mailer

import (
	"context"
	"errors"

	"github.com/nativeschema/site-api/internal/model"
)

// Provider delivers one message. Implementations must not retry.
type Provider interface {
	Name() string
	Send(ctx context.Context, msg model.Email) error
}

// Sender is what the services depend on; *Dispatcher implements it.
type Sender interface {
	Send(ctx context.Context, msg model.Email) error
}

var ErrNoRecipients = errors.New("mailer: message has no recipients")

func validate(msg model.Email) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	return nil
}
