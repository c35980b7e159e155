package mailer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/nativeschema/site-api/internal/config"
	"go.uber.org/zap"
)

// FromConfig builds the enabled providers in cfg.Order and wraps them in a Dispatcher.
// Missing credentials do not fail here; the provider's sends fail instead.
func FromConfig(ctx context.Context, cfg config.MailConfig, stdout io.Writer, log *zap.Logger) (*Dispatcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	strategy, ok := ParseStrategy(cfg.Strategy)
	if !ok {
		return nil, fmt.Errorf("invalid mail strategy %q", cfg.Strategy)
	}

	order := cfg.Order
	if len(order) == 0 {
		order = []string{"resend", "ses", "smtp", "stdout"}
	}

	var provs []Provider
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		name = strings.ToLower(strings.TrimSpace(name))
		if seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case "resend":
			if cfg.Resend.Enabled {
				p, err := NewResendProvider(cfg.Resend.APIKey, cfg.Resend.BaseURL, cfg.Timeout)
				if err != nil {
					return nil, err
				}
				provs = append(provs, p)
			}
		case "ses":
			if cfg.SES.Enabled {
				p, err := NewSESProvider(ctx, SESOptions{
					Region:          cfg.SES.Region,
					AccessKeyID:     cfg.SES.AccessKeyID,
					SecretAccessKey: cfg.SES.SecretAccessKey,
				})
				if err != nil {
					return nil, err
				}
				provs = append(provs, p)
			}
		case "smtp":
			if cfg.SMTP.Enabled && strings.TrimSpace(cfg.SMTP.Host) != "" {
				provs = append(provs, NewSMTPProvider(SMTPOptions{
					Host:     cfg.SMTP.Host,
					Port:     cfg.SMTP.Port,
					Username: cfg.SMTP.Username,
					Password: cfg.SMTP.Password,
				}))
			}
		case "stdout":
			if cfg.Stdout.Enabled {
				provs = append(provs, NewStdoutProvider(stdout))
			}
		default:
			return nil, fmt.Errorf("unknown mail provider %q", name)
		}
	}

	if len(provs) == 0 {
		log.Warn("no mail providers enabled; every send will fail")
	}

	return NewDispatcher(provs, Options{
		Strategy:      strategy,
		Timeout:       cfg.Timeout,
		FailThreshold: cfg.Breaker.FailThreshold,
		OpenFor:       cfg.Breaker.OpenFor,
		Logger:        log,
	}), nil
}
