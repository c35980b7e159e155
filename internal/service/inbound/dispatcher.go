// Package inbound classifies inbound email webhook deliveries and runs the
// matching route action.
package inbound

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nativeschema/site-api/internal/apperr"
	"github.com/nativeschema/site-api/internal/metrics"
	"github.com/nativeschema/site-api/internal/model"
	"github.com/nativeschema/site-api/internal/util"
	"go.uber.org/zap"
)

// Outcome is the terminal state of one delivery.
type Outcome struct {
	Processed bool
	Route     string
}

// ParseEvent decodes a webhook body. Errors are *apperr.ParseError.
func ParseEvent(body []byte) (model.WebhookEvent, error) {
	var ev model.WebhookEvent
	if len(body) == 0 {
		return ev, apperr.Parse(errors.New("empty body"))
	}
	if err := json.Unmarshal(body, &ev); err != nil {
		return model.WebhookEvent{}, apperr.Parse(err)
	}
	return ev, nil
}

// Dispatcher routes email.received events by the first recipient's local part.
// Routes are read-only after construction.
type Dispatcher struct {
	routes   map[string]RouteAction
	fallback RouteAction
	log      *zap.Logger
}

func NewDispatcher(routes map[string]RouteAction, fallback RouteAction, log *zap.Logger) *Dispatcher {
	if routes == nil {
		routes = map[string]RouteAction{}
	}
	return &Dispatcher{routes: routes, fallback: fallback, log: orNop(log)}
}

// Classify returns the action for a local part; unknown parts get the fallback.
func (d *Dispatcher) Classify(local string) RouteAction {
	if a, ok := d.routes[local]; ok {
		return a
	}
	return d.fallback
}

// Dispatch runs at most one route action. Action errors are logged and never
// change the outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, ev model.WebhookEvent) Outcome {
	if ev.Type != model.EventEmailReceived {
		metrics.InboundEvents.WithLabelValues(RouteSkipped).Inc()
		d.log.Info("inbound event skipped", zap.String("type", ev.Type))
		return Outcome{Processed: false, Route: RouteSkipped}
	}

	msg := ev.Data
	if msg.Text == "" && msg.HTML == "" && msg.Raw != "" {
		text, html, err := bodiesFromRaw(msg.Raw)
		if err != nil {
			d.log.Warn("raw message unreadable", zap.String("email_id", msg.EmailID), zap.Error(err))
		}
		msg.Text, msg.HTML = text, html
	}

	local := util.LocalPart(msg.Recipient())
	action := d.Classify(local)

	d.log.Info("inbound email received",
		zap.String("email_id", msg.EmailID),
		zap.String("from", msg.From),
		zap.String("to", msg.Recipient()),
		zap.String("subject", msg.Subject),
		zap.String("route", action.Name()),
		zap.Time("occurred_at", ev.OccurredAt()),
	)

	if err := action.Handle(ctx, msg); err != nil {
		d.log.Warn("route action reported errors", zap.String("route", action.Name()), zap.Error(err))
	}

	metrics.InboundEvents.WithLabelValues(action.Name()).Inc()
	return Outcome{Processed: true, Route: action.Name()}
}
