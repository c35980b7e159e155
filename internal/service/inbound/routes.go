package inbound

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/nativeschema/site-api/internal/model"
	"go.uber.org/zap"
)

// Route names double as metric labels.
const (
	RouteSupport = "support"
	RouteGeneral = "general"
	RouteSales   = "sales"
	RouteDefault = "default"
	RouteSkipped = "skipped"
)

// RouteAction handles an inbound email that was classified to it.
type RouteAction interface {
	Name() string
	Handle(ctx context.Context, msg model.InboundEmail) error
}

// logAction records the classification and nothing else. Support, General
// and Sales are integration points for ticketing and CRM work.
type logAction struct {
	name  string
	event string
	log   *zap.Logger
}

func (a logAction) Name() string { return a.name }

func (a logAction) Handle(_ context.Context, msg model.InboundEmail) error {
	a.log.Info(a.event,
		zap.String("route", a.name),
		zap.String("email_id", msg.EmailID),
		zap.String("from", msg.From),
		zap.String("subject", msg.Subject),
	)
	return nil
}

func Support(log *zap.Logger) RouteAction {
	return logAction{name: RouteSupport, event: "support email received", log: orNop(log)}
}

func General(log *zap.Logger) RouteAction {
	return logAction{name: RouteGeneral, event: "general inquiry received", log: orNop(log)}
}

func Sales(log *zap.Logger) RouteAction {
	return logAction{name: RouteSales, event: "sales inquiry received", log: orNop(log)}
}

// BuildRoutes maps each local part in table to the action named by its value.
func BuildRoutes(table map[string]string, log *zap.Logger) (map[string]RouteAction, error) {
	routes := make(map[string]RouteAction, len(table))
	var errs []error

	locals := make([]string, 0, len(table))
	for local := range table {
		locals = append(locals, local)
	}
	sort.Strings(locals)

	for _, local := range locals {
		switch kind := table[local]; kind {
		case RouteSupport:
			routes[local] = Support(log)
		case RouteGeneral:
			routes[local] = General(log)
		case RouteSales:
			routes[local] = Sales(log)
		default:
			errs = append(errs, fmt.Errorf("route %q: unknown action %q", local, kind))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return routes, nil
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
