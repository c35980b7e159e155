package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nativeschema/site-api/internal/metrics"
	"github.com/nativeschema/site-api/internal/model"
	"go.uber.org/zap"
)

type Strategy string

const (
	StrategyPriority   Strategy = "priority"
	StrategyRoundRobin Strategy = "round_robin"
)

// ParseStrategy normalizes input; empty => priority.
func ParseStrategy(s string) (Strategy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "priority":
		return StrategyPriority, true
	case "round_robin", "round-robin", "roundrobin":
		return StrategyRoundRobin, true
	default:
		return StrategyPriority, false
	}
}

var (
	ErrNoHealthy = errors.New("no healthy mail providers")
	ErrNoAcquire = errors.New("mail provider not acquired")
)

type slot struct {
	p  Provider
	br *MicroBreaker
}

// Status is a point-in-time view of one provider, used by the CLI.
type Status struct {
	Name    string
	Ready   bool
	Breaker string
}

// Dispatcher picks one ready provider per message and makes exactly one attempt.
type Dispatcher struct {
	slots             []slot
	strategy          Strategy
	timeout           time.Duration
	roundRobinCounter atomic.Uint64
	log               *zap.Logger
}

type Options struct {
	Strategy      Strategy
	Timeout       time.Duration
	FailThreshold int
	OpenFor       time.Duration
	Logger        *zap.Logger
}

func NewDispatcher(provs []Provider, opts Options) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyPriority
	}

	slots := make([]slot, 0, len(provs))
	for _, p := range provs {
		slots = append(slots, slot{p: p, br: NewMicroBreaker(opts.FailThreshold, opts.OpenFor)})
	}

	return &Dispatcher{
		slots:    slots,
		strategy: opts.Strategy,
		timeout:  opts.Timeout,
		log:      opts.Logger,
	}
}

// Providers reports each configured provider and its breaker.
func (d *Dispatcher) Providers() []Status {
	out := make([]Status, 0, len(d.slots))
	for _, s := range d.slots {
		out = append(out, Status{Name: s.p.Name(), Ready: s.br.Ready(), Breaker: s.br.State()})
	}
	return out
}

func (d *Dispatcher) selectProvider() (*slot, error) {
	healthy := make([]*slot, 0, len(d.slots))
	for i := range d.slots {
		if d.slots[i].br.Ready() {
			healthy = append(healthy, &d.slots[i])
		}
	}

	if len(healthy) == 0 {
		return nil, ErrNoHealthy
	}

	start := 0
	if d.strategy == StrategyRoundRobin {
		x := d.roundRobinCounter.Add(1)
		start = int((x - 1) % uint64(len(healthy)))
	}

	for i := 0; i < len(healthy); i++ {
		s := healthy[(start+i)%len(healthy)]
		if s.br.TryAcquire() {
			return s, nil
		}
	}

	return nil, ErrNoAcquire
}

// Send delivers msg through a single provider. A failed attempt is not retried
// on another provider; it only feeds that provider's breaker.
func (d *Dispatcher) Send(ctx context.Context, msg model.Email) error {
	if err := validate(msg); err != nil {
		return err
	}

	s, err := d.selectProvider()
	if err != nil {
		metrics.MailSends.WithLabelValues("none", "error").Inc()
		d.log.Error("no mail provider available", zap.Error(err), zap.String("subject", msg.Subject))
		return err
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	name := s.p.Name()
	if err := s.p.Send(ctx, msg); err != nil {
		s.br.OnFailure()
		metrics.MailSends.WithLabelValues(name, "error").Inc()
		d.log.Warn("mail send failed",
			zap.String("provider", name),
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
		return fmt.Errorf("provider %s: %w", name, err)
	}

	s.br.OnSuccess()
	metrics.MailSends.WithLabelValues(name, "ok").Inc()
	d.log.Info("mail sent",
		zap.String("provider", name),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
	)

	return nil
}
