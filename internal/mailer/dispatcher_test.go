package mailer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nativeschema/site-api/internal/metrics"
	"github.com/nativeschema/site-api/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// fakeProvider records every message and fails while err is set.
type fakeProvider struct {
	name string

	mu   sync.Mutex
	err  error
	sent []model.Email
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Send(_ context.Context, msg model.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return f.err
}

func (f *fakeProvider) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

var testMsg = model.Email{
	From:    "Site <noreply@example.com>",
	To:      []string{"team@example.com"},
	Subject: "hello",
	Text:    "body",
}

func TestDispatcher_PriorityUsesFirstReady(t *testing.T) {
	t.Parallel()

	a := &fakeProvider{name: "prio-a"}
	b := &fakeProvider{name: "prio-b"}
	d := NewDispatcher([]Provider{a, b}, Options{Strategy: StrategyPriority})

	for i := 0; i < 3; i++ {
		if err := d.Send(context.Background(), testMsg); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	if a.count() != 3 || b.count() != 0 {
		t.Errorf("sends: a=%d b=%d, want a=3 b=0", a.count(), b.count())
	}
	if got := testutil.ToFloat64(metrics.MailSends.WithLabelValues("prio-a", "ok")); got != 3 {
		t.Errorf("ok counter: got %v, want 3", got)
	}
}

func TestDispatcher_FailureIsNotRetried(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	a := &fakeProvider{name: "noretry-a", err: boom}
	b := &fakeProvider{name: "noretry-b"}
	d := NewDispatcher([]Provider{a, b}, Options{FailThreshold: 5})

	err := d.Send(context.Background(), testMsg)
	if !errors.Is(err, boom) {
		t.Fatalf("Send: got %v, want %v", err, boom)
	}
	if a.count() != 1 || b.count() != 0 {
		t.Errorf("sends: a=%d b=%d, want a=1 b=0", a.count(), b.count())
	}
}

func TestDispatcher_SkipsOpenBreaker(t *testing.T) {
	t.Parallel()

	a := &fakeProvider{name: "skip-a", err: errors.New("down")}
	b := &fakeProvider{name: "skip-b"}
	d := NewDispatcher([]Provider{a, b}, Options{FailThreshold: 1, OpenFor: time.Hour})

	_ = d.Send(context.Background(), testMsg) // trips a
	if err := d.Send(context.Background(), testMsg); err != nil {
		t.Fatalf("Send after trip: %v", err)
	}
	if a.count() != 1 || b.count() != 1 {
		t.Errorf("sends: a=%d b=%d, want a=1 b=1", a.count(), b.count())
	}

	st := d.Providers()
	if len(st) != 2 || st[0].Ready || st[0].Breaker != "open" || !st[1].Ready {
		t.Errorf("Providers: got %+v", st)
	}
}

func TestDispatcher_RoundRobin(t *testing.T) {
	t.Parallel()

	a := &fakeProvider{name: "rr-a"}
	b := &fakeProvider{name: "rr-b"}
	d := NewDispatcher([]Provider{a, b}, Options{Strategy: StrategyRoundRobin})

	for i := 0; i < 4; i++ {
		if err := d.Send(context.Background(), testMsg); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}
	if a.count() != 2 || b.count() != 2 {
		t.Errorf("sends: a=%d b=%d, want 2/2", a.count(), b.count())
	}
}

func TestDispatcher_NoProviders(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(nil, Options{})
	if err := d.Send(context.Background(), testMsg); !errors.Is(err, ErrNoHealthy) {
		t.Errorf("Send: got %v, want %v", err, ErrNoHealthy)
	}
}

func TestDispatcher_NoRecipients(t *testing.T) {
	t.Parallel()

	a := &fakeProvider{name: "norcpt-a"}
	d := NewDispatcher([]Provider{a}, Options{})
	if err := d.Send(context.Background(), model.Email{Subject: "x"}); !errors.Is(err, ErrNoRecipients) {
		t.Errorf("Send: got %v, want %v", err, ErrNoRecipients)
	}
	if a.count() != 0 {
		t.Error("provider should not be called")
	}
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Strategy
		ok   bool
	}{
		{"", StrategyPriority, true},
		{"Priority", StrategyPriority, true},
		{"round_robin", StrategyRoundRobin, true},
		{"round-robin", StrategyRoundRobin, true},
		{"random", StrategyPriority, false},
	}
	for _, tt := range tests {
		got, ok := ParseStrategy(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseStrategy(%q): got (%q,%v), want (%q,%v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
