package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ContactSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_contact_submissions_total",
			Help: "Contact form submissions by outcome",
		},
		[]string{"result"}, // sent|invalid|rejected|failed|limited
	)

	InboundEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_inbound_events_total",
			Help: "Inbound email webhook deliveries by route",
		},
		[]string{"route"}, // support|general|sales|default|skipped|invalid
	)

	MailSends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "site_mail_sends_total",
			Help: "Outbound mail attempts by provider and result",
		},
		[]string{"provider", "result"}, // ok|error
	)

	registerOnce sync.Once
)

// MustRegister registers the collectors once; later calls are no-ops so both
// the server and CLI commands can call it.
func MustRegister(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(
			ContactSubmissions,
			InboundEvents,
			MailSends,
		)
	})
}
