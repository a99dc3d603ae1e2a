// Package metrics holds the Prometheus collectors for the throttled auth and
// payment surfaces.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeAllowed  = "allowed"
	OutcomeRejected = "rejected"
)

var (
	// ThrottleDecisions counts rate limiter verdicts on the login and
	// payment-intent routes, split by limiter backend (memory or redis).
	ThrottleDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lifeshield",
			Subsystem: "throttle",
			Name:      "decisions_total",
			Help:      "Rate limiter decisions on throttled routes by backend and outcome.",
		},
		[]string{"backend", "outcome"},
	)

	// LoginExchanges counts Firebase-to-local token exchanges by result:
	// ok, invalid_token, or error.
	LoginExchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lifeshield",
			Subsystem: "auth",
			Name:      "login_exchanges_total",
			Help:      "ID-token login exchanges by result.",
		},
		[]string{"result"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(ThrottleDecisions, LoginExchanges)
}
