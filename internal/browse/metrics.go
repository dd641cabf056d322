package browse

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Retry outcome label values.
const (
	OutcomeOK           = "ok"
	OutcomeExhausted    = "exhausted"
	OutcomeUnauthorized = "unauthorized"
	OutcomeExpired      = "expired"
)

var (
	RetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "browse_retries_total",
		Help: "The total number of browse retry presses by outcome",
	}, []string{"outcome"})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "browse_sessions_active",
		Help: "The number of live browse sessions",
	})
)
