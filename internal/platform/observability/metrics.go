package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric label values.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
	StatusEmpty  = "empty"
)

var (
	TranslationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "morph_translations_total",
		Help: "The total number of upstream translation calls by outcome",
	}, []string{"status"})

	MessagesTransformed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "morph_messages_transformed_total",
		Help: "The total number of bot messages rewritten by the morph pipeline",
	}, []string{"mode"})

	SearchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recon_searches_total",
		Help: "The total number of search upstream calls by outcome",
	}, []string{"status"})
)
