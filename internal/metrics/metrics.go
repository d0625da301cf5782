package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MatchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "match_requests_total",
		Help: "Match lookups served, labelled by mode (traditional or ai).",
	}, []string{"mode"})

	MatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_duration_seconds",
		Help:    "End to end latency of a single ticket match lookup.",
		Buckets: prometheus.DefBuckets,
	})

	CandidatesScanned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "match_candidates_scanned",
		Help:    "Candidate tickets scanned per match lookup.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
	})

	AIFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "match_ai_fallbacks_total",
		Help: "AI re-ranking failures that fell back to traditional scores.",
	}, []string{"reason"})

	BatchTicketsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "match_batch_tickets_total",
		Help: "Tickets processed through the batch matching endpoint.",
	})
)

// Handler exposes the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
