package metrics

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoppit_chatbot_messages_total",
			Help: "Chat messages processed, by resolved intent",
		},
		[]string{"intent"},
	)

	MessageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shoppit_chatbot_message_duration_seconds",
			Help:    "Time to produce a chatbot response",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"intent"},
	)

	PipelinePanics = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shoppit_chatbot_pipeline_panics_total",
			Help: "Messages answered with the generic apology after an internal failure",
		},
	)

	SearchResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shoppit_search_results_count",
			Help:    "Products returned per search",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 12},
		},
	)

	SearchBroadening = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoppit_search_broadening_total",
			Help: "Broadening passes run because the primary lookup found too few products",
		},
		[]string{"pass"},
	)

	FAQMatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoppit_faq_matches_total",
			Help: "FAQ lookups by outcome",
		},
		[]string{"result"},
	)

	FAQReloads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoppit_faq_reloads_total",
			Help: "FAQ index reloads by status",
		},
		[]string{"status"},
	)

	FAQIndexSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shoppit_faq_index_size",
			Help: "Active FAQs in the current index",
		},
	)

	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoppit_store_errors_total",
			Help: "Record store failures swallowed by the chatbot core",
		},
		[]string{"repository", "operation"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoppit_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoppit_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	CircuitState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shoppit_circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)

	ConversationFeedback = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shoppit_conversation_feedback",
			Help:    "Conversation ratings submitted by users",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
	)

	ActiveWebsockets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "shoppit_websocket_connections",
			Help: "Open chat websocket connections",
		},
	)
)

var registerOnce sync.Once

// Init registers the collectors with the default registry. Collectors work
// unregistered, so packages and tests may record before Init runs.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			MessagesTotal,
			MessageDuration,
			PipelinePanics,
			SearchResults,
			SearchBroadening,
			FAQMatches,
			FAQReloads,
			FAQIndexSize,
			StoreErrors,
			CacheHits,
			CacheMisses,
			CircuitState,
			ConversationFeedback,
			ActiveWebsockets,
		)
	})
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
