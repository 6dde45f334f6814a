package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ai-travel-planner/internal/shared"
)

// Collectors groups the Prometheus series exported by the planner.
type Collectors struct {
	Itineraries *prometheus.CounterVec
	Generations *prometheus.CounterVec
	Tokens      *prometheus.CounterVec
	GenLatency  *prometheus.HistogramVec
	CostIssues  prometheus.Counter
	BotUpdates  *prometheus.CounterVec
}

// NewCollectors registers the planner series with reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		Itineraries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "travel_itineraries_total",
			Help: "Itineraries assembled, by outcome (generated or fallback).",
		}, []string{"outcome"}),
		Generations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "travel_generation_calls_total",
			Help: "Text generation calls, by agent and status.",
		}, []string{"agent", "status"}),
		Tokens: f.NewCounterVec(prometheus.CounterOpts{
			Name: "travel_generation_tokens_total",
			Help: "Tokens consumed by text generation, by agent and kind.",
		}, []string{"agent", "kind"}),
		GenLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "travel_generation_latency_seconds",
			Help:    "Latency of text generation calls.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"agent"}),
		CostIssues: f.NewCounter(prometheus.CounterOpts{
			Name: "travel_cost_parse_issues_total",
			Help: "Day costs excluded from totals because they were not numeric.",
		}),
		BotUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "travel_bot_updates_total",
			Help: "Telegram updates handled, by command.",
		}, []string{"command"}),
	}
}

// ObserveAssembly records the outcome of one itinerary assembly.
func (c *Collectors) ObserveAssembly(fallback bool, metas []shared.AgentMeta, costIssues int) {
	outcome := "generated"
	if fallback {
		outcome = "fallback"
	}
	c.Itineraries.WithLabelValues(outcome).Inc()
	c.CostIssues.Add(float64(costIssues))
	for _, m := range metas {
		c.ObserveMeta(m)
	}
}

// ObserveMeta records one generation call.
func (c *Collectors) ObserveMeta(m shared.AgentMeta) {
	status := "ok"
	if m.Failed {
		status = "error"
	}
	c.Generations.WithLabelValues(m.AgentName, status).Inc()
	c.Tokens.WithLabelValues(m.AgentName, "prompt").Add(float64(m.Usage.PromptTokens))
	c.Tokens.WithLabelValues(m.AgentName, "completion").Add(float64(m.Usage.CompletionTokens))
	c.GenLatency.WithLabelValues(m.AgentName).Observe(m.Latency.Seconds())
}
