package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK                = "ok"
	OutcomeMissingDimension  = "missing_dimension"
	OutcomeConfigUnavailable = "config_unavailable"
	OutcomeError             = "error"
)

// Recorder holds the application collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	calculations *prometheus.CounterVec
	quotesSaved  prometheus.Counter
	itemsSaved   prometheus.Counter
	httpDuration *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil registerer yields a no-op recorder.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		return &Recorder{}
	}
	calculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_calculations_total",
		Help: "Unit price calculations by outcome.",
	}, []string{"outcome"})
	quotesSaved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quotes_saved_total",
		Help: "Quotes persisted.",
	})
	itemsSaved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quote_items_saved_total",
		Help: "Quote line items persisted.",
	})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(calculations, quotesSaved, itemsSaved, httpDuration)

	return &Recorder{
		calculations: calculations,
		quotesSaved:  quotesSaved,
		itemsSaved:   itemsSaved,
		httpDuration: httpDuration,
	}
}

// IncCalculation counts one price calculation with the given outcome.
func (r *Recorder) IncCalculation(outcome string) {
	if r == nil || r.calculations == nil {
		return
	}
	if outcome == "" {
		outcome = OutcomeError
	}
	r.calculations.WithLabelValues(outcome).Inc()
}

// IncQuoteSaved counts one saved quote with its number of items.
func (r *Recorder) IncQuoteSaved(items int) {
	if r == nil || r.quotesSaved == nil {
		return
	}
	r.quotesSaved.Inc()
	r.itemsSaved.Add(float64(items))
}

// ObserveRequest records the duration of one HTTP request.
func (r *Recorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	if r == nil || r.httpDuration == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}
