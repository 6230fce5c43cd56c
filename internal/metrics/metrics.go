package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"StockLens/internal/model"
)

var (
	PriceFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stocklens_price_fetches_total", Help: "Upstream price history fetches"},
		[]string{"source", "outcome"},
	)
	PriceFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stocklens_price_fetch_duration_seconds",
			Help:    "Latency of upstream price history fetches",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"source"},
	)
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stocklens_price_cache_lookups_total", Help: "Price history cache lookups"},
		[]string{"result"},
	)
	SentimentLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stocklens_sentiment_lookups_total", Help: "Sentiment provider lookups"},
		[]string{"provider", "outcome"},
	)
	Reports = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stocklens_reports_total", Help: "Report builds by outcome"},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(PriceFetches, PriceFetchDuration, CacheLookups, SentimentLookups, Reports)
}

// Outcome maps an error to a low-cardinality label value.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := model.KindOf(err); kind != "" {
		return strings.ToLower(string(kind))
	}
	return "error"
}

// ObserveFetch records one upstream price fetch.
func ObserveFetch(source string, started time.Time, err error) {
	PriceFetches.WithLabelValues(source, Outcome(err)).Inc()
	PriceFetchDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// Serve starts a /metrics listener in the background.
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
