package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	saves       *prometheus.CounterVec
	logins      *prometheus.CounterVec
}

// New регистрирует коллекторы в reg. nil — prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uwip",
			Name:      "api_requests_total",
			Help:      "Requests to the WIP backend by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "uwip",
			Name:      "api_request_duration_seconds",
			Help:      "Latency of WIP backend requests.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 15},
		}, []string{"endpoint"}),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uwip",
			Name:      "document_saves_total",
			Help:      "Transfer ticket saves by result.",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "uwip",
			Name:      "logins_total",
			Help:      "Login attempts by mode and result.",
		}, []string{"mode", "result"}),
	}
	reg.MustRegister(m.apiRequests, m.apiLatency, m.saves, m.logins)
	return m
}

func (m *Metrics) ObserveAPI(endpoint string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.apiRequests.WithLabelValues(endpoint, outcome).Inc()
	m.apiLatency.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}

// Save result: ok | validation | empty | partial | failed
func (m *Metrics) Save(result string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(result).Inc()
}

// Login mode: manual | auto
func (m *Metrics) Login(mode string, ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.logins.WithLabelValues(mode, result).Inc()
}
