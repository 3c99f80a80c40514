package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lesson_prep_assistant/generator"
)

// Metrics owns a private registry so several servers (tests) can coexist.
type Metrics struct {
	reg           *prometheus.Registry
	cycles        *prometheus.CounterVec
	diagrams      *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	exports       prometheus.Counter
}

func newMetrics(store *sessionStore) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lesson_prep_cycles_total",
				Help: "Completed search cycles by final state",
			},
			[]string{"state"},
		),
		diagrams: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lesson_prep_diagrams_total",
				Help: "Diagram outcomes of successful cycles",
			},
			[]string{"result"},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lesson_prep_cycle_duration_seconds",
				Help:    "Wall time of a search cycle, text and diagram together",
				Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
			},
		),
		exports: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lesson_prep_exports_total",
				Help: "Documents exported",
			},
		),
	}
	sessions := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "lesson_prep_sessions",
			Help: "Live sessions in the store",
		},
		func() float64 { return float64(store.count()) },
	)
	m.reg.MustRegister(m.cycles, m.diagrams, m.cycleDuration, m.exports, sessions,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

// observeCycle 只统计跑完的周期；被 Back 取代的周期返回 IDLE，不计入。
func (m *Metrics) observeCycle(snap generator.Snapshot, elapsed time.Duration) {
	if snap.State != generator.StateSuccess && snap.State != generator.StateError {
		return
	}
	m.cycles.WithLabelValues(string(snap.State)).Inc()
	m.cycleDuration.Observe(elapsed.Seconds())
	if snap.State != generator.StateSuccess {
		return
	}
	if snap.Diagram != nil {
		m.diagrams.WithLabelValues("attached").Inc()
	} else {
		m.diagrams.WithLabelValues("absent").Inc()
	}
}

func (m *Metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
