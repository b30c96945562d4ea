// Package metrics exposes Prometheus instrumentation for solve
// invocations: duration and outcome counts, option volume, and how often
// diagnosis runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

// Recorder records solve telemetry into a private Prometheus registry. It
// satisfies internal/engine.Recorder without internal/engine importing
// Prometheus itself.
type Recorder struct {
	registry           *prometheus.Registry
	solveDuration      *prometheus.HistogramVec
	solveTotal         *prometheus.CounterVec
	optionsGenerated   prometheus.Counter
	diagnosisTotal     prometheus.Counter
}

// New builds a Recorder with its own registry so repeated construction in
// tests never panics on duplicate registration.
func New() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		registry: reg,
		solveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scheduler_solve_duration_seconds",
			Help:    "Duration of scheduling solve invocations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		solveTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduler_solve_total",
			Help: "Count of scheduling solve invocations by outcome.",
		}, []string{"outcome"}),
		optionsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_options_generated_total",
			Help: "Count of options generated across solve invocations.",
		}),
		diagnosisTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_diagnosis_invocations_total",
			Help: "Count of infeasibility diagnosis runs.",
		}),
	}

	reg.MustRegister(r.solveDuration, r.solveTotal, r.optionsGenerated, r.diagnosisTotal)
	return r
}

// RecordSolve implements internal/engine.Recorder.
func (r *Recorder) RecordSolve(outcome string, duration time.Duration, optionCount int) {
	r.solveDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	r.solveTotal.WithLabelValues(outcome).Inc()
	r.optionsGenerated.Add(float64(optionCount))
}

// RecordDiagnosis implements internal/engine.Recorder.
func (r *Recorder) RecordDiagnosis() {
	r.diagnosisTotal.Inc()
}

// Handler exposes the Recorder's registry in Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
