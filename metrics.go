package parallex

import "github.com/prometheus/client_golang/prometheus"

// Metrics wires the scheduler's per-step outcomes into real Prometheus
// collectors, replacing the teacher's hand-rolled PrometheusWorkGroupCollector
// text-exposition encoder (observability.go) with two
// prometheus.CounterVec collectors registered against a caller-supplied
// Registerer, observing the same step-outcome shape the teacher's
// WorkGroupSummary already modeled (steps run, steps failed). Step
// durations are not recorded.
type Metrics struct {
	stepsTotal  *prometheus.CounterVec
	stepsFailed *prometheus.CounterVec
}

// NewMetrics constructs a Metrics sink and registers its collectors against
// reg. Passing the same *prometheus.Registry to multiple Metrics instances
// will fail registration the usual Prometheus way (AlreadyRegisteredError);
// callers needing more than one Scheduler should share one Metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parallex",
			Name:      "steps_total",
			Help:      "Number of DAG steps executed, labeled by system id.",
		}, []string{"system"}),
		stepsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "parallex",
			Name:      "steps_failed_total",
			Help:      "Number of DAG steps that returned a SystemResult.Err, labeled by system id.",
		}, []string{"system"}),
	}
	reg.MustRegister(m.stepsTotal, m.stepsFailed)
	return m
}

// ObserveStepOK records a successful step execution for id.
func (m *Metrics) ObserveStepOK(id SystemID) {
	m.stepsTotal.WithLabelValues(string(id)).Inc()
}

// ObserveStepError records a failed step execution for id.
func (m *Metrics) ObserveStepError(id SystemID) {
	m.stepsTotal.WithLabelValues(string(id)).Inc()
	m.stepsFailed.WithLabelValues(string(id)).Inc()
}
