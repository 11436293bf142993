package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Flow results.
const (
	ResultOK        = "ok"
	ResultFailed    = "failed"
	ResultCancelled = "cancelled"
)

// Flows counts client upload and download runs.
type Flows struct {
	flowTotal     *prometheus.CounterVec
	flowErrors    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

// NewFlows registers flow metrics on reg.
func NewFlows(reg prometheus.Registerer) *Flows {
	factory := promauto.With(reg)
	return &Flows{
		flowTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "flow_total",
				Help:      "Finished upload and download flows by result",
			},
			[]string{"flow", "result"},
		),
		flowErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "flow_errors_total",
				Help:      "Failed flows by error kind; cancellations are not counted",
			},
			[]string{"flow", "kind"},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "flow_stage_duration_seconds",
				Help:      "Time spent in each flow stage",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"flow", "stage"},
		),
	}
}

func (m *Flows) RecordSuccess(flow string) {
	m.flowTotal.WithLabelValues(flow, ResultOK).Inc()
}

// RecordCancelled counts a user abort. It never touches the error counter.
func (m *Flows) RecordCancelled(flow string) {
	m.flowTotal.WithLabelValues(flow, ResultCancelled).Inc()
}

func (m *Flows) RecordFailure(flow, kind string) {
	m.flowTotal.WithLabelValues(flow, ResultFailed).Inc()
	m.flowErrors.WithLabelValues(flow, kind).Inc()
}

func (m *Flows) ObserveStage(flow, stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(flow, stage).Observe(d.Seconds())
}
