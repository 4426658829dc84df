package metrics

import (
	"time"

	"media-derivatives/internal/media"
)

// pipelineObserver implements media.Observer using the Prometheus metrics
// declared in this package.
type pipelineObserver struct{}

// NewPipelineObserver creates an observer that records derivation metrics
// into the counters, histograms and gauges declared in metrics.go.
func NewPipelineObserver() media.Observer {
	return &pipelineObserver{}
}

func (o *pipelineObserver) ObserveStage(kind, stage string, d time.Duration) {
	StageDuration.WithLabelValues(kind, stage).Observe(d.Seconds())
}

func (o *pipelineObserver) ObserveDerivation(kind, status string, d time.Duration, outputBytes int) {
	DerivationsTotal.WithLabelValues(kind, status).Inc()
	DerivationDuration.WithLabelValues(kind).Observe(d.Seconds())
	if outputBytes > 0 {
		OutputBytes.WithLabelValues(kind).Observe(float64(outputBytes))
	}
}

func (o *pipelineObserver) HandleAcquired(kind string) {
	DecodeHandlesOpen.WithLabelValues(kind).Inc()
}

func (o *pipelineObserver) HandleReleased(kind string) {
	DecodeHandlesOpen.WithLabelValues(kind).Dec()
}
