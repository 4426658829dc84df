package handlers

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"media-derivatives/internal/logging"
)

// scrapeLog forwards promhttp gather errors to the application log.
type scrapeLog struct{}

func (scrapeLog) Println(v ...interface{}) {
	logging.Warn("metrics scrape: %s", fmt.Sprint(v...))
}

// MetricsHandler returns the Prometheus metrics handler. A failing collector
// is logged and the remaining series are still served.
func (h *Handlers) MetricsHandler() http.Handler {
	return promhttp.InstrumentMetricHandler(prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
			ErrorLog:            scrapeLog{},
			ErrorHandling:       promhttp.ContinueOnError,
			MaxRequestsInFlight: 2,
			EnableOpenMetrics:   true,
		}),
	)
}
