package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/uploadhaven/internal/api"
	"github.com/dmitrijs2005/uploadhaven/internal/metrics"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// RouterOptions carry the optional observability pieces. Nil fields
// disable the matching middleware.
type RouterOptions struct {
	AccessLog      *logrus.Logger
	Metrics        *metrics.Server
	Gatherer       prometheus.Gatherer
	TracerProvider trace.TracerProvider
}

// NewRouter builds the full HTTP handler.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := mux.NewRouter()

	tp := opts.TracerProvider
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	r.Use(Tracing(tp))
	if opts.Metrics != nil {
		r.Use(Metrics(opts.Metrics))
	}

	h.RegisterRoutes(r)
	if opts.Gatherer != nil {
		r.Handle(api.RouteMetrics, metrics.Handler(opts.Gatherer)).Methods(http.MethodGet)
	}

	if opts.AccessLog == nil {
		return r
	}
	return AccessLog(opts.AccessLog, RedactedHeaders)(r)
}
