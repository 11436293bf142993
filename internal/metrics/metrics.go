// Package metrics exposes Prometheus instruments for the server's HTTP API
// and storage, and for the client's upload and download flows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "uploadhaven"

// Server holds the server-side metrics.
type Server struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	uploadsStored       prometheus.Counter
	uploadBytes         prometheus.Counter
	uploadsRejected     *prometheus.CounterVec
	uploadsExpired      prometheus.Counter
	blobErrors          *prometheus.CounterVec
}

// NewServer registers server metrics on reg.
func NewServer(reg prometheus.Registerer) *Server {
	factory := promauto.With(reg)
	return &Server{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		uploadsStored: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_stored_total",
				Help:      "Ciphertext blobs accepted into storage",
			},
		),
		uploadBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upload_bytes_total",
				Help:      "Ciphertext bytes accepted into storage",
			},
		),
		uploadsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_rejected_total",
				Help:      "Uploads refused before storage",
			},
			[]string{"reason"},
		),
		uploadsExpired: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_expired_total",
				Help:      "Expired uploads removed by the sweeper",
			},
		),
		blobErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "blob_errors_total",
				Help:      "Blob store operation failures",
			},
			[]string{"operation"},
		),
	}
}

// RecordHTTPRequest records one served request. route is the mux template,
// never the raw path, so short ids do not become label values.
func (m *Server) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (m *Server) RecordUploadStored(size int64) {
	m.uploadsStored.Inc()
	m.uploadBytes.Add(float64(size))
}

func (m *Server) RecordUploadRejected(reason string) {
	m.uploadsRejected.WithLabelValues(reason).Inc()
}

func (m *Server) RecordExpired(n int) {
	m.uploadsExpired.Add(float64(n))
}

func (m *Server) RecordBlobError(operation string) {
	m.blobErrors.WithLabelValues(operation).Inc()
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
