package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/dmitrijs2005/uploadhaven/internal/metrics"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RedactedHeaders never reach the access log. The metadata header holds
// only public fields but is kept out of logs as well.
var RedactedHeaders = []string{"Authorization", common.UploadMetadataHeaderName, "Cookie"}

// responseWriter captures status code and bytes written.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

func wrap(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// routeTemplate returns the matched mux template so short ids never end up
// as label values or span names.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// AccessLog writes one logrus entry per request.
func AccessLog(logger *logrus.Logger, redact []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrap(w)

			next.ServeHTTP(rw, r)

			fields := logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
				"status":      rw.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
				"bytes":       rw.bytesWritten,
			}
			if r.ContentLength > 0 {
				fields["request_bytes"] = r.ContentLength
			}
			if ua := r.UserAgent(); ua != "" {
				fields["user_agent"] = ua
			}
			if logger.IsLevelEnabled(logrus.DebugLevel) {
				fields["headers"] = redactHeaders(r.Header, redact)
			}
			logger.WithFields(fields).Info("HTTP request")
		})
	}
}

func redactHeaders(h http.Header, redact []string) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		lower := strings.ToLower(name)
		if shouldRedactHeader(lower, redact) {
			out[lower] = "[REDACTED]"
			continue
		}
		out[lower] = strings.Join(values, ",")
	}
	return out
}

func shouldRedactHeader(name string, redact []string) bool {
	for _, r := range redact {
		if strings.EqualFold(r, name) {
			return true
		}
	}
	return false
}

// Metrics records request counts and latency per route template.
func Metrics(m *metrics.Server) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrap(w)
			next.ServeHTTP(rw, r)
			m.RecordHTTPRequest(r.Method, routeTemplate(r), rw.statusCode, time.Since(start))
		})
	}
}

// Tracing opens a server span per request.
func Tracing(tp trace.TracerProvider) mux.MiddlewareFunc {
	tracer := tp.Tracer("uploadhaven/server")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route := routeTemplate(r)
			ctx, span := tracer.Start(r.Context(), r.Method+" "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.method", r.Method),
					attribute.String("http.route", route),
					attribute.String("http.user_agent", r.UserAgent()),
				),
			)
			rw := wrap(w)

			defer func() {
				span.SetAttributes(attribute.Int("http.status_code", rw.statusCode))
				if rw.statusCode >= 500 {
					span.SetStatus(codes.Error, http.StatusText(rw.statusCode))
				} else {
					span.SetStatus(codes.Ok, "")
				}
				span.End()
			}()

			next.ServeHTTP(rw, r.WithContext(ctx))
		})
	}
}
