// Package metrics exposes prometheus counters for HTTP traffic, RSVPs and
// photo uploads.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/James9446/patricia-james-sub001/internal/models"
)

const namespace = "wedding"

var (
	httpRequestsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "The total number of HTTP requests",
	}, []string{"method", "route", "code"})

	httpDurationHistogram = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	rsvpCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rsvp",
		Name:      "submissions_total",
		Help:      "The total number of RSVP submissions",
	}, []string{"status"})

	rsvpRowsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rsvp",
		Name:      "rows_written_total",
		Help:      "The total number of RSVP rows written",
	})

	plusOneCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rsvp",
		Name:      "plus_ones_created_total",
		Help:      "The total number of plus-ones added to the guest list",
	})

	photoUploadCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gallery",
		Name:      "uploads_total",
		Help:      "The total number of photo uploads",
	}, []string{"content_type"})

	photoUploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gallery",
		Name:      "uploaded_bytes_total",
		Help:      "The total size of uploaded photos",
	})

	sessionsPurgedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "sessions_purged_total",
		Help:      "The total number of expired sessions removed",
	})
)

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware counts requests by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		httpRequestsCounter.WithLabelValues(r.Method, route, strconv.Itoa(code)).Inc()
		httpDurationHistogram.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Recorder records domain events. The zero value is ready to use.
type Recorder struct{}

// RSVPSubmitted counts a committed RSVP submission.
func (Recorder) RSVPSubmitted(status models.ResponseStatus, rows int, plusOneCreated bool) {
	rsvpCounter.WithLabelValues(string(status)).Inc()
	rsvpRowsCounter.Add(float64(rows))
	if plusOneCreated {
		plusOneCounter.Inc()
	}
}

// PhotoUploaded counts a stored photo.
func (Recorder) PhotoUploaded(contentType string, size int64) {
	photoUploadCounter.WithLabelValues(contentType).Inc()
	photoUploadBytes.Add(float64(size))
}

// SessionsPurged counts expired sessions removed by the cleanup job.
func (Recorder) SessionsPurged(n int64) {
	sessionsPurgedCounter.Add(float64(n))
}
