package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eduportal"

var (
	EnrollRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "enroll_requests_total", Help: "Enrollment requests by outcome",
	}, []string{"outcome"})
	EnrollDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "enroll_decisions_total", Help: "Accepted and rejected enrollment requests",
	}, []string{"decision"})
	LessonsWatched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "lessons_watched_total", Help: "Lessons marked watched",
	})
	CertificateRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "certificate_requests_total", Help: "Certificate requests by result",
	}, []string{"result"})
	HandlerErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "handler_errors_total", Help: "Handler errors",
	})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(EnrollRequests, EnrollDecisions, LessonsWatched, CertificateRequests,
		HandlerErrors, HTTPDuration, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }
