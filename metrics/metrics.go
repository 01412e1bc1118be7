package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DocumentWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "odontologia", Name: "document_writes_total", Help: "Writes sent to the site document store, by field and outcome."},
		[]string{"field", "outcome"},
	)
	Snapshots = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "odontologia", Name: "document_snapshots_total", Help: "Snapshots of the site document applied locally."},
	)
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "odontologia", Name: "login_attempts_total", Help: "Admin sign-in attempts by result."},
		[]string{"result"},
	)
	Uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "odontologia", Name: "uploads_total", Help: "Image uploads by backend and outcome."},
		[]string{"backend", "outcome"},
	)
	PageCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "odontologia", Name: "page_cache_total", Help: "Rendered page cache lookups by result."},
		[]string{"result"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "odontologia", Name: "rate_limit_rejected_total", Help: "Requests rejected by a rate limiter."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DocumentWrites)
	reg.MustRegister(Snapshots)
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(Uploads)
	reg.MustRegister(PageCache)
	reg.MustRegister(RateLimitRejected)
}
