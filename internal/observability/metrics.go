package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	adminRequestsTotal    *prometheus.CounterVec
	adminLatencySeconds   *prometheus.HistogramVec
	adminErrorsTotal      *prometheus.CounterVec
	contentCommitsTotal   *prometheus.CounterVec
	newsletterEmailsTotal *prometheus.CounterVec
	auditRecordsTotal     *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used for admin observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		contentCommitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "content_commits_total",
			Help: "Content commits attempted against the remote repository, by outcome.",
		}, []string{"resource", "action", "outcome"})

		newsletterEmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_emails_total",
			Help: "Outbound newsletter e-mails, by kind and status.",
		}, []string{"kind", "status"})

		auditRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_records_total",
			Help: "Audit records appended, by action.",
		}, []string{"action"})

		prometheus.MustRegister(adminRequestsTotal, adminLatencySeconds, adminErrorsTotal,
			contentCommitsTotal, newsletterEmailsTotal, auditRecordsTotal)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// ContentCommits exposes the counter for remote content commits.
func ContentCommits() *prometheus.CounterVec {
	RegisterMetrics()
	return contentCommitsTotal
}

// NewsletterEmails exposes the counter for outbound newsletter e-mail.
func NewsletterEmails() *prometheus.CounterVec {
	RegisterMetrics()
	return newsletterEmailsTotal
}

// AuditRecords exposes the counter for appended audit records.
func AuditRecords() *prometheus.CounterVec {
	RegisterMetrics()
	return auditRecordsTotal
}
