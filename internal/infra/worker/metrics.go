// Package worker runs the background jobs of the API process.
package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job metrics are shared by every scheduled job and labelled by job name.
var (
	// JobRunsTotal counts job runs by job and status (success, failure).
	JobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worker_cron_job_runs_total",
		Help: "Total number of cron job runs by job and status",
	}, []string{"job", "status"})

	JobDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worker_cron_job_duration_seconds",
		Help:    "Duration of cron job execution in seconds",
		Buckets: []float64{.005, .01, .05, .1, .5, 1, 5, 10},
	}, []string{"job"})

	JobLastSuccessTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "worker_cron_job_last_success_timestamp",
		Help: "Unix timestamp of the last successful cron job run",
	}, []string{"job"})
)

func recordJobRun(job, status string, seconds float64) {
	JobRunsTotal.WithLabelValues(job, status).Inc()
	JobDurationSeconds.WithLabelValues(job).Observe(seconds)
	if status == "success" {
		JobLastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
	}
}
