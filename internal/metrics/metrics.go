package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcriptfmt_submissions_total",
			Help: "Total transcript submissions to the processing endpoint",
		},
		[]string{"outcome"},
	)

	SubmissionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "transcriptfmt_submission_latency_seconds",
			Help:    "Processing endpoint call latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	CopiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcriptfmt_copies_total",
			Help: "Total copy-as-text operations by clipboard path",
		},
		[]string{"path"},
	)

	ProcessorRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcriptfmt_processor_requests_total",
			Help: "Total requests handled by the processing endpoint",
		},
		[]string{"status"},
	)

	TranscriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transcriptfmt_transcriptions_total",
			Help: "Total media transcriptions by final status",
		},
		[]string{"status"},
	)
)
