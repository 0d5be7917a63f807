// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UploadsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_uploads_submitted_total",
			Help: "Total number of upload submissions by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	AnalysisFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_analysis_fetches_total",
			Help: "Total number of analysis fetches by classification",
		},
		[]string{"classification"},
	)

	DispatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_dispatches_total",
			Help: "Total number of notification dispatches by template and status",
		},
		[]string{"template", "status"},
	)

	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "session_dispatch_duration_seconds",
			Help: "Duration of notification dispatch calls in seconds",
		},
		[]string{"template"},
	)
)
