package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_uploads_total",
			Help: "Total number of resume uploads by widget and outcome",
		},
		[]string{"widget", "outcome"},
	)

	UploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resume_upload_duration_seconds",
			Help:    "Duration of the remote call behind a resume upload",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"widget"},
	)

	UploadsSuperseded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_uploads_superseded_total",
			Help: "Uploads whose response was discarded because a newer upload started",
		},
		[]string{"widget"},
	)

	DownloadsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resume_downloads_active",
			Help: "Enhanced documents currently held for download",
		},
	)
)
