// Package metrics exposes Prometheus counters for the ingestion pipeline
// and the background subsystems.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ingestion pipeline metrics
var (
	IngestFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_archive_ingest_files_total",
			Help: "Total number of files processed by the ingestion pipeline",
		},
		[]string{"result"}, // "uploaded", "duplicate", "failed"
	)

	TranscodeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_archive_transcode_duration_seconds",
			Help:    "Wall-clock duration of web-copy transcodes",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	ThumbnailFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_archive_thumbnail_failures_total",
			Help: "Total number of thumbnail extractions that failed",
		},
	)
)

// Transcription metrics
var (
	TranscriptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_archive_transcriptions_total",
			Help: "Total number of finished transcription runs",
		},
		[]string{"result"}, // "completed", "failed", "no_audio"
	)
)

// Reconciliation sweep metrics
var (
	ReconcileSweepsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_archive_reconcile_sweeps_total",
			Help: "Total number of completed reconciliation sweeps",
		},
	)

	ReconcileRepairsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_archive_reconcile_repairs_total",
			Help: "Total number of reconciliation actions taken",
		},
		[]string{"action"}, // "regenerated_web", "backfilled_original", "marked_missing"
	)
)
