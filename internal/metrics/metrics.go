package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Platform client metrics
var (
	// PlatformRequestsTotal tracks requests to the comment platform by endpoint and outcome
	PlatformRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danmaku_platform_requests_total",
			Help: "Total requests to the comment platform by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	// PlatformRequestDuration tracks platform request latency in seconds, retries included
	PlatformRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "danmaku_platform_request_duration_seconds",
			Help:    "Comment platform request duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	// PlatformRetries counts transport-level retries
	PlatformRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danmaku_platform_retries_total",
			Help: "Transport retries against the comment platform",
		},
		[]string{"endpoint"},
	)
)

// Ingestion metrics
var (
	// VideosIngested counts video ingestions by result (ok/failed)
	VideosIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danmaku_videos_ingested_total",
			Help: "Video ingestions by result",
		},
		[]string{"result"},
	)

	// CommentsIngested counts comments stored by ingestion
	CommentsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "danmaku_comments_ingested_total",
			Help: "Comments stored by video ingestion",
		},
	)

	// SegmentsFetched counts fetched comment segments
	SegmentsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "danmaku_segments_fetched_total",
			Help: "Comment segments fetched",
		},
	)

	// StoreVideos is the number of videos in the server's store
	StoreVideos = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "danmaku_store_videos",
			Help: "Number of videos currently held in the store",
		},
	)

	// ExportsTotal counts spreadsheet exports by result
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "danmaku_exports_total",
			Help: "Spreadsheet exports by result",
		},
		[]string{"result"},
	)
)
