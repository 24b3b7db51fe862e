// Package metrics provides Prometheus metrics for the Git Dungeon embed service.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gd_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gd_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gd_rate_limited_requests_total",
			Help: "Embed requests rejected by the per-client rate limiter",
		},
	)

	// Render Metrics
	EmbedRendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gd_embed_renders_total",
			Help: "Total embed renders by size, theme and result",
		},
		[]string{"size", "theme", "result"}, // result: "success" or "failed"
	)

	EmbedRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gd_embed_render_duration_seconds",
			Help:    "Time taken to render an embed SVG",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	EmbedCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gd_embed_cache_hits_total",
			Help: "Rendered SVG cache hit count",
		},
	)

	EmbedCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gd_embed_cache_misses_total",
			Help: "Rendered SVG cache miss count",
		},
	)

	ShimmerInjectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gd_shimmer_injections_total",
			Help: "Rendered SVGs that received bonus shimmer gradients",
		},
	)

	// Asset Metrics
	FontLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gd_font_loads_total",
			Help: "Font load requests by loader and result",
		},
		[]string{"loader", "result"}, // loader: "file" or "url"
	)

	SpriteResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gd_sprite_resolutions_total",
			Help: "Equipment sprite resolutions by source",
		},
		[]string{"source"}, // "stored", "catalog", "fallback"
	)

	// Character Metrics
	CharactersTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gd_characters_total",
			Help: "Number of characters stored",
		},
	)

	BonusMismatchTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gd_equipment_bonus_mismatch_total",
			Help: "Character updates whose submitted equipment bonus disagreed with the computed one",
		},
	)
)
