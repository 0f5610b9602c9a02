package ocr

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "doclens_ocr_cache_hits_total",
			Help: "Page lookups served from the coordinate cache",
		},
	)

	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "doclens_ocr_cache_misses_total",
			Help: "Page lookups that required an OCR pass",
		},
	)
)
