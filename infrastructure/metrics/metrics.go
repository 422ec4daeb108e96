package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// FeedRequests counts feed page fetches by mode and outcome
// (hit, miss, empty, error).
var FeedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tiktaik",
	Subsystem: "feed",
	Name:      "requests_total",
	Help:      "Feed page requests by mode and outcome.",
}, []string{"mode", "status"})

// CacheLookups counts result-cache lookups by backend and result.
var CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tiktaik",
	Subsystem: "feed",
	Name:      "cache_lookups_total",
	Help:      "Result cache lookups by backend (memory, redis) and result (hit, miss).",
}, []string{"backend", "result"})

// RankingDuration observes how long scoring and sorting a discovery
// candidate set takes.
var RankingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "tiktaik",
	Subsystem: "feed",
	Name:      "ranking_duration_seconds",
	Help:      "Time spent scoring and ordering discovery candidates.",
	Buckets:   prometheus.DefBuckets,
})
