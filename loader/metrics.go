package loader

import (
	"openportal.dev/openportal/metrics"
)

const (
	// CacheHitCounterLabel tracks how many loads were served from the cache.
	CacheHitCounterLabel = "cache_hit"
	// CacheMissCounterLabel tracks how many loads required an origin fetch.
	CacheMissCounterLabel = "cache_miss"
	// CacheShareCounterLabel tracks how many loads joined an already running fetch.
	CacheShareCounterLabel = "cache_share"
	// RevalidationCounterLabel tracks how many stale serves triggered a background refresh.
	RevalidationCounterLabel = "revalidation"
	// InProgressGaugeLabel tracks the number of origin fetches currently in progress.
	InProgressGaugeLabel = "in_progress"
	// FetchDurationHistogramLabel tracks the duration of origin fetches.
	FetchDurationHistogramLabel = "fetch_duration_seconds"
)

// CacheHitCounterTotal counts the number of loads served from the cache,
// fresh or stale. [page].
var CacheHitCounterTotal = metrics.MustRegisterCounterVec(
	"openportal",
	"loader",
	CacheHitCounterLabel,
	"Number of loads served from the cache.",
	"page",
)

// CacheMissCounterTotal counts the number of loads that had to wait on an
// origin fetch. [page].
var CacheMissCounterTotal = metrics.MustRegisterCounterVec(
	"openportal",
	"loader",
	CacheMissCounterLabel,
	"Number of loads that had to wait on an origin fetch.",
	"page",
)

// CacheShareCounterTotal counts the number of loads that shared one origin
// fetch with other concurrent loads. [page].
var CacheShareCounterTotal = metrics.MustRegisterCounterVec(
	"openportal",
	"loader",
	CacheShareCounterLabel,
	"Number of loads that shared one origin fetch with other concurrent loads.",
	"page",
)

// RevalidationCounterTotal counts the number of stale serves that triggered
// a background revalidation. [page].
var RevalidationCounterTotal = metrics.MustRegisterCounterVec(
	"openportal",
	"loader",
	RevalidationCounterLabel,
	"Number of stale serves that triggered a background revalidation.",
	"page",
)

// InProgressGauge tracks the number of origin fetches currently in progress.
var InProgressGauge = metrics.MustRegisterGauge(
	"openportal",
	"loader",
	InProgressGaugeLabel,
	"Number of origin fetches currently in progress.",
)

// FetchDurationHistogram tracks the duration of origin fetches. [page].
var FetchDurationHistogram = metrics.MustRegisterHistogramVec(
	"openportal",
	"loader",
	FetchDurationHistogramLabel,
	"Duration of origin fetches in seconds.",
	[]float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	"page",
)
