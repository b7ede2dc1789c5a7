package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	httpRequestsTotal       *prometheus.CounterVec
	httpLatencySeconds      *prometheus.HistogramVec
	challengeSubmissions    *prometheus.CounterVec
	challengeVerdicts       *prometheus.CounterVec
	testSubmissionsTotal    *prometheus.CounterVec
	leaderboardCacheLookups *prometheus.CounterVec
	rankingRunSeconds       *prometheus.HistogramVec
	xpAwardedTotal          *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kidlearn",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kidlearn",
			Name:      "http_latency_seconds",
			Help:      "Latency distribution for HTTP requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		challengeSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kidlearn",
			Name:      "challenge_submissions_total",
			Help:      "Total coding challenge submissions accepted for judging.",
		}, []string{"difficulty"})

		challengeVerdicts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kidlearn",
			Name:      "challenge_verdicts_total",
			Help:      "Terminal verdicts recorded for coding challenge submissions.",
		}, []string{"status"})

		testSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kidlearn",
			Name:      "test_submissions_total",
			Help:      "Weekly test submissions, including rejected repeat attempts.",
		}, []string{"outcome"})

		leaderboardCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kidlearn",
			Name:      "leaderboard_cache_lookups_total",
			Help:      "Leaderboard reads split by cache hit or miss.",
		}, []string{"result"})

		rankingRunSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kidlearn",
			Name:      "ranking_run_seconds",
			Help:      "Duration of full rank assignment runs.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"kind"})

		xpAwardedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kidlearn",
			Name:      "xp_awarded_total",
			Help:      "XP granted to learners, by source.",
		}, []string{"source"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			challengeSubmissions,
			challengeVerdicts,
			testSubmissionsTotal,
			leaderboardCacheLookups,
			rankingRunSeconds,
			xpAwardedTotal,
		)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// ChallengeSubmissions exposes the counter for accepted submissions.
func ChallengeSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return challengeSubmissions
}

// ChallengeVerdicts exposes the counter for recorded verdicts.
func ChallengeVerdicts() *prometheus.CounterVec {
	RegisterMetrics()
	return challengeVerdicts
}

// TestSubmissions exposes the counter for weekly test submissions.
func TestSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return testSubmissionsTotal
}

// LeaderboardCacheLookups exposes the cache hit/miss counter.
func LeaderboardCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return leaderboardCacheLookups
}

// RankingRuns exposes the rank assignment duration histogram.
func RankingRuns() *prometheus.HistogramVec {
	RegisterMetrics()
	return rankingRunSeconds
}

// XPAwarded exposes the counter for granted XP.
func XPAwarded() *prometheus.CounterVec {
	RegisterMetrics()
	return xpAwardedTotal
}
