package monitor

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	cacheEventsTotal   *prometheus.CounterVec
	retryAttemptsTotal prometheus.Counter
	trimmedMessages    prometheus.Counter
	streamChunksTotal  prometheus.Counter
	buildInfo          *prometheus.GaugeVec
)

// InitPrometheusMonitoring registers the gateway's metric families on the
// default registry. Recording functions are safe no-ops before this runs.
func InitPrometheusMonitoring(version, goVersion string, startTime time.Time) {
	initOnce.Do(func() {
		requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_requests_total",
			Help: "Plan-event requests by HTTP status and model.",
		}, []string{"status", "model"})
		requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planner_request_duration_seconds",
			Help:    "Plan-event request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"model"})
		cacheEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_cache_events_total",
			Help: "Upstream content cache outcomes (hit, local_hit, miss, create, degrade).",
		}, []string{"event"})
		retryAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "planner_retry_attempts_total",
			Help: "Upstream dispatch retries beyond the first attempt.",
		})
		trimmedMessages = promauto.NewCounter(prometheus.CounterOpts{
			Name: "planner_trimmed_messages_total",
			Help: "Chat messages dropped by context trimming.",
		})
		streamChunksTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "planner_stream_chunks_total",
			Help: "Text chunks relayed to streaming clients.",
		})
		buildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "planner_build_info",
			Help: "Build information of the running gateway.",
		}, []string{"version", "go_version"})
		buildInfo.WithLabelValues(version, goVersion).Set(float64(startTime.Unix()))
	})
}

func RecordRequest(statusCode int, model string, elapsed time.Duration) {
	if requestsTotal == nil {
		return
	}
	requestsTotal.WithLabelValues(strconv.Itoa(statusCode), model).Inc()
	requestDuration.WithLabelValues(model).Observe(elapsed.Seconds())
}

func RecordCacheEvent(event string) {
	if cacheEventsTotal == nil {
		return
	}
	cacheEventsTotal.WithLabelValues(event).Inc()
}

func RecordRetry() {
	if retryAttemptsTotal == nil {
		return
	}
	retryAttemptsTotal.Inc()
}

func RecordTrimmedMessages(n int) {
	if trimmedMessages == nil || n <= 0 {
		return
	}
	trimmedMessages.Add(float64(n))
}

func RecordStreamChunk() {
	if streamChunksTotal == nil {
		return
	}
	streamChunksTotal.Inc()
}
