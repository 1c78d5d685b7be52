package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecordsLoadedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospaccess_records_loaded_total",
		Help: "Records read per source dataset",
	}, []string{"dataset"})
	ValidatorDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospaccess_validator_dropped_total",
		Help: "Hospital rows dropped by the coordinate validator, by reason",
	}, []string{"reason"})
	HospitalsMatchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hospaccess_hospitals_matched_total",
		Help: "Validated hospitals contained in some district",
	})
	HospitalsUnmatchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hospaccess_hospitals_unmatched_total",
		Help: "Validated hospitals outside every district",
	})
	EmptyRegionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospaccess_empty_regions_total",
		Help: "Proximity regions replaced by a placeholder record",
	}, []string{"region"})
	MemoHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospaccess_memo_hits_total",
		Help: "Memoized computation cache hits",
	}, []string{"fn"})
	MemoMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospaccess_memo_misses_total",
		Help: "Memoized computation cache misses",
	}, []string{"fn"})
	StageDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hospaccess_stage_duration_ms",
		Help:    "Pipeline stage duration in milliseconds",
		Buckets: []float64{1, 5, 10, 50, 100, 500, 1000, 5000, 20000},
	}, []string{"stage"})
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hospaccess_requests_total",
		Help: "Artifact API requests by route",
	}, []string{"route"})
	RequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "hospaccess_request_duration_ms",
		Help:    "Artifact API request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	RedisHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hospaccess_redis_hits_total",
		Help: "Total redis artifact cache hits",
	})
	RedisMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hospaccess_redis_misses_total",
		Help: "Total redis artifact cache misses",
	})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "hospaccess_rate_limited_total",
		Help: "Requests rejected by the token bucket",
	})
)

func init() {
	prometheus.MustRegister(RecordsLoadedTotal)
	prometheus.MustRegister(ValidatorDroppedTotal)
	prometheus.MustRegister(HospitalsMatchedTotal)
	prometheus.MustRegister(HospitalsUnmatchedTotal)
	prometheus.MustRegister(EmptyRegionsTotal)
	prometheus.MustRegister(MemoHitsTotal)
	prometheus.MustRegister(MemoMissesTotal)
	prometheus.MustRegister(StageDurationMs)
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(RedisHitsTotal)
	prometheus.MustRegister(RedisMissesTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：产物服务开启时挂载到 {API_BASE}/metrics；批处理模式下指标只在进程内累积。
func Handler() http.Handler { return promhttp.Handler() }
