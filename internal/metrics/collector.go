// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BaSui01/creativeflow/types"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器，实现 generation.Observer
type Collector struct {
	registry *prometheus.Registry

	// 传输层指标
	attemptsTotal   *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec

	// 作业指标
	jobsTotal   *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec

	// 轮询指标
	pollsTotal   *prometheus.CounterVec
	pollAttempts *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器. 每个收集器持有独立的 Registry.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	c := &Collector{
		registry: reg,
		logger:   logger.With(zap.String("component", "metrics")),
	}

	// 传输层指标
	c.attemptsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_attempts_total",
			Help:      "Total number of HTTP attempts sent to generation providers",
		},
		[]string{"provider", "method", "route", "outcome"},
	)

	c.attemptDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_attempt_duration_seconds",
			Help:      "Provider HTTP attempt duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider", "method", "route"},
	)

	// 作业指标
	c.jobsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Total number of generation jobs by reported status",
		},
		[]string{"provider", "content_type", "status"},
	)

	c.jobDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_submit_duration_seconds",
			Help:      "Time to submit or inline-generate a job in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider", "content_type"},
	)

	// 轮询指标
	c.pollsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Total number of poll loops by outcome",
		},
		[]string{"provider", "outcome"},
	)

	c.pollAttempts = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_attempts",
			Help:      "Status queries issued per poll loop",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"provider"},
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 generation.Observer
// =============================================================================

// ObserveAttempt 记录一次 provider HTTP 尝试
func (c *Collector) ObserveAttempt(provider, method, route, outcome string, duration time.Duration) {
	c.attemptsTotal.WithLabelValues(provider, method, route, outcome).Inc()
	c.attemptDuration.WithLabelValues(provider, method, route).Observe(duration.Seconds())
}

// ObserveJob 记录一次提交或内联生成
func (c *Collector) ObserveJob(provider string, contentType types.ContentType, status string, duration time.Duration) {
	c.jobsTotal.WithLabelValues(provider, string(contentType), status).Inc()
	c.jobDuration.WithLabelValues(provider, string(contentType)).Observe(duration.Seconds())
}

// ObservePoll 记录一次轮询循环的结果
func (c *Collector) ObservePoll(provider, outcome string, attempts int) {
	c.pollsTotal.WithLabelValues(provider, outcome).Inc()
	c.pollAttempts.WithLabelValues(provider).Observe(float64(attempts))
}

// =============================================================================
// 🔧 暴露
// =============================================================================

// Registry 返回底层 Registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler 返回 /metrics 处理器
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
