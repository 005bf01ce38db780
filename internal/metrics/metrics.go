// Package metrics 定义服务的 Prometheus 指标, 全部注册在私有 Registry 上.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "artdrop"

// Metrics 服务指标
type Metrics struct {
	registry *prometheus.Registry

	// 账本交易
	Transactions *prometheus.CounterVec
	BlockNumber  prometheus.Gauge

	// 索引
	EventsIndexed *prometheus.CounterVec
	SyncErrors    *prometheus.CounterVec
	SyncedBlock   *prometheus.GaugeVec
	SyncDuration  *prometheus.HistogramVec

	// 定时任务
	StatusUpdates *prometheus.CounterVec

	// HTTP
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// New 创建指标集合
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Transactions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "transactions_total",
			Help:      "Total number of submitted transactions by method and result",
		}, []string{"method", "result"}),
		BlockNumber: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "block_number",
			Help:      "Latest block number of the in-process ledger",
		}),

		EventsIndexed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "events_indexed_total",
			Help:      "Total number of events written to the projection",
		}, []string{"source", "event_type"}),
		SyncErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "sync_errors_total",
			Help:      "Total number of failed sync rounds",
		}, []string{"source"}),
		SyncedBlock: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "synced_block",
			Help:      "Highest block fully indexed per source",
		}, []string{"source"}),
		SyncDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "indexer",
			Name:      "sync_duration_seconds",
			Help:      "Duration of one sync round",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),

		StatusUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "status_updates_total",
			Help:      "Total number of campaign status transitions written by the status job",
		}, []string{"status"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Registry 私有 Registry, 测试中可用 testutil 读取
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
