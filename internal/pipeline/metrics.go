package pipeline

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry      *prometheus.Registry
	batchesTotal  prometheus.Counter
	itemsTotal    *prometheus.CounterVec
	itemDuration  *prometheus.HistogramVec
	activeItems   prometheus.Gauge
	bytesInTotal  prometheus.Counter
	bytesOutTotal prometheus.Counter
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &metrics{
		registry: registry,
		batchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compressing_pipeline_batches_total",
			Help: "Total batches run to completion.",
		}),
		itemsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "compressing_pipeline_items_total",
			Help: "Total transformed items by output format and outcome.",
		}, []string{"format", "outcome"}),
		itemDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "compressing_pipeline_item_duration_seconds",
			Help:    "Transform duration for each item.",
			Buckets: prometheus.DefBuckets,
		}, []string{"format", "outcome"}),
		activeItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "compressing_pipeline_active_items",
			Help: "Current number of items being transformed.",
		}),
		bytesInTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compressing_pipeline_bytes_in_total",
			Help: "Total input bytes across successful items.",
		}),
		bytesOutTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "compressing_pipeline_bytes_out_total",
			Help: "Total output bytes across successful items.",
		}),
	}

	registry.MustRegister(
		m.batchesTotal,
		m.itemsTotal,
		m.itemDuration,
		m.activeItems,
		m.bytesInTotal,
		m.bytesOutTotal,
	)
	return m
}

func (m *metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
